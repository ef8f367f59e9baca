// Package storage provides the object store used for avatar files.
package storage

import (
	"context"
	"errors"
)

// ErrObjectExists is returned by Put when the target path is already taken.
// Avatar paths are timestamp-disambiguated, so an existing object means a
// caller bug rather than a legitimate replace.
var ErrObjectExists = errors.New("storage: object already exists")

// ObjectStore is the minimal surface the avatar flow needs. Only the
// federated deployment wires a real implementation; in local mode the store
// is absent and avatar upload is disabled.
type ObjectStore interface {
	// Put uploads content under name, rejecting overwrite of an existing path.
	Put(ctx context.Context, name string, content []byte, contentType string) error
	// Remove deletes the object if present.
	Remove(ctx context.Context, name string) error
	// PublicURL returns the public address of an uploaded object.
	PublicURL(name string) string
}
