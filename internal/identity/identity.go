// Package identity resolves bearer credentials to a canonical user identity.
//
// The concrete strategy (local symmetric-secret or federated JWKS) is chosen
// once at startup from configuration and injected where needed; nothing else
// in the codebase branches on the auth mode.
package identity

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the canonical result of resolving a valid credential.
type Identity struct {
	UserID string
	Email  string
}

// Resolver validates a bearer credential and produces an Identity.
type Resolver interface {
	Resolve(ctx context.Context, bearer string) (*Identity, error)
}

// Resolution failures. All of them surface as a single unauthorized response
// to the client; handlers log the concrete kind server-side.
var (
	ErrMissingCredential = errors.New("identity: missing credential")
	ErrSignatureInvalid  = errors.New("identity: signature invalid")
	ErrExpired           = errors.New("identity: credential expired")
	ErrInvalidPayload    = errors.New("identity: invalid payload")
	ErrKeySetUnavailable = errors.New("identity: key set unavailable")
)

// tokenClaims carries the registered claims plus the email claim both
// strategies require.
type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// classifyParseError maps a jwt parse error onto the resolver failure
// taxonomy. keySetErr is what an unverifiable token maps to; the federated
// strategy passes ErrKeySetUnavailable since the keyfunc fails when the
// remote key set cannot be fetched.
func classifyParseError(err error, keySetErr error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return keySetErr
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrInvalidPayload
	default:
		return ErrSignatureInvalid
	}
}

// identityFromClaims enforces the non-empty subject and email requirement.
func identityFromClaims(claims *tokenClaims) (*Identity, error) {
	if claims.Subject == "" || claims.Email == "" {
		return nil, ErrInvalidPayload
	}
	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
