package identity

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// LocalResolver verifies session tokens issued by this process against the
// static symmetric secret. It has no side effects.
type LocalResolver struct {
	secret []byte
}

// NewLocalResolver returns a Resolver for local-mode session tokens.
func NewLocalResolver(secret string) *LocalResolver {
	return &LocalResolver{secret: []byte(secret)}
}

// Resolve implements Resolver.
func (r *LocalResolver) Resolve(_ context.Context, bearer string) (*Identity, error) {
	if bearer == "" {
		return nil, ErrMissingCredential
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(bearer, claims, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired())
	if err != nil {
		return nil, classifyParseError(err, ErrSignatureInvalid)
	}
	if !token.Valid {
		return nil, ErrSignatureInvalid
	}

	return identityFromClaims(claims)
}
