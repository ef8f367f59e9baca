package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"slotvote/internal/middleware"
	"slotvote/internal/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// UserStore is the slice of the user repository the federated strategy needs
// for lazy provisioning.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// FederatedResolver verifies identity-provider tokens against the provider's
// published key set and lazily mirrors a User row for every subject it sees.
type FederatedResolver struct {
	keyfunc jwt.Keyfunc
	users   UserStore
}

// NewFederatedResolver builds a resolver whose key set is fetched from the
// identity provider's JWKS endpoint. The key set is cached and refreshed in
// the background with rate limiting by keyfunc.
func NewFederatedResolver(idpURL string, users UserStore) (*FederatedResolver, error) {
	jwksURL := strings.TrimRight(idpURL, "/") + "/.well-known/jwks.json"
	kf, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWKS client for %s: %w", jwksURL, err)
	}
	return &FederatedResolver{keyfunc: kf.Keyfunc, users: users}, nil
}

// NewFederatedResolverWithKeyfunc injects the key lookup directly. Used by
// tests to exercise provisioning without a remote key set.
func NewFederatedResolverWithKeyfunc(kf jwt.Keyfunc, users UserStore) *FederatedResolver {
	return &FederatedResolver{keyfunc: kf, users: users}
}

// Resolve implements Resolver. On success the subject is guaranteed to have
// a User row; resolving the same credential twice creates no duplicate.
func (r *FederatedResolver) Resolve(ctx context.Context, bearer string) (*Identity, error) {
	if bearer == "" {
		return nil, ErrMissingCredential
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(bearer, claims, r.keyfunc,
		jwt.WithValidMethods([]string{
			jwt.SigningMethodRS256.Alg(),
			jwt.SigningMethodES256.Alg(),
		}),
		jwt.WithExpirationRequired())
	if err != nil {
		return nil, classifyParseError(err, ErrKeySetUnavailable)
	}
	if !token.Valid {
		return nil, ErrSignatureInvalid
	}

	ident, err := identityFromClaims(claims)
	if err != nil {
		return nil, err
	}

	if err := r.ensureUserExists(ctx, ident); err != nil {
		return nil, err
	}
	return ident, nil
}

// ensureUserExists mirrors the identity provider's subject as a local User
// row on first sight. The check-then-create window under concurrent first
// requests is accepted; the email unique index keeps the table consistent.
func (r *FederatedResolver) ensureUserExists(ctx context.Context, ident *Identity) error {
	_, err := r.users.GetByID(ctx, ident.UserID)
	if err == nil {
		return nil
	}

	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeNotFound {
		return err
	}

	user := &models.User{
		ID:    ident.UserID,
		Email: ident.Email,
	}
	if createErr := r.users.Create(ctx, user); createErr != nil {
		return createErr
	}

	middleware.Logger.InfoContext(ctx, "provisioned federated user",
		slog.String("user_id", ident.UserID),
	)
	return nil
}
