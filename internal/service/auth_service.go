// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"slotvote/internal/config"
	"slotvote/internal/models"
	"slotvote/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 24 * time.Hour

// dummyHash is compared against when a login targets an unknown email, so
// the request costs a bcrypt comparison either way.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService registers local accounts and authenticates login attempts.
// Both operations are rejected outright in federated mode.
type AuthService struct {
	users     repository.UserRepository
	jwtSecret string
	localMode bool
}

// NewAuthService returns the credential service for the configured mode.
func NewAuthService(users repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: cfg.JWTSecret,
		localMode: !cfg.Federated(),
	}
}

// Register creates a local account and returns a session token.
func (s *AuthService) Register(ctx context.Context, email, password string) (string, error) {
	if !s.localMode {
		return "", models.NewModeDisabledError("Local registration is disabled in federated mode")
	}

	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return "", err
	}
	if len(password) < 8 {
		return "", models.NewValidationError("Password must be at least 8 characters long")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", models.NewConflictError("A user with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	hashStr := string(hashed)
	user := &models.User{
		ID:       uuid.NewString(),
		Email:    email,
		Password: &hashStr,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}

	return s.issueToken(user.ID, user.Email)
}

// Login authenticates a local account. Unknown email and wrong password are
// indistinguishable in the returned error.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if !s.localMode {
		return "", models.NewModeDisabledError("Local login is disabled in federated mode")
	}

	email = normalizeEmail(email)
	user, err := s.users.GetByEmailWithPassword(ctx, email)
	if err != nil {
		return "", err
	}

	hash := dummyHash
	if user != nil && user.Password != nil {
		hash = *user.Password
	}
	cmpErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if user == nil || user.Password == nil || cmpErr != nil {
		return "", models.NewUnauthorizedError("Invalid credentials")
	}

	return s.issueToken(user.ID, user.Email)
}

// issueToken constructs a signed session token carrying the user's identity.
func (s *AuthService) issueToken(userID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iss":   "slotvote-api",
		"iat":   now.Unix(),
		"exp":   now.Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return signed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return models.NewValidationError("Email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.NewValidationError("Email is not valid")
	}
	return nil
}
