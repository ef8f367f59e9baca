package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"
	"time"

	"slotvote/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userStoreStub is an in-memory UserStore tracking provisioning calls.
type userStoreStub struct {
	mu      sync.Mutex
	users   map[string]*models.User
	creates int

	getErr    error
	createErr error
}

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{users: make(map[string]*models.User)}
}

func (s *userStoreStub) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *userStoreStub) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.creates++
	s.users[user.ID] = user
	return nil
}

func signRS256(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func rsaKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestFederatedResolver_ProvisionsUserOnce(t *testing.T) {
	t.Parallel()
	key := rsaKey(t)
	store := newUserStoreStub()
	r := NewFederatedResolverWithKeyfunc(func(*jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, store)

	bearer := signRS256(t, key, jwt.MapClaims{
		"sub":   "subject-42",
		"email": "fed@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	ident, err := r.Resolve(context.Background(), bearer)
	require.NoError(t, err)
	assert.Equal(t, "subject-42", ident.UserID)
	assert.Equal(t, "fed@example.com", ident.Email)
	assert.Equal(t, 1, store.creates, "first resolution provisions the user")

	created := store.users["subject-42"]
	require.NotNil(t, created)
	assert.Equal(t, "fed@example.com", created.Email)
	assert.Nil(t, created.Password)
	assert.Nil(t, created.FullName)

	_, err = r.Resolve(context.Background(), bearer)
	require.NoError(t, err)
	assert.Equal(t, 1, store.creates, "second resolution must not create a duplicate")
}

func TestFederatedResolver_Failures(t *testing.T) {
	t.Parallel()
	key := rsaKey(t)
	goodKeyfunc := func(*jwt.Token) (any, error) { return &key.PublicKey, nil }

	t.Run("missing credential", func(t *testing.T) {
		t.Parallel()
		r := NewFederatedResolverWithKeyfunc(goodKeyfunc, newUserStoreStub())
		_, err := r.Resolve(context.Background(), "")
		assert.ErrorIs(t, err, ErrMissingCredential)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		r := NewFederatedResolverWithKeyfunc(goodKeyfunc, newUserStoreStub())
		bearer := signRS256(t, key, jwt.MapClaims{
			"sub":   "subject-42",
			"email": "fed@example.com",
			"exp":   time.Now().Add(-time.Minute).Unix(),
		})
		_, err := r.Resolve(context.Background(), bearer)
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		other := rsaKey(t)
		r := NewFederatedResolverWithKeyfunc(func(*jwt.Token) (any, error) {
			return &other.PublicKey, nil
		}, newUserStoreStub())
		bearer := signRS256(t, key, jwt.MapClaims{
			"sub":   "subject-42",
			"email": "fed@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		_, err := r.Resolve(context.Background(), bearer)
		assert.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("key set unavailable", func(t *testing.T) {
		t.Parallel()
		r := NewFederatedResolverWithKeyfunc(func(*jwt.Token) (any, error) {
			return nil, errors.New("jwks fetch failed")
		}, newUserStoreStub())
		bearer := signRS256(t, key, jwt.MapClaims{
			"sub":   "subject-42",
			"email": "fed@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		_, err := r.Resolve(context.Background(), bearer)
		assert.ErrorIs(t, err, ErrKeySetUnavailable)
	})

	t.Run("missing expiry claim", func(t *testing.T) {
		t.Parallel()
		store := newUserStoreStub()
		r := NewFederatedResolverWithKeyfunc(goodKeyfunc, store)
		bearer := signRS256(t, key, jwt.MapClaims{
			"sub":   "subject-42",
			"email": "fed@example.com",
		})
		_, err := r.Resolve(context.Background(), bearer)
		assert.ErrorIs(t, err, ErrInvalidPayload)
		assert.Zero(t, store.creates)
	})

	t.Run("missing email claim", func(t *testing.T) {
		t.Parallel()
		store := newUserStoreStub()
		r := NewFederatedResolverWithKeyfunc(goodKeyfunc, store)
		bearer := signRS256(t, key, jwt.MapClaims{
			"sub": "subject-42",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		_, err := r.Resolve(context.Background(), bearer)
		assert.ErrorIs(t, err, ErrInvalidPayload)
		assert.Zero(t, store.creates, "invalid payload must not provision")
	})

	t.Run("store lookup error propagates", func(t *testing.T) {
		t.Parallel()
		store := newUserStoreStub()
		store.getErr = models.NewInternalError(errors.New("db down"))
		r := NewFederatedResolverWithKeyfunc(goodKeyfunc, store)
		bearer := signRS256(t, key, jwt.MapClaims{
			"sub":   "subject-42",
			"email": "fed@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		_, err := r.Resolve(context.Background(), bearer)
		require.Error(t, err)
		assert.Zero(t, store.creates)
	})
}
