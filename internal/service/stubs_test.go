package service

import (
	"context"

	"slotvote/internal/models"
)

// Function-field stubs let each test override only the calls it cares about.

type userRepoStub struct {
	getByIDFn                func(ctx context.Context, id string) (*models.User, error)
	getByEmailFn             func(ctx context.Context, email string) (*models.User, error)
	getByEmailWithPasswordFn func(ctx context.Context, email string) (*models.User, error)
	createFn                 func(ctx context.Context, user *models.User) error
	updateFn                 func(ctx context.Context, user *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *userRepoStub) GetByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailWithPasswordFn(ctx, email)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

type pollRepoStub struct {
	createFn           func(ctx context.Context, poll *models.Poll) error
	listFn             func(ctx context.Context) ([]models.Poll, error)
	getByIDWithVotesFn func(ctx context.Context, id string) (*models.Poll, error)
	listVotedByUserFn  func(ctx context.Context, userID string) ([]models.Poll, error)
}

func (s *pollRepoStub) Create(ctx context.Context, poll *models.Poll) error {
	return s.createFn(ctx, poll)
}

func (s *pollRepoStub) List(ctx context.Context) ([]models.Poll, error) {
	return s.listFn(ctx)
}

func (s *pollRepoStub) GetByIDWithVotes(ctx context.Context, id string) (*models.Poll, error) {
	return s.getByIDWithVotesFn(ctx, id)
}

func (s *pollRepoStub) ListVotedByUser(ctx context.Context, userID string) ([]models.Poll, error) {
	return s.listVotedByUserFn(ctx, userID)
}

type voteRepoStub struct {
	createFn func(ctx context.Context, vote *models.Vote) error
}

func (s *voteRepoStub) Create(ctx context.Context, vote *models.Vote) error {
	return s.createFn(ctx, vote)
}

// objectStoreStub records the order of storage calls for the avatar flow.
type objectStoreStub struct {
	calls []string

	putErr    error
	removeErr error
	baseURL   string
}

func (s *objectStoreStub) Put(_ context.Context, name string, _ []byte, _ string) error {
	s.calls = append(s.calls, "put:"+name)
	return s.putErr
}

func (s *objectStoreStub) Remove(_ context.Context, name string) error {
	s.calls = append(s.calls, "remove:"+name)
	return s.removeErr
}

func (s *objectStoreStub) PublicURL(name string) string {
	base := s.baseURL
	if base == "" {
		base = "https://storage.example.com/avatars"
	}
	return base + "/" + name
}

func strPtr(s string) *string { return &s }
