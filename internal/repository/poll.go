package repository

import (
	"context"
	"errors"

	"slotvote/internal/models"

	"gorm.io/gorm"
)

// PollRepository defines persistence operations for polls.
type PollRepository interface {
	Create(ctx context.Context, poll *models.Poll) error
	List(ctx context.Context) ([]models.Poll, error)
	GetByIDWithVotes(ctx context.Context, id string) (*models.Poll, error)
	ListVotedByUser(ctx context.Context, userID string) ([]models.Poll, error)
}

type pollRepository struct {
	db *gorm.DB
}

// NewPollRepository returns a new PollRepository implementation.
func NewPollRepository(db *gorm.DB) PollRepository {
	return &pollRepository{db: db}
}

func (r *pollRepository) Create(ctx context.Context, poll *models.Poll) error {
	if err := r.db.WithContext(ctx).Create(poll).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *pollRepository) List(ctx context.Context) ([]models.Poll, error) {
	var polls []models.Poll
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&polls).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return polls, nil
}

func (r *pollRepository) GetByIDWithVotes(ctx context.Context, id string) (*models.Poll, error) {
	var poll models.Poll
	err := r.db.WithContext(ctx).Preload("Votes").Where("id = ?", id).First(&poll).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Poll", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &poll, nil
}

func (r *pollRepository) ListVotedByUser(ctx context.Context, userID string) ([]models.Poll, error) {
	var polls []models.Poll
	err := r.db.WithContext(ctx).
		Joins("JOIN votes ON votes.poll_id = polls.id").
		Where("votes.user_id = ?", userID).
		Order("votes.voted_at DESC").
		Find(&polls).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return polls, nil
}
