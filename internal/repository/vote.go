package repository

import (
	"context"

	"slotvote/internal/models"

	"gorm.io/gorm"
)

// VoteRepository defines persistence operations for votes.
type VoteRepository interface {
	Create(ctx context.Context, vote *models.Vote) error
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository returns a new VoteRepository implementation.
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// Create inserts the vote. A unique violation here means a concurrent
// admission for the same identity won the race past the in-memory duplicate
// check, so it is reported as the same conflict the check would have raised.
func (r *voteRepository) Create(ctx context.Context, vote *models.Vote) error {
	if err := r.db.WithContext(ctx).Create(vote).Error; err != nil {
		if isUniqueConstraintError(err) {
			if vote.UserID != nil {
				return models.NewConflictError("User has already voted in this poll")
			}
			return models.NewConflictError("This name has already been used to vote in this poll")
		}
		return models.NewInternalError(err)
	}
	return nil
}
