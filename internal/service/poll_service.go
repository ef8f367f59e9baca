package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"slotvote/internal/models"
	"slotvote/internal/repository"

	"github.com/google/uuid"
)

const (
	maxPollTimeSlots = 50
	maxVoteTimeSlots = 20
)

// Voter identifies who is casting a vote. Exactly one variant applies per
// admission; the variant decides which duplicate check runs.
type Voter interface {
	isVoter()
}

// AuthenticatedVoter votes under a resolved user identity.
type AuthenticatedVoter struct {
	UserID string
}

// NamedVoter votes under a free-text display name.
type NamedVoter struct {
	Name string
}

// AnonymousVoter carries no identity at all. Admission proceeds without a
// duplicate check; this mirrors the historical behavior of the API.
type AnonymousVoter struct{}

func (AuthenticatedVoter) isVoter() {}
func (NamedVoter) isVoter()         {}
func (AnonymousVoter) isVoter()     {}

// CreatePollInput carries the fields for a new poll.
type CreatePollInput struct {
	Title       string
	Description *string
	ImageURL    *string
	TimeSlots   []string
	OwnerID     string
}

// PollService creates and reads polls and admits votes on them.
type PollService struct {
	polls repository.PollRepository
	votes repository.VoteRepository
}

// NewPollService returns a new PollService.
func NewPollService(polls repository.PollRepository, votes repository.VoteRepository) *PollService {
	return &PollService{polls: polls, votes: votes}
}

// CreatePoll validates and persists a new poll. TimeSlots are fixed for the
// poll's lifetime; every later vote is validated against them.
func (s *PollService) CreatePoll(ctx context.Context, in CreatePollInput) (*models.Poll, error) {
	title := strings.TrimSpace(in.Title)
	if len(title) < 3 || len(title) > 100 {
		return nil, models.NewValidationError("Title must be between 3 and 100 characters")
	}
	if in.Description != nil && len(*in.Description) > 500 {
		return nil, models.NewValidationError("Description cannot exceed 500 characters")
	}
	if in.ImageURL != nil {
		if u, err := url.Parse(*in.ImageURL); err != nil || !u.IsAbs() {
			return nil, models.NewValidationError("Image URL must be a valid URL")
		}
	}
	if len(in.TimeSlots) == 0 {
		return nil, models.NewValidationError("At least one time slot is required")
	}
	if len(in.TimeSlots) > maxPollTimeSlots {
		return nil, models.NewValidationError(fmt.Sprintf("Maximum %d time slots allowed", maxPollTimeSlots))
	}
	for _, slot := range in.TimeSlots {
		if strings.TrimSpace(slot) == "" {
			return nil, models.NewValidationError("Time slots cannot be empty")
		}
	}

	poll := &models.Poll{
		ID:          uuid.NewString(),
		Title:       title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		TimeSlots:   in.TimeSlots,
		UserID:      in.OwnerID,
	}
	if err := s.polls.Create(ctx, poll); err != nil {
		return nil, err
	}
	return poll, nil
}

// ListPolls returns all polls, newest first.
func (s *PollService) ListPolls(ctx context.Context) ([]models.Poll, error) {
	return s.polls.List(ctx)
}

// GetPoll returns a poll with its votes.
func (s *PollService) GetPoll(ctx context.Context, id string) (*models.Poll, error) {
	return s.polls.GetByIDWithVotes(ctx, id)
}

// AdmitVote runs the vote-admission sequence: load poll, validate slot
// membership, detect duplicates for the voter's identity, commit. Each step
// short-circuits on failure and nothing is written before the insert.
func (s *PollService) AdmitVote(ctx context.Context, pollID string, voter Voter, slots []string) (*models.Vote, error) {
	poll, err := s.polls.GetByIDWithVotes(ctx, pollID)
	if err != nil {
		return nil, err
	}

	if len(slots) == 0 {
		return nil, models.NewValidationError("You must select at least one time slot")
	}
	if len(slots) > maxVoteTimeSlots {
		return nil, models.NewValidationError(fmt.Sprintf("Maximum %d time slots can be selected", maxVoteTimeSlots))
	}
	for _, slot := range slots {
		if !containsSlot(poll.TimeSlots, slot) {
			return nil, &models.AppError{
				Code:    models.CodeNotFound,
				Message: fmt.Sprintf("Time slot %q is not valid for this poll", slot),
			}
		}
	}

	vote := &models.Vote{
		ID:                uuid.NewString(),
		PollID:            poll.ID,
		SelectedTimeSlots: slots,
	}

	switch v := voter.(type) {
	case AuthenticatedVoter:
		for i := range poll.Votes {
			if poll.Votes[i].UserID != nil && *poll.Votes[i].UserID == v.UserID {
				return nil, models.NewConflictError("User has already voted in this poll")
			}
		}
		userID := v.UserID
		vote.UserID = &userID
	case NamedVoter:
		name := strings.TrimSpace(v.Name)
		if len(name) < 2 || len(name) > 50 {
			return nil, models.NewValidationError("Voter name must be between 2 and 50 characters")
		}
		for i := range poll.Votes {
			existing := poll.Votes[i]
			if existing.UserID == nil && existing.VoterName != nil &&
				strings.EqualFold(*existing.VoterName, name) {
				return nil, models.NewConflictError("This name has already been used to vote in this poll")
			}
		}
		vote.VoterName = &name
	case AnonymousVoter:
		// No identity, no duplicate check.
	default:
		return nil, models.NewValidationError("Unknown voter identity")
	}

	if err := s.votes.Create(ctx, vote); err != nil {
		return nil, err
	}
	return vote, nil
}

func containsSlot(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
