// Package seed populates a development database with demo users, polls and votes.
package seed

import (
	"context"
	"fmt"
	"time"

	"slotvote/internal/models"
	"slotvote/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Options controls how much demo data is generated.
type Options struct {
	Users        int
	PollsPerUser int
	VotesPerPoll int
	Password     string
}

// DefaultOptions returns a small but representative data set.
func DefaultOptions() Options {
	return Options{
		Users:        5,
		PollsPerUser: 2,
		VotesPerPoll: 4,
		Password:     "password123",
	}
}

// Run inserts demo data through the repositories so the same validation and
// uniqueness rules apply as in production traffic.
func Run(ctx context.Context, users repository.UserRepository, polls repository.PollRepository, votes repository.VoteRepository, opts Options) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hashStr := string(hash)

	for i := 0; i < opts.Users; i++ {
		fullName := gofakeit.Name()
		user := &models.User{
			ID:       uuid.NewString(),
			Email:    fmt.Sprintf("%d-%s", i, gofakeit.Email()),
			Password: &hashStr,
			FullName: &fullName,
		}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("seed user: %w", err)
		}

		for j := 0; j < opts.PollsPerUser; j++ {
			poll := &models.Poll{
				ID:        uuid.NewString(),
				Title:     gofakeit.Sentence(3),
				TimeSlots: demoTimeSlots(3 + gofakeit.Number(0, 4)),
				UserID:    user.ID,
			}
			if desc := gofakeit.Sentence(10); gofakeit.Bool() {
				poll.Description = &desc
			}
			if err := polls.Create(ctx, poll); err != nil {
				return fmt.Errorf("seed poll: %w", err)
			}

			for k := 0; k < opts.VotesPerPoll; k++ {
				name := gofakeit.FirstName() + fmt.Sprintf(" %d", k)
				vote := &models.Vote{
					ID:                uuid.NewString(),
					PollID:            poll.ID,
					VoterName:         &name,
					SelectedTimeSlots: poll.TimeSlots[:1+gofakeit.Number(0, len(poll.TimeSlots)-1)],
				}
				if err := votes.Create(ctx, vote); err != nil {
					return fmt.Errorf("seed vote: %w", err)
				}
			}
		}
	}
	return nil
}

func demoTimeSlots(n int) []string {
	base := time.Now().Truncate(time.Hour).Add(24 * time.Hour)
	slots := make([]string, 0, n)
	for i := 0; i < n; i++ {
		slots = append(slots, base.Add(time.Duration(i)*time.Hour).Format("2006-01-02T15:04"))
	}
	return slots
}
