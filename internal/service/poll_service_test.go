package service

import (
	"context"
	"strings"
	"testing"

	"slotvote/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedPoll(votes ...models.Vote) *models.Poll {
	return &models.Poll{
		ID:        "poll-1",
		Title:     "Team offsite",
		TimeSlots: []string{"2026-09-01T10:00", "2026-09-01T14:00", "2026-09-02T10:00"},
		UserID:    "owner-1",
		Votes:     votes,
	}
}

func pollServiceFor(poll *models.Poll, onCreate func(*models.Vote) error) *PollService {
	polls := &pollRepoStub{
		getByIDWithVotesFn: func(_ context.Context, id string) (*models.Poll, error) {
			if poll == nil || id != poll.ID {
				return nil, models.NewNotFoundError("Poll", id)
			}
			return poll, nil
		},
	}
	votes := &voteRepoStub{
		createFn: func(_ context.Context, v *models.Vote) error {
			if onCreate != nil {
				return onCreate(v)
			}
			return nil
		},
	}
	return NewPollService(polls, votes)
}

func TestPollService_CreatePoll(t *testing.T) {
	t.Parallel()

	valid := CreatePollInput{
		Title:     "Team offsite",
		TimeSlots: []string{"2026-09-01T10:00"},
		OwnerID:   "owner-1",
	}

	t.Run("persists a valid poll", func(t *testing.T) {
		t.Parallel()
		var created *models.Poll
		polls := &pollRepoStub{
			createFn: func(_ context.Context, p *models.Poll) error {
				created = p
				return nil
			},
		}
		svc := NewPollService(polls, &voteRepoStub{})

		poll, err := svc.CreatePoll(context.Background(), valid)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.NotEmpty(t, poll.ID)
		assert.Equal(t, "owner-1", poll.UserID)
		assert.Equal(t, valid.TimeSlots, poll.TimeSlots)
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()
		svc := NewPollService(&pollRepoStub{}, &voteRepoStub{})

		cases := []struct {
			name string
			mut  func(*CreatePollInput)
		}{
			{"title too short", func(in *CreatePollInput) { in.Title = "ab" }},
			{"title too long", func(in *CreatePollInput) { in.Title = strings.Repeat("x", 101) }},
			{"description too long", func(in *CreatePollInput) { in.Description = strPtr(strings.Repeat("x", 501)) }},
			{"relative image url", func(in *CreatePollInput) { in.ImageURL = strPtr("/img.png") }},
			{"no time slots", func(in *CreatePollInput) { in.TimeSlots = nil }},
			{"too many time slots", func(in *CreatePollInput) {
				in.TimeSlots = make([]string, maxPollTimeSlots+1)
				for i := range in.TimeSlots {
					in.TimeSlots[i] = "slot"
				}
			}},
			{"blank time slot", func(in *CreatePollInput) { in.TimeSlots = []string{"2026-09-01T10:00", "  "} }},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				in := valid
				tc.mut(&in)
				_, err := svc.CreatePoll(context.Background(), in)
				assert.Equal(t, models.CodeValidation, appCode(t, err))
			})
		}
	})
}

func TestPollService_AdmitVote(t *testing.T) {
	t.Parallel()

	t.Run("authenticated vote is admitted", func(t *testing.T) {
		t.Parallel()
		var committed *models.Vote
		svc := pollServiceFor(fixedPoll(), func(v *models.Vote) error {
			committed = v
			return nil
		})

		vote, err := svc.AdmitVote(context.Background(), "poll-1",
			AuthenticatedVoter{UserID: "u1"}, []string{"2026-09-01T10:00"})
		require.NoError(t, err)
		require.NotNil(t, committed)
		require.NotNil(t, vote.UserID)
		assert.Equal(t, "u1", *vote.UserID)
		assert.Nil(t, vote.VoterName)
	})

	t.Run("unknown poll", func(t *testing.T) {
		t.Parallel()
		svc := pollServiceFor(nil, nil)
		_, err := svc.AdmitVote(context.Background(), "missing",
			AnonymousVoter{}, []string{"2026-09-01T10:00"})
		assert.Equal(t, models.CodeNotFound, appCode(t, err))
	})

	t.Run("empty selection", func(t *testing.T) {
		t.Parallel()
		svc := pollServiceFor(fixedPoll(), nil)
		_, err := svc.AdmitVote(context.Background(), "poll-1", AnonymousVoter{}, nil)
		assert.Equal(t, models.CodeValidation, appCode(t, err))
	})

	t.Run("slot not on the poll is not found", func(t *testing.T) {
		t.Parallel()
		svc := pollServiceFor(fixedPoll(), func(*models.Vote) error {
			t.Fatal("vote must not be committed")
			return nil
		})

		_, err := svc.AdmitVote(context.Background(), "poll-1",
			NamedVoter{Name: "Carl"}, []string{"2026-09-01T10:00", "2026-12-31T09:00"})
		assert.Equal(t, models.CodeNotFound, appCode(t, err))
		assert.Contains(t, err.Error(), "2026-12-31T09:00")
	})

	t.Run("authenticated duplicate is a conflict", func(t *testing.T) {
		t.Parallel()
		existing := models.Vote{ID: "v1", PollID: "poll-1", UserID: strPtr("u1")}
		svc := pollServiceFor(fixedPoll(existing), func(*models.Vote) error {
			t.Fatal("vote must not be committed")
			return nil
		})

		_, err := svc.AdmitVote(context.Background(), "poll-1",
			AuthenticatedVoter{UserID: "u1"}, []string{"2026-09-01T10:00"})
		assert.Equal(t, models.CodeConflict, appCode(t, err))
	})

	t.Run("same user id in a different poll row does not collide", func(t *testing.T) {
		t.Parallel()
		existing := models.Vote{ID: "v1", PollID: "poll-1", UserID: strPtr("u2")}
		svc := pollServiceFor(fixedPoll(existing), nil)

		_, err := svc.AdmitVote(context.Background(), "poll-1",
			AuthenticatedVoter{UserID: "u1"}, []string{"2026-09-01T10:00"})
		assert.NoError(t, err)
	})

	t.Run("named duplicate is case-insensitive", func(t *testing.T) {
		t.Parallel()
		existing := models.Vote{ID: "v1", PollID: "poll-1", VoterName: strPtr("Bob")}
		svc := pollServiceFor(fixedPoll(existing), func(*models.Vote) error {
			t.Fatal("vote must not be committed")
			return nil
		})

		_, err := svc.AdmitVote(context.Background(), "poll-1",
			NamedVoter{Name: "bob"}, []string{"2026-09-01T10:00"})
		assert.Equal(t, models.CodeConflict, appCode(t, err))
	})

	t.Run("named vote does not collide with an authenticated vote", func(t *testing.T) {
		t.Parallel()
		// A user row with a display name set does not reserve that name for
		// the anonymous namespace.
		existing := models.Vote{ID: "v1", PollID: "poll-1", UserID: strPtr("u1"), VoterName: strPtr("Bob")}
		svc := pollServiceFor(fixedPoll(existing), nil)

		_, err := svc.AdmitVote(context.Background(), "poll-1",
			NamedVoter{Name: "Bob"}, []string{"2026-09-01T10:00"})
		assert.NoError(t, err)
	})

	t.Run("named voter name length", func(t *testing.T) {
		t.Parallel()
		svc := pollServiceFor(fixedPoll(), nil)

		_, err := svc.AdmitVote(context.Background(), "poll-1",
			NamedVoter{Name: "x"}, []string{"2026-09-01T10:00"})
		assert.Equal(t, models.CodeValidation, appCode(t, err))

		_, err = svc.AdmitVote(context.Background(), "poll-1",
			NamedVoter{Name: strings.Repeat("x", 51)}, []string{"2026-09-01T10:00"})
		assert.Equal(t, models.CodeValidation, appCode(t, err))
	})

	t.Run("anonymous votes are admitted without a duplicate check", func(t *testing.T) {
		t.Parallel()
		existing := models.Vote{ID: "v1", PollID: "poll-1"}
		var committed *models.Vote
		svc := pollServiceFor(fixedPoll(existing), func(v *models.Vote) error {
			committed = v
			return nil
		})

		vote, err := svc.AdmitVote(context.Background(), "poll-1",
			AnonymousVoter{}, []string{"2026-09-02T10:00"})
		require.NoError(t, err)
		require.NotNil(t, committed)
		assert.Nil(t, vote.UserID)
		assert.Nil(t, vote.VoterName)
	})

	t.Run("insert conflict from a concurrent admission propagates", func(t *testing.T) {
		t.Parallel()
		svc := pollServiceFor(fixedPoll(), func(*models.Vote) error {
			return models.NewConflictError("User has already voted in this poll")
		})

		_, err := svc.AdmitVote(context.Background(), "poll-1",
			AuthenticatedVoter{UserID: "u1"}, []string{"2026-09-01T10:00"})
		assert.Equal(t, models.CodeConflict, appCode(t, err))
	})
}
