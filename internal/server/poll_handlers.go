package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"slotvote/internal/models"
	"slotvote/internal/service"
)

type createPollRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"imageUrl"`
	TimeSlots   []string `json:"timeSlots"`
}

type addVoteRequest struct {
	VoterName         *string  `json:"voterName"`
	SelectedTimeSlots []string `json:"selectedTimeSlots"`
}

// CreatePoll handles POST /api/polls
func (s *Server) CreatePoll(c *fiber.Ctx) error {
	var req createPollRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	poll, err := s.pollService.CreatePoll(c.UserContext(), service.CreatePollInput{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		TimeSlots:   req.TimeSlots,
		OwnerID:     currentUserID(c),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(poll)
}

// GetPolls handles GET /api/polls
func (s *Server) GetPolls(c *fiber.Ctx) error {
	polls, err := s.pollService.ListPolls(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(polls)
}

// GetPoll handles GET /api/polls/:id
func (s *Server) GetPoll(c *fiber.Ctx) error {
	poll, err := s.pollService.GetPoll(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(poll)
}

// AddVote handles POST /api/polls/:id/votes. Authenticated callers vote
// under their user id; everyone else votes under the submitted name, or
// anonymously when no name is given.
func (s *Server) AddVote(c *fiber.Ctx) error {
	var req addVoteRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var voter service.Voter = service.AnonymousVoter{}
	if uid := currentUserID(c); uid != "" {
		voter = service.AuthenticatedVoter{UserID: uid}
	} else if req.VoterName != nil && strings.TrimSpace(*req.VoterName) != "" {
		voter = service.NamedVoter{Name: *req.VoterName}
	}

	vote, err := s.pollService.AdmitVote(c.UserContext(), c.Params("id"), voter, req.SelectedTimeSlots)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(vote)
}
