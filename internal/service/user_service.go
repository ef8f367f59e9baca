package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"slotvote/internal/middleware"
	"slotvote/internal/models"
	"slotvote/internal/repository"
	"slotvote/internal/storage"
)

// UpdateProfileInput carries the patchable profile fields. Nil means leave
// the current value untouched.
type UpdateProfileInput struct {
	FullName  *string
	AvatarURL *string
}

// UserService reads and updates profiles. Avatar upload needs an object
// store, which only the federated deployment wires; a nil store disables it.
type UserService struct {
	users repository.UserRepository
	polls repository.PollRepository
	store storage.ObjectStore
}

// NewUserService returns a new UserService. store may be nil in local mode.
func NewUserService(users repository.UserRepository, polls repository.PollRepository, store storage.ObjectStore) *UserService {
	return &UserService{users: users, polls: polls, store: store}
}

// GetUser returns a profile without the password hash.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListVotedPolls returns the polls the user has voted in, most recent vote first.
func (s *UserService) ListVotedPolls(ctx context.Context, userID string) ([]models.Poll, error) {
	return s.polls.ListVotedByUser(ctx, userID)
}

// UpdateProfile merges the provided fields onto the existing row.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.FullName != nil {
		if len(*in.FullName) > 100 {
			return nil, models.NewValidationError("Full name cannot exceed 100 characters")
		}
		user.FullName = in.FullName
	}
	if in.AvatarURL != nil {
		if u, err := url.Parse(*in.AvatarURL); err != nil || !u.IsAbs() {
			return nil, models.NewValidationError("Avatar URL must be a valid URL")
		}
		user.AvatarURL = in.AvatarURL
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadAvatar replaces the user's avatar object and links the new public
// URL. The previous object is removed best-effort first; its failure is
// logged and never blocks the upload.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, content []byte, contentType, filename string) (*models.User, error) {
	if s.store == nil {
		return nil, models.NewModeDisabledError("Avatar upload is only available in federated mode")
	}
	if len(content) == 0 {
		return nil, models.NewValidationError("Avatar file is required")
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, models.NewValidationError("Avatar must be an image")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.AvatarURL != nil {
		if old := avatarObjectName(userID, *user.AvatarURL); old != "" {
			if err := s.store.Remove(ctx, old); err != nil {
				middleware.Logger.WarnContext(ctx, "failed to remove previous avatar",
					slog.String("user_id", userID),
					slog.String("object", old),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	objectName := fmt.Sprintf("%s/avatar-%d%s", userID, time.Now().UnixMilli(), strings.ToLower(path.Ext(filename)))
	if err := s.store.Put(ctx, objectName, content, contentType); err != nil {
		return nil, models.NewDependencyError("Failed to upload avatar", err)
	}

	publicURL := s.store.PublicURL(objectName)
	user.AvatarURL = &publicURL
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// avatarObjectName recovers the per-user object path from a stored public
// URL. Avatar objects always live directly under the user's prefix.
func avatarObjectName(userID, avatarURL string) string {
	u, err := url.Parse(avatarURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return ""
	}
	return userID + "/" + base
}
