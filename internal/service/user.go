package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dougajmcdonald/mates-rates/internal/domain"
	"github.com/dougajmcdonald/mates-rates/internal/repository"
	apperrors "github.com/dougajmcdonald/mates-rates/pkg/errors"
)

// UserService implements the business logic for member accounts.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// SyncUserInput holds the identity fields synced on sign-in.
type SyncUserInput struct {
	ID        string `json:"id" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name" validate:"required"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// SyncUser upserts the member's profile from the identity provider. Repeat
// sign-ins refresh the profile fields; the payout account survives.
func (s *UserService) SyncUser(ctx context.Context, input *SyncUserInput) (*domain.User, error) {
	if input.ID == "" {
		return nil, apperrors.InvalidInput("id is required")
	}
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	user := &domain.User{
		ID:        input.ID,
		Email:     input.Email,
		Name:      input.Name,
		AvatarURL: input.AvatarURL,
	}

	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("sync user: %w", err)
	}

	s.logger.InfoContext(ctx, "user synced", slog.String("user_id", user.ID))

	return user, nil
}

// GetUser returns a member by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
