package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dougajmcdonald/mates-rates/internal/domain"
	"github.com/dougajmcdonald/mates-rates/internal/event"
	"github.com/dougajmcdonald/mates-rates/internal/invite"
	"github.com/dougajmcdonald/mates-rates/internal/repository"
	apperrors "github.com/dougajmcdonald/mates-rates/pkg/errors"
)

// Stable error codes for invite redemption, matched on by clients.
const (
	CodeInvalidInviteToken = "INVALID_INVITE_TOKEN"
	CodeSelfInvite         = "SELF_INVITE"
)

// SocialService implements the business logic for the mates graph and the
// invite flow that grows it.
type SocialService struct {
	graph    repository.SocialGraphRepository
	tokens   *invite.Tokens
	registry invite.Registry // nil unless single-use invites are on
	producer *event.Producer
	logger   *slog.Logger
}

// NewSocialService creates a new social graph service. Pass a nil registry
// to allow an invite link to be redeemed by multiple people within its
// lifetime.
func NewSocialService(
	graph repository.SocialGraphRepository,
	tokens *invite.Tokens,
	registry invite.Registry,
	producer *event.Producer,
	logger *slog.Logger,
) *SocialService {
	return &SocialService{
		graph:    graph,
		tokens:   tokens,
		registry: registry,
		producer: producer,
		logger:   logger,
	}
}

// CreateInvite issues a signed invite token for the user to share.
func (s *SocialService) CreateInvite(ctx context.Context, inviterID string) (string, error) {
	token, err := s.tokens.Issue(inviterID)
	if err != nil {
		return "", fmt.Errorf("create invite: %w", err)
	}

	s.logger.InfoContext(ctx, "invite created", slog.String("inviter_id", inviterID))

	return token, nil
}

// RedeemInvite verifies the token and connects the redeemer with the
// inviter. Redeeming an invite from an existing mate is a quiet no-op, and
// the event only fires for genuinely new connections.
func (s *SocialService) RedeemInvite(ctx context.Context, redeemerID, token string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.WarnContext(ctx, "invite verification failed", slog.String("error", err.Error()))
		return apperrors.InvalidState(CodeInvalidInviteToken, "invite link is invalid or has expired")
	}

	if claims.InviterID == redeemerID {
		return apperrors.InvalidState(CodeSelfInvite, "you cannot redeem your own invite")
	}

	if s.registry != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		first, err := s.registry.MarkUsed(ctx, claims.ID, ttl)
		if err != nil {
			return fmt.Errorf("check invite use: %w", err)
		}
		if !first {
			return apperrors.InvalidState(CodeInvalidInviteToken, "invite link is invalid or has expired")
		}
	}

	created, err := s.graph.CreateMateship(ctx, claims.InviterID, redeemerID)
	if err != nil {
		return fmt.Errorf("redeem invite: %w", err)
	}

	if created {
		s.logger.InfoContext(ctx, "mateship created",
			slog.String("inviter_id", claims.InviterID),
			slog.String("redeemer_id", redeemerID),
		)
		if err := s.producer.PublishMateshipCreated(ctx, claims.InviterID, redeemerID); err != nil {
			// The connection is durable; event delivery is best effort.
			s.logger.ErrorContext(ctx, "failed to publish mateship event", slog.String("error", err.Error()))
		}
	}

	return nil
}

// ListMates returns the user's mates with their active listing counts.
func (s *SocialService) ListMates(ctx context.Context, userID string) ([]domain.MateSummary, error) {
	mates, err := s.graph.ListMates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list mates: %w", err)
	}
	return mates, nil
}

// AreMates reports whether two users are connected.
func (s *SocialService) AreMates(ctx context.Context, userID, otherID string) (bool, error) {
	return s.graph.AreMates(ctx, userID, otherID)
}
