package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dougajmcdonald/mates-rates/internal/domain"
	"github.com/dougajmcdonald/mates-rates/internal/event"
	"github.com/dougajmcdonald/mates-rates/internal/provider"
	"github.com/dougajmcdonald/mates-rates/internal/repository"
	apperrors "github.com/dougajmcdonald/mates-rates/pkg/errors"
)

// Stable error codes for settlement preconditions, matched on by clients.
const (
	CodeSellerNotOnboarded = "SELLER_NOT_ONBOARDED"
	CodeOfferNotAccepted   = "OFFER_NOT_ACCEPTED"
)

// PaymentService implements the business logic for settlement: seller
// onboarding, payment initialization, and confirmation.
type PaymentService struct {
	offers   repository.OfferRepository
	users    repository.UserRepository
	provider provider.Provider
	producer *event.Producer
	logger   *slog.Logger

	returnURL  string
	refreshURL string
}

// NewPaymentService creates a new settlement service.
func NewPaymentService(
	offers repository.OfferRepository,
	users repository.UserRepository,
	prov provider.Provider,
	producer *event.Producer,
	logger *slog.Logger,
	returnURL, refreshURL string,
) *PaymentService {
	return &PaymentService{
		offers:     offers,
		users:      users,
		provider:   prov,
		producer:   producer,
		logger:     logger,
		returnURL:  returnURL,
		refreshURL: refreshURL,
	}
}

// EnsureConnectedAccount returns the user's payout account ID, creating one
// with the provider on first call. Safe to call repeatedly.
func (s *PaymentService) EnsureConnectedAccount(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get user for onboarding: %w", err)
	}

	if user.IsOnboarded() {
		return user.PayoutAccountID, nil
	}

	accountID, err := s.provider.CreateAccount(ctx, user.Email)
	if err != nil {
		return "", fmt.Errorf("create payout account: %w", err)
	}

	if err := s.users.SetPayoutAccount(ctx, userID, accountID); err != nil {
		return "", fmt.Errorf("store payout account: %w", err)
	}

	s.logger.InfoContext(ctx, "payout account created",
		slog.String("user_id", userID),
		slog.String("account_id", accountID),
	)

	return accountID, nil
}

// CreateOnboardingLink ensures the user has a payout account and returns a
// hosted onboarding URL for it.
func (s *PaymentService) CreateOnboardingLink(ctx context.Context, userID string) (string, error) {
	accountID, err := s.EnsureConnectedAccount(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.provider.CreateAccountLink(ctx, &provider.AccountLinkInput{
		AccountID:  accountID,
		ReturnURL:  s.returnURL,
		RefreshURL: s.refreshURL,
	})
	if err != nil {
		return "", fmt.Errorf("create onboarding link: %w", err)
	}

	return url, nil
}

// PaymentIntent is the result of initializing a settlement.
type PaymentIntent struct {
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	FeeAmount    int64  `json:"fee_amount"`
}

// InitializePayment creates a destination charge for an accepted offer.
// Preconditions are checked in a fixed order: the offer must exist, the
// seller must be onboarded, and the offer must be accepted. The buyer pays
// the offer amount; the marketplace keeps a 1% fee and the remainder
// transfers to the seller.
func (s *PaymentService) InitializePayment(ctx context.Context, buyerID, offerID string) (*PaymentIntent, error) {
	settlement, err := s.offers.GetForSettlement(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("get offer for settlement: %w", err)
	}

	if settlement.SellerPayoutAccountID == "" {
		return nil, apperrors.InvalidState(CodeSellerNotOnboarded, "seller has not finished payout onboarding")
	}

	if settlement.Status != domain.OfferStatusAccepted {
		return nil, apperrors.InvalidState(CodeOfferNotAccepted,
			fmt.Sprintf("offer must be accepted before payment, currently %q", settlement.Status))
	}

	if settlement.BuyerID != buyerID {
		return nil, apperrors.Forbidden("only the buyer can pay for an offer")
	}

	fee := domain.PlatformFee(settlement.Amount)

	result, err := s.provider.CreatePaymentIntent(ctx, &provider.PaymentIntentInput{
		Amount:      settlement.Amount,
		Currency:    "gbp",
		FeeAmount:   fee,
		Destination: settlement.SellerPayoutAccountID,
		Metadata: map[string]string{
			"offer_id":   settlement.ID,
			"listing_id": settlement.ListingID,
			"buyer_id":   settlement.BuyerID,
			"seller_id":  settlement.SellerID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	if err := s.offers.SetPaymentIntent(ctx, settlement.ID, result.IntentID); err != nil {
		return nil, fmt.Errorf("record payment intent: %w", err)
	}

	s.logger.InfoContext(ctx, "payment initialized",
		slog.String("offer_id", settlement.ID),
		slog.Int64("amount", settlement.Amount),
		slog.Int64("fee", fee),
	)

	return &PaymentIntent{
		ClientSecret: result.ClientSecret,
		Amount:       settlement.Amount,
		FeeAmount:    fee,
	}, nil
}

// ConfirmPayment marks the offer behind a succeeded payment intent as paid.
// Driven by the provider's webhook, so it is idempotent: replayed
// notifications find the offer already paid and do nothing.
func (s *PaymentService) ConfirmPayment(ctx context.Context, intentID string) error {
	offer, err := s.offers.GetByPaymentIntent(ctx, intentID)
	if err != nil {
		return fmt.Errorf("resolve payment intent: %w", err)
	}

	updated, err := s.offers.UpdateStatusFrom(ctx, offer.ID, domain.OfferStatusAccepted, domain.OfferStatusPaid)
	if err != nil {
		return fmt.Errorf("confirm payment: %w", err)
	}
	if !updated {
		s.logger.InfoContext(ctx, "payment confirmation replayed, offer already settled",
			slog.String("offer_id", offer.ID),
			slog.String("status", offer.Status),
		)
		return nil
	}

	offer.Status = domain.OfferStatusPaid

	s.logger.InfoContext(ctx, "payment confirmed",
		slog.String("offer_id", offer.ID),
		slog.String("payment_intent_id", intentID),
	)

	if err := s.producer.PublishOfferPaid(ctx, offer, ""); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish offer.paid event", slog.String("error", err.Error()))
	}

	return nil
}
