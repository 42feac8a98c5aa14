package mock

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dougajmcdonald/mates-rates/internal/provider"
)

// Provider is a mock payment provider that always succeeds. It is intended
// for development and testing purposes.
type Provider struct{}

// NewProvider creates a new mock payment provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mock"
}

// CreateAccount simulates creating a connected payout account.
func (p *Provider) CreateAccount(_ context.Context, _ string) (string, error) {
	return "mock_acct_" + strings.ReplaceAll(uuid.New().String(), "-", ""), nil
}

// CreateAccountLink simulates a hosted onboarding URL.
func (p *Provider) CreateAccountLink(_ context.Context, input *provider.AccountLinkInput) (string, error) {
	return "https://mock.onboarding.local/" + input.AccountID, nil
}

// CreatePaymentIntent simulates a destination charge that always succeeds.
func (p *Provider) CreatePaymentIntent(_ context.Context, _ *provider.PaymentIntentInput) (*provider.PaymentIntentResult, error) {
	id := "mock_pi_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	return &provider.PaymentIntentResult{
		IntentID:     id,
		ClientSecret: id + "_secret_" + uuid.New().String(),
	}, nil
}
