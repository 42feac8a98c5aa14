// Package provider abstracts the payment processor behind an interface so
// the settlement service can run against a mock in development and tests.
package provider

import "context"

// PaymentIntentInput holds the parameters for a destination charge: the buyer
// pays the full amount, the platform keeps FeeAmount, and the remainder is
// transferred to the seller's connected account.
type PaymentIntentInput struct {
	Amount      int64
	Currency    string
	FeeAmount   int64
	Destination string
	Metadata    map[string]string
}

// PaymentIntentResult holds the created intent. ClientSecret is handed to the
// buyer's client to confirm the payment.
type PaymentIntentResult struct {
	IntentID     string
	ClientSecret string
}

// AccountLinkInput holds the parameters for a hosted onboarding link.
type AccountLinkInput struct {
	AccountID  string
	ReturnURL  string
	RefreshURL string
}

// Provider defines the payment processor integration surface.
type Provider interface {
	// Name returns the provider name (e.g., "mock", "stripe").
	Name() string

	// CreateAccount creates a connected payout account for a seller and
	// returns its ID.
	CreateAccount(ctx context.Context, email string) (string, error)

	// CreateAccountLink returns a hosted onboarding URL for the account.
	CreateAccountLink(ctx context.Context, input *AccountLinkInput) (string, error)

	// CreatePaymentIntent creates a destination charge.
	CreatePaymentIntent(ctx context.Context, input *PaymentIntentInput) (*PaymentIntentResult, error)
}
