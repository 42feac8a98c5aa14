// Package stripe implements the payment provider against the Stripe REST
// API. Requests go through the shared retrying HTTP client wrapped in a
// circuit breaker, so a Stripe outage fails fast instead of stacking up
// in-flight settlements.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dougajmcdonald/mates-rates/internal/provider"
	apperrors "github.com/dougajmcdonald/mates-rates/pkg/errors"
	"github.com/dougajmcdonald/mates-rates/pkg/httpclient"
)

// Config holds Stripe client configuration.
type Config struct {
	SecretKey string
	BaseURL   string
}

// Provider implements provider.Provider against the Stripe API.
type Provider struct {
	cfg    Config
	client *httpclient.CircuitBreakerClient
	logger *slog.Logger
}

// NewProvider creates a Stripe-backed payment provider.
func NewProvider(cfg Config, logger *slog.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.stripe.com"
	}

	base := httpclient.New(httpclient.DefaultConfig())
	cb := httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("stripe"), logger)

	return &Provider{cfg: cfg, client: cb, logger: logger}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stripe"
}

type accountResponse struct {
	ID string `json:"id"`
}

type accountLinkResponse struct {
	URL string `json:"url"`
}

type paymentIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateAccount creates an Express connected account for a seller.
func (p *Provider) CreateAccount(ctx context.Context, email string) (string, error) {
	form := url.Values{}
	form.Set("type", "express")
	form.Set("email", email)
	form.Set("capabilities[transfers][requested]", "true")

	var resp accountResponse
	if err := p.post(ctx, "/v1/accounts", form, &resp); err != nil {
		return "", err
	}

	return resp.ID, nil
}

// CreateAccountLink returns a hosted onboarding URL for the account.
func (p *Provider) CreateAccountLink(ctx context.Context, input *provider.AccountLinkInput) (string, error) {
	form := url.Values{}
	form.Set("account", input.AccountID)
	form.Set("return_url", input.ReturnURL)
	form.Set("refresh_url", input.RefreshURL)
	form.Set("type", "account_onboarding")

	var resp accountLinkResponse
	if err := p.post(ctx, "/v1/account_links", form, &resp); err != nil {
		return "", err
	}

	return resp.URL, nil
}

// CreatePaymentIntent creates a destination charge: the platform fee stays
// with the marketplace and the remainder transfers to the seller's account.
func (p *Provider) CreatePaymentIntent(ctx context.Context, input *provider.PaymentIntentInput) (*provider.PaymentIntentResult, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(input.Amount, 10))
	form.Set("currency", input.Currency)
	form.Set("application_fee_amount", strconv.FormatInt(input.FeeAmount, 10))
	form.Set("transfer_data[destination]", input.Destination)
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range input.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var resp paymentIntentResponse
	if err := p.post(ctx, "/v1/payment_intents", form, &resp); err != nil {
		return nil, err
	}

	return &provider.PaymentIntentResult{
		IntentID:     resp.ID,
		ClientSecret: resp.ClientSecret,
	}, nil
}

// post sends a form-encoded request and decodes the JSON response into out.
func (p *Provider) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create stripe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		p.logger.ErrorContext(ctx, "stripe request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return apperrors.ProviderUnavailable("payment processor unavailable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read stripe response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var stripeErr errorResponse
		if json.Unmarshal(body, &stripeErr) == nil && stripeErr.Error.Message != "" {
			return apperrors.InvalidInput(fmt.Sprintf("stripe: %s", stripeErr.Error.Message))
		}
		return apperrors.InvalidInput(fmt.Sprintf("stripe: request failed with status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode stripe response: %w", err)
	}

	return nil
}
