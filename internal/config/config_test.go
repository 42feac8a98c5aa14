package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("IDENTITY_TOKEN_SECRET", "identity-secret")
	t.Setenv("INVITE_TOKEN_SECRET", "invite-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "mock", cfg.PaymentProvider)
	assert.Equal(t, 168*time.Hour, cfg.InviteTokenTTL)
	assert.False(t, cfg.InviteSingleUse)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "matesrates_db", cfg.Postgres().DBName)
}

func TestLoad_MissingInviteSecret(t *testing.T) {
	t.Setenv("IDENTITY_TOKEN_SECRET", "identity-secret")
	t.Setenv("INVITE_TOKEN_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_StripeRequiresKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAYMENT_PROVIDER", "stripe")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "stripe", cfg.PaymentProvider)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("INVITE_SINGLE_USE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://mates-rates.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.InviteSingleUse)
	assert.Equal(t, []string{"https://mates-rates.example"}, cfg.CORSAllowedOrigins)
}
