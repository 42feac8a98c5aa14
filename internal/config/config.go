package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/dougajmcdonald/mates-rates/pkg/config"
	"github.com/dougajmcdonald/mates-rates/pkg/database"
)

// Config holds all configuration for the marketplace server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"matesrates"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"matesrates_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"matesrates_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis, used for the single-use invite token registry.
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Identity tokens presented by clients on the Authorization header.
	IdentityTokenSecret string `env:"IDENTITY_TOKEN_SECRET,required,notEmpty"`

	// Invite tokens. A separate secret so invite links cannot be replayed as
	// session tokens. Single-use enforcement needs Redis.
	InviteTokenSecret string        `env:"INVITE_TOKEN_SECRET,required,notEmpty"`
	InviteTokenTTL    time.Duration `env:"INVITE_TOKEN_TTL" envDefault:"168h"`
	InviteSingleUse   bool          `env:"INVITE_SINGLE_USE" envDefault:"false"`

	// Payment provider: "stripe" or "mock".
	PaymentProvider     string `env:"PAYMENT_PROVIDER" envDefault:"mock"`
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY" envDefault:""`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET" envDefault:""`
	StripeAPIBaseURL    string `env:"STRIPE_API_BASE_URL" envDefault:"https://api.stripe.com"`

	// Onboarding return URLs embedded in account links.
	OnboardingReturnURL  string `env:"ONBOARDING_RETURN_URL" envDefault:"http://localhost:3000/onboarding/complete"`
	OnboardingRefreshURL string `env:"ONBOARDING_REFRESH_URL" envDefault:"http://localhost:3000/onboarding/refresh"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint   string  `env:"TRACING_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.PaymentProvider == "stripe" && cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required when PAYMENT_PROVIDER=stripe")
	}
	return cfg, nil
}

// Postgres returns the connection pool configuration.
func (c *Config) Postgres() *database.PostgresConfig {
	pg := new(database.PostgresConfig)
	*pg = database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	return pg
}

// Redis returns the Redis client configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
