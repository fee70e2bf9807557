package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Vision provider
	VisionProvider     string `envconfig:"VISION_PROVIDER" default:"google"`
	GoogleVisionAPIKey string `envconfig:"GOOGLE_VISION_API_KEY"`
	GoogleVisionURL    string `envconfig:"GOOGLE_VISION_URL" default:"https://vision.googleapis.com/v1"`
	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Storage
	StorageProvider    string `envconfig:"STORAGE_PROVIDER" default:"supabase"`
	StorageBucket      string `envconfig:"STORAGE_BUCKET" default:"admin"`
	SupabaseURL        string `envconfig:"SUPABASE_URL"`
	SupabaseServiceKey string `envconfig:"SUPABASE_SERVICE_KEY"`
	CloudinaryURL      string `envconfig:"CLOUDINARY_URL"`

	// Email
	ResendAPIKey string `envconfig:"RESEND_API_KEY"`
	ResendURL    string `envconfig:"RESEND_URL" default:"https://api.resend.com"`
	EmailFrom    string `envconfig:"EMAIL_FROM" default:"RetroConnect <noreply@retroconnect.app>"`

	// Events
	NATSURL     string `envconfig:"NATS_URL"`
	NATSSubject string `envconfig:"NATS_SUBJECT" default:"identity.verification.completed"`

	// Security
	AdminJWTSecret string `envconfig:"ADMIN_JWT_SECRET" required:"true"`
	AdminJWTIssuer string `envconfig:"ADMIN_JWT_ISSUER" default:"idverify"`

	// Verification
	VerifyTimeout   time.Duration `envconfig:"VERIFY_TIMEOUT" default:"30s"`
	VerifyRateLimit int           `envconfig:"VERIFY_RATE_LIMIT" default:"20"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// EventsEnabled reports whether verification outcomes are published to NATS.
func (c *Config) EventsEnabled() bool {
	return c.NATSURL != ""
}
