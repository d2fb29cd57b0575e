package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTSecret          string `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenMinutes int    `envconfig:"ACCESS_TOKEN_TTL_MINUTES" default:"60"`
	RefreshTokenDays   int    `envconfig:"REFRESH_TOKEN_TTL_DAYS" default:"7"`
	VerifyEmailDays    int    `envconfig:"VERIFY_EMAIL_TOKEN_TTL_DAYS" default:"2"`
	ResetTokenMinutes  int    `envconfig:"RESET_TOKEN_TTL_MINUTES" default:"15"`
	TempCodeMinutes    int    `envconfig:"TEMP_CODE_TTL_MINUTES" default:"15"`

	CacheEntries int `envconfig:"CACHE_ENTRIES" default:"1000"`
	CacheMinutes int `envconfig:"CACHE_TTL_MINUTES" default:"20"`

	RateLimitEnabled bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`

	CORSOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"465"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	MailFrom     string `envconfig:"MAIL_FROM" default:"noreply@contactbook.local"`

	CloudinaryCloud  string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryKey    string `envconfig:"CLOUDINARY_API_KEY"`
	CloudinarySecret string `envconfig:"CLOUDINARY_API_SECRET"`
}

// Load reads configuration from the environment and validates required keys.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

func (c Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenDays) * 24 * time.Hour
}

func (c Config) VerifyEmailTTL() time.Duration {
	return time.Duration(c.VerifyEmailDays) * 24 * time.Hour
}

func (c Config) ResetTokenTTL() time.Duration {
	return time.Duration(c.ResetTokenMinutes) * time.Minute
}

func (c Config) TempCodeTTL() time.Duration {
	return time.Duration(c.TempCodeMinutes) * time.Minute
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheMinutes) * time.Minute
}
