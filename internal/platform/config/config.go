// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct. A '.env' file in the working directory is loaded first (if present)
through 'joho/godotenv'; real environment variables always win.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, mailer) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers for the credential store.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the StudentHub API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`
	TrustProxy  bool   `env:"TRUST_PROXY"  envDefault:"false"`

	// StorageDriver selects the credential store: "postgres" or "memory".
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	// Relational Database (PostgreSQL)
	DatabaseURL   string `env:"DATABASE_URL"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Access and refresh token policy
	JWTSecret          string        `env:"JWT_SECRET,required"`
	JWTIssuer          string        `env:"JWT_ISSUER"            envDefault:"studenthub.api"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL"      envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL"     envDefault:"168h"`
	RefreshTokenCap    int           `env:"REFRESH_TOKEN_CAP"     envDefault:"5"`
	ResetCodeTTL       time.Duration `env:"RESET_CODE_TTL"        envDefault:"10m"`
	LoginLookupTimeout time.Duration `env:"LOGIN_LOOKUP_TIMEOUT"  envDefault:"5s"`
	BcryptCost         int           `env:"BCRYPT_COST"           envDefault:"12"`

	// Cross-Origin Resource Sharing
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`

	// Outbound email (reset codes). Empty host logs mail instead of sending.
	SMTP SMTPConfig `envPrefix:"SMTP_"`

	// Object Storage (S3-compatible) for profile pictures
	S3 S3Config `envPrefix:"S3_"`

	// Discord invite proxy
	DiscordBotToken   string `env:"DISCORD_BOT_TOKEN"`
	DiscordChannelID  string `env:"DISCORD_CHANNEL_ID"`
	DiscordAPIBaseURL string `env:"DISCORD_API_BASE_URL" envDefault:"https://discord.com/api/v10"`

	// NewsletterAdminToken guards the subscriber list endpoint.
	NewsletterAdminToken string `env:"NEWSLETTER_ADMIN_TOKEN"`

	// Delegated identity provider (optional)
	IdentityProvider IdentityProviderConfig `envPrefix:"IDP_"`
}

// SMTPConfig holds outbound mail settings.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"     envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"     envDefault:"StudentHub <no-reply@studenthub.local>"`
}

// S3Config holds object storage settings.
type S3Config struct {
	Bucket          string `env:"BUCKET"`
	Region          string `env:"REGION"            envDefault:"us-east-1"`
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
}

// IdentityProviderConfig holds the OAuth2/OIDC client for social login.
type IdentityProviderConfig struct {
	IssuerURL    string `env:"ISSUER_URL"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

// Enabled reports whether social login is configured.
func (c IdentityProviderConfig) Enabled() bool {
	return c.IssuerURL != "" && c.ClientID != "" && c.ClientSecret != ""
}

// Enabled reports whether SMTP delivery is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// Enabled reports whether object storage is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// # Configuration Loading

// Load reads an optional .env file, then parses environment variables into a [Config].
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	return Parse()
}

// Parse maps the current environment into a [Config] without touching .env files.
func Parse() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces rules that span several fields.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
	case StorageMemory:
		if c.IsProduction() {
			return errors.New("config: STORAGE_DRIVER=memory is not allowed in production")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if len(c.JWTSecret) < 32 {
		return errors.New("config: JWT_SECRET must be at least 32 characters")
	}

	if c.RefreshTokenCap < 1 {
		return errors.New("config: REFRESH_TOKEN_CAP must be positive")
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 || c.ResetCodeTTL <= 0 || c.LoginLookupTimeout <= 0 {
		return errors.New("config: token lifetimes and timeouts must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the CORS allow-list.
func (c *Config) AllowedOrigins() []string {
	return c.CORSOrigins
}
