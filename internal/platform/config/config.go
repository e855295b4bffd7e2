// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A '.env.local' or
'.env' file is loaded first when present, so local runs do not need exported
variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, catalog) via constructors.
  - Deferred credentials: ANNICT_TOKEN and the JWT key paths are optional at load
    time; components built without them answer with a configuration error
    instead of refusing to boot.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the Anirate API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL) holding ratings and identities
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath replaces the migrations embedded in the binary with a directory on disk.
	MigrationPath string `env:"MIGRATION_PATH"`

	// Key-Value store (Redis) for one-time login links
	RedisURL string `env:"REDIS_URL,required"`

	// Catalog Source (Annict REST API)
	AnnictToken   string        `env:"ANNICT_TOKEN"`
	AnnictBaseURL string        `env:"ANNICT_BASE_URL" envDefault:"https://api.annict.com"`
	AnnictTimeout time.Duration `env:"ANNICT_TIMEOUT"  envDefault:"15s"`

	// Cryptographic keys for access token signing
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH"`

	// Passwordless login
	LoginRedirectURL string   `env:"LOGIN_REDIRECT_URL" envDefault:"http://localhost:5173/login"`
	AdminEmails      []string `env:"ADMIN_EMAILS"       envSeparator:","`

	// Outgoing mail for login links. An empty host logs links instead of sending them.
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"     envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"     envDefault:"no-reply@anirate.app"`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// dotenvFiles are read in order; godotenv never overrides a variable that is already set.
var dotenvFiles = []string{".env.local", ".env"}

// Load reads optional dotenv files, then parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Variables already present in the environment always win over dotenv files.
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to read %s: %w", file, err)
		}
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasCatalogCredentials reports whether the Annict access token is set.
func (c *Config) HasCatalogCredentials() bool {
	return c.AnnictToken != ""
}

// HasMailer reports whether an SMTP relay is configured.
func (c *Config) HasMailer() bool {
	return c.SMTPHost != ""
}

// HasIdentityKeys reports whether both JWT key paths are set.
func (c *Config) HasIdentityKeys() bool {
	return c.JWTPrivKeyPath != "" && c.JWTPubKeyPath != ""
}
