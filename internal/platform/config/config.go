// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into strongly-typed
Go structs, providing early validation and default values. A local '.env' file,
when present, is loaded first so developer machines do not need exported shells.

Usage:

	cfg, err := config.LoadConsole()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (stores, clients) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures both binaries are Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Console Configuration

// Console holds runtime configuration for the operator CLI.
type Console struct {

	// APIBaseURL is the origin of the certificate platform backend, or of an
	// edge proxy fronting it. Relative /api and /auth paths hang off this.
	APIBaseURL string `env:"CERTRIX_API_URL" envDefault:"http://localhost:4000"`

	// StateDir is where the durable session entries live.
	// Empty selects ~/.certrix on the current platform.
	StateDir string `env:"CERTRIX_STATE_DIR"`

	// SessionBackend selects the durable session store: "file" or "redis".
	SessionBackend string `env:"CERTRIX_SESSION_BACKEND" envDefault:"file"`

	// RedisURL is required when SessionBackend is "redis". Shared consoles
	// (bastion hosts) keep operator sessions out of the local filesystem.
	RedisURL string `env:"CERTRIX_REDIS_URL"`

	Debug bool `env:"DEBUG" envDefault:"false"`
}

// # Proxy Configuration

// Proxy holds runtime configuration for the edge reverse-proxy server.
type Proxy struct {

	// Server settings
	ServerPort  string `env:"PORT"        envDefault:"4000"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	// UpstreamURL is the origin all /api and /auth traffic is forwarded to.
	// Deliberately has no default: baking a fallback host into the binary is
	// a deployment trap and is not carried into this codebase.
	UpstreamURL string `env:"UPSTREAM_API_URL,required"`

	// Rate limiting knobs
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"100"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"150"`
}

// # Configuration Loading

// LoadConsole parses environment variables into a [Console] struct.
func LoadConsole() (*Console, error) {
	loadDotEnv()

	cfg := &Console{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.SessionBackend != "file" && cfg.SessionBackend != "redis" {
		return nil, fmt.Errorf("config: CERTRIX_SESSION_BACKEND must be 'file' or 'redis', got %q", cfg.SessionBackend)
	}
	if cfg.SessionBackend == "redis" && cfg.RedisURL == "" {
		return nil, fmt.Errorf("config: CERTRIX_REDIS_URL is required when session backend is redis")
	}
	if _, err := url.Parse(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("config: invalid CERTRIX_API_URL: %w", err)
	}

	return cfg, nil
}

// LoadProxy parses environment variables into a [Proxy] struct.
func LoadProxy() (*Proxy, error) {
	loadDotEnv()

	cfg := &Proxy{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	upstream, err := url.Parse(cfg.UpstreamURL)
	if err != nil || upstream.Scheme == "" || upstream.Host == "" {
		return nil, fmt.Errorf("config: UPSTREAM_API_URL must be an absolute http(s) URL, got %q", cfg.UpstreamURL)
	}
	if upstream.Scheme != "http" && upstream.Scheme != "https" {
		return nil, fmt.Errorf("config: UPSTREAM_API_URL scheme must be http or https, got %q", upstream.Scheme)
	}

	return cfg, nil
}

// loadDotEnv overlays a local .env file if one exists. Absence is not an
// error; production environments inject real variables.
func loadDotEnv() {
	_ = godotenv.Load()
}

// IsDevelopment reports whether the proxy is running in development mode.
func (c *Proxy) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the proxy is running in production mode.
func (c *Proxy) IsProduction() bool {
	return c.Environment == "production"
}
