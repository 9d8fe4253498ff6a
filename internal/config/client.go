package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

// ClientConfig configures the report client that follows the current
// period report through the REST API.
type ClientConfig struct {
	API      ClientAPIConfig `yaml:"api"`
	Identity IdentityConfig  `yaml:"identity"`
	Breaker  BreakerConfig   `yaml:"breaker"`
	Log      LogConfig       `yaml:"log"`

	CacheDir string `yaml:"cache_dir" env:"CLIENT_CACHE_DIR" env-default:"./.reportcache"`
	Kind     string `yaml:"kind"      env:"CLIENT_KIND"      env-default:"week"`
	Timezone string `yaml:"timezone"  env:"CLIENT_TIMEZONE"  env-default:"UTC"`

	// PeriodKind and Location are parsed during validation.
	PeriodKind domain.PeriodKind `yaml:"-" env:"-"`
	Location   *time.Location    `yaml:"-" env:"-"`
}

// ClientAPIConfig locates the REST API.
type ClientAPIConfig struct {
	BaseURL string        `yaml:"base_url" env:"CLIENT_API_BASE_URL" env-default:"http://localhost:8080"`
	Timeout time.Duration `yaml:"timeout"  env:"CLIENT_API_TIMEOUT"  env-default:"10s"`
}

// IdentityConfig bounds identity polling and names the fallbacks.
type IdentityConfig struct {
	TokenPath string        `yaml:"token_path" env:"CLIENT_TOKEN_PATH"        env-default:"./.reportcache/token"`
	Attempts  int           `yaml:"attempts"   env:"CLIENT_IDENTITY_ATTEMPTS" env-default:"10"`
	Backoff   time.Duration `yaml:"backoff"    env:"CLIENT_IDENTITY_BACKOFF"  env-default:"500ms"`
	Timeout   time.Duration `yaml:"timeout"    env:"CLIENT_IDENTITY_TIMEOUT"  env-default:"10s"`
	// UserOverride is an explicit user ID, the equivalent of a URL override.
	UserOverride string `yaml:"user_override" env:"CLIENT_USER_OVERRIDE"`
}

// BreakerConfig tunes the circuit breaker in front of the API.
type BreakerConfig struct {
	MaxRequests      uint32        `yaml:"max_requests"      env:"CLIENT_BREAKER_MAX_REQUESTS"      env-default:"1"`
	Interval         time.Duration `yaml:"interval"          env:"CLIENT_BREAKER_INTERVAL"          env-default:"1m"`
	Timeout          time.Duration `yaml:"timeout"           env:"CLIENT_BREAKER_TIMEOUT"           env-default:"30s"`
	FailureThreshold uint32        `yaml:"failure_threshold" env:"CLIENT_BREAKER_FAILURE_THRESHOLD" env-default:"5"`
}

// Validate checks the client configuration and fills the parsed fields.
func (c *ClientConfig) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL (got %q)", c.API.BaseURL)
	}
	if c.Identity.Attempts < 1 {
		return fmt.Errorf("identity.attempts must be >= 1 (got %d)", c.Identity.Attempts)
	}
	if c.Identity.Timeout <= 0 {
		return fmt.Errorf("identity.timeout must be > 0 (got %v)", c.Identity.Timeout)
	}

	kind, err := ParsePeriodKind(c.Kind)
	if err != nil {
		return fmt.Errorf("kind: %w", err)
	}
	c.PeriodKind = kind

	loc, err := ParseLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	c.Location = loc

	return nil
}
