package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be > 0 (got %v)", c.Auth.AccessTokenTTL)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	if err := c.Report.validate(); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if err := c.Scheduler.validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	if c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.GeneratePerMinute <= 0 {
		return fmt.Errorf("rate_limit: limits must be > 0")
	}

	return nil
}

func (r *ReportConfig) validate() error {
	if r.WeeklyTarget <= 0 {
		return fmt.Errorf("weekly_target must be > 0 (got %d)", r.WeeklyTarget)
	}
	if r.MonthlyTarget <= 0 {
		return fmt.Errorf("monthly_target must be > 0 (got %d)", r.MonthlyTarget)
	}
	if r.RecommendationLimit < 1 || r.RecommendationLimit > 20 {
		return fmt.Errorf("recommendation_limit must be in 1..20 (got %d)", r.RecommendationLimit)
	}

	loc, err := ParseLocation(r.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	r.Location = loc

	return nil
}

func (s *SchedulerConfig) validate() error {
	if !s.Enabled {
		return nil
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1 (got %d)", s.Concurrency)
	}
	for name, spec := range map[string]string{"weekly_spec": s.WeeklySpec, "monthly_spec": s.MonthlySpec} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("%s %q: %w", name, spec, err)
		}
	}
	return nil
}

// ParseLocation resolves an IANA timezone name. An empty name is UTC.
func ParseLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// ParsePeriodKind accepts "week"/"month" in any case.
func ParsePeriodKind(raw string) (domain.PeriodKind, error) {
	kind := domain.PeriodKind(strings.ToUpper(strings.TrimSpace(raw)))
	if !kind.IsValid() {
		return "", fmt.Errorf("unknown period kind %q", raw)
	}
	return kind, nil
}
