package config

import (
	"time"
)

// Config is the root server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	Report    ReportConfig    `yaml:"report"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	ApplicationName string        `yaml:"application_name"   env:"DATABASE_APPLICATION_NAME"   env-default:"quotediary"`
}

// AuthConfig holds access token settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"quotediary"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"24h"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// ReportConfig holds report generation and recommendation settings.
type ReportConfig struct {
	WeeklyTarget        int    `yaml:"weekly_target"        env:"REPORT_WEEKLY_TARGET"        env-default:"7"`
	MonthlyTarget       int    `yaml:"monthly_target"       env:"REPORT_MONTHLY_TARGET"       env-default:"30"`
	RecommendationLimit int    `yaml:"recommendation_limit" env:"REPORT_RECOMMENDATION_LIMIT" env-default:"3"`
	UniversalCategory   string `yaml:"universal_category"   env:"REPORT_UNIVERSAL_CATEGORY"`
	Timezone            string `yaml:"timezone"             env:"REPORT_TIMEZONE"             env-default:"UTC"`
	TaxonomyPath        string `yaml:"taxonomy_path"        env:"REPORT_TAXONOMY_PATH"`
	MatchTemplate       string `yaml:"match_template"       env:"REPORT_MATCH_TEMPLATE"`
	FallbackTemplate    string `yaml:"fallback_template"    env:"REPORT_FALLBACK_TEMPLATE"`

	// Location is parsed from Timezone during validation.
	Location *time.Location `yaml:"-" env:"-"`
}

// SchedulerConfig holds periodic report generation settings. Specs are
// standard five-field cron expressions evaluated in the report timezone.
type SchedulerConfig struct {
	Enabled     bool          `yaml:"enabled"      env:"SCHEDULER_ENABLED"      env-default:"true"`
	WeeklySpec  string        `yaml:"weekly_spec"  env:"SCHEDULER_WEEKLY_SPEC"  env-default:"0 5 * * 1"`
	MonthlySpec string        `yaml:"monthly_spec" env:"SCHEDULER_MONTHLY_SPEC" env-default:"0 5 1 * *"`
	Concurrency int           `yaml:"concurrency"  env:"SCHEDULER_CONCURRENCY"  env-default:"4"`
	RunTimeout  time.Duration `yaml:"run_timeout"  env:"SCHEDULER_RUN_TIMEOUT"  env-default:"30m"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" env:"RATE_LIMIT_REQUESTS_PER_MINUTE" env-default:"120"`
	GeneratePerMinute int `yaml:"generate_per_minute" env:"RATE_LIMIT_GENERATE_PER_MINUTE" env-default:"10"`
}
