// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	PINHash            string
	UserID             string
	CardFeeBps         int
	DocPath            string
	SyncDebounce       time.Duration
	ReportCacheTTL     time.Duration
	AccessTokenTTL     time.Duration
	IdempotencyTTL     time.Duration
	CORSAllowedOrigins []string
	LoginRateLimit     string
	BodyLimitBytes     int64
	LogFormat          string
	LogLevel           string
	MetricsNamespace   string
	MetricsBucketsCSV  string
	TracingEnabled     bool
	TracingEndpoint    string
	TracingSampling    float64
	SecurityHeaders    bool
}

// Load reads configuration from environment variables and an optional
// .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		JWTSecret:          k.String("JWT_SECRET"),
		PINHash:            k.String("PIN_HASH"),
		UserID:             valueOrDefault(k.String("DOC_USER_ID"), "owner"),
		CardFeeBps:         int(k.Int64("CARD_FEE_BPS")),
		DocPath:            valueOrDefault(k.String("DOC_PATH"), "data/doce.json"),
		SyncDebounce:       parseDuration(k.String("SYNC_DEBOUNCE"), "3s"),
		ReportCacheTTL:     parseDuration(k.String("REPORT_CACHE_TTL"), "30s"),
		AccessTokenTTL:     parseDuration(k.String("ACCESS_TOKEN_TTL"), "12h"),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		LoginRateLimit:     valueOrDefault(k.String("LOGIN_RATE_LIMIT"), "10-M"),
		BodyLimitBytes:     k.Int64("BODY_LIMIT_BYTES"),
		LogFormat:          valueOrDefault(k.String("LOG_FORMAT"), "json"),
		LogLevel:           valueOrDefault(k.String("LOG_LEVEL"), "info"),
		MetricsNamespace:   valueOrDefault(k.String("METRICS_NAMESPACE"), "doce"),
		MetricsBucketsCSV:  k.String("METRICS_BUCKETS_MS"),
		TracingEnabled:     parseBool(k.String("TRACING_ENABLED")),
		TracingEndpoint:    k.String("TRACING_ENDPOINT"),
		TracingSampling:    k.Float64("TRACING_SAMPLING_RATIO"),
		SecurityHeaders:    parseBool(valueOrDefault(k.String("SECURITY_HEADERS"), "true")),
	}
	if cfg.CardFeeBps <= 0 {
		cfg.CardFeeBps = 299
	}
	if cfg.BodyLimitBytes <= 0 {
		cfg.BodyLimitBytes = 1 << 20
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.PINHash == "" {
		return nil, errors.New("PIN_HASH is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
