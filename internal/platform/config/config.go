package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration so main stays lean.
type Config struct {
	Addr          string
	JWTSigningKey string
	AdminAPIKey   string

	// PostgresURL selects the Postgres-backed stores when set; empty keeps
	// the in-memory stores (development and tests).
	PostgresURL string

	// RedisURL enables the Redis-backed rate limiter when set.
	RedisURL string

	// KafkaBrokers enables mirroring audit events to Kafka when non-empty.
	KafkaBrokers []string
	AuditTopic   string

	// MaxDocumentBytes bounds uploaded document payloads.
	MaxDocumentBytes int64

	RequestTimeout time.Duration

	// RateLimit is requests per driver surface caller per window.
	RateLimit       int
	RateLimitWindow time.Duration
}

// FromEnv builds a Config from environment variables with development
// defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:             getenv("DRIVERHUB_ADDR", ":8080"),
		JWTSigningKey:    getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AdminAPIKey:      getenv("ADMIN_API_KEY", "dev-admin-key"),
		PostgresURL:      os.Getenv("POSTGRES_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		AuditTopic:       getenv("AUDIT_TOPIC", "driver.audit"),
		MaxDocumentBytes: getenvInt64("MAX_DOCUMENT_BYTES", 10<<20),
		RequestTimeout:   30 * time.Second,
		RateLimit:        getenvInt("RATE_LIMIT", 60),
		RateLimitWindow:  time.Minute,
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
