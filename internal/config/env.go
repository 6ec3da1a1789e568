package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Env struct {
	AppAddr string
	GinMode string

	DBUser string
	DBPass string
	DBHost string
	DBName string

	JWTSecret         string
	PlatformAccountID string

	PaymentAPIURL  string
	PaymentAPIKey  string
	PaymentTimeout time.Duration

	BreakerFailureThreshold int
	BreakerSuccessThreshold int
	BreakerTimeout          time.Duration

	AuthCacheTTL time.Duration

	AuditBatchSize     int
	AuditFlushInterval time.Duration

	TransferBatchSize     int
	TransferFlushInterval time.Duration
	TransferMaxRetries    int
	TransferRetryBase     time.Duration

	RateLimitMax    int
	RateLimitWindow time.Duration
}

func LoadEnv() Env {
	return Env{
		AppAddr: envString("APP_ADDR", ":8080"),
		GinMode: envString("GIN_MODE", ""),

		DBUser: envString("DB_USER", "root"),
		DBPass: envString("DB_PASS", ""),
		DBHost: envString("DB_HOST", "127.0.0.1:3306"),
		DBName: envString("DB_NAME", "tiketbus"),

		JWTSecret:         envString("JWT_SECRET", "super-secret-key-change-me"),
		PlatformAccountID: envString("PLATFORM_ACCOUNT_ID", ""),

		PaymentAPIURL:  envString("PAYMENT_API_URL", "http://localhost:9090"),
		PaymentAPIKey:  envString("PAYMENT_API_KEY", ""),
		PaymentTimeout: envDuration("PAYMENT_TIMEOUT", 10*time.Second),

		BreakerFailureThreshold: envInt("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerSuccessThreshold: envInt("BREAKER_SUCCESS_THRESHOLD", 2),
		BreakerTimeout:          envDuration("BREAKER_TIMEOUT", 30*time.Second),

		AuthCacheTTL: envDuration("AUTH_CACHE_TTL", 5*time.Minute),

		AuditBatchSize:     envInt("AUDIT_BATCH_SIZE", 50),
		AuditFlushInterval: envDuration("AUDIT_FLUSH_INTERVAL", 5*time.Second),

		TransferBatchSize:     envInt("TRANSFER_BATCH_SIZE", 10),
		TransferFlushInterval: envDuration("TRANSFER_FLUSH_INTERVAL", 15*time.Second),
		TransferMaxRetries:    envInt("TRANSFER_MAX_RETRIES", 3),
		TransferRetryBase:     envDuration("TRANSFER_RETRY_BASE", 2*time.Second),

		RateLimitMax:    envInt("RATE_LIMIT_MAX", 1000),
		RateLimitWindow: envDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}

func envString(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
