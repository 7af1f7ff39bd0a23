package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the process configuration, read once at startup from the
// environment (a .env file is loaded by main before this runs).
type Config struct {
	Addr    string
	DBDSN   string
	Env     string // "dev" | "prod"
	NATSURL string // empty -> in-process notifier

	SessionCookie string
	SessionTTL    time.Duration
	SecureCookies bool

	AdminPIN string // 4-digit cosmetic gate, never an authorization check

	PaymentPushDelay time.Duration // simulated STK push latency
}

func Load() (Config, error) {
	cfg := Config{
		Addr:             envOr("ADDR", ":8080"),
		DBDSN:            os.Getenv("DB_DSN"),
		Env:              envOr("APP_ENV", "dev"),
		NATSURL:          os.Getenv("NATS_URL"),
		SessionCookie:    envOr("SESSION_COOKIE", "kladi_session"),
		SessionTTL:       envDurationOr("SESSION_TTL", 24*time.Hour),
		SecureCookies:    envOr("APP_ENV", "dev") == "prod",
		AdminPIN:         envOr("ADMIN_PIN", "0000"),
		PaymentPushDelay: envDurationOr("PAYMENT_PUSH_DELAY", 1500*time.Millisecond),
	}

	if cfg.DBDSN == "" {
		return Config{}, fmt.Errorf("DB_DSN environment variable is required")
	}
	if len(cfg.AdminPIN) != 4 {
		return Config{}, fmt.Errorf("ADMIN_PIN must be exactly 4 digits, got %d characters", len(cfg.AdminPIN))
	}
	for _, r := range cfg.AdminPIN {
		if r < '0' || r > '9' {
			return Config{}, fmt.Errorf("ADMIN_PIN must be numeric")
		}
	}
	return cfg, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDurationOr(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// allow plain milliseconds
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}
