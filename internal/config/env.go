package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Env struct {
	AppAddr string
	GinMode string

	DBDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	QueuePrefix   string
	NotifyQueue   string

	PaymentBaseURL string
	PaymentTimeout time.Duration

	JWTSecret      string
	AllowedOrigins []string

	RateLimitRPS   float64
	RateLimitBurst int

	AllocMaxAttempts   int
	MaxSeatsPerBooking int
}

func LoadEnv() Env {
	return Env{
		AppAddr: getEnv("APP_ADDR", ":8080"),
		GinMode: getEnv("GIN_MODE", ""),

		DBDSN: getEnv("DB_DSN", "root:@tcp(127.0.0.1:3306)/railbook?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		QueuePrefix:   getEnv("QUEUE_PREFIX", "railbook:"),
		NotifyQueue:   getEnv("NOTIFY_QUEUE", "ticket-booked"),

		PaymentBaseURL: getEnv("PAYMENT_BASE_URL", "http://localhost:5110"),
		PaymentTimeout: getEnvAsDuration("PAYMENT_TIMEOUT", 5*time.Second),

		JWTSecret: getEnv("JWT_SECRET", ""),
		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 10),

		AllocMaxAttempts:   getEnvAsInt("ALLOC_MAX_ATTEMPTS", 5),
		MaxSeatsPerBooking: getEnvAsInt("MAX_SEATS_PER_BOOKING", 6),
	}
}

// Validate rejects settings the service cannot run with.
func (e Env) Validate() error {
	var errs []error
	if e.AllocMaxAttempts < 1 {
		errs = append(errs, errors.New("ALLOC_MAX_ATTEMPTS must be at least 1"))
	}
	if e.MaxSeatsPerBooking < 1 {
		errs = append(errs, errors.New("MAX_SEATS_PER_BOOKING must be at least 1"))
	}
	if e.PaymentTimeout <= 0 {
		errs = append(errs, errors.New("PAYMENT_TIMEOUT must be positive"))
	}
	if e.RateLimitRPS <= 0 || e.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if e.JWTSecret == "" && e.GinMode == "release" {
		errs = append(errs, errors.New("JWT_SECRET is required in release mode"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
