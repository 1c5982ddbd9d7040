package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
}

type AppConfig struct {
	Env      string
	LogLevel string
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// EmailConfig configures the outbound delivery provider.
// Provider selects the implementation: "sendgrid" (default) or "smtp".
type EmailConfig struct {
	Provider       string
	Sender         string
	Timeout        time.Duration
	SendGridAPIKey string
	SendGridURL    string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
}

type RateLimitConfig struct {
	WindowDuration time.Duration
	MaxRequests    int
}

// RedisConfig is optional; when URL is empty the in-memory rate-limit
// store is used instead.
type RedisConfig struct {
	URL          string
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
}

// Load creates a new Config from environment variables
func Load() *Config {
	return &Config{
		App: AppConfig{
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Email: EmailConfig{
			Provider:       getEnv("EMAIL_PROVIDER", "sendgrid"),
			Sender:         getEnv("EMAIL_SENDER", "spshayurvedicbusiness@gmail.com"),
			Timeout:        getDurationEnv("EMAIL_PROVIDER_TIMEOUT", 10*time.Second),
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			SendGridURL:    getEnv("SENDGRID_API_URL", "https://api.sendgrid.com/v3/mail/send"),
			SMTPHost:       getEnv("SMTP_HOST", ""),
			SMTPPort:       getIntEnv("SMTP_PORT", 587),
			SMTPUsername:   getEnv("SMTP_USERNAME", ""),
			SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		},
		RateLimit: RateLimitConfig{
			WindowDuration: getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
			MaxRequests:    getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			MaxRetries:   getIntEnv("REDIS_MAX_RETRIES", 3),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 5),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
