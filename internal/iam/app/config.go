package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Algorithm    string        // Token algorithm family: "symmetric" (HS256) or "asymmetric" (RS256) (default: symmetric)
	SecretFile   string        // Path to the shared secret for symmetric mode (default: ./secret)
	PrivateKey   string        // Path to the RSA private key PEM for asymmetric mode
	PublicKey    string        // Path to the RSA public key PEM for asymmetric mode
	AccessTTL    time.Duration // Access token lifetime (default: 15m)
	RefreshTTL   time.Duration // Refresh token lifetime (default: 168h)
	Roles        []string      // Role hierarchy, lowest privilege first (default: user,support,admin)
	DatabaseFile string        // Path to SQLite database file (default: ./iam.db)
	PepperFile   string        // Path to password-hashing pepper file (default: ./pepper)
	RedisAddr    string        // Optional: session store address; empty disables session tracking
	RedisPass    string        // Optional: session store password
	RedisDB      int           // Optional: session store database index

	RateLimitRequests int           // Requests per window for sensitive endpoints (default: 5)
	RateLimitWindow   time.Duration // Rate limit window (default: 1m)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the process environment once at startup. Nothing outside
// this function looks at env vars; every component receives explicit config.
func LoadConfig() Config {
	return Config{
		Algorithm:    getEnvOrDefault("IAM_ALGORITHM", "symmetric"),
		SecretFile:   getEnvOrDefault("IAM_SECRET_FILE", "secret"),
		PrivateKey:   os.Getenv("IAM_PRIVATE_KEY_FILE"),
		PublicKey:    os.Getenv("IAM_PUBLIC_KEY_FILE"),
		AccessTTL:    getEnvDurationOrDefault("IAM_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:   getEnvDurationOrDefault("IAM_REFRESH_TTL", 7*24*time.Hour),
		Roles:        getEnvListOrDefault("IAM_ROLES", []string{"user", "support", "admin"}),
		DatabaseFile: getEnvOrDefault("IAM_DATABASE_FILE", "iam.db"),
		PepperFile:   getEnvOrDefault("IAM_PEPPER_FILE", "pepper"),
		RedisAddr:    os.Getenv("IAM_REDIS_ADDR"),
		RedisPass:    os.Getenv("IAM_REDIS_PASSWORD"),
		RedisDB:      getEnvIntOrDefault("IAM_REDIS_DB", 0),

		RateLimitRequests: getEnvIntOrDefault("IAM_RATELIMIT_REQUESTS", 5),
		RateLimitWindow:   getEnvDurationOrDefault("IAM_RATELIMIT_WINDOW", time.Minute),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
