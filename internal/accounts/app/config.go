package app

import (
	"os"
	"strconv"
	"time"

	"github.com/cliptube/cliptube/pkg/jwtx"
)

type Config struct {
	Issuer string // Issuer claim for tokens (default: cliptube-accounts)

	AccessTokenSecret  string        // Required: HMAC secret for access tokens
	AccessTokenTTL     time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenSecret string        // Required: HMAC secret for refresh tokens, independent of the access secret
	RefreshTokenTTL    time.Duration // Optional: refresh token lifetime (default: 7 days)
	PasswordHashCost   int           // Optional: bcrypt cost (default: 10)

	DatabaseFile string // Optional: path to SQLite database file (default: ./accounts.db)

	MediaEndpoint  string // Required: S3/MinIO endpoint for avatars and covers
	MediaAccessKey string // Required: media storage access key
	MediaSecretKey string // Required: media storage secret key
	MediaBucket    string // Optional: media bucket name (default: cliptube-media)
	MediaUseSSL    bool   // Optional: TLS to the media endpoint (default: false)
	MediaPublicURL string // Optional: public URL prefix for stored media (default: derived from endpoint)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Issuer: getEnvOrDefault("ISSUER", "cliptube-accounts"),

		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		AccessTokenTTL:     getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		RefreshTokenTTL:    getEnvDurationOrDefault("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		PasswordHashCost:   getEnvIntOrDefault("PASSWORD_HASH_COST", 10),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "accounts.db"),

		MediaEndpoint:  os.Getenv("MEDIA_ENDPOINT"),
		MediaAccessKey: os.Getenv("MEDIA_ACCESS_KEY"),
		MediaSecretKey: os.Getenv("MEDIA_SECRET_KEY"),
		MediaBucket:    getEnvOrDefault("MEDIA_BUCKET", "cliptube-media"),
		MediaUseSSL:    getEnvBoolOrDefault("MEDIA_USE_SSL", false),
		MediaPublicURL: os.Getenv("MEDIA_PUBLIC_URL"),

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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
