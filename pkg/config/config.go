package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries every externally provided setting. Services receive the
// values they need through their constructors instead of reading the
// environment themselves.
type Config struct {
	Port            string
	DatabaseURL     string
	VisionAPIKey    string
	GCSBucket       string
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SignedURLTTL    time.Duration
}

// Load reads the configuration from the environment. Call godotenv.Load
// before this in main so a local .env is picked up.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		VisionAPIKey:    os.Getenv("VISION_API_KEY"),
		GCSBucket:       os.Getenv("GCS_BUCKET"),
		SecretKey:       os.Getenv("SECRET_KEY"),
		AccessTokenTTL:  time.Duration(intFromEnv("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RefreshTokenTTL: time.Duration(intFromEnv("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
		SignedURLTTL:    time.Duration(intFromEnv("SIGNED_URL_EXPIRE_MINUTES", 15)) * time.Minute,
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("SECRET_KEY is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
