package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv            string
	Port              string
	LogLevel          string
	LogFormat         string
	ClassifierURL     string
	ClassifierToken   string
	ClassifierTimeout time.Duration
	RedisURL          string
	DatabaseURL       string
	MaxConnections    int64
	MaxPerIP          int
	ConnectsPerSecond float64
	MaxMessageBytes   int64
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		ClassifierURL:   getEnv("CLASSIFIER_URL", ""),
		ClassifierToken: getEnv("CLASSIFIER_TOKEN", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
	}

	if cfg.ClassifierURL == "" {
		return nil, fmt.Errorf("CLASSIFIER_URL is required")
	}

	timeout, err := getEnvDuration("CLASSIFIER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.ClassifierTimeout = timeout

	maxConns, err := getEnvInt64("MAX_CONNECTIONS", 1000)
	if err != nil {
		return nil, err
	}
	if maxConns <= 0 {
		return nil, fmt.Errorf("MAX_CONNECTIONS must be positive, got %d", maxConns)
	}
	cfg.MaxConnections = maxConns

	maxPerIP, err := getEnvInt64("MAX_PER_IP", 20)
	if err != nil {
		return nil, err
	}
	if maxPerIP <= 0 {
		return nil, fmt.Errorf("MAX_PER_IP must be positive, got %d", maxPerIP)
	}
	cfg.MaxPerIP = int(maxPerIP)

	cps, err := getEnvFloat("CONNECTS_PER_SECOND", 10.0)
	if err != nil {
		return nil, err
	}
	if cps <= 0 {
		return nil, fmt.Errorf("CONNECTS_PER_SECOND must be positive, got %v", cps)
	}
	cfg.ConnectsPerSecond = cps

	maxBytes, err := getEnvInt64("MAX_MESSAGE_BYTES", 8192)
	if err != nil {
		return nil, err
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("MAX_MESSAGE_BYTES must be positive, got %d", maxBytes)
	}
	cfg.MaxMessageBytes = maxBytes

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 10s): %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}
