package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	DBSource     string
	StoreBackend string
	Port         string
	Env          string
	LogLevel     string

	RedisAddr       string
	SummaryCacheTTL time.Duration

	WorkerCount     int
	WorkerQueueSize int

	EnrichMinDelay time.Duration
	EnrichMaxDelay time.Duration
}

func Load() (*Config, error) {
	backend := getEnv("STORE_BACKEND", BackendPostgres)
	if backend != BackendPostgres && backend != BackendMemory {
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, backend)
	}

	dbSource := os.Getenv("DB_SOURCE")
	if dbSource == "" && backend == BackendPostgres {
		return nil, fmt.Errorf("DB_SOURCE environment variable is required")
	}

	cfg := &Config{
		DBSource:     dbSource,
		StoreBackend: backend,
		Port:         getEnv("SERVER_PORT", "8080"),
		Env:          getEnv("ENVIRONMENT", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
	}

	var err error
	if cfg.SummaryCacheTTL, err = getDurationEnv("SUMMARY_CACHE_TTL", 0); err != nil {
		return nil, err
	}
	if cfg.WorkerCount, err = getIntEnv("WORKER_COUNT", 4); err != nil {
		return nil, err
	}
	if cfg.WorkerQueueSize, err = getIntEnv("WORKER_QUEUE_SIZE", 1024); err != nil {
		return nil, err
	}
	if cfg.EnrichMinDelay, err = getDurationEnv("ENRICH_MIN_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.EnrichMaxDelay, err = getDurationEnv("ENRICH_MAX_DELAY", 3*time.Second); err != nil {
		return nil, err
	}

	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("WORKER_COUNT must be at least 1, got %d", cfg.WorkerCount)
	}
	if cfg.WorkerQueueSize < 0 {
		return nil, fmt.Errorf("WORKER_QUEUE_SIZE must not be negative, got %d", cfg.WorkerQueueSize)
	}
	if cfg.EnrichMinDelay < 0 || cfg.EnrichMaxDelay < cfg.EnrichMinDelay {
		return nil, fmt.Errorf("invalid enrichment delay range [%s, %s)", cfg.EnrichMinDelay, cfg.EnrichMaxDelay)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return n, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return d, nil
}
