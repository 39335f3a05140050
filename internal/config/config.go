// Package config defines service configuration and its layered loading:
// defaults, then an optional YAML file, then environment variables.
package config

import "time"

// Config contains process configuration. Extend as needed.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string `koanf:"cors_origins"`

	// CacheTTL bounds how long identical score requests are served from
	// the response cache.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// IPLimitPerMin caps requests per client IP per minute.
	IPLimitPerMin int `koanf:"ip_limit_per_min"`

	// RedisAddr enables distributed rate limiting when set; empty falls
	// back to in-memory token buckets.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// BatchWorkers bounds the parallelism of POST /v1/score/batch.
	BatchWorkers int `koanf:"batch_workers"`

	// MaxBatchSize caps the number of DReps per batch request.
	MaxBatchSize int `koanf:"max_batch_size"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		Addr:          ":8080",
		LogLevel:      "info",
		CORSOrigins:   []string{"*"},
		CacheTTL:      15 * time.Minute,
		IPLimitPerMin: 60,
		BatchWorkers:  8,
		MaxBatchSize:  500,
	}
}
