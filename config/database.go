package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"jobrelay"`
	Password string `env:"PASSWORD" envDefault:"jobrelay"`
	Name     string `env:"NAME"     envDefault:"jobrelay"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
	// Enabled controls whether the Redis-backed job cache is used at all.
	// When false the service runs with no cache layer.
	Enabled bool `env:"ENABLED" envDefault:"true"`
}

// CacheConfig contains job cache configuration (Redis-based).
type CacheConfig struct {
	// JobTTL is the TTL for cached job records.
	JobTTL time.Duration `env:"CACHE_JOB_TTL" envDefault:"30s"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.JobTTL <= 0 {
		c.JobTTL = 30 * time.Second
	}
}
