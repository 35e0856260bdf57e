// Package config provides configuration management for the ranking engine.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Ranking  RankingConfig  `mapstructure:"ranking" validate:"required"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Cache    CacheConfig    `mapstructure:"cache" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// RankingConfig controls scheduled recomputation and snapshots
type RankingConfig struct {
	Disciplines             []string `mapstructure:"disciplines" validate:"required,min=1,dive,discipline"`
	SnapshotEnabled         bool     `mapstructure:"snapshot_enabled"`
	SnapshotSchedule        string   `mapstructure:"snapshot_schedule" validate:"required,cron"`
	RecomputeTimeoutSeconds int      `mapstructure:"recompute_timeout_seconds" validate:"required,gt=0"`
	// Timezone used to decide the computation day
	Timezone string `mapstructure:"timezone" validate:"required,timezone"`
}

// ScoringConfig points at the versioned scoring tables file
type ScoringConfig struct {
	TablesPath string `mapstructure:"tables_path"`
	Watch      bool   `mapstructure:"watch"`
}

// CacheConfig configures the standings read cache
type CacheConfig struct {
	StandingsTTLSeconds    int `mapstructure:"standings_ttl_seconds" validate:"required,gt=0"`
	CleanupIntervalSeconds int `mapstructure:"cleanup_interval_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
		c.Database.MaxConnections,
	)
}

// Location returns the ranking timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Ranking.Timezone)
	if err != nil || c.Ranking.Timezone == "" {
		return time.UTC
	}
	return loc
}

// RecomputeTimeout returns the per-scope recompute deadline
func (c *Config) RecomputeTimeout() time.Duration {
	return time.Duration(c.Ranking.RecomputeTimeoutSeconds) * time.Second
}

// StandingsTTL returns how long computed standings stay cached
func (c *Config) StandingsTTL() time.Duration {
	return time.Duration(c.Cache.StandingsTTLSeconds) * time.Second
}

// CacheCleanupInterval returns the cache janitor interval
func (c *Config) CacheCleanupInterval() time.Duration {
	return time.Duration(c.Cache.CleanupIntervalSeconds) * time.Second
}
