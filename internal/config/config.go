package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Search    SearchConfig    `yaml:"search"`
	Session   SessionConfig   `yaml:"session"`
	Admin     AdminConfig     `yaml:"admin"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         string   `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// UploadsConfig contains image store settings
type UploadsConfig struct {
	Dir       string `yaml:"dir"`
	MaxSizeMB int64  `yaml:"max_size_mb"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// SessionConfig contains admin session settings
type SessionConfig struct {
	Secret     string `yaml:"secret"`
	CookieName string `yaml:"cookie_name"`
	MaxAgeHrs  int    `yaml:"max_age_hours"`
}

// AdminConfig contains the bootstrap admin account
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// CleanupConfig contains orphan image sweep settings
type CleanupConfig struct {
	Enabled          bool   `yaml:"enabled"`
	DailyRunTime     string `yaml:"daily_run_time"`
	GraceMinutes     int    `yaml:"grace_minutes"`
	MaxDeletionCount int    `yaml:"max_deletion_count"`
	DryRun           bool   `yaml:"dry_run"`
}

// RateLimitConfig contains login throttle settings
type RateLimitConfig struct {
	Enabled         bool `yaml:"enabled"`
	LoginsPerMinute int  `yaml:"logins_per_minute"`
	LoginsPerHour   int  `yaml:"logins_per_hour"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8084",
			AllowOrigins: []string{"http://localhost:5176"},
		},
		Uploads: UploadsConfig{
			Dir:       "data/uploads",
			MaxSizeMB: 10,
		},
		Session: SessionConfig{
			CookieName: "re_session",
			MaxAgeHrs:  12,
		},
		Cleanup: CleanupConfig{
			Enabled:          false,
			DailyRunTime:     "03:30",
			GraceMinutes:     60,
			MaxDeletionCount: 500,
			DryRun:           false,
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			LoginsPerMinute: 10,
			LoginsPerHour:   60,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	// Read file
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// MaxUploadBytes returns the per-file upload limit in bytes
func (c *UploadsConfig) MaxUploadBytes() int64 {
	return c.MaxSizeMB << 20
}

// SessionMaxAge returns the session lifetime as a duration
func (c *SessionConfig) SessionMaxAge() time.Duration {
	return time.Duration(c.MaxAgeHrs) * time.Hour
}
