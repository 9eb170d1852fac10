// Package config provides application configuration management.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Vault     VaultConfig
	Database  DatabaseConfig
	Indexer   IndexerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig

	Environment        string
	LogLevel           string
	MaxRequestBodySize int64
	MetricsInterval    time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// StoreConfig holds the vault database location.
type StoreConfig struct {
	Path string
}

// VaultConfig holds accounting settings.
type VaultConfig struct {
	FeeRatePerDay uint64
	AllowFaucet   bool
}

// DatabaseConfig holds PostgreSQL connection settings for the event index.
// An empty URL disables the indexer.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// IndexerConfig holds event indexer settings.
type IndexerConfig struct {
	Interval  time.Duration
	BatchSize int
}

// RedisConfig holds Redis connection settings. An empty URL disables rate
// limiting and event streaming.
type RedisConfig struct {
	URL          string
	Stream       string
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads configuration from environment variables and, when
// CONFIG_FILE is set, from that file.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := FromViper(v)

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	// Server
	cfg.Server = ServerConfig{
		Host:           v.GetString("server.host"),
		Port:           v.GetInt("server.port"),
		ReadTimeout:    v.GetDuration("server.read_timeout"),
		WriteTimeout:   v.GetDuration("server.write_timeout"),
		IdleTimeout:    v.GetDuration("server.idle_timeout"),
		RequestTimeout: v.GetDuration("server.request_timeout"),
	}

	cfg.Store = StoreConfig{
		Path: v.GetString("store.path"),
	}

	cfg.Vault = VaultConfig{
		FeeRatePerDay: v.GetUint64("vault.fee_rate_per_day"),
		AllowFaucet:   v.GetBool("vault.allow_faucet"),
	}

	// Database
	cfg.Database = DatabaseConfig{
		URL:             v.GetString("database.url"),
		MaxOpenConns:    v.GetInt("database.max_open_conns"),
		MaxIdleConns:    v.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		ConnMaxIdleTime: v.GetDuration("database.conn_max_idle_time"),
	}

	cfg.Indexer = IndexerConfig{
		Interval:  v.GetDuration("indexer.interval"),
		BatchSize: v.GetInt("indexer.batch_size"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		URL:          v.GetString("redis.url"),
		Stream:       v.GetString("redis.stream"),
		MaxRetries:   v.GetInt("redis.max_retries"),
		PoolSize:     v.GetInt("redis.pool_size"),
		MinIdleConns: v.GetInt("redis.min_idle_conns"),
	}

	// Rate limiting
	cfg.RateLimit = RateLimitConfig{
		Requests: v.GetInt("rate_limit.requests"),
		Window:   v.GetDuration("rate_limit.window"),
	}

	cfg.Environment = v.GetString("env")
	cfg.LogLevel = v.GetString("log.level")
	cfg.MaxRequestBodySize = v.GetInt64("server.max_request_body_size")
	cfg.MetricsInterval = v.GetDuration("metrics.interval")

	return cfg
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.max_request_body_size", 1*1024*1024) // 1MB

	v.SetDefault("store.path", "./data/vault.db")

	v.SetDefault("vault.fee_rate_per_day", 10_000_000)
	v.SetDefault("vault.allow_faucet", false)

	// Database defaults
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)

	v.SetDefault("indexer.interval", 5*time.Second)
	v.SetDefault("indexer.batch_size", 500)

	// Redis defaults
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.stream", "assetvault:events")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	// Rate limiting defaults
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", 60*time.Second)

	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.interval", 15*time.Second)
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return errors.New("store path is required")
	}
	if c.Vault.FeeRatePerDay == 0 {
		return errors.New("vault fee rate per day must be greater than zero")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Database.URL != "" && c.Indexer.Interval <= 0 {
		return errors.New("indexer interval must be positive when a database is configured")
	}
	if c.Redis.URL != "" && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("rate limit requests and window must be positive")
	}

	if c.IsProduction() && c.Vault.AllowFaucet {
		return errors.New("the funding faucet cannot be enabled in production")
	}

	return nil
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// ServerAddr returns the full server address.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
