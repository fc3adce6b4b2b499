package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string        `mapstructure:"port"`
	DBHost              string        `mapstructure:"db_host"`
	DBPort              string        `mapstructure:"db_port"`
	DBUser              string        `mapstructure:"db_user"`
	DBPassword          string        `mapstructure:"db_password"`
	DBName              string        `mapstructure:"db_name"`
	DBSSLMode           string        `mapstructure:"db_sslmode"`
	DBMaxConns          int32         `mapstructure:"db_max_conns"`
	AutoMigrate         bool          `mapstructure:"auto_migrate"`
	GinMode             string        `mapstructure:"gin_mode"`
	LogLevel            string        `mapstructure:"log_level"`
	RedisURL            string        `mapstructure:"redis_url"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	SnapshotConcurrency int           `mapstructure:"snapshot_concurrency"`
}

var defaults = map[string]any{
	"port":                 "8080",
	"db_host":              "localhost",
	"db_port":              "5432",
	"db_user":              "retail",
	"db_password":          "retail_secret",
	"db_name":              "retail",
	"db_sslmode":           "disable",
	"db_max_conns":         10,
	"auto_migrate":         false,
	"gin_mode":             "debug",
	"log_level":            "info",
	"redis_url":            "",
	"cache_ttl":            "0s",
	"snapshot_concurrency": 4,
}

// Load reads defaults, then the optional config file at path, then
// environment variables (PORT, DB_HOST, ...), later sources winning.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.DBMaxConns < 1 {
		return nil, fmt.Errorf("db_max_conns must be positive, got %d", cfg.DBMaxConns)
	}
	if cfg.SnapshotConcurrency < 1 {
		cfg.SnapshotConcurrency = 1
	}
	return &cfg, nil
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}
