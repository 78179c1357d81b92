package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Storage   StorageConfig   `mapstructure:"storage"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	MaxRetries   int    `mapstructure:"max_retries"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// SyncConfig tunes the device-side engine: how long to wait after a
// connectivity flap before syncing, and how long a finished cycle
// holds the guard closed.
type SyncConfig struct {
	DebounceMs            int `mapstructure:"debounce_ms"`
	SettleMs              int `mapstructure:"settle_ms"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

func (c SyncConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

func (c SyncConfig) Settle() time.Duration {
	return time.Duration(c.SettleMs) * time.Millisecond
}

type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("TELEMED")
	viper.AutomaticEnv()

	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.timeoutSeconds", 30)
	viper.SetDefault("sync.debounce_ms", 1500)
	viper.SetDefault("sync.settle_ms", 2000)
	viper.SetDefault("sync.request_timeout_seconds", 30)
	viper.SetDefault("storage.dir", "./data")
	viper.SetDefault("rate_limit.rps", 50)
	viper.SetDefault("rate_limit.burst", 100)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
