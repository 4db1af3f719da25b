package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the server configuration
type Config struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenDuration time.Duration `mapstructure:"token_duration"`

	// StorageType selects the backend: memory, redis or postgres
	StorageType string `mapstructure:"storage_type"`
	RedisURL    string `mapstructure:"redis_url"`
	DatabaseURL string `mapstructure:"database_url"`

	BroadcastInterval time.Duration `mapstructure:"broadcast_interval"`
}

// Load reads configuration from the environment and an optional config
// file. Environment variables take the RPS_ prefix, so storage_type
// becomes RPS_STORAGE_TYPE.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("host", "")
	v.SetDefault("port", 8080)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_duration", 7*24*time.Hour)
	v.SetDefault("storage_type", "memory")
	v.SetDefault("redis_url", "redis://localhost:6379")
	v.SetDefault("database_url", "")
	v.SetDefault("broadcast_interval", 5*time.Second)

	v.SetEnvPrefix("RPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}
