// Package config loads the venue process's bootstrap configuration:
// listen address, seed instrument list, snapshot store DSN, and log level.
// The core packages never read os.Getenv or a file directly — only
// cmd/venue consumes this package.
package config

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Instrument is one seed instrument read from config, registered with the
// venue on boot if not already restored from a snapshot.
type Instrument struct {
	ID     uint64 `mapstructure:"id"`
	Symbol string `mapstructure:"symbol"`
}

// Config is the venue process's full bootstrap configuration.
type Config struct {
	Server struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"database"`

	Instruments []Instrument `mapstructure:"instruments"`

	Monitoring struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"monitoring"`
}

// Load reads configuration from configPath (a directory, searched for a
// file named config.yaml/.json/.env), falling back to ".", "./config" and
// "/etc/matchcore" when configPath is empty, then overlays MATCHCORE_-prefixed environment variables.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.AddConfigPath(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/matchcore")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("MATCHCORE")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080

	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Name = "matchcore"
	cfg.Database.SSLMode = "disable"

	cfg.Instruments = []Instrument{
		{ID: 1, Symbol: "BTC-USD"},
		{ID: 2, Symbol: "ETH-USD"},
	}

	cfg.Monitoring.LogLevel = "info"
}

// NewLogger builds the zap.Logger the rest of the venue process shares,
// selected by the configured log level.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	switch cfg.Monitoring.LogLevel {
	case "debug":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// DSN renders the Postgres connection string for database/sql or gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name, c.Database.SSLMode,
	)
}
