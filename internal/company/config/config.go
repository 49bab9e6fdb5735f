// Package config loads the company service configuration from a YAML file,
// defaults and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/gartstein/companies/internal/company/db"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// DefaultPath is where the service looks for its config file when none is given.
const DefaultPath = "internal/company/config/config.yaml"

// Config is the service configuration. Every key can be overridden by an
// environment variable of the same name.
type Config struct {
	GRPCPort        int           `mapstructure:"GRPC_PORT" validate:"min=1,max=65535"`
	HTTPPort        int           `mapstructure:"HTTP_PORT" validate:"min=1,max=65535"`
	DBDriver        string        `mapstructure:"DB_DRIVER" validate:"oneof=postgres sqlite"`
	DBHost          string        `mapstructure:"DB_HOST" validate:"required_if=DBDriver postgres"`
	DBPort          int           `mapstructure:"DB_PORT"`
	DBUser          string        `mapstructure:"DB_USER"`
	DBPassword      string        `mapstructure:"DB_PASSWORD"`
	DBName          string        `mapstructure:"DB_NAME" validate:"required_if=DBDriver postgres"`
	DBSSLMode       string        `mapstructure:"DB_SSLMODE"`
	DBPath          string        `mapstructure:"DB_PATH"`
	KafkaBrokers    []string      `mapstructure:"KAFKA_BROKERS"`
	Topic           string        `mapstructure:"TOPIC" validate:"required_with=KafkaBrokers"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	DefaultPageSize int           `mapstructure:"DEFAULT_PAGE_SIZE" validate:"min=1"`
	MaxPageSize     int           `mapstructure:"MAX_PAGE_SIZE" validate:"gtefield=DefaultPageSize"`
	HealthInterval  time.Duration `mapstructure:"HEALTH_INTERVAL" validate:"min=1s"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GRPC_PORT", 50051)
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("DB_DRIVER", db.DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "companies")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PATH", "companies.db")
	v.SetDefault("KAFKA_BROKERS", []string{})
	v.SetDefault("TOPIC", "company-events")
	v.SetDefault("CORS_ORIGINS", []string{"*"})
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEFAULT_PAGE_SIZE", 10)
	v.SetDefault("MAX_PAGE_SIZE", 100)
	v.SetDefault("HEALTH_INTERVAL", 15*time.Second)
}

// Load reads the config file at path, applies defaults and environment
// overrides, and validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)

	if path == "" {
		path = DefaultPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	cfg.CORSOrigins = compact(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks field constraints and the log level.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level is the parsed LOG_LEVEL.
func (c *Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Database returns the Record Store settings.
func (c *Config) Database() *db.Config {
	return &db.Config{
		Driver:   c.DBDriver,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		DBName:   c.DBName,
		SSLMode:  c.DBSSLMode,
		Path:     c.DBPath,
	}
}

// compact trims entries and drops empty ones, so that KAFKA_BROKERS="" in
// the environment disables the producer.
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
