package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gartstein/companies/internal/company/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
HTTP_PORT: 9090
DB_DRIVER: sqlite
DB_PATH: /tmp/test.db
KAFKA_BROKERS:
  - kafka-1:9092
  - kafka-2:9092
LOG_LEVEL: debug
HEALTH_INTERVAL: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 50051, cfg.GRPCPort, "unset keys keep their defaults")
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level())
	assert.Equal(t, 5*time.Second, cfg.HealthInterval)
	assert.Equal(t, &db.Config{
		Driver:  db.DriverSQLite,
		Host:    "localhost",
		Port:    5432,
		User:    "postgres",
		DBName:  "companies",
		SSLMode: "disable",
		Path:    "/tmp/test.db",
	}, cfg.Database())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "HTTP_PORT: 9090\nKAFKA_BROKERS: [kafka:9092]\n")
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.HTTPPort)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, db.DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 10, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown driver", "DB_DRIVER: oracle\n"},
		{"bad port", "HTTP_PORT: 70000\n"},
		{"max below default", "DEFAULT_PAGE_SIZE: 50\nMAX_PAGE_SIZE: 20\n"},
		{"bad log level", "LOG_LEVEL: loud\n"},
		{"short health interval", "HEALTH_INTERVAL: 10ms\n"},
		{"malformed yaml", "HTTP_PORT: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestDefaultFileIsValid(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "company-events", cfg.Topic)
	assert.Empty(t, cfg.KafkaBrokers, "a local run starts without Kafka")
}
