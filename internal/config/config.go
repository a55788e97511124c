// Package config reads process configuration from the environment. A .env
// file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"warehouse-backend/internal/core"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	DBDriver       string
	DatabaseURL    string
	SQLitePath     string
	ServerPort     string
	AllowedOrigins string
	LogLevel       string
	LogFormat      string
	TxTimeout      time.Duration
	DefaultStatus  string
	StatusPolicy   core.StatusPolicy
	RabbitURL      string
	RabbitExchange string
	AuditBuffer    int
}

// Load reads the configuration. Invalid values are reported, not defaulted.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBDriver:       getEnv("DB_DRIVER", DriverPostgres),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     getEnv("SQLITE_PATH", "warehouse.db"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		DefaultStatus:  getEnv("DEFAULT_ORDER_STATUS", core.DefaultStatusName),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		RabbitExchange: getEnv("RABBIT_EXCHANGE", "warehouse_audit"),
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable not set")
		}
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, cfg.DBDriver)
	}

	var err error
	if cfg.TxTimeout, err = time.ParseDuration(getEnv("TX_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid TX_TIMEOUT: %w", err)
	}
	if cfg.TxTimeout <= 0 {
		return nil, fmt.Errorf("TX_TIMEOUT must be positive, got %s", cfg.TxTimeout)
	}

	if cfg.AuditBuffer, err = strconv.Atoi(getEnv("AUDIT_BUFFER", "256")); err != nil {
		return nil, fmt.Errorf("invalid AUDIT_BUFFER: %w", err)
	}
	if cfg.AuditBuffer < 1 {
		return nil, fmt.Errorf("AUDIT_BUFFER must be at least 1, got %d", cfg.AuditBuffer)
	}

	if cfg.StatusPolicy, err = core.ParseStatusPolicy(os.Getenv("ORDER_STATUS_TRANSITIONS")); err != nil {
		return nil, fmt.Errorf("invalid ORDER_STATUS_TRANSITIONS: %w", err)
	}

	return cfg, nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
