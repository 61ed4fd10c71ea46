package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	Storage  StorageConfig
	Tools    ToolsConfig
	Worker   WorkerConfig
	Ingest   IngestConfig
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// StorageConfig holds object-store configuration.
type StorageConfig struct {
	Bucket    string
	KeyPrefix string
}

// ToolsConfig holds the external binaries the extraction engine shells out to.
type ToolsConfig struct {
	QPDF      string
	Pdftotext string
}

// WorkerConfig holds the local worker queue configuration.
type WorkerConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// IngestConfig holds local-mode watcher configuration.
type IngestConfig struct {
	Roots        []string
	OwnerID      string
	DocumentType string
	Debounce     time.Duration
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Storage: StorageConfig{
			Bucket:    getEnv("UPLOADS_BUCKET", ""),
			KeyPrefix: getEnv("UPLOADS_KEY_PREFIX", "uploads/"),
		},
		Tools: ToolsConfig{
			QPDF:      getEnv("QPDF_BIN", "qpdf"),
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
		},
		Worker: WorkerConfig{
			Workers:        getEnvAsInt("WORKERS", 4),
			QueueSize:      getEnvAsInt("QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 3*time.Minute),
		},
		Ingest: IngestConfig{
			Roots:        splitList(getEnv("WATCH_ROOTS", "")),
			OwnerID:      getEnv("INGEST_OWNER_ID", ""),
			DocumentType: getEnv("INGEST_DOCUMENT_TYPE", "default"),
			Debounce:     getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
		},
	}
}

// Validate checks the parts every deployment needs. Ingest settings are
// only validated by the local-mode entrypoint that uses them.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("DB_URL is required")
	}
	if c.Storage.KeyPrefix == "" {
		return errors.New("UPLOADS_KEY_PREFIX must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
