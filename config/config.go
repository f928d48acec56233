package config

import (
	"log"
	"os"

	"github.com/joho/godotenv" // Package to load .env files
)

// Storage backend selectors.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the application.
// Values are read from environment variables.
type Config struct {
	ServerPort       string // Port the Fiber server listens on
	StorageBackend   string // "memory" or "postgres"
	DatabaseURL      string // Postgres connection string (postgres backend only)
	MetricsNamespace string // Prometheus namespace for the exported metrics
}

// LoadConfig reads configuration from environment variables.
// It loads a .env file first if it exists.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file. Ignore error if it doesn't exist.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		StorageBackend:   getEnv("STORAGE_BACKEND", BackendMemory),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "godrive"),
	}

	if cfg.StorageBackend == BackendPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: STORAGE_BACKEND is 'postgres' but DATABASE_URL is empty")
	}

	log.Println("Configuration loaded successfully")
	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using fallback '%s'", key, fallback)
	return fallback
}
