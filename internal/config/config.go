// Package config provides configuration loading for tenantscan.
package config

import (
	"os"
	"strconv"
)

// TokenEnvVar names the environment variable carrying the admin bearer
// token. Sign-in itself is a host concern; the scanner only consumes the
// resulting credential.
const TokenEnvVar = "TENANTSCAN_TOKEN"

// Config holds one run's settings. Environment variables supply defaults;
// the CLI binds flags over them.
type Config struct {
	// Admin API settings
	BaseURL          string
	MaxRetries       int
	RetryDelaySecs   int
	PollIntervalSecs int
	MaxPolls         int
	PageSize         int

	// Scan options
	Lineage            bool
	DatasourceDetails  bool
	DatasetSchema      bool
	DatasetExpressions bool
	RefreshHistory     bool

	// Workspace selection
	NameFilter  string
	Interactive bool

	// Output
	OutputDir string
	Parquet   bool

	// Object store publish (optional)
	Publish          bool
	StoreEndpointURL string
	StoreAccessKey   string
	StoreSecretKey   string
	StoreBucket      string
	StoreBasePrefix  string

	// Postgres inventory (optional)
	PostgresDSN string
}

// Load builds a config from environment, with defaults matching the
// platform's documented limits (5000-item pages, 100-id scan batches,
// 5 second poll interval).
func Load() *Config {
	return &Config{
		BaseURL:          getEnv("TENANTSCAN_BASE_URL", "https://api.powerbi.com/v1.0/myorg"),
		MaxRetries:       getEnvInt("TENANTSCAN_MAX_RETRIES", 3),
		RetryDelaySecs:   getEnvInt("TENANTSCAN_RETRY_DELAY_SECS", 5),
		PollIntervalSecs: getEnvInt("TENANTSCAN_POLL_INTERVAL_SECS", 5),
		MaxPolls:         getEnvInt("TENANTSCAN_MAX_POLLS", 0),
		PageSize:         getEnvInt("TENANTSCAN_PAGE_SIZE", 5000),
		OutputDir:        getEnv("TENANTSCAN_OUTPUT_DIR", "output"),
		StoreEndpointURL: getEnv("TENANTSCAN_STORE_ENDPOINT", ""),
		StoreAccessKey:   getEnv("TENANTSCAN_STORE_ACCESS_KEY", ""),
		StoreSecretKey:   getEnv("TENANTSCAN_STORE_SECRET_KEY", ""),
		StoreBucket:      getEnv("TENANTSCAN_STORE_BUCKET", ""),
		StoreBasePrefix:  getEnv("TENANTSCAN_STORE_PREFIX", "tenantscan"),
		PostgresDSN:      getEnv("TENANTSCAN_PG_DSN", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
