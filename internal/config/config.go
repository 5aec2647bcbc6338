// Package config provides configuration management for the bridge.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	ZenMoney ZenMoneyConfig
	Server   ServerConfig
	Export   ExportConfig
	Backup   BackupConfig
	Suggest  SuggestConfig
	Debug    bool
}

// ZenMoneyConfig represents ZenMoney API configuration.
type ZenMoneyConfig struct {
	Token  string
	APIURL string
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Port string
}

// ExportConfig represents BigQuery and Notion export configuration.
type ExportConfig struct {
	BigQueryProject string
	BigQueryDataset string
	NotionToken     string
	NotionDBID      string
}

// BackupConfig represents GCS snapshot backup configuration.
type BackupConfig struct {
	Bucket string
}

// SuggestConfig represents Gemini category suggestion configuration.
type SuggestConfig struct {
	Model string
}

// Load loads configuration from environment variables. It automatically
// loads a .env file from the current directory if available; a custom path
// can be supplied instead.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	cfg := &Config{
		ZenMoney: ZenMoneyConfig{
			Token:  os.Getenv("ZENMONEY_TOKEN"),
			APIURL: os.Getenv("ZENMONEY_API_URL"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Export: ExportConfig{
			BigQueryProject: os.Getenv("BIGQUERY_PROJECT"),
			BigQueryDataset: getEnvOrDefault("BIGQUERY_DATASET", "zenmoney"),
			NotionToken:     os.Getenv("NOTION_TOKEN"),
			NotionDBID:      os.Getenv("NOTION_TRANSACTIONS_DB"),
		},
		Backup: BackupConfig{
			Bucket: os.Getenv("BACKUP_BUCKET"),
		},
		Suggest: SuggestConfig{
			Model: getEnvOrDefault("SUGGEST_MODEL", "gemini-2.0-flash"),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	return cfg, nil
}

// Validate checks that the fields required by every binary are present.
func (c *Config) Validate() error {
	if c.ZenMoney.Token == "" {
		return fmt.Errorf("ZENMONEY_TOKEN is required")
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
