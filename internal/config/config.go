// config.go
//
// An investment team CRM service for firms, funds, companies, notes and deals
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of endowment-crm.
// endowment-crm is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// endowment-crm is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with endowment-crm.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // mysql, mariadb, postgres, sqlite, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string // file path for sqlite
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBLogLevel        string // silent, error, warn, info

	// Authorizer configuration
	AuthzURL         string
	AuthzClientID    string
	AuthzRedirectURL string

	// Logging
	LogLevel  string
	LogFormat string // json, console

	// Blob storage for file attachments
	StorageType string // filesystem, s3
	StorageDir  string
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3KeyID     string
	S3AccessKey string
	S3Timeout   time.Duration

	// Note list paging
	NotesDefaultLimit int
	NotesMaxLimit     int
}

// Load loads configuration from environment variables, after merging an optional env file
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		DBType:            getEnv("DB_TYPE", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		DBLogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		AuthzURL:          getEnv("AUTHZ_URL", ""),
		AuthzClientID:     getEnv("AUTHZ_CLIENT_ID", ""),
		AuthzRedirectURL:  getEnv("AUTHZ_REDIRECT_URL", "http://localhost:3000"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		StorageType:       getEnv("STORAGE_TYPE", "filesystem"),
		StorageDir:        getEnv("STORAGE_DIR", "./attachments"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3KeyID:           getEnv("S3_KEY_ID", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3Timeout:         getEnvAsDuration("S3_TIMEOUT", 30*time.Second),
		NotesDefaultLimit: getEnvAsInt("NOTES_DEFAULT_LIMIT", 20),
		NotesMaxLimit:     getEnvAsInt("NOTES_MAX_LIMIT", 100),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields
func (cfg *Config) Validate() error {
	if cfg.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBType != "sqlite" && cfg.DBUser == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if cfg.AuthzURL == "" {
		return fmt.Errorf("AUTHZ_URL is required")
	}
	if cfg.AuthzClientID == "" {
		return fmt.Errorf("AUTHZ_CLIENT_ID is required")
	}

	switch cfg.StorageType {
	case "filesystem":
		if cfg.StorageDir == "" {
			return fmt.Errorf("STORAGE_DIR is required for filesystem storage")
		}
	case "s3":
		if cfg.S3Endpoint == "" || cfg.S3Region == "" || cfg.S3Bucket == "" ||
			cfg.S3KeyID == "" || cfg.S3AccessKey == "" {
			return fmt.Errorf("S3_ENDPOINT, S3_REGION, S3_BUCKET, S3_KEY_ID and S3_ACCESS_KEY are required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE: %s", cfg.StorageType)
	}

	if cfg.NotesDefaultLimit < 1 || cfg.NotesMaxLimit < cfg.NotesDefaultLimit {
		return fmt.Errorf("NOTES_DEFAULT_LIMIT must be positive and not exceed NOTES_MAX_LIMIT")
	}

	return nil
}

// loadEnvFile merges ENV_FILE (or ./.env when present) into the process environment.
// Variables already set take precedence.
func loadEnvFile() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
