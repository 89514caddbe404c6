// config_test.go
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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	// An empty env file keeps a developer's .env out of the test.
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, nil, 0o600))
	t.Setenv("ENV_FILE", envFile)

	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_DATABASE", "crm")
	t.Setenv("DB_USER", "crm")
	t.Setenv("AUTHZ_URL", "http://localhost:8080")
	t.Setenv("AUTHZ_CLIENT_ID", "client")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "filesystem", cfg.StorageType)
	assert.Equal(t, 20, cfg.NotesDefaultLimit)
	assert.Equal(t, 100, cfg.NotesMaxLimit)
	assert.Equal(t, 30*time.Second, cfg.S3Timeout)
	assert.Equal(t, 5, cfg.DBConnectionLimit)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "8081")
	t.Setenv("NOTES_DEFAULT_LIMIT", "10")
	t.Setenv("NOTES_MAX_LIMIT", "50")
	t.Setenv("S3_TIMEOUT", "5s")
	t.Setenv("DB_CONNECTION_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, 10, cfg.NotesDefaultLimit)
	assert.Equal(t, 50, cfg.NotesMaxLimit)
	assert.Equal(t, 5*time.Second, cfg.S3Timeout)
	assert.Equal(t, 5, cfg.DBConnectionLimit)
}

func TestLoadFromEnvFile(t *testing.T) {
	setRequired(t)
	envFile := filepath.Join(t.TempDir(), "crm.env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=debug\nPORT=9000\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("PORT", "7000")
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "7000", cfg.Port, "process environment wins over the file")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DBType:            "postgres",
			DBDatabase:        "crm",
			DBUser:            "crm",
			AuthzURL:          "http://localhost:8080",
			AuthzClientID:     "client",
			StorageType:       "filesystem",
			StorageDir:        "./attachments",
			NotesDefaultLimit: 20,
			NotesMaxLimit:     100,
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"database", func(c *Config) { c.DBDatabase = "" }, "DB_DATABASE"},
		{"user", func(c *Config) { c.DBUser = "" }, "DB_USER"},
		{"authorizer url", func(c *Config) { c.AuthzURL = "" }, "AUTHZ_URL"},
		{"client id", func(c *Config) { c.AuthzClientID = "" }, "AUTHZ_CLIENT_ID"},
		{"storage type", func(c *Config) { c.StorageType = "ftp" }, "STORAGE_TYPE"},
		{"s3 settings", func(c *Config) { c.StorageType = "s3" }, "S3_ENDPOINT"},
		{"limits", func(c *Config) { c.NotesMaxLimit = 5 }, "NOTES_DEFAULT_LIMIT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	sqlite := valid()
	sqlite.DBType = "sqlite"
	sqlite.DBUser = ""
	assert.NoError(t, sqlite.Validate())
}
