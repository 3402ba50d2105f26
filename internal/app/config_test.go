/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	cfg, err := GetConfig("")
	require.NoError(t, err)

	assert.Equal(t, StrategyPatchStatus, cfg.FulfillmentStrategy)
	assert.Equal(t, "/scripts/create-pg-user.sh", cfg.Scripts.Postgres)
	assert.Equal(t, "/scripts/create-mariadb-user.sh", cfg.Scripts.MariaDB)
	assert.Equal(t, "PGHOST", cfg.Hosts.PostgresEnv)
	assert.Equal(t, "MYSQL_HOST", cfg.Hosts.MariaDBEnv)
	assert.Equal(t, 24, cfg.PasswordLength)
	assert.Equal(t, 5*time.Minute, cfg.ProvisionTimeout)
}

func TestGetConfigFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
fulfillmentStrategy: delete
scripts:
  postgres: /opt/pg.sh
passwordLength: 32
provisionTimeout: 90s
`)

	cfg, err := GetConfig(path)
	require.NoError(t, err)

	assert.Equal(t, StrategyDelete, cfg.FulfillmentStrategy)
	assert.Equal(t, "/opt/pg.sh", cfg.Scripts.Postgres)
	assert.Equal(t, "/scripts/create-mariadb-user.sh", cfg.Scripts.MariaDB, "unset keys keep defaults")
	assert.Equal(t, 32, cfg.PasswordLength)
	assert.Equal(t, 90*time.Second, cfg.ProvisionTimeout)
}

func TestGetConfigMissingFile(t *testing.T) {
	_, err := GetConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad strategy",
			mutate:  func(c *Config) { c.FulfillmentStrategy = "drop-table" },
			wantErr: "fulfillmentStrategy",
		},
		{
			name:    "short password",
			mutate:  func(c *Config) { c.PasswordLength = 6 },
			wantErr: "passwordLength",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.ProvisionTimeout = 0 },
			wantErr: "provisionTimeout",
		},
		{
			name:    "missing script",
			mutate:  func(c *Config) { c.Scripts.MariaDB = "" },
			wantErr: "script paths",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
