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
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	koanf "github.com/knadh/koanf/v2"
)

// FulfillmentStrategy controls what happens to a DbUserRequest after it
// has been processed.
type FulfillmentStrategy string

const (
	// StrategyPatchStatus updates the request status to a terminal phase
	// and leaves the object in place.
	StrategyPatchStatus FulfillmentStrategy = "patch-status"

	// StrategyDelete removes the request object after processing so the
	// cluster holds no record of the transient request.
	StrategyDelete FulfillmentStrategy = "delete"
)

// Scripts holds the provisioning script paths per database type.
type Scripts struct {
	Postgres string `koanf:"postgres"`
	MariaDB  string `koanf:"mariadb"`
}

// Hosts holds the environment variable names the operator reads the
// database host addresses from.
type Hosts struct {
	PostgresEnv string `koanf:"postgresEnv"`
	MariaDBEnv  string `koanf:"mariadbEnv"`
}

// Config is the operator configuration, loaded from an optional YAML
// file layered over defaults.
type Config struct {
	FulfillmentStrategy FulfillmentStrategy `koanf:"fulfillmentStrategy"`
	Scripts             Scripts             `koanf:"scripts"`
	Hosts               Hosts               `koanf:"hosts"`
	PasswordLength      int                 `koanf:"passwordLength"`
	ProvisionTimeout    time.Duration       `koanf:"provisionTimeout"`
}

var defaultConfig = Config{
	FulfillmentStrategy: StrategyPatchStatus,
	Scripts: Scripts{
		Postgres: "/scripts/create-pg-user.sh",
		MariaDB:  "/scripts/create-mariadb-user.sh",
	},
	Hosts: Hosts{
		PostgresEnv: "PGHOST",
		MariaDBEnv:  "MYSQL_HOST",
	},
	PasswordLength:   24,
	ProvisionTimeout: 5 * time.Minute,
}

// GetConfig loads the operator configuration. A missing configPath is
// allowed and yields the defaults.
func GetConfig(configPath string) (*Config, error) {
	k := koanf.New(".")
	cfg := &Config{}

	if err := k.Load(structs.Provider(defaultConfig, "koanf"), nil); err != nil {
		return nil, err
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the operator cannot run
// with.
func (c *Config) Validate() error {
	switch c.FulfillmentStrategy {
	case StrategyPatchStatus, StrategyDelete:
	default:
		return fmt.Errorf("invalid fulfillmentStrategy %q: must be %q or %q",
			c.FulfillmentStrategy, StrategyPatchStatus, StrategyDelete)
	}
	if c.PasswordLength < 12 {
		return fmt.Errorf("passwordLength %d is below the minimum of 12", c.PasswordLength)
	}
	if c.ProvisionTimeout <= 0 {
		return fmt.Errorf("provisionTimeout must be positive, got %s", c.ProvisionTimeout)
	}
	if c.Scripts.Postgres == "" || c.Scripts.MariaDB == "" {
		return fmt.Errorf("both provisioning script paths must be set")
	}
	return nil
}
