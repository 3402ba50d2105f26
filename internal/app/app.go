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

// Package app provides the application bootstrap for wiring all feature
// modules together.
package app

import (
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/db-user-operator/internal/features/dbuser"
	"github.com/db-user-operator/internal/features/request"
	"github.com/db-user-operator/internal/provision"
	"github.com/db-user-operator/internal/secret"
	"github.com/db-user-operator/internal/shared/eventbus"
)

// Module represents a feature module that can be registered with the manager.
type Module interface {
	SetupWithManager(ctrl.Manager) error
}

// Application represents the main application with all feature modules.
type Application struct {
	eventBus eventbus.Bus
	modules  []Module
}

// NewApplication creates a new Application with all feature modules wired
// together according to the configuration.
func NewApplication(mgr ctrl.Manager, cfg *Config) (*Application, error) {
	logger := mgr.GetLogger().WithName("app")

	eventBus := eventbus.NewInMemoryBus(
		eventbus.WithLogger(logger.WithName("eventbus")),
	)

	secretManager := secret.NewManager(secret.ManagerConfig{
		Client:          mgr.GetClient(),
		PostgresHostEnv: cfg.Hosts.PostgresEnv,
		MariaDBHostEnv:  cfg.Hosts.MariaDBEnv,
	})

	runner := provision.NewScriptRunner(provision.ScriptRunnerConfig{
		PostgresScript: cfg.Scripts.Postgres,
		MariaDBScript:  cfg.Scripts.MariaDB,
		Timeout:        cfg.ProvisionTimeout,
		Logger:         logger.WithName("runner"),
	})

	var modules []Module

	// DbUser module first so its event subscriptions exist before the
	// request module starts publishing.
	dbuserMod, err := dbuser.NewModule(dbuser.ModuleConfig{
		Client:   mgr.GetClient(),
		Scheme:   mgr.GetScheme(),
		EventBus: eventBus,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	modules = append(modules, dbuserMod)

	requestMod, err := request.NewModule(request.ModuleConfig{
		Client:         mgr.GetClient(),
		Scheme:         mgr.GetScheme(),
		Recorder:       mgr.GetEventRecorderFor("dbuserrequest-controller"),
		EventBus:       eventBus,
		Runner:         runner,
		SecretManager:  secretManager,
		Strategy:       request.Strategy(cfg.FulfillmentStrategy),
		PasswordLength: cfg.PasswordLength,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}
	modules = append(modules, requestMod)

	return &Application{
		eventBus: eventBus,
		modules:  modules,
	}, nil
}

// SetupWithManager registers all feature module controllers with the manager.
func (a *Application) SetupWithManager(mgr ctrl.Manager) error {
	for _, m := range a.modules {
		if err := m.SetupWithManager(mgr); err != nil {
			return err
		}
	}
	return nil
}

// EventBus returns the shared event bus.
func (a *Application) EventBus() eventbus.Bus {
	return a.eventBus
}
