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

package dbuser

import (
	"context"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/db-user-operator/internal/shared/eventbus"
)

// Module represents the DbUser feature module.
type Module struct {
	controller *Controller
	eventBus   eventbus.Bus
	logger     logr.Logger
}

// ModuleConfig holds dependencies for the dbuser module.
type ModuleConfig struct {
	Client   client.Client
	Scheme   *runtime.Scheme
	EventBus eventbus.Bus
	Logger   logr.Logger
}

// NewModule creates and wires the dbuser module.
func NewModule(cfg ModuleConfig) (*Module, error) {
	logger := cfg.Logger.WithName("dbuser")

	controller := NewController(ControllerConfig{
		Client: cfg.Client,
		Scheme: cfg.Scheme,
		Logger: logger.WithName("controller"),
	})

	m := &Module{
		controller: controller,
		eventBus:   cfg.EventBus,
		logger:     logger,
	}

	m.subscribeToEvents()

	return m, nil
}

// SetupWithManager registers the controller with the manager.
func (m *Module) SetupWithManager(mgr ctrl.Manager) error {
	return m.controller.SetupWithManager(mgr)
}

// subscribeToEvents registers event handlers for inter-module communication.
func (m *Module) subscribeToEvents() {
	if m.eventBus == nil {
		return
	}

	m.eventBus.Subscribe(eventbus.EventRequestFulfilled, "dbuser.OnRequestFulfilled",
		func(_ context.Context, event eventbus.Event) error {
			fulfilled, ok := event.(eventbus.RequestFulfilled)
			if !ok {
				return nil
			}
			m.logger.Info("Request fulfilled",
				"request", fulfilled.Subject(),
				"dbType", fulfilled.DBType,
				"dbName", fulfilled.DBName,
				"secret", fulfilled.SecretName,
				"deduplicated", fulfilled.Deduplicated)
			return nil
		})

	m.eventBus.Subscribe(eventbus.EventRequestFailed, "dbuser.OnRequestFailed",
		func(_ context.Context, event eventbus.Event) error {
			failed, ok := event.(eventbus.RequestFailed)
			if !ok {
				return nil
			}
			m.logger.Info("Request failed",
				"request", failed.Subject(),
				"dbType", failed.DBType,
				"dbName", failed.DBName,
				"reason", failed.Reason)
			return nil
		})
}
