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

package request

import (
	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/db-user-operator/internal/provision"
	"github.com/db-user-operator/internal/secret"
	"github.com/db-user-operator/internal/shared/eventbus"
)

// Module represents the DbUserRequest feature module.
type Module struct {
	handler    *Handler
	controller *Controller
	repository *Repository
	logger     logr.Logger
}

// ModuleConfig holds dependencies for the request module.
type ModuleConfig struct {
	Client         client.Client
	Scheme         *runtime.Scheme
	Recorder       record.EventRecorder
	EventBus       eventbus.Bus
	Runner         provision.Runner
	SecretManager  *secret.Manager
	Strategy       Strategy
	PasswordLength int
	Logger         logr.Logger
}

// NewModule creates and wires the request module.
func NewModule(cfg ModuleConfig) (*Module, error) {
	logger := cfg.Logger.WithName("request")

	repo := NewRepository(RepositoryConfig{
		Client:        cfg.Client,
		Runner:        cfg.Runner,
		SecretManager: cfg.SecretManager,
		Logger:        logger.WithName("repository"),
	})

	handler := NewHandler(HandlerConfig{
		Repository:     repo,
		Validator:      NewValidator(),
		EventBus:       cfg.EventBus,
		PasswordLength: cfg.PasswordLength,
		Logger:         logger.WithName("handler"),
	})

	controller := NewController(ControllerConfig{
		Client:   cfg.Client,
		Scheme:   cfg.Scheme,
		Recorder: cfg.Recorder,
		Handler:  handler,
		Strategy: cfg.Strategy,
		Logger:   logger.WithName("controller"),
	})

	return &Module{
		handler:    handler,
		controller: controller,
		repository: repo,
		logger:     logger,
	}, nil
}

// SetupWithManager registers the controller with the manager.
func (m *Module) SetupWithManager(mgr ctrl.Manager) error {
	return m.controller.SetupWithManager(mgr)
}

// Handler returns the module's handler for external use.
func (m *Module) Handler() API {
	return m.handler
}
