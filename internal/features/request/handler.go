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
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	dbusersv1alpha1 "github.com/db-user-operator/api/v1alpha1"
	"github.com/db-user-operator/internal/metrics"
	"github.com/db-user-operator/internal/provision"
	"github.com/db-user-operator/internal/secret"
	"github.com/db-user-operator/internal/shared/eventbus"
)

// Handler contains the business logic for fulfilling requests.
type Handler struct {
	repo           RepositoryInterface
	validator      *Validator
	eventBus       eventbus.Bus
	passwordLength int
	logger         logr.Logger
}

// HandlerConfig holds dependencies for the handler.
type HandlerConfig struct {
	Repository     RepositoryInterface
	Validator      *Validator
	EventBus       eventbus.Bus
	PasswordLength int
	Logger         logr.Logger
}

// NewHandler creates a new request handler.
func NewHandler(cfg HandlerConfig) *Handler {
	length := cfg.PasswordLength
	if length == 0 {
		length = secret.DefaultPasswordLength
	}
	return &Handler{
		repo:           cfg.Repository,
		validator:      cfg.Validator,
		eventBus:       cfg.EventBus,
		passwordLength: length,
		logger:         cfg.Logger,
	}
}

// Fulfill implements API.
func (h *Handler) Fulfill(ctx context.Context, request *dbusersv1alpha1.DbUserRequest) (*Result, error) {
	log := logf.FromContext(ctx).WithValues("request", request.Name, "namespace", request.Namespace)
	spec := &request.Spec
	subject := request.Namespace + "/" + request.Name

	if err := h.validator.Validate(spec); err != nil {
		metrics.RecordOutcome(metrics.OutcomeInvalid, dbTypeLabel(string(spec.DBType)), request.Namespace)
		return nil, err
	}
	dbType := dbusersv1alpha1.NormalizeDBType(string(spec.DBType))
	log = log.WithValues("dbType", dbType, "dbName", spec.DBName)

	// Idempotency guard. A request whose credential Secret already exists
	// has been fulfilled before; redeliveries and controller restarts
	// must not provision a second time.
	exists, err := h.repo.SecretExists(ctx, request.Namespace, spec.SecretName)
	if err != nil {
		return nil, provision.NewStoreError("check credential secret", err)
	}
	if exists {
		log.Info("Credential secret already exists, skipping provisioning",
			"secret", spec.SecretName)
		metrics.RecordDedupSkip(request.Namespace)
		metrics.RecordOutcome(metrics.OutcomeSkipped, string(dbType), request.Namespace)
		h.publish(ctx, eventbus.NewRequestFulfilled(subject, dbType, spec.DBName, spec.SecretName, true))
		return &Result{
			Deduplicated: true,
			SecretName:   spec.SecretName,
			Message:      fmt.Sprintf("credential secret %s already exists", spec.SecretName),
		}, nil
	}

	host, err := h.repo.ResolveHost(dbType)
	if err != nil {
		return nil, fmt.Errorf("resolve database host: %w", err)
	}

	password, err := secret.GeneratePassword(h.passwordLength)
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}

	log.Info("Provisioning database user")
	start := time.Now()
	err = h.repo.Provision(ctx, provision.Command{
		DBType:     dbType,
		DBName:     spec.DBName,
		Password:   password,
		Extensions: spec.ResolveExtensions(),
	})
	if err != nil {
		metrics.RecordProvisionDuration(string(dbType), metrics.StatusFailure, time.Since(start).Seconds())
		metrics.RecordProvisionFailure(string(dbType), request.Namespace)
		metrics.RecordOutcome(metrics.OutcomeFailed, string(dbType), request.Namespace)
		h.publish(ctx, eventbus.NewRequestFailed(subject, dbType, spec.DBName, err.Error()))
		return nil, err
	}
	metrics.RecordProvisionDuration(string(dbType), metrics.StatusSuccess, time.Since(start).Seconds())
	h.publish(ctx, eventbus.NewUserProvisioned(subject, dbType, spec.DBName))

	data := secret.BuildCredentialData(spec, password, host)
	if err := h.repo.CreateSecret(ctx, request.Namespace, spec.SecretName, data); err != nil {
		if apierrors.IsAlreadyExists(err) {
			// Lost a creation race with another writer. The attempt fails;
			// the retry converges through the dedup guard.
			log.Info("Credential secret appeared concurrently", "secret", spec.SecretName)
			return nil, provision.NewStoreError("create credential secret", err)
		}
		metrics.RecordOutcome(metrics.OutcomeFailed, string(dbType), request.Namespace)
		h.publish(ctx, eventbus.NewRequestFailed(subject, dbType, spec.DBName, err.Error()))
		return nil, fmt.Errorf("%w: write secret %s: %w",
			provision.ErrPartialFulfillment, spec.SecretName, err)
	}

	if err := h.repo.CreateRecord(ctx, request); err != nil {
		if !apierrors.IsAlreadyExists(err) {
			metrics.RecordOutcome(metrics.OutcomeFailed, string(dbType), request.Namespace)
			h.publish(ctx, eventbus.NewRequestFailed(subject, dbType, spec.DBName, err.Error()))
			return nil, fmt.Errorf("%w: write DbUser record: %w",
				provision.ErrPartialFulfillment, err)
		}
		log.V(1).Info("DbUser record already exists")
	}

	log.Info("Request fulfilled", "secret", spec.SecretName)
	metrics.RecordOutcome(metrics.OutcomeFulfilled, string(dbType), request.Namespace)
	h.publish(ctx, eventbus.NewRequestFulfilled(subject, dbType, spec.DBName, spec.SecretName, false))

	return &Result{
		Provisioned: true,
		SecretName:  spec.SecretName,
		Message:     fmt.Sprintf("user for database %s provisioned", spec.DBName),
	}, nil
}

// dbTypeLabel bounds the metric label to the known database families.
// Anything the validator rejects collapses to a single value so
// author-supplied garbage cannot grow label cardinality.
func dbTypeLabel(s string) string {
	t := dbusersv1alpha1.NormalizeDBType(s)
	switch t {
	case dbusersv1alpha1.DBTypeMariaDB, dbusersv1alpha1.DBTypePostgres:
		return string(t)
	}
	return "invalid"
}

func (h *Handler) publish(ctx context.Context, event eventbus.Event) {
	if h.eventBus == nil {
		return
	}
	h.eventBus.PublishAsync(ctx, event)
}
