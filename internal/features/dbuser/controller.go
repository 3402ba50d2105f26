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

// Package dbuser provides the DbUser feature module. DbUser records are
// write-once provenance markers; this module only observes them.
package dbuser

import (
	"context"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	dbusersv1alpha1 "github.com/db-user-operator/api/v1alpha1"
	"github.com/db-user-operator/internal/logging"
	"github.com/db-user-operator/internal/metrics"
)

// Controller observes DbUser records. Deleting a record does not
// de-provision the database user; the controller logs the deletion so
// operators can reconcile cluster state against the databases manually.
type Controller struct {
	client.Client
	Scheme *runtime.Scheme
	logger logr.Logger
}

// ControllerConfig holds dependencies for the controller.
type ControllerConfig struct {
	Client client.Client
	Scheme *runtime.Scheme
	Logger logr.Logger
}

// NewController creates a new DbUser observer controller.
func NewController(cfg ControllerConfig) *Controller {
	return &Controller{
		Client: cfg.Client,
		Scheme: cfg.Scheme,
		logger: cfg.Logger,
	}
}

// +kubebuilder:rbac:groups=dbusers.notepass.de,resources=dbusers,verbs=get;list;watch

// Reconcile implements the observation loop for DbUser records.
func (c *Controller) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	log := logf.FromContext(ctx).WithValues("dbuser", req.NamespacedName)
	ctx = logf.IntoContext(ctx, log)

	record := &dbusersv1alpha1.DbUser{}
	if err := c.Get(ctx, req.NamespacedName, record); err != nil {
		if apierrors.IsNotFound(err) {
			log.Info("DbUser record deleted; the database user still exists and must be removed manually if unwanted")
			metrics.RecordObservedDeletion(req.Namespace)
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	log.V(1).Info("Observed DbUser record",
		"dbName", record.Spec.DBName, "secret", record.Spec.SecretName)
	return ctrl.Result{}, nil
}

// SetupWithManager registers the controller with the manager.
func (c *Controller) SetupWithManager(mgr ctrl.Manager) error {
	return logging.BuildController(mgr).
		For(&dbusersv1alpha1.DbUser{}).
		Named("dbuser").
		Complete(c)
}
