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

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	dbusersv1alpha1 "github.com/db-user-operator/api/v1alpha1"
	"github.com/db-user-operator/internal/provision"
	"github.com/db-user-operator/internal/secret"
)

// Repository performs the side effects of request fulfillment: running
// the provisioning script and writing Kubernetes objects.
type Repository struct {
	client        client.Client
	runner        provision.Runner
	secretManager *secret.Manager
	logger        logr.Logger
}

// RepositoryConfig holds dependencies for the repository.
type RepositoryConfig struct {
	Client        client.Client
	Runner        provision.Runner
	SecretManager *secret.Manager
	Logger        logr.Logger
}

// NewRepository creates a new request repository.
func NewRepository(cfg RepositoryConfig) *Repository {
	return &Repository{
		client:        cfg.Client,
		runner:        cfg.Runner,
		secretManager: cfg.SecretManager,
		logger:        cfg.Logger,
	}
}

// Provision implements RepositoryInterface.
func (r *Repository) Provision(ctx context.Context, cmd provision.Command) error {
	return r.runner.Provision(ctx, cmd)
}

// ResolveHost implements RepositoryInterface.
func (r *Repository) ResolveHost(dbType dbusersv1alpha1.DBType) (string, error) {
	return r.secretManager.ResolveHost(dbType)
}

// SecretExists implements RepositoryInterface.
func (r *Repository) SecretExists(ctx context.Context, namespace, name string) (bool, error) {
	return r.secretManager.Exists(ctx, namespace, name)
}

// CreateSecret implements RepositoryInterface.
func (r *Repository) CreateSecret(ctx context.Context, namespace, name string, data map[string][]byte) error {
	return r.secretManager.Create(ctx, namespace, name, data)
}

// CreateRecord implements RepositoryInterface. The record is named after
// the request and deliberately carries no owner reference: it must
// survive deletion of the request object.
func (r *Repository) CreateRecord(ctx context.Context, request *dbusersv1alpha1.DbUserRequest) error {
	now := metav1.Now()
	record := &dbusersv1alpha1.DbUser{
		ObjectMeta: metav1.ObjectMeta{
			Name:      request.Name,
			Namespace: request.Namespace,
			Labels: map[string]string{
				"app.kubernetes.io/managed-by": "db-user-operator",
			},
		},
		Spec: dbusersv1alpha1.DbUserSpec{
			DBName:     request.Spec.DBName,
			SecretName: request.Spec.SecretName,
			Created:    &now,
		},
	}

	if err := r.client.Create(ctx, record); err != nil {
		return provision.NewStoreError("create DbUser record", err)
	}

	r.logger.V(1).Info("Created DbUser record",
		"name", record.Name, "namespace", record.Namespace, "dbName", record.Spec.DBName)
	return nil
}
