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

// Package request provides the DbUserRequest feature module. It turns a
// declarative credential request into a database user, a credential
// Secret, and a DbUser provenance record.
package request

import (
	"context"

	dbusersv1alpha1 "github.com/db-user-operator/api/v1alpha1"
	"github.com/db-user-operator/internal/provision"
)

// API defines the public interface for the request module.
type API interface {
	// Fulfill processes a DbUserRequest end to end: validation,
	// idempotency check, user provisioning, credential Secret, and
	// DbUser record. It does not touch the request's status.
	Fulfill(ctx context.Context, request *dbusersv1alpha1.DbUserRequest) (*Result, error)
}

// Result describes the outcome of fulfilling a request.
type Result struct {
	// Provisioned is true when the provisioning script was executed.
	Provisioned bool

	// Deduplicated is true when the credential Secret already existed
	// and fulfillment was skipped.
	Deduplicated bool

	SecretName string
	Message    string
}

// RepositoryInterface defines the side-effect operations the handler
// depends on. It exists so tests can substitute mocks.
type RepositoryInterface interface {
	// Provision runs the provisioning script for the database type.
	Provision(ctx context.Context, cmd provision.Command) error

	// ResolveHost returns the database host address for the type.
	ResolveHost(dbType dbusersv1alpha1.DBType) (string, error)

	// SecretExists reports whether the credential Secret already exists.
	SecretExists(ctx context.Context, namespace, name string) (bool, error)

	// CreateSecret writes the credential Secret. It never overwrites.
	CreateSecret(ctx context.Context, namespace, name string, data map[string][]byte) error

	// CreateRecord writes the DbUser provenance record for a fulfilled
	// request.
	CreateRecord(ctx context.Context, request *dbusersv1alpha1.DbUserRequest) error
}

// Ensure Repository implements RepositoryInterface.
var _ RepositoryInterface = (*Repository)(nil)
