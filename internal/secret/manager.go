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

// Package secret materializes credential Secrets and provides the
// Secret-existence check the idempotency guard is built on.
package secret

import (
	"context"
	"fmt"
	"os"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	dbusersv1alpha1 "github.com/db-user-operator/api/v1alpha1"
)

// Credential secret keys. These names are an external contract consumed by
// downstream workloads and must not change.
const (
	KeyDB         = "dbDb"
	KeyHost       = "dbHost"
	KeyPass       = "dbPass"
	KeySchema     = "dbSchema"
	KeyType       = "dbType"
	KeyTypeAlt    = "dbTypeAlt"
	KeyUser       = "dbUser"
	KeyTypeCustom = "dbTypeCustom"
)

// defaultSchema is the fixed schema value exported for every credential.
const defaultSchema = "public"

// Manager handles credential secret operations.
type Manager struct {
	client client.Client

	// Environment variable names holding the per-family database host.
	postgresHostEnv string
	mariadbHostEnv  string
}

// ManagerConfig holds dependencies for the manager.
type ManagerConfig struct {
	Client          client.Client
	PostgresHostEnv string
	MariaDBHostEnv  string
}

// NewManager creates a new secret manager.
func NewManager(cfg ManagerConfig) *Manager {
	postgresHostEnv := cfg.PostgresHostEnv
	if postgresHostEnv == "" {
		postgresHostEnv = "PGHOST"
	}
	mariadbHostEnv := cfg.MariaDBHostEnv
	if mariadbHostEnv == "" {
		mariadbHostEnv = "MYSQL_HOST"
	}
	return &Manager{
		client:          cfg.Client,
		postgresHostEnv: postgresHostEnv,
		mariadbHostEnv:  mariadbHostEnv,
	}
}

// ResolveHost returns the database host for a family, read from the
// process environment.
func (m *Manager) ResolveHost(dbType dbusersv1alpha1.DBType) (string, error) {
	envKey := m.mariadbHostEnv
	if dbType == dbusersv1alpha1.DBTypePostgres {
		envKey = m.postgresHostEnv
	}
	host := os.Getenv(envKey)
	if host == "" {
		return "", fmt.Errorf("host environment variable %s is not set", envKey)
	}
	return host, nil
}

// BuildCredentialData assembles the credential payload for a request.
// The store client transport-encodes the byte values on the wire; no local
// base64 step is needed beyond the Data field's own contract.
func BuildCredentialData(spec *dbusersv1alpha1.DbUserRequestSpec, password, host string) map[string][]byte {
	dbType := dbusersv1alpha1.NormalizeDBType(spec.DBType)
	dbName := spec.DBName

	data := map[string][]byte{
		KeyDB:      []byte(dbName),
		KeyHost:    []byte(host),
		KeyPass:    []byte(password),
		KeySchema:  []byte(defaultSchema),
		KeyType:    []byte(dbType),
		KeyTypeAlt: []byte(dbusersv1alpha1.AltTypeName(dbType)),
		KeyUser:    []byte(dbName),
	}

	if spec.CustomDBNameProp != "" {
		data[KeyTypeCustom] = []byte(spec.CustomDBNameProp)
	}

	return data
}

// Exists reports whether a secret with the given name exists. NotFound is
// not an error; anything else aborts the reconciliation attempt.
func (m *Manager) Exists(ctx context.Context, namespace, name string) (bool, error) {
	secret := &corev1.Secret{}
	err := m.client.Get(ctx, types.NamespacedName{
		Namespace: namespace,
		Name:      name,
	}, secret)
	if err != nil {
		if errors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Create writes a new credential secret. Create-only: a name conflict is a
// hard error for this attempt, never an update. The guard exists to keep
// this path from being reached twice in normal operation.
func (m *Manager) Create(ctx context.Context, namespace, name string, data map[string][]byte) error {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Type: corev1.SecretTypeOpaque,
		Data: data,
	}
	return m.client.Create(ctx, secret)
}
