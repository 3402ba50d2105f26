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

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"

	dbusersv1alpha1 "github.com/db-user-operator/api/v1alpha1"
	"github.com/db-user-operator/internal/provision"
)

// MockRepository is a mock implementation of repository operations for testing.
type MockRepository struct {
	ProvisionFunc    func(ctx context.Context, cmd provision.Command) error
	ResolveHostFunc  func(dbType dbusersv1alpha1.DBType) (string, error)
	SecretExistsFunc func(ctx context.Context, namespace, name string) (bool, error)
	CreateSecretFunc func(ctx context.Context, namespace, name string, data map[string][]byte) error
	CreateRecordFunc func(ctx context.Context, request *dbusersv1alpha1.DbUserRequest) error

	// Call tracking
	Calls []MockCall
}

// MockCall records a method call for verification.
type MockCall struct {
	Method string
	Args   []interface{}
}

// NewMockRepository creates a new mock repository with default implementations.
func NewMockRepository() *MockRepository {
	m := &MockRepository{
		Calls: make([]MockCall, 0),
	}

	m.ProvisionFunc = func(ctx context.Context, cmd provision.Command) error {
		return nil
	}
	m.ResolveHostFunc = func(dbType dbusersv1alpha1.DBType) (string, error) {
		return "db.example.com", nil
	}
	m.SecretExistsFunc = func(ctx context.Context, namespace, name string) (bool, error) {
		return false, nil
	}
	m.CreateSecretFunc = func(ctx context.Context, namespace, name string, data map[string][]byte) error {
		return nil
	}
	m.CreateRecordFunc = func(ctx context.Context, request *dbusersv1alpha1.DbUserRequest) error {
		return nil
	}

	return m
}

func (m *MockRepository) Provision(ctx context.Context, cmd provision.Command) error {
	m.Calls = append(m.Calls, MockCall{Method: "Provision", Args: []interface{}{cmd}})
	return m.ProvisionFunc(ctx, cmd)
}

func (m *MockRepository) ResolveHost(dbType dbusersv1alpha1.DBType) (string, error) {
	m.Calls = append(m.Calls, MockCall{Method: "ResolveHost", Args: []interface{}{dbType}})
	return m.ResolveHostFunc(dbType)
}

func (m *MockRepository) SecretExists(ctx context.Context, namespace, name string) (bool, error) {
	m.Calls = append(m.Calls, MockCall{Method: "SecretExists", Args: []interface{}{namespace, name}})
	return m.SecretExistsFunc(ctx, namespace, name)
}

func (m *MockRepository) CreateSecret(ctx context.Context, namespace, name string, data map[string][]byte) error {
	m.Calls = append(m.Calls, MockCall{Method: "CreateSecret", Args: []interface{}{namespace, name, data}})
	return m.CreateSecretFunc(ctx, namespace, name, data)
}

func (m *MockRepository) CreateRecord(ctx context.Context, request *dbusersv1alpha1.DbUserRequest) error {
	m.Calls = append(m.Calls, MockCall{Method: "CreateRecord", Args: []interface{}{request.Name}})
	return m.CreateRecordFunc(ctx, request)
}

// CallsTo returns the number of calls to a method.
func (m *MockRepository) CallsTo(method string) int {
	count := 0
	for _, c := range m.Calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

var _ RepositoryInterface = (*MockRepository)(nil)

func newTestScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	_ = clientgoscheme.AddToScheme(scheme)
	_ = dbusersv1alpha1.AddToScheme(scheme)
	return scheme
}

func newTestRequest(name, namespace string) *dbusersv1alpha1.DbUserRequest {
	return &dbusersv1alpha1.DbUserRequest{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Spec: dbusersv1alpha1.DbUserRequestSpec{
			DBType:     "mariadb",
			DBName:     "shop",
			SecretName: "shop-credentials",
		},
	}
}
