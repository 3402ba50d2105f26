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
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	dbusersv1alpha1 "github.com/db-user-operator/api/v1alpha1"
	"github.com/db-user-operator/internal/provision"
	"github.com/db-user-operator/internal/reconcileutil"
	reconcilecontext "github.com/db-user-operator/internal/shared/reconcile"
	"github.com/db-user-operator/internal/util"
)

type testFixture struct {
	client     client.Client
	controller *Controller
	repo       *MockRepository
	recorder   *record.FakeRecorder
}

func newTestFixture(t *testing.T, strategy Strategy, objects ...client.Object) *testFixture {
	t.Helper()
	scheme := newTestScheme()

	builder := fake.NewClientBuilder().WithScheme(scheme)
	for _, obj := range objects {
		builder = builder.WithObjects(obj)
		if req, ok := obj.(*dbusersv1alpha1.DbUserRequest); ok {
			builder = builder.WithStatusSubresource(req)
		}
	}
	c := builder.Build()

	repo := NewMockRepository()
	handler := NewHandler(HandlerConfig{
		Repository: repo,
		Validator:  NewValidator(),
		Logger:     logr.Discard(),
	})

	recorder := record.NewFakeRecorder(16)
	controller := NewController(ControllerConfig{
		Client:   c,
		Scheme:   scheme,
		Recorder: recorder,
		Handler:  handler,
		Strategy: strategy,
		Logger:   logr.Discard(),
	})

	return &testFixture{
		client:     c,
		controller: controller,
		repo:       repo,
		recorder:   recorder,
	}
}

func reconcileRequest(name, namespace string) ctrl.Request {
	return ctrl.Request{NamespacedName: types.NamespacedName{Name: name, Namespace: namespace}}
}

func (f *testFixture) getRequest(t *testing.T, name, namespace string) *dbusersv1alpha1.DbUserRequest {
	t.Helper()
	req := &dbusersv1alpha1.DbUserRequest{}
	err := f.client.Get(context.Background(),
		types.NamespacedName{Name: name, Namespace: namespace}, req)
	require.NoError(t, err)
	return req
}

func (f *testFixture) receivedEvent(substring string) bool {
	for {
		select {
		case event := <-f.recorder.Events:
			if strings.Contains(event, substring) {
				return true
			}
		default:
			return false
		}
	}
}

func TestControllerReconcileFulfillsRequest(t *testing.T) {
	request := newTestRequest("db-shop", "default")
	f := newTestFixture(t, StrategyPatchStatus, request)

	result, err := f.controller.Reconcile(context.Background(), reconcileRequest("db-shop", "default"))

	require.NoError(t, err)
	assert.Equal(t, ctrl.Result{}, result)
	assert.Equal(t, 1, f.repo.CallsTo("Provision"))
	assert.Equal(t, 1, f.repo.CallsTo("CreateSecret"))
	assert.Equal(t, 1, f.repo.CallsTo("CreateRecord"))

	updated := f.getRequest(t, "db-shop", "default")
	assert.Equal(t, dbusersv1alpha1.PhaseFulfilled, updated.Status.Phase)
	assert.NotNil(t, updated.Status.LastUpdated)
	assert.Equal(t, updated.Generation, updated.Status.ObservedGeneration)

	ready := util.GetCondition(updated.Status.Conditions, util.ConditionTypeReady)
	require.NotNil(t, ready)
	assert.Equal(t, metav1.ConditionTrue, ready.Status)
	assert.Equal(t, util.ReasonFulfilled, ready.Reason)

	validated := util.GetCondition(updated.Status.Conditions, util.ConditionTypeValidated)
	require.NotNil(t, validated)
	assert.Equal(t, metav1.ConditionTrue, validated.Status)

	assert.True(t, f.receivedEvent("Fulfilled"))
}

func TestControllerReconcileInvalidSpec(t *testing.T) {
	request := newTestRequest("db-app", "default")
	request.Spec.DBName = "App_DB"
	f := newTestFixture(t, StrategyPatchStatus, request)

	result, err := f.controller.Reconcile(context.Background(), reconcileRequest("db-app", "default"))

	require.NoError(t, err, "permanent failures are not retried")
	assert.Equal(t, ctrl.Result{}, result)
	assert.Equal(t, 0, f.repo.CallsTo("Provision"))

	updated := f.getRequest(t, "db-app", "default")
	assert.Equal(t, dbusersv1alpha1.PhaseFailed, updated.Status.Phase)
	assert.Contains(t, updated.Status.Message, "db_name")

	validated := util.GetCondition(updated.Status.Conditions, util.ConditionTypeValidated)
	require.NotNil(t, validated)
	assert.Equal(t, metav1.ConditionFalse, validated.Status)

	ready := util.GetCondition(updated.Status.Conditions, util.ConditionTypeReady)
	require.NotNil(t, ready)
	assert.Equal(t, util.ReasonValidationFailed, ready.Reason)

	assert.True(t, f.receivedEvent("Failed"))
}

func TestControllerReconcileRedelivery(t *testing.T) {
	request := newTestRequest("db-shop", "default")
	f := newTestFixture(t, StrategyPatchStatus, request)
	f.repo.SecretExistsFunc = func(context.Context, string, string) (bool, error) {
		return true, nil
	}

	result, err := f.controller.Reconcile(context.Background(), reconcileRequest("db-shop", "default"))

	require.NoError(t, err)
	assert.Equal(t, ctrl.Result{}, result)
	assert.Equal(t, 0, f.repo.CallsTo("Provision"), "existing secret blocks reprovisioning")

	updated := f.getRequest(t, "db-shop", "default")
	assert.Equal(t, dbusersv1alpha1.PhaseFulfilled, updated.Status.Phase)
	assert.Contains(t, updated.Status.Message, "already exists")

	ready := util.GetCondition(updated.Status.Conditions, util.ConditionTypeReady)
	require.NotNil(t, ready)
	assert.Equal(t, util.ReasonAlreadyFulfilled, ready.Reason)
}

func TestControllerReconcileScriptFailure(t *testing.T) {
	request := newTestRequest("db-shop", "default")
	f := newTestFixture(t, StrategyPatchStatus, request)
	f.repo.ProvisionFunc = func(context.Context, provision.Command) error {
		return &provision.ScriptError{
			Script:   "/scripts/create-mariadb-user.sh",
			ExitCode: 1,
			Stdout:   "creating user shop",
			Stderr:   "ERROR 1045: access denied for user root",
		}
	}

	result, err := f.controller.Reconcile(context.Background(), reconcileRequest("db-shop", "default"))

	require.NoError(t, err)
	assert.Equal(t, ctrl.Result{}, result)

	updated := f.getRequest(t, "db-shop", "default")
	assert.Equal(t, dbusersv1alpha1.PhaseFailed, updated.Status.Phase)
	assert.Contains(t, updated.Status.Message, "exited with code 1")
	assert.Contains(t, updated.Status.Message, "creating user shop")
	assert.Contains(t, updated.Status.Message, "access denied for user root",
		"stdio is the author's only diagnostic channel")

	ready := util.GetCondition(updated.Status.Conditions, util.ConditionTypeReady)
	require.NotNil(t, ready)
	assert.Equal(t, util.ReasonProvisioningFailed, ready.Reason)

	assert.True(t, f.receivedEvent("access denied for user root"))
}

func TestControllerReconcileScriptFailureTruncatesOutput(t *testing.T) {
	request := newTestRequest("db-shop", "default")
	f := newTestFixture(t, StrategyPatchStatus, request)
	f.repo.ProvisionFunc = func(context.Context, provision.Command) error {
		return &provision.ScriptError{
			Script:   "/scripts/create-mariadb-user.sh",
			ExitCode: 1,
			Stderr:   strings.Repeat("x", 8192),
		}
	}

	_, err := f.controller.Reconcile(context.Background(), reconcileRequest("db-shop", "default"))

	require.NoError(t, err)
	updated := f.getRequest(t, "db-shop", "default")
	assert.LessOrEqual(t, len(updated.Status.Message), maxStatusMessage)
	assert.Contains(t, updated.Status.Message, "exited with code 1")
}

func TestControllerReconcileTransientErrorRequeues(t *testing.T) {
	request := newTestRequest("db-shop", "default")
	f := newTestFixture(t, StrategyPatchStatus, request)
	f.repo.SecretExistsFunc = func(context.Context, string, string) (bool, error) {
		return false, apierrors.NewServiceUnavailable("etcd is down")
	}

	result, err := f.controller.Reconcile(context.Background(), reconcileRequest("db-shop", "default"))

	require.Error(t, err)
	assert.Equal(t, reconcileutil.RequeueStore, result.RequeueAfter)

	updated := f.getRequest(t, "db-shop", "default")
	assert.NotEqual(t, dbusersv1alpha1.PhaseFailed, updated.Status.Phase,
		"retryable errors must not park the request in a terminal phase")
}

func TestControllerReconcilePartialFailure(t *testing.T) {
	request := newTestRequest("db-shop", "default")
	f := newTestFixture(t, StrategyPatchStatus, request)
	f.repo.CreateSecretFunc = func(context.Context, string, string, map[string][]byte) error {
		return assert.AnError
	}

	result, err := f.controller.Reconcile(context.Background(), reconcileRequest("db-shop", "default"))

	require.NoError(t, err, "a provisioned user must not trigger a retry loop")
	assert.Equal(t, ctrl.Result{}, result)
	assert.Equal(t, 1, f.repo.CallsTo("Provision"))

	updated := f.getRequest(t, "db-shop", "default")
	assert.Equal(t, dbusersv1alpha1.PhaseFailed, updated.Status.Phase)
}

func TestControllerReconcileTerminalPhaseGate(t *testing.T) {
	for _, phase := range []dbusersv1alpha1.Phase{dbusersv1alpha1.PhaseFulfilled, dbusersv1alpha1.PhaseFailed} {
		t.Run(string(phase), func(t *testing.T) {
			request := newTestRequest("db-shop", "default")
			request.Status.Phase = phase
			f := newTestFixture(t, StrategyPatchStatus, request)

			result, err := f.controller.Reconcile(context.Background(), reconcileRequest("db-shop", "default"))

			require.NoError(t, err)
			assert.Equal(t, ctrl.Result{}, result)
			assert.Empty(t, f.repo.Calls, "terminal requests are never reprocessed")
		})
	}
}

func TestControllerReconcileDeleteStrategy(t *testing.T) {
	request := newTestRequest("db-shop", "default")
	f := newTestFixture(t, StrategyDelete, request)

	result, err := f.controller.Reconcile(context.Background(), reconcileRequest("db-shop", "default"))

	require.NoError(t, err)
	assert.Equal(t, ctrl.Result{}, result)
	assert.Equal(t, 1, f.repo.CallsTo("Provision"))

	err = f.client.Get(context.Background(),
		types.NamespacedName{Name: "db-shop", Namespace: "default"},
		&dbusersv1alpha1.DbUserRequest{})
	assert.True(t, apierrors.IsNotFound(err), "fulfilled request should be deleted")
}

func TestControllerReconcileDeleteStrategyKeepsFailedRequests(t *testing.T) {
	request := newTestRequest("db-shop", "default")
	f := newTestFixture(t, StrategyDelete, request)
	f.repo.ProvisionFunc = func(context.Context, provision.Command) error {
		return &provision.ScriptError{Script: "/scripts/create-mariadb-user.sh", ExitCode: 2}
	}

	_, err := f.controller.Reconcile(context.Background(), reconcileRequest("db-shop", "default"))

	require.NoError(t, err)
	updated := f.getRequest(t, "db-shop", "default")
	assert.Equal(t, dbusersv1alpha1.PhaseFailed, updated.Status.Phase)
}

func TestControllerReconcileUsesAmbientReconcileID(t *testing.T) {
	request := newTestRequest("db-shop", "default")
	f := newTestFixture(t, StrategyPatchStatus, request)

	ctx, _, id := reconcilecontext.WithReconcileID(context.Background())
	_, err := f.controller.Reconcile(ctx, reconcileRequest("db-shop", "default"))

	require.NoError(t, err)
	assert.True(t, f.receivedEvent("["+id+"]"),
		"events carry the tracing id injected by the controller builder")
}

func TestControllerReconcileMissingRequest(t *testing.T) {
	f := newTestFixture(t, StrategyPatchStatus)

	result, err := f.controller.Reconcile(context.Background(), reconcileRequest("gone", "default"))

	require.NoError(t, err)
	assert.Equal(t, ctrl.Result{}, result)
	assert.Empty(t, f.repo.Calls)
}
