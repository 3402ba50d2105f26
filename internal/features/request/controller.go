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
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	dbusersv1alpha1 "github.com/db-user-operator/api/v1alpha1"
	"github.com/db-user-operator/internal/logging"
	"github.com/db-user-operator/internal/provision"
	"github.com/db-user-operator/internal/reconcileutil"
	reconcilecontext "github.com/db-user-operator/internal/shared/reconcile"
	"github.com/db-user-operator/internal/util"
)

// Strategy controls what happens to a fulfilled request object.
type Strategy string

const (
	// StrategyPatchStatus marks the request Fulfilled and leaves it in
	// place for inspection.
	StrategyPatchStatus Strategy = "patch-status"

	// StrategyDelete removes the request object once fulfilled. Failed
	// requests are kept either way so the author can read the error.
	StrategyDelete Strategy = "delete"
)

// maxStatusMessage caps status and event messages. Script stdio is
// included up to this limit; the logs carry it in full.
const maxStatusMessage = 1024

// Controller handles K8s reconciliation for DbUserRequest resources.
type Controller struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder
	handler  API
	strategy Strategy
	logger   logr.Logger
}

// ControllerConfig holds dependencies for the controller.
type ControllerConfig struct {
	Client   client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder
	Handler  API
	Strategy Strategy
	Logger   logr.Logger
}

// NewController creates a new request controller.
func NewController(cfg ControllerConfig) *Controller {
	strategy := cfg.Strategy
	if strategy == "" {
		strategy = StrategyPatchStatus
	}
	return &Controller{
		Client:   cfg.Client,
		Scheme:   cfg.Scheme,
		Recorder: cfg.Recorder,
		handler:  cfg.Handler,
		strategy: strategy,
		logger:   cfg.Logger,
	}
}

// +kubebuilder:rbac:groups=dbusers.notepass.de,resources=dbuserrequests,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=dbusers.notepass.de,resources=dbuserrequests/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=dbusers.notepass.de,resources=dbusers,verbs=get;list;watch;create
// +kubebuilder:rbac:groups="",resources=secrets,verbs=get;list;watch;create
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch

// Reconcile implements the reconciliation loop for DbUserRequest resources.
func (c *Controller) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	// The reconcileID comes from the controller builder's tracing decorator.
	log := logf.FromContext(ctx).WithValues("dbuserrequest", req.NamespacedName)
	ctx = logf.IntoContext(ctx, log)

	request := &dbusersv1alpha1.DbUserRequest{}
	if err := c.Get(ctx, req.NamespacedName, request); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	if !request.DeletionTimestamp.IsZero() {
		// No finalizer: the DbUser record and the Secret outlive the request.
		return ctrl.Result{}, nil
	}

	// Terminal phases are never reprocessed. Requests that failed
	// validation or provisioning need a new object, not a retry loop.
	switch request.Status.Phase {
	case dbusersv1alpha1.PhaseFulfilled, dbusersv1alpha1.PhaseFailed:
		log.V(1).Info("Request already in terminal phase", "phase", request.Status.Phase)
		return ctrl.Result{}, nil
	}

	result, err := c.handler.Fulfill(ctx, request)
	if err != nil {
		return c.reportFailure(ctx, request, err)
	}
	return c.reportFulfilled(ctx, request, result)
}

func (c *Controller) reportFulfilled(ctx context.Context, request *dbusersv1alpha1.DbUserRequest, result *Result) (ctrl.Result, error) {
	log := logf.FromContext(ctx)

	reason := util.ReasonFulfilled
	if result.Deduplicated {
		reason = util.ReasonAlreadyFulfilled
	}
	c.Recorder.Event(request, corev1.EventTypeNormal, reason,
		reconcilecontext.EventMessage(ctx, result.Message))

	if c.strategy == StrategyDelete {
		log.Info("Deleting fulfilled request")
		if err := c.Delete(ctx, request); client.IgnoreNotFound(err) != nil {
			return reconcileutil.ClassifyRequeue(provision.NewStoreError("delete fulfilled request", err))
		}
		return ctrl.Result{}, nil
	}

	err := c.patchStatus(ctx, request, func(r *dbusersv1alpha1.DbUserRequest) {
		r.Status.Phase = dbusersv1alpha1.PhaseFulfilled
		r.Status.Message = truncate(result.Message)
		util.SetValidatedCondition(&r.Status.Conditions, metav1.ConditionTrue,
			util.ReasonValidationPassed, "Request spec is valid")
		util.SetReadyCondition(&r.Status.Conditions, metav1.ConditionTrue,
			reason, result.Message)
	})
	if err != nil {
		log.Error(err, "Failed to update status after fulfillment")
		return reconcileutil.ClassifyRequeue(provision.NewStoreError("update status", err))
	}
	return ctrl.Result{}, nil
}

func (c *Controller) reportFailure(ctx context.Context, request *dbusersv1alpha1.DbUserRequest, ferr error) (ctrl.Result, error) {
	log := logf.FromContext(ctx)

	if reconcileutil.ClassifyError(ferr) != reconcileutil.ErrorClassPermanent {
		log.Error(ferr, "Fulfillment attempt failed, will retry")
		c.Recorder.Event(request, corev1.EventTypeWarning, "RetryableError",
			reconcilecontext.EventMessage(ctx, truncate(summarize(ferr))))
		return reconcileutil.ClassifyRequeue(ferr)
	}

	reason := util.ReasonUnexpectedError
	validated := metav1.ConditionTrue
	switch {
	case provision.IsValidationError(ferr):
		reason = util.ReasonValidationFailed
		validated = metav1.ConditionFalse
	case provision.IsScriptError(ferr):
		reason = util.ReasonProvisioningFailed
	case provision.IsPartialFulfillment(ferr):
		reason = util.ReasonStoreError
	}

	log.Error(ferr, "Request failed terminally", "reason", reason)
	c.Recorder.Event(request, corev1.EventTypeWarning, "Failed",
		reconcilecontext.EventMessage(ctx, truncate(summarize(ferr))))

	// Failed requests keep their object under both strategies so the
	// author has something to inspect.
	err := c.patchStatus(ctx, request, func(r *dbusersv1alpha1.DbUserRequest) {
		r.Status.Phase = dbusersv1alpha1.PhaseFailed
		r.Status.Message = truncate(summarize(ferr))
		util.SetValidatedCondition(&r.Status.Conditions, validated,
			validatedReason(validated), validatedMessage(validated))
		util.SetReadyCondition(&r.Status.Conditions, metav1.ConditionFalse,
			reason, truncate(summarize(ferr)))
	})
	if err != nil {
		log.Error(err, "Failed to update status after failure")
		return reconcileutil.ClassifyRequeue(provision.NewStoreError("update status", err))
	}
	return ctrl.Result{}, nil
}

// patchStatus re-reads the request and applies the mutation under the
// standard conflict retry policy. The mutation always stamps generation
// and timestamp bookkeeping.
func (c *Controller) patchStatus(ctx context.Context, request *dbusersv1alpha1.DbUserRequest, mutate func(*dbusersv1alpha1.DbUserRequest)) error {
	return util.RetryOnConflict(ctx, util.StatusUpdateRetryConfig(), func() error {
		current := &dbusersv1alpha1.DbUserRequest{}
		if err := c.Get(ctx, client.ObjectKeyFromObject(request), current); err != nil {
			return err
		}
		mutate(current)
		now := metav1.Now()
		current.Status.LastUpdated = &now
		current.Status.ObservedGeneration = current.Generation
		return c.Status().Update(ctx, current)
	})
}

// SetupWithManager registers the controller with the manager.
func (c *Controller) SetupWithManager(mgr ctrl.Manager) error {
	return logging.BuildController(mgr).
		For(&dbusersv1alpha1.DbUserRequest{}).
		Named("dbuserrequest").
		Complete(c)
}

// summarize renders an error for status and events. Script failures keep
// their captured stdio: the status message is the only diagnostic channel
// for authors without log access.
func summarize(err error) string {
	var scriptErr *provision.ScriptError
	if errors.As(err, &scriptErr) {
		var b strings.Builder
		fmt.Fprintf(&b, "script %s exited with code %d", scriptErr.Script, scriptErr.ExitCode)
		if out := strings.TrimSpace(scriptErr.Stdout); out != "" {
			b.WriteString("\nstdout: " + out)
		}
		if errOut := strings.TrimSpace(scriptErr.Stderr); errOut != "" {
			b.WriteString("\nstderr: " + errOut)
		}
		return b.String()
	}
	return err.Error()
}

func truncate(s string) string {
	if len(s) <= maxStatusMessage {
		return s
	}
	return s[:maxStatusMessage-3] + "..."
}

func validatedReason(status metav1.ConditionStatus) string {
	if status == metav1.ConditionTrue {
		return util.ReasonValidationPassed
	}
	return util.ReasonValidationFailed
}

func validatedMessage(status metav1.ConditionStatus) string {
	if status == metav1.ConditionTrue {
		return "Request spec is valid"
	}
	return "Request spec is invalid"
}
