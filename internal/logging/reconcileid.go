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

package logging

import (
	"context"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	reconcilecontext "github.com/db-user-operator/internal/shared/reconcile"
)

// withReconcileID is a reconciler decorator that injects a unique reconcileID
// into the context logger before each reconciliation. This enables filtering
// all log lines from a single reconciliation cycle.
type withReconcileID struct {
	inner reconcile.Reconciler
}

// Reconcile implements reconcile.Reconciler by enriching the context with
// a unique reconcileID, then delegating to the inner reconciler.
func (w *withReconcileID) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	ctx, log, _ := reconcilecontext.WithReconcileID(ctx)
	ctx = logr.NewContext(ctx, log)
	return w.inner.Reconcile(ctx, req)
}

// LoggerFromContext returns the context logger enriched with the
// reconcileID when one is present.
func LoggerFromContext(ctx context.Context) logr.Logger {
	log := logf.FromContext(ctx)
	if id := reconcilecontext.FromContext(ctx); id != "" {
		return log.WithValues("reconcileID", id)
	}
	return log
}
