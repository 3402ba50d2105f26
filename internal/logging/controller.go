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

// Package logging applies cross-cutting reconciler middleware and log
// enrichment shared by every controller in the operator.
package logging

import (
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
)

// ControllerBuilder wraps controller-runtime's builder to apply standard
// middleware (reconcileID) to every controller in one place.
//
// Usage:
//
//	return logging.BuildController(mgr).
//	    For(&dbusersv1alpha1.DbUserRequest{}).
//	    Named("dbuserrequest").
//	    Complete(c)
type ControllerBuilder struct {
	mgr        ctrl.Manager
	obj        client.Object
	name       string
	owns       []client.Object
	predicates []predicate.Predicate
}

// BuildController creates a builder that auto-applies all standard middleware.
func BuildController(mgr ctrl.Manager) *ControllerBuilder {
	return &ControllerBuilder{mgr: mgr}
}

// For sets the primary resource this controller reconciles.
func (b *ControllerBuilder) For(obj client.Object) *ControllerBuilder {
	b.obj = obj
	return b
}

// Named sets the controller name used for logging and metrics.
func (b *ControllerBuilder) Named(name string) *ControllerBuilder {
	b.name = name
	return b
}

// Owns registers a resource type as owned by the primary resource.
func (b *ControllerBuilder) Owns(obj client.Object) *ControllerBuilder {
	b.owns = append(b.owns, obj)
	return b
}

// WithEventFilter adds a predicate that filters which events trigger
// reconciliation.
func (b *ControllerBuilder) WithEventFilter(p predicate.Predicate) *ControllerBuilder {
	b.predicates = append(b.predicates, p)
	return b
}

// Complete registers the controller with all standard middleware applied.
// Events for a kind are processed strictly sequentially: each controller
// runs with a single worker, so there are never two in-flight provisioning
// attempts for the same resource kind.
func (b *ControllerBuilder) Complete(r reconcile.Reconciler) error {
	builder := ctrl.NewControllerManagedBy(b.mgr).
		For(b.obj).
		Named(b.name).
		WithOptions(controller.Options{MaxConcurrentReconciles: 1})
	for _, o := range b.owns {
		builder = builder.Owns(o)
	}
	for _, p := range b.predicates {
		builder = builder.WithEventFilter(p)
	}
	return builder.Complete(&withReconcileID{inner: r})
}
