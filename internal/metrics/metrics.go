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

// Package metrics exposes operator metrics through the controller-runtime
// registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	// Metric namespace
	namespace = "dbusers"

	// Label names
	labelDBType    = "db_type"
	labelNamespace = "namespace"
	labelOutcome   = "outcome"
	labelStatus    = "status"
)

// Outcome values
const (
	OutcomeFulfilled = "fulfilled"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
	OutcomeInvalid   = "invalid"
)

// Status values
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	// RequestsProcessedTotal tracks terminal outcomes of request reconciliations
	RequestsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_processed_total",
			Help:      "Total number of DbUserRequest reconciliations reaching a terminal outcome",
		},
		[]string{labelOutcome, labelDBType, labelNamespace},
	)

	// DedupSkipsTotal tracks requests short-circuited by the idempotency guard
	DedupSkipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_skips_total",
			Help:      "Total number of requests skipped because the credential secret already existed",
		},
		[]string{labelNamespace},
	)

	// ProvisionDurationSeconds tracks the runtime of the external provisioning command
	ProvisionDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provision_duration_seconds",
			Help:      "Duration of external provisioning command invocations in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{labelDBType, labelStatus},
	)

	// ProvisionFailuresTotal tracks non-zero provisioning command exits
	ProvisionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provision_failures_total",
			Help:      "Total number of provisioning command invocations that exited non-zero",
		},
		[]string{labelDBType, labelNamespace},
	)

	// RecordsObservedDeleted tracks DbUser deletions seen by the secondary loop
	RecordsObservedDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_observed_deleted_total",
			Help:      "Total number of DbUser record deletions observed (no compensating action is taken)",
		},
		[]string{labelNamespace},
	)
)

func init() {
	metrics.Registry.MustRegister(
		RequestsProcessedTotal,
		DedupSkipsTotal,
		ProvisionDurationSeconds,
		ProvisionFailuresTotal,
		RecordsObservedDeleted,
	)
}

// RecordOutcome records a terminal reconciliation outcome.
func RecordOutcome(outcome, dbType, ns string) {
	RequestsProcessedTotal.WithLabelValues(outcome, dbType, ns).Inc()
}

// RecordDedupSkip records an idempotency-guard short-circuit.
func RecordDedupSkip(ns string) {
	DedupSkipsTotal.WithLabelValues(ns).Inc()
}

// RecordProvisionDuration records one provisioning command invocation.
func RecordProvisionDuration(dbType, status string, seconds float64) {
	ProvisionDurationSeconds.WithLabelValues(dbType, status).Observe(seconds)
}

// RecordProvisionFailure records a non-zero provisioning command exit.
func RecordProvisionFailure(dbType, ns string) {
	ProvisionFailuresTotal.WithLabelValues(dbType, ns).Inc()
}

// RecordObservedDeletion records a DbUser deletion seen by the watch loop.
func RecordObservedDeletion(ns string) {
	RecordsObservedDeleted.WithLabelValues(ns).Inc()
}
