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

// Package reconcileutil maps the operator's error taxonomy onto requeue
// decisions.
package reconcileutil

import (
	"time"

	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/db-user-operator/internal/provision"
)

const (
	// RequeueDefault is the standard requeue interval for transient errors.
	RequeueDefault = 30 * time.Second

	// RequeueStore is the requeue interval for resource store errors.
	RequeueStore = 1 * time.Minute
)

// ErrorClass represents the classification of an error for requeue decisions.
type ErrorClass int

const (
	// ErrorClassTransient indicates a transient error that should be retried.
	ErrorClassTransient ErrorClass = iota

	// ErrorClassStore indicates a resource store error (longer backoff).
	ErrorClassStore

	// ErrorClassPermanent indicates an error that will never succeed on
	// retry: the author must change the request.
	ErrorClassPermanent
)

// ClassifyError determines the error class for requeue decisions.
// Validation failures and non-zero script exits are permanent: retrying the
// identical input reproduces the identical outcome. Store errors get a
// longer backoff, everything else the standard one.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassTransient
	}

	if provision.IsValidationError(err) {
		return ErrorClassPermanent
	}
	if provision.IsScriptError(err) && !provision.IsTimeout(err) {
		return ErrorClassPermanent
	}
	if provision.IsPartialFulfillment(err) {
		return ErrorClassPermanent
	}

	if provision.IsStoreError(err) {
		return ErrorClassStore
	}

	return ErrorClassTransient
}

// ClassifyRequeue returns the appropriate ctrl.Result and error based on
// error classification.
//   - Permanent errors: no requeue (nil error so controller-runtime does not retry)
//   - Store errors: longer requeue interval
//   - Transient errors: standard requeue interval
func ClassifyRequeue(err error) (ctrl.Result, error) {
	switch ClassifyError(err) {
	case ErrorClassPermanent:
		return ctrl.Result{}, nil
	case ErrorClassStore:
		return ctrl.Result{RequeueAfter: RequeueStore}, err
	default:
		return ctrl.Result{RequeueAfter: RequeueDefault}, err
	}
}
