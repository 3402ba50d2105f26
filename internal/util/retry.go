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

// Package util carries small helpers shared across the operator.
package util

import (
	"context"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// RetryConfig defines retry behavior with exponential backoff.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// InitialInterval is the backoff after the first failure.
	InitialInterval time.Duration
	// Multiplier grows the interval on each retry.
	Multiplier float64
}

// StatusUpdateRetryConfig covers optimistic-concurrency conflicts on
// status updates. Sequence: immediate -> 100ms -> 200ms -> 400ms.
func StatusUpdateRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		Multiplier:      2.0,
	}
}

// IsRetryableStoreError reports whether a store error is worth retrying
// within the same reconciliation attempt.
func IsRetryableStoreError(err error) bool {
	return apierrors.IsConflict(err) ||
		apierrors.IsServerTimeout(err) ||
		apierrors.IsTooManyRequests(err) ||
		apierrors.IsServiceUnavailable(err)
}

// RetryOnConflict executes fn, retrying with exponential backoff while it
// returns a retryable store error. The first attempt is immediate. Returns
// the last error when attempts are exhausted or the context is cancelled.
func RetryOnConflict(ctx context.Context, cfg RetryConfig, fn func() error) error {
	interval := time.Duration(0)
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}

		lastErr = fn()
		if lastErr == nil || !IsRetryableStoreError(lastErr) {
			return lastErr
		}

		if interval == 0 {
			interval = cfg.InitialInterval
		} else {
			interval = time.Duration(float64(interval) * cfg.Multiplier)
		}
	}

	return lastErr
}
