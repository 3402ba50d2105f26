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

package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

func conflictError() error {
	return apierrors.NewConflict(
		schema.GroupResource{Resource: "dbuserrequests"}, "db-shop", errors.New("modified"))
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, InitialInterval: time.Millisecond, Multiplier: 2.0}
}

func TestRetryOnConflictSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), fastRetryConfig(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryOnConflictRetriesConflicts(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), fastRetryConfig(), func() error {
		calls++
		if calls < 3 {
			return conflictError()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryOnConflictGivesUp(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), fastRetryConfig(), func() error {
		calls++
		return conflictError()
	})

	require.Error(t, err)
	assert.True(t, apierrors.IsConflict(err))
	assert.Equal(t, 4, calls, "initial attempt plus MaxRetries")
}

func TestRetryOnConflictStopsOnNonRetryable(t *testing.T) {
	calls := 0
	fatal := errors.New("not a conflict")
	err := RetryOnConflict(context.Background(), fastRetryConfig(), func() error {
		calls++
		return fatal
	})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestRetryOnConflictHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryOnConflict(ctx, fastRetryConfig(), func() error {
		calls++
		return conflictError()
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "first attempt runs, backoff wait does not")
}

func TestIsRetryableStoreError(t *testing.T) {
	assert.True(t, IsRetryableStoreError(conflictError()))
	assert.True(t, IsRetryableStoreError(apierrors.NewServiceUnavailable("down")))
	assert.True(t, IsRetryableStoreError(apierrors.NewTooManyRequestsError("slow down")))
	assert.False(t, IsRetryableStoreError(errors.New("boom")))
	assert.False(t, IsRetryableStoreError(apierrors.NewNotFound(
		schema.GroupResource{Resource: "secrets"}, "s")))
}
