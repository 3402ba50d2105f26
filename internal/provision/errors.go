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

package provision

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the reconciliation pipeline.
var (
	// ErrAlreadyFulfilled indicates the dedup short-circuit: the requested
	// outcome already exists. Not a failure.
	ErrAlreadyFulfilled = errors.New("request already fulfilled")

	// ErrTimeout indicates the provisioning command exceeded its deadline.
	ErrTimeout = errors.New("provisioning command timed out")

	// ErrPartialFulfillment indicates the database user was provisioned
	// but a later step failed. Retrying would re-run the provisioning
	// script, so these are terminal and need operator attention.
	ErrPartialFulfillment = errors.New("user provisioned but fulfillment incomplete")
)

// ValidationError represents a rejected request spec. The author must fix
// and resubmit; the controller never retries these.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ScriptError reports a provisioning command that exited non-zero. Both
// stdio streams are carried in full since they are the only diagnostic
// channel into the external command.
type ScriptError struct {
	Script   string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s exited with code %d\n======== STDOUT:\n%s\n======== STDERR:\n%s",
		e.Script, e.ExitCode, e.Stdout, e.Stderr)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// StoreError wraps a failure talking to the resource store. These are
// treated as transient and requeued.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// IsScriptError checks if an error is a provisioning script failure.
func IsScriptError(err error) bool {
	var scriptErr *ScriptError
	return errors.As(err, &scriptErr)
}

// IsStoreError checks if an error is a resource store failure.
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}

// IsAlreadyFulfilled checks if an error is the dedup short-circuit.
func IsAlreadyFulfilled(err error) bool {
	return errors.Is(err, ErrAlreadyFulfilled)
}

// IsTimeout checks if an error is a provisioning timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsPartialFulfillment checks if an error left a provisioned user behind.
func IsPartialFulfillment(err error) bool {
	return errors.Is(err, ErrPartialFulfillment)
}
