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
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Condition types for request resources
const (
	// ConditionTypeReady indicates whether the request reached a terminal outcome
	ConditionTypeReady = "Ready"

	// ConditionTypeValidated indicates whether the request spec passed validation
	ConditionTypeValidated = "Validated"
)

// Condition reasons
const (
	ReasonFulfilled          = "Fulfilled"
	ReasonAlreadyFulfilled   = "AlreadyFulfilled"
	ReasonValidationFailed   = "ValidationFailed"
	ReasonValidationPassed   = "ValidationPassed"
	ReasonProvisioningFailed = "ProvisioningFailed"
	ReasonStoreError         = "StoreError"
	ReasonUnexpectedError    = "UnexpectedError"
)

// SetCondition adds or updates a condition in the conditions list.
func SetCondition(conditions *[]metav1.Condition, conditionType string, status metav1.ConditionStatus, reason, message string) {
	now := metav1.NewTime(time.Now())

	for i, c := range *conditions {
		if c.Type == conditionType {
			// Only update if status, reason, or message changed
			if c.Status != status || c.Reason != reason || c.Message != message {
				(*conditions)[i] = metav1.Condition{
					Type:               conditionType,
					Status:             status,
					Reason:             reason,
					Message:            message,
					LastTransitionTime: now,
					ObservedGeneration: c.ObservedGeneration,
				}
			}
			return
		}
	}

	*conditions = append(*conditions, metav1.Condition{
		Type:               conditionType,
		Status:             status,
		Reason:             reason,
		Message:            message,
		LastTransitionTime: now,
	})
}

// GetCondition returns a condition by type.
func GetCondition(conditions []metav1.Condition, conditionType string) *metav1.Condition {
	for i := range conditions {
		if conditions[i].Type == conditionType {
			return &conditions[i]
		}
	}
	return nil
}

// SetReadyCondition sets the Ready condition.
func SetReadyCondition(conditions *[]metav1.Condition, status metav1.ConditionStatus, reason, message string) {
	SetCondition(conditions, ConditionTypeReady, status, reason, message)
}

// SetValidatedCondition sets the Validated condition.
func SetValidatedCondition(conditions *[]metav1.Condition, status metav1.ConditionStatus, reason, message string) {
	SetCondition(conditions, ConditionTypeValidated, status, reason, message)
}
