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

package eventbus

import (
	"time"

	"github.com/db-user-operator/api/v1alpha1"
)

// Event names for the request fulfillment lifecycle.
const (
	EventRequestFulfilled = "request.fulfilled"
	EventRequestFailed    = "request.failed"
	EventUserProvisioned  = "user.provisioned"
)

// BaseEvent provides the common event fields. Concrete events embed it.
type BaseEvent struct {
	name      string
	timestamp time.Time
	subject   string
}

// NewBaseEvent creates a base event with the current timestamp.
func NewBaseEvent(name, subject string) BaseEvent {
	return BaseEvent{
		name:      name,
		timestamp: time.Now(),
		subject:   subject,
	}
}

// EventName implements Event.
func (e BaseEvent) EventName() string { return e.name }

// EventTime implements Event.
func (e BaseEvent) EventTime() time.Time { return e.timestamp }

// Subject implements Event.
func (e BaseEvent) Subject() string { return e.subject }

// RequestFulfilled is published when a DbUserRequest has been fully
// provisioned, including the credential Secret and the DbUser record.
type RequestFulfilled struct {
	BaseEvent
	DBType     v1alpha1.DBType
	DBName     string
	SecretName string
	// Deduplicated is true when fulfillment was skipped because the
	// credential Secret already existed.
	Deduplicated bool
}

// NewRequestFulfilled creates a RequestFulfilled event.
func NewRequestFulfilled(subject string, dbType v1alpha1.DBType, dbName, secretName string, deduplicated bool) RequestFulfilled {
	return RequestFulfilled{
		BaseEvent:    NewBaseEvent(EventRequestFulfilled, subject),
		DBType:       dbType,
		DBName:       dbName,
		SecretName:   secretName,
		Deduplicated: deduplicated,
	}
}

// RequestFailed is published when fulfillment of a DbUserRequest failed
// terminally, after validation, provisioning, or store errors.
type RequestFailed struct {
	BaseEvent
	DBType v1alpha1.DBType
	DBName string
	Reason string
}

// NewRequestFailed creates a RequestFailed event.
func NewRequestFailed(subject string, dbType v1alpha1.DBType, dbName, reason string) RequestFailed {
	return RequestFailed{
		BaseEvent: NewBaseEvent(EventRequestFailed, subject),
		DBType:    dbType,
		DBName:    dbName,
		Reason:    reason,
	}
}

// UserProvisioned is published when the provisioning script completed
// successfully, before the credential Secret is written.
type UserProvisioned struct {
	BaseEvent
	DBType v1alpha1.DBType
	DBName string
}

// NewUserProvisioned creates a UserProvisioned event.
func NewUserProvisioned(subject string, dbType v1alpha1.DBType, dbName string) UserProvisioned {
	return UserProvisioned{
		BaseEvent: NewBaseEvent(EventUserProvisioned, subject),
		DBType:    dbType,
		DBName:    dbName,
	}
}
