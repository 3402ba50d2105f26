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

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// PostgresRequestConfig holds postgres-specific request settings.
type PostgresRequestConfig struct {
	// Extensions to enable in the new database. When set, this list
	// overrides the top-level extensions field.
	// +optional
	Extensions []string `json:"extensions,omitempty"`
}

// DbUserRequestSpec defines the desired database user. The field names are
// part of the external contract consumed by request authors and are not
// renamed to Go conventions on the wire.
type DbUserRequestSpec struct {
	// DBType selects the database family (mariadb or postgres, case-insensitive).
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	DBType string `json:"db_type"`

	// DBName becomes both the database name and the username.
	// Must match ^[a-z0-9_]+$.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	// +kubebuilder:validation:MaxLength=63
	DBName string `json:"db_name"`

	// SecretName is the name of the credential Secret to create.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	// +kubebuilder:validation:MaxLength=253
	SecretName string `json:"secret_name"`

	// CustomDBNameProp, when set, is exported into the credential secret
	// under the dbTypeCustom key.
	// +optional
	CustomDBNameProp string `json:"custom_db_name_prop,omitempty"`

	// Extensions to enable (postgres only). Overridden by postgres.extensions.
	// +optional
	Extensions []string `json:"extensions,omitempty"`

	// Postgres holds postgres-specific settings.
	// +optional
	Postgres *PostgresRequestConfig `json:"postgres,omitempty"`
}

// ResolveExtensions returns the effective extension list: the nested
// postgres.extensions list wins over the top-level one when both are set.
func (s *DbUserRequestSpec) ResolveExtensions() []string {
	if s.Postgres != nil && len(s.Postgres.Extensions) > 0 {
		return s.Postgres.Extensions
	}
	return s.Extensions
}

// DbUserRequestStatus defines the observed state of DbUserRequest.
// It is mutated only by the controller.
type DbUserRequestStatus struct {
	// Phase represents the current state
	// +kubebuilder:validation:Enum=Pending;Fulfilled;Failed
	Phase Phase `json:"phase,omitempty"`

	// Message provides a human-readable description of the outcome
	Message string `json:"message,omitempty"`

	// LastUpdated is the timestamp of the last phase transition
	LastUpdated *metav1.Time `json:"lastUpdated,omitempty"`

	// ObservedGeneration is the last observed generation of the resource
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`

	// Conditions represent the latest available observations
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=dbur
// +kubebuilder:printcolumn:name="Type",type=string,JSONPath=`.spec.db_type`
// +kubebuilder:printcolumn:name="Database",type=string,JSONPath=`.spec.db_name`
// +kubebuilder:printcolumn:name="Secret",type=string,JSONPath=`.spec.secret_name`
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// DbUserRequest is the Schema for the dbuserrequests API.
type DbUserRequest struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DbUserRequestSpec   `json:"spec,omitempty"`
	Status DbUserRequestStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// DbUserRequestList contains a list of DbUserRequest.
type DbUserRequestList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []DbUserRequest `json:"items"`
}

func init() {
	SchemeBuilder.Register(&DbUserRequest{}, &DbUserRequestList{})
}
