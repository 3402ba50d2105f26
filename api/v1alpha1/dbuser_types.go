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

// DbUserSpec records that a database user was provisioned. It is durable
// evidence independent of the credential Secret and is written exactly once,
// after the provisioning command succeeded.
type DbUserSpec struct {
	// DBName is the lowercase database/user name that was created.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	DBName string `json:"db_name"`

	// SecretName is the credential Secret of the originating request.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	SecretName string `json:"secret_name"`

	// Created is the provisioning timestamp.
	// +optional
	Created *metav1.Time `json:"created,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:resource:shortName=dbu
// +kubebuilder:printcolumn:name="Database",type=string,JSONPath=`.spec.db_name`
// +kubebuilder:printcolumn:name="Secret",type=string,JSONPath=`.spec.secret_name`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// DbUser is the Schema for the dbusers API.
type DbUser struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec DbUserSpec `json:"spec,omitempty"`
}

// +kubebuilder:object:root=true

// DbUserList contains a list of DbUser.
type DbUserList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []DbUser `json:"items"`
}

func init() {
	SchemeBuilder.Register(&DbUser{}, &DbUserList{})
}
