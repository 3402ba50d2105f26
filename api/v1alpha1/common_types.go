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

import "strings"

// DBType defines the supported database families.
// +kubebuilder:validation:Enum=mariadb;postgres
type DBType string

const (
	DBTypeMariaDB  DBType = "mariadb"
	DBTypePostgres DBType = "postgres"
)

// Phase represents the coarse fulfillment state of a request.
type Phase string

const (
	// PhasePending is the implicit initial phase. An absent/empty phase
	// is treated as Pending by the controller.
	PhasePending Phase = "Pending"

	// PhaseFulfilled marks a request whose credentials exist. The
	// controller never acts on a Fulfilled request again.
	PhaseFulfilled Phase = "Fulfilled"

	// PhaseFailed marks a request that needs author intervention.
	PhaseFailed Phase = "Failed"
)

// NormalizeDBType lower-cases a declared db_type so comparisons are
// case-insensitive everywhere.
func NormalizeDBType(s string) DBType {
	return DBType(strings.ToLower(s))
}

// AltTypeName returns the alternate family label exposed to consumers of
// the credential secret: postgres reports as "postgresql", mariadb as "mysql".
func AltTypeName(t DBType) string {
	if t == DBTypePostgres {
		return "postgresql"
	}
	return "mysql"
}
