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

package request

import (
	"fmt"
	"regexp"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"

	dbusersv1alpha1 "github.com/db-user-operator/api/v1alpha1"
	"github.com/db-user-operator/internal/provision"
)

// dbNamePattern restricts database names to what the provisioning scripts
// can safely interpolate into SQL identifiers.
var dbNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Validator checks DbUserRequest specs before any side effects happen.
type Validator struct{}

// NewValidator creates a new request validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the spec and returns a ValidationError describing the
// first violation found, or nil when the spec is acceptable.
func (v *Validator) Validate(spec *dbusersv1alpha1.DbUserRequestSpec) error {
	if spec.DBType == "" {
		return provision.NewValidationError("db_type", "must not be empty")
	}
	switch dbusersv1alpha1.NormalizeDBType(string(spec.DBType)) {
	case dbusersv1alpha1.DBTypeMariaDB, dbusersv1alpha1.DBTypePostgres:
	default:
		return provision.NewValidationError("db_type", fmt.Sprintf(
			"unsupported value %q: must be %q or %q (case-insensitive)",
			spec.DBType, dbusersv1alpha1.DBTypeMariaDB, dbusersv1alpha1.DBTypePostgres))
	}

	if spec.DBName == "" {
		return provision.NewValidationError("db_name", "must not be empty")
	}
	if !dbNamePattern.MatchString(spec.DBName) {
		return provision.NewValidationError("db_name", fmt.Sprintf(
			"invalid value %q: only lowercase letters, digits, and underscores are allowed",
			spec.DBName))
	}

	if spec.SecretName == "" {
		return provision.NewValidationError("secret_name", "must not be empty")
	}
	if errs := validation.IsDNS1123Subdomain(spec.SecretName); len(errs) > 0 {
		return provision.NewValidationError("secret_name", fmt.Sprintf(
			"invalid value %q: %s", spec.SecretName, strings.Join(errs, "; ")))
	}

	return nil
}
