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
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbusersv1alpha1 "github.com/db-user-operator/api/v1alpha1"
)

// writeScript creates an executable shell script in a temp dir.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func newTestRunner(postgres, mariadb string, timeout time.Duration) *ScriptRunner {
	return NewScriptRunner(ScriptRunnerConfig{
		PostgresScript: postgres,
		MariaDBScript:  mariadb,
		Timeout:        timeout,
		Logger:         logr.Discard(),
	})
}

func TestProvisionSuccess(t *testing.T) {
	out := filepath.Join(t.TempDir(), "args")
	script := writeScript(t, "create-mariadb-user.sh", `echo "$@" > `+out)
	runner := newTestRunner("", script, 0)

	err := runner.Provision(context.Background(), Command{
		DBType:   dbusersv1alpha1.DBTypeMariaDB,
		DBName:   "shop",
		Password: "s3cretPassw0rd",
	})

	require.NoError(t, err)
	args, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Equal(t, "shop s3cretPassw0rd\n", string(args))
}

func TestProvisionPostgresPassesExtensions(t *testing.T) {
	out := filepath.Join(t.TempDir(), "args")
	script := writeScript(t, "create-pg-user.sh", `echo "$@" > `+out)
	runner := newTestRunner(script, "", 0)

	err := runner.Provision(context.Background(), Command{
		DBType:     dbusersv1alpha1.DBTypePostgres,
		DBName:     "app",
		Password:   "pw",
		Extensions: []string{"uuid-ossp", "postgis"},
	})

	require.NoError(t, err)
	args, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Equal(t, "app pw uuid-ossp postgis\n", string(args))
}

func TestProvisionMariaDBIgnoresExtensions(t *testing.T) {
	out := filepath.Join(t.TempDir(), "args")
	script := writeScript(t, "create-mariadb-user.sh", `echo "$@" > `+out)
	runner := newTestRunner("", script, 0)

	err := runner.Provision(context.Background(), Command{
		DBType:     dbusersv1alpha1.DBTypeMariaDB,
		DBName:     "shop",
		Password:   "pw",
		Extensions: []string{"uuid-ossp"},
	})

	require.NoError(t, err)
	args, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Equal(t, "shop pw\n", string(args))
}

func TestProvisionNonZeroExit(t *testing.T) {
	script := writeScript(t, "create-pg-user.sh", `echo "created so far" ; echo "permission denied" >&2 ; exit 3`)
	runner := newTestRunner(script, "", 0)

	err := runner.Provision(context.Background(), Command{
		DBType:   dbusersv1alpha1.DBTypePostgres,
		DBName:   "app",
		Password: "pw",
	})

	require.Error(t, err)
	var scriptErr *ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Equal(t, 3, scriptErr.ExitCode)
	assert.Equal(t, script, scriptErr.Script)
	assert.Contains(t, scriptErr.Stdout, "created so far")
	assert.Contains(t, scriptErr.Stderr, "permission denied")
	assert.False(t, IsTimeout(err))
}

func TestProvisionTimeout(t *testing.T) {
	script := writeScript(t, "create-pg-user.sh", `sleep 10`)
	runner := newTestRunner(script, "", 50*time.Millisecond)

	err := runner.Provision(context.Background(), Command{
		DBType:   dbusersv1alpha1.DBTypePostgres,
		DBName:   "app",
		Password: "pw",
	})

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.True(t, IsScriptError(err))
}

func TestProvisionMissingScript(t *testing.T) {
	runner := newTestRunner(filepath.Join(t.TempDir(), "missing.sh"), "", 0)

	err := runner.Provision(context.Background(), Command{
		DBType:   dbusersv1alpha1.DBTypePostgres,
		DBName:   "app",
		Password: "pw",
	})

	require.Error(t, err)
	var scriptErr *ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Equal(t, -1, scriptErr.ExitCode)
}

func TestProvisionUnknownDBType(t *testing.T) {
	runner := newTestRunner("", "", 0)

	err := runner.Provision(context.Background(), Command{
		DBType:   "oracle",
		DBName:   "app",
		Password: "pw",
	})

	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}
