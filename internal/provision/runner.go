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

// Package provision invokes the external per-family provisioning command
// and classifies its outcome. The command is a black box: exit code zero
// means success, anything else is failure, and both stdio streams are
// diagnostic text only.
package provision

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/go-logr/logr"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	dbusersv1alpha1 "github.com/db-user-operator/api/v1alpha1"
)

// DefaultTimeout bounds a single provisioning command invocation. An
// unbounded external call would stall the whole sequential request loop.
const DefaultTimeout = 5 * time.Minute

// Command describes one provisioning invocation.
type Command struct {
	DBType   dbusersv1alpha1.DBType
	DBName   string
	Password string

	// Extensions are passed as trailing positional arguments for postgres.
	// MariaDB never receives extensions.
	Extensions []string
}

// Runner is the boundary interface for the provisioning adapter.
type Runner interface {
	// Provision runs the external command once. No adapter-level retries:
	// redelivery safety is the idempotency guard's job, not this one's.
	Provision(ctx context.Context, cmd Command) error
}

// ScriptRunner shells out to one script per database family.
type ScriptRunner struct {
	postgresScript string
	mariadbScript  string
	timeout        time.Duration
	logger         logr.Logger
}

// ScriptRunnerConfig holds dependencies for the runner.
type ScriptRunnerConfig struct {
	PostgresScript string
	MariaDBScript  string
	Timeout        time.Duration
	Logger         logr.Logger
}

// NewScriptRunner creates a runner with the given script paths.
func NewScriptRunner(cfg ScriptRunnerConfig) *ScriptRunner {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ScriptRunner{
		postgresScript: cfg.PostgresScript,
		mariadbScript:  cfg.MariaDBScript,
		timeout:        timeout,
		logger:         cfg.Logger,
	}
}

// scriptFor selects the command for a database family. Any other value is
// unreachable in normal operation because the validator rejects it first.
func (r *ScriptRunner) scriptFor(dbType dbusersv1alpha1.DBType) (string, error) {
	switch dbType {
	case dbusersv1alpha1.DBTypeMariaDB:
		return r.mariadbScript, nil
	case dbusersv1alpha1.DBTypePostgres:
		return r.postgresScript, nil
	default:
		return "", NewValidationError("db_type", "unknown database type "+string(dbType))
	}
}

// Provision implements Runner.
func (r *ScriptRunner) Provision(ctx context.Context, cmd Command) error {
	log := logf.FromContext(ctx).WithValues("dbType", cmd.DBType, "dbName", cmd.DBName)

	script, err := r.scriptFor(cmd.DBType)
	if err != nil {
		return err
	}

	args := []string{cmd.DBName, cmd.Password}
	if cmd.DBType == dbusersv1alpha1.DBTypePostgres {
		args = append(args, cmd.Extensions...)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	proc := exec.CommandContext(ctx, script, args...)
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	start := time.Now()
	runErr := proc.Run()
	elapsed := time.Since(start)

	// Stdio is the only diagnostic channel into the script, so it is
	// logged in full regardless of outcome.
	log.V(1).Info("Provisioning command finished",
		"script", script,
		"elapsed", elapsed,
		"stdout", stdout.String(),
		"stderr", stderr.String())

	if runErr == nil {
		log.Info("Provisioning command succeeded", "script", script, "elapsed", elapsed)
		return nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return &ScriptError{
			Script:   script,
			ExitCode: exitCode(runErr),
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      ErrTimeout,
		}
	}

	return &ScriptError{
		Script:   script,
		ExitCode: exitCode(runErr),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Err:      runErr,
	}
}

// exitCode extracts the process exit code, or -1 when the process never ran
// or was killed.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
