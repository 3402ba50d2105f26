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

package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	dbusersv1alpha1 "github.com/db-user-operator/api/v1alpha1"
	"github.com/db-user-operator/internal/features/request"
)

const expectedAPIVersion = "dbusers.notepass.de/v1alpha1"

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate -f <file>",
	Short: "Validate DbUserRequest manifests",
	Long: `Validate one or more DbUserRequest manifests in a YAML file.

Applies the same spec rules the operator enforces at reconcile time.
Multi-document files separated by "---" are supported.

Examples:
  dbuserctl validate -f request.yaml
  cat request.yaml | dbuserctl validate -f -`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "YAML file path, or - for stdin (required)")
	_ = validateCmd.MarkFlagRequired("file")
}

func runValidate(cmd *cobra.Command, args []string) error {
	var reader io.Reader
	if validateFile == "-" {
		reader = os.Stdin
	} else {
		file, err := os.Open(validateFile)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer file.Close()
		reader = file
	}

	requests, err := loadRequests(reader)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return fmt.Errorf("no DbUserRequest documents found")
	}
	printVerbose("Validating %d DbUserRequest manifest(s)", len(requests))

	validator := request.NewValidator()
	failures := 0
	for _, r := range requests {
		name := r.Name
		if name == "" {
			name = "<unnamed>"
		}
		if err := validator.Validate(&r.Spec); err != nil {
			failures++
			fmt.Fprintf(cmd.OutOrStdout(), "INVALID  %s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK       %s\n", name)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d manifests failed validation", failures, len(requests))
	}
	return nil
}

// loadRequests parses multi-document YAML into DbUserRequest objects.
// Documents of other kinds are skipped.
func loadRequests(reader io.Reader) ([]*dbusersv1alpha1.DbUserRequest, error) {
	var requests []*dbusersv1alpha1.DbUserRequest

	for i, doc := range splitDocuments(reader) {
		var meta struct {
			APIVersion string `json:"apiVersion"`
			Kind       string `json:"kind"`
		}
		if err := yaml.Unmarshal(doc, &meta); err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		if meta.Kind != "DbUserRequest" {
			printVerbose("Skipping document %d of kind %q", i+1, meta.Kind)
			continue
		}
		if meta.APIVersion != expectedAPIVersion {
			return nil, fmt.Errorf("document %d: unsupported apiVersion %q, expected %q",
				i+1, meta.APIVersion, expectedAPIVersion)
		}

		req := &dbusersv1alpha1.DbUserRequest{}
		if err := yaml.UnmarshalStrict(doc, req); err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		requests = append(requests, req)
	}

	return requests, nil
}

func splitDocuments(reader io.Reader) [][]byte {
	var docs [][]byte
	var current bytes.Buffer

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			docs = append(docs, append([]byte(nil), current.Bytes()...))
		}
		current.Reset()
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			flush()
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()

	return docs
}
