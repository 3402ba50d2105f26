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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/db-user-operator/internal/secret"
)

var passwordLength int

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Generate a credential password",
	Long: `Generate a password using the same alphanumeric alphabet and
generator the operator uses for provisioned users.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := secret.GeneratePassword(passwordLength)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), password)
		return nil
	},
}

func init() {
	passwordCmd.Flags().IntVar(&passwordLength, "length", secret.DefaultPasswordLength, "Password length")
}
