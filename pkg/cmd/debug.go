// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/calyxir/cider/pkg/debug"
)

var debugCmd = &cobra.Command{
	Use:   "debug <source.json>",
	Short: "Step a Calyx program under the interactive debugger.",
	Args:  cobra.ExactArgs(1),
	Run:   runDebug,
}

func init() {
	addSimFlags(debugCmd)
}

func runDebug(cmd *cobra.Command, args []string) {
	s := setupSimulator(cmd, args[0])
	session := debug.New(s, os.Stdin, os.Stdout)
	os.Exit(session.Run())
}
