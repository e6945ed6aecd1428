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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calyxir/cider/pkg/dump"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <in-file> <out-file>",
	Short: "Convert a memory/register dump between its JSON and native encodings.",
	Args:  cobra.ExactArgs(2),
	Run:   runDump,
}

func init() {
	dumpCmd.Flags().Bool("to-native", false, "convert JSON input into the native binary encoding")
	dumpCmd.Flags().Bool("to-json", false, "convert native binary input into JSON (the default)")
}

func runDump(cmd *cobra.Command, args []string) {
	in, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitUsage)
	}

	var (
		snap dump.Snapshot
		out  []byte
	)

	if GetFlag(cmd, "to-native") {
		snap, err = dump.ReadJSON(in)
		if err == nil {
			out, err = dump.WriteNative(snap)
		}
	} else {
		snap, err = dump.ReadNative(in)
		if err == nil {
			out, err = dump.WriteJSON(snap)
		}
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitUsage)
	}

	if err := os.WriteFile(args[1], out, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitInternalError)
	}
}
