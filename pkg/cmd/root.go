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

// Package cmd wires Cider's command-line surface with cobra: a root command
// plus run/debug/dump subcommands; run and debug share a common set of
// simulation flags.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/calyxir/cider/pkg/ast"
)

// Version is filled when building with make, but *not* when installing via
// "go install".
var Version string

var rootCmd = &cobra.Command{
	Use:   "cider",
	Short: "A cycle-accurate interpreter for Calyx.",
	Long:  "Cider elaborates and simulates Calyx designs: run a program to completion, step it under an interactive debugger, or convert memory dumps between formats.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("cider ")

			switch {
			case Version != "":
				fmt.Print(Version)
			default:
				if info, ok := debug.ReadBuildInfo(); ok {
					fmt.Print(info.Main.Version)
				} else {
					fmt.Print("(unknown version)")
				}
			}

			fmt.Println()

			return
		}

		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(); it only needs to run once.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("CIDER_BACKTRACE") != "" {
				panic(r)
			}

			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			os.Exit(ExitInternalError)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitUsage)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(dumpCmd)
}

// addSimFlags registers the simulation flags shared by `run` and `debug` as
// local flags of c.
func addSimFlags(c *cobra.Command) {
	c.Flags().StringArrayP("lib", "l", nil, "additional JSON component library to merge in before elaboration (repeatable)")
	c.Flags().String("data", "", "JSON file of initial memory/register contents")
	c.Flags().Bool("dump-registers", false, "print final register/memory contents on completion")
	c.Flags().Bool("check-data-race", false, "enable the concurrent-write data-race detector")
	c.Flags().Bool("no-verify", false, "skip pre-run invariant checks (e.g. group done-hole reachability)")
	c.Flags().Bool("race-warn", false, "treat detected data races as warnings rather than fatal errors")
	c.Flags().String("force-color", "", "force terminal colour on/off, overriding auto-detection")
	c.Flags().Uint("cycle-limit", 1_000_000, "maximum number of cycles to simulate before giving up")
}

// loadProgram reads and decodes the JSON-encoded ast.Program at path: the
// serialized form of whatever an external Calyx front-end parser produced.
// Parsing Calyx source text itself is out of this engine's scope.
func loadProgram(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var prog ast.Program
	if err := json.Unmarshal(data, &prog); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &prog, nil
}

func newLogger(cmd *cobra.Command) *logrus.Logger {
	log := logrus.New()

	switch GetString(cmd, "force-color") {
	case "on":
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	case "off":
		log.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	}

	return log
}
