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
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calyxir/cider/pkg/dump"
	"github.com/calyxir/cider/pkg/ir"
	"github.com/calyxir/cider/pkg/ir/elaborate"
	"github.com/calyxir/cider/pkg/race"
	"github.com/calyxir/cider/pkg/sim"
	"github.com/calyxir/cider/pkg/util"
	"github.com/calyxir/cider/pkg/util/diag"
)

var runCmd = &cobra.Command{
	Use:   "run <source.json>",
	Short: "Simulate a Calyx program to completion.",
	Args:  cobra.ExactArgs(1),
	Run:   runRun,
}

func init() {
	addSimFlags(runCmd)
}

// setupSimulator loads, elaborates and constructs a Simulator for the
// program at path, applying --data if given. It exits the process directly
// on any failure, using the matching exit code for the failure's stage.
func setupSimulator(cmd *cobra.Command, path string) *sim.Simulator {
	prog, err := loadProgram(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitParseError)
	}

	for _, libPath := range GetStringArray(cmd, "lib") {
		lib, err := loadProgram(libPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(ExitParseError)
		}

		prog.Components = append(prog.Components, lib.Components...)
	}

	elab := elaborate.New(prog)
	elab.SkipInvariants = GetFlag(cmd, "no-verify")

	env, errs := elab.Elaborate()
	if len(errs) > 0 {
		printer := diag.Printer{Color: colorEnabled(cmd)}

		for _, e := range errs {
			if ee, ok := e.(*ir.ElaborationError); ok {
				fmt.Fprint(os.Stderr, printer.Print(ee.Diagnostic))
			} else {
				fmt.Fprintln(os.Stderr, e)
			}
		}

		os.Exit(ExitElaborationError)
	}

	s := sim.New(env, sim.Options{
		CheckDataRace: GetFlag(cmd, "check-data-race"),
		StrictRace:    GetFlag(cmd, "check-data-race") && !GetFlag(cmd, "race-warn"),
		Log:           newLogger(cmd),
	})

	if dataPath := GetString(cmd, "data"); dataPath != "" {
		raw, err := os.ReadFile(dataPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(ExitUsage)
		}

		snap, err := dump.ReadJSON(raw)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(ExitUsage)
		}

		if err := dump.Apply(env, snap); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(ExitRuntimeError)
		}
	}

	return s
}

func runRun(cmd *cobra.Command, args []string) {
	perf := util.NewPerfStats()
	s := setupSimulator(cmd, args[0])

	limit := GetUint(cmd, "cycle-limit")
	if err := s.Run(context.Background(), limit); err != nil {
		if _, ok := err.(*sim.CycleLimitError); ok {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(ExitCycleLimit)
		}

		if _, ok := err.(*race.Conflict); ok {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(ExitDataRace)
		}

		if re, ok := err.(*ir.RuntimeError); ok {
			printer := diag.Printer{Color: colorEnabled(cmd)}
			fmt.Fprint(os.Stderr, printer.Print(re.Diagnostic))
			os.Exit(ExitRuntimeError)
		}

		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitRuntimeError)
	}

	fmt.Printf("completed in %d cycles (%s)\n", s.Cycle(), perf.String())

	if GetFlag(cmd, "dump-registers") {
		snap, err := dump.Collect(s.Environment())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(ExitRuntimeError)
		}

		out, err := dump.WriteJSON(snap)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(ExitInternalError)
		}

		fmt.Println(string(out))
	}
}
