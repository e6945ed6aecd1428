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
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// GetFlag gets an expected flag, or exits with ExitInternalError if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(ExitInternalError)
	}

	return r
}

// GetInt gets an expected signed integer, or exits with ExitInternalError if an error arises.
func GetInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(ExitInternalError)
	}

	return r
}

// GetUint gets an expected unsigned integer, or exits with ExitInternalError if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(ExitInternalError)
	}

	return r
}

// GetString gets an expected string, or exits with ExitInternalError if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(ExitInternalError)
	}

	return r
}

// GetStringArray gets an expected string array, or exits with ExitInternalError if an error arises.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(ExitInternalError)
	}

	return r
}

// colorEnabled resolves the --force-color flag to a concrete on/off decision:
// "on" and "off" override unconditionally, and the default (empty string)
// auto-detects by checking whether stderr is attached to a terminal.
func colorEnabled(cmd *cobra.Command) bool {
	switch GetString(cmd, "force-color") {
	case "on":
		return true
	case "off":
		return false
	default:
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
}

// GetIntArray gets an expected int array (given as a string array on the
// command line); it exits with ExitInternalError if the flag cannot be read
// and panics if an element is not an integer.
func GetIntArray(cmd *cobra.Command, flag string) []int {
	tmp, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(ExitInternalError)
	}
	//
	r := make([]int, len(tmp))
	//
	for i, str := range tmp {
		ith, err := strconv.ParseInt(str, 10, 64)
		// Error check
		if err != nil {
			panic(err.Error())
		}
		//
		r[i] = int(ith)
	}
	//
	return r
}
