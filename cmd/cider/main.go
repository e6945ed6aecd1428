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

// Command cider is a cycle-accurate interpreter for Calyx designs: it runs a
// program to completion, steps it under an interactive debugger, or converts
// memory dumps between formats. See pkg/cmd for the subcommands.
package main

import "github.com/calyxir/cider/pkg/cmd"

func main() {
	cmd.Execute()
}
