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
package ir

import (
	"github.com/calyxir/cider/pkg/ir/handle"
	"github.com/calyxir/cider/pkg/util"
)

// Group is the elaborated form of an ast.GroupDecl: a named bundle of
// assignments gated by a go/done handshake (or, for a combinational group,
// carrying no holes at all).
type Group struct {
	Name        string
	Assignments []handle.AssignIdx
	// GoPort and DonePort are handle.InvalidPort for a combinational group.
	GoPort   handle.GlobalPortIdx
	DonePort handle.GlobalPortIdx
	Static   bool
	Latency  uint
	Path     util.Path
	// Component names the owning component's root cell, used when rendering
	// a fully-qualified group name in diagnostics.
	Component handle.CellIdx
}

// Combinational reports whether this group has no go/done holes at all.
func (g *Group) Combinational() bool {
	return g.GoPort == handle.InvalidPort
}
