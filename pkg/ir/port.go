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

// Package ir is the elaborated, handle-addressed program representation: a
// single flat Environment produced by pkg/ir/elaborate from an ast.Program,
// and consumed by the simulator, race detector and debugger.
package ir

import (
	"github.com/calyxir/cider/pkg/ir/handle"
	"github.com/calyxir/cider/pkg/util"
)

// Direction classifies a port as an input, output, or inout.
type Direction uint8

// The three port directions.
const (
	DirInput Direction = iota
	DirOutput
	DirInout
)

// Port is the static metadata for a single port; its dynamic value lives
// separately in the Simulator's port-value buffer, indexed by the same
// GlobalPortIdx.
type Port struct {
	Name      string
	Width     uint
	Dir       Direction
	Owner     handle.CellIdx
	Attrs     map[string]bool
	Path      util.Path
	// Padding is the value used to initialise this port before the first
	// cycle.
	Padding uint64
}

// HasAttribute reports whether this port was declared with the named
// attribute (e.g. "go", "done", "clk", "reset", "stable").
func (p *Port) HasAttribute(name string) bool {
	return p.Attrs[name]
}
