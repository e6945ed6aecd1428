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
	"github.com/calyxir/cider/pkg/primitive"
	"github.com/calyxir/cider/pkg/util"
)

// CellKind classifies what a cell instantiates.
type CellKind uint8

// The three cell kinds a declaration can elaborate to.
const (
	CellPrimitive CellKind = iota
	CellComponent
	CellConstant
)

// CellInfo is the static, elaborated form of an ast.CellDecl: its ports have
// been assigned contiguous global handles, and (for a primitive cell) the
// live Primitive instance has been constructed from its declared parameters.
type CellInfo struct {
	Name string
	Kind CellKind
	// PortBase is the GlobalPortIdx of this cell's first port; its other
	// ports occupy the contiguous range [PortBase, PortBase+NumPorts).
	PortBase handle.GlobalPortIdx
	NumPorts uint
	// NumInputs is the number of leading entries in PortNames/the global
	// port range that are inputs; the remainder are outputs. This lets the
	// simulator slice the cell's port range directly into the in/out
	// argument order a Primitive's EvalCombinational/EvalClock expects.
	NumInputs uint
	// PortNames maps a local PortIdx to its declared name, in the same order
	// as the contiguous global range above.
	PortNames []string
	// Primitive is the live leaf-cell instance for Kind == CellPrimitive (or
	// CellConstant); nil for CellComponent.
	Primitive primitive.Primitive
	// ComponentControlRoot is this cell's own control tree root when Kind ==
	// CellComponent; handle.InvalidControl otherwise.
	ComponentControlRoot handle.ControlIdx
	// IsRef marks this cell declaration as a `ref` slot: its ports exist for
	// shape purposes only, and its RefSlot names the ambient table entry
	// dynamically rebound at invoke boundaries (see pkg/ir/environment.go).
	IsRef   bool
	RefSlot handle.RefSlotIdx
	Path    util.Path
}

// PortByName resolves a local port name to its global handle, as used when
// translating an ast.PortRef during elaboration.
func (c *CellInfo) PortByName(name string) (handle.GlobalPortIdx, bool) {
	for i, n := range c.PortNames {
		if n == name {
			return c.PortBase + handle.GlobalPortIdx(i), true
		}
	}

	return handle.InvalidPort, false
}
