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

// ControlKind discriminates a Node's variant, mirroring ast.ControlKind but
// over elaborated handles rather than names.
type ControlKind uint8

// The seven control node kinds.
const (
	CtrlEmpty ControlKind = iota
	CtrlEnable
	CtrlSeq
	CtrlPar
	CtrlIf
	CtrlWhile
	CtrlInvoke
)

// PortCopy is a one-time combinational-value copy performed by the control
// interpreter itself (outside of the convergence engine), used to thread an
// invoke's out-arguments back to the caller at the Done transition.
type PortCopy struct {
	Dst handle.GlobalPortIdx
	Src handle.GlobalPortIdx
}

// Node is the elaborated form of an ast.ControlNode: a single flat tagged
// struct (not an interface hierarchy) so pattern-matching on Kind stays in
// one place, using a flat dispatchable struct over a family of operations.
type Node struct {
	Kind ControlKind
	Path util.Path

	// Enable
	Group handle.GroupIdx

	// Seq / Par
	Children []handle.ControlIdx

	// If / While
	Cond      handle.GlobalPortIdx // handle.InvalidPort when the ast node names no condition port
	CombGroup handle.GroupIdx      // handle.InvalidGroup means no attached comb-group
	Then      handle.ControlIdx
	Else      handle.ControlIdx // handle.InvalidControl means no else branch
	Body      handle.ControlIdx

	// Invoke
	Callee handle.CellIdx
	// InvokeAssigns are the synthesized assignments (the go-driver plus each
	// in-argument binding) active for as long as this invoke is Running.
	InvokeAssigns []handle.AssignIdx
	// OutCopies are applied once, directly, at the Done transition, rather
	// than through the convergence engine: an invoke's out-arguments are a
	// snapshot taken at completion, not a continuously driven connection.
	OutCopies []PortCopy
	// RefSlots binds each of the callee's `ref` cell slots to an actual cell
	// in the invoking component, for the duration of this invoke.
	RefSlots []RefBinding
}

// RefBinding binds one of a callee's `ref` slots to an actual cell, scoped to
// the lifetime of one invoke node's activation.
type RefBinding struct {
	Slot   handle.RefSlotIdx
	Target handle.CellIdx
}
