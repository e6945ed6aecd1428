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

// Package handle defines the dense integer handle types produced by
// elaboration. Each is a distinct named type over uint32 so the Go compiler
// rejects accidental cross-category confusion (e.g. passing a CellIdx where
// a GlobalPortIdx is expected) at compile time.
package handle

// CellIdx identifies a cell (primitive instance, component instance or
// constant) within the flattened Environment.
type CellIdx uint32

// PortIdx identifies a port local to its owning cell (i.e. its offset within
// that cell's own input/output port list).
type PortIdx uint32

// GlobalPortIdx identifies a port within the flattened Environment's single
// port-value array; it is the handle actually used by assignments, guards
// and the convergence engine.
type GlobalPortIdx uint32

// GroupIdx identifies a group (or combinational group) within the flattened
// Environment.
type GroupIdx uint32

// AssignIdx identifies a single assignment within the flattened
// Environment.
type AssignIdx uint32

// ControlIdx identifies a node within the flattened control tree.
type ControlIdx uint32

// RefSlotIdx identifies a `ref` cell slot within the Environment's ambient
// ref-cell table (see the design notes on cyclic ownership in invoke).
type RefSlotIdx uint32

// InvalidGroup is the sentinel meaning "no group attached" (e.g. an `if`
// with no comb-group).
const InvalidGroup = GroupIdx(^uint32(0))

// InvalidControl is the sentinel meaning "no such control node" (e.g. a
// seq/par node's non-existent next sibling).
const InvalidControl = ControlIdx(^uint32(0))

// InvalidCell is the sentinel meaning "no such cell" (e.g. an unbound `ref`
// slot outside of any active invoke).
const InvalidCell = CellIdx(^uint32(0))

// InvalidPort is the sentinel meaning "no such port" (e.g. a combinational
// group's absent go/done holes).
const InvalidPort = GlobalPortIdx(^uint32(0))

// InvalidRefSlot is the sentinel meaning "this cell is not a `ref` cell".
const InvalidRefSlot = RefSlotIdx(^uint32(0))

// InvalidAssign is the sentinel meaning "no assignment currently drives this
// port this cycle".
const InvalidAssign = AssignIdx(^uint32(0))
