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
)

// RefSlot is one entry in the Environment's ambient ref-cell table: a named
// slot that is unbound outside of any active invoke and dynamically rebound
// to an actual cell for the duration of one invoke's activation.
type RefSlot struct {
	Name  string
	Owner handle.CellIdx // the component instance declaring this `ref` slot
	Bound handle.CellIdx // handle.InvalidCell when currently unbound
}

// Environment is the single flattened, handle-addressed representation of
// an elaborated program: every component instantiation has been copied out,
// so no state is shared between instances, into contiguous port, cell,
// assignment, group and control ranges. Dynamic port values live
// separately, in the simulator's port-value buffer, indexed by the same
// GlobalPortIdx used here.
type Environment struct {
	Ports       []Port
	Cells       []CellInfo
	Assignments []Assignment
	Groups      []Group
	Control     []Node
	RootControl handle.ControlIdx
	RootCell    handle.CellIdx
	RefSlots    []RefSlot
	// Continuous collects every component's top-level (ungated-by-control)
	// assignments: these run every cycle regardless of control state, so the
	// control interpreter's activation set always includes them verbatim.
	Continuous []handle.AssignIdx
}

// CellByName resolves a cell's full dotted name (e.g. "main.r", at any
// depth) to its handle, used by the debugger's path-based print/watch commands.
func (e *Environment) CellByName(name string) (handle.CellIdx, bool) {
	for i := range e.Cells {
		if e.Cells[i].Name == name {
			return handle.CellIdx(i), true
		}
	}

	return handle.InvalidCell, false
}

// GroupByName resolves a group name to its handle.
func (e *Environment) GroupByName(name string) (handle.GroupIdx, bool) {
	for i := range e.Groups {
		if e.Groups[i].Name == name {
			return handle.GroupIdx(i), true
		}
	}

	return handle.InvalidGroup, false
}

// PortName renders a GlobalPortIdx as "cell.port" for diagnostics, falling
// back to a numeric placeholder if the handle is out of range.
func (e *Environment) PortName(p handle.GlobalPortIdx) string {
	if int(p) >= len(e.Ports) {
		return "?"
	}

	port := &e.Ports[p]
	if int(port.Owner) >= len(e.Cells) {
		return port.Name
	}

	return e.Cells[port.Owner].Name + "." + port.Name
}
