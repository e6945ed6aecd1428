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

// Package control runs the per-cycle state machines of an elaborated control
// tree: one Idle/Running/Done state per node, advanced once per cycle after
// the convergence engine has settled and committed that cycle. This is the control
// interpreter half of the pipeline; pkg/sim drives it alongside the
// convergence engine and calls Activate/Advance once each per cycle.
package control

import (
	"github.com/calyxir/cider/pkg/ir"
	"github.com/calyxir/cider/pkg/ir/guard"
	"github.com/calyxir/cider/pkg/ir/handle"
)

// Phase is a control node's position in its own Idle -> Running -> Done
// state machine.
type Phase uint8

// The three phases every control node cycles through exactly once per
// activation (once per iteration for a while loop's body).
const (
	Idle Phase = iota
	Running
	Done
)

// State is one control node's mutable runtime state.
type State struct {
	Phase Phase

	// Seq
	SeqIndex uint

	// Par
	ParDone []bool
	// ParPending marks that every child finished as of the previous
	// Advance call; the node reports Done on the following Advance call
	// (completion lands exactly one cycle after the last child completes).
	ParPending bool

	// If / While: Sampled marks that Cond (and, if present, CombGroup) has
	// already been read this activation; Branch then fixes the outcome for
	// the remainder of the activation (while loops resample once the body
	// completes). 0 = unset, 1 = then/body taken, 2 = else taken.
	Sampled bool
	Branch  byte
}

// ParPath identifies a position in the control tree by the sequence of `par`
// child indices from the root to the currently active leaf, as used by the
// data-race detector's concurrency test (neither path a prefix of the
// other).
type ParPath []uint16

// Write records that an assignment targeting a cell is active under a given
// par-path, for the race detector to consume after convergence confirms the
// assignment's guard actually held.
type Write struct {
	Assign handle.AssignIdx
	Cell   handle.CellIdx
	Path   ParPath
}

// Activation is the set of assignments and cells live for one cycle, as
// computed by Activate from the current (pre-advance) states.
type Activation struct {
	Assignments []handle.AssignIdx
	ActiveCells map[handle.CellIdx]bool
	Writes      []Write
}

func newActivation() *Activation {
	return &Activation{ActiveCells: make(map[handle.CellIdx]bool)}
}

// Interpreter walks one elaborated control tree, one Node per handle.ControlIdx.
type Interpreter struct {
	env    *ir.Environment
	states []State
}

// New builds an Interpreter over every node in env's control table, reset to
// Idle.
func New(env *ir.Environment) *Interpreter {
	in := &Interpreter{env: env, states: make([]State, len(env.Control))}
	in.Reset()

	return in
}

// Reset returns every node in the tree to Idle, as at the start of a fresh
// run or after the debugger's `restart` command.
func (in *Interpreter) Reset() {
	for i := range in.env.Control {
		in.resetNode(handle.ControlIdx(i))
	}
}

// ResetSubtree returns root and its descendants to Idle, without touching
// the rest of the tree; used to re-enter a while loop's body each iteration.
func (in *Interpreter) ResetSubtree(root handle.ControlIdx) {
	if root == handle.InvalidControl {
		return
	}

	in.resetNode(root)

	n := &in.env.Control[root]
	for _, c := range n.Children {
		in.ResetSubtree(c)
	}

	in.ResetSubtree(n.Then)
	in.ResetSubtree(n.Else)
	in.ResetSubtree(n.Body)
}

func (in *Interpreter) resetNode(idx handle.ControlIdx) {
	if idx == handle.InvalidControl {
		return
	}

	n := &in.env.Control[idx]
	st := State{}

	if n.Kind == ir.CtrlPar {
		st.ParDone = make([]bool, len(n.Children))
	}

	in.states[idx] = st
}

// State returns the current runtime state of a node, for the debugger's
// `where`/`print-state` commands.
func (in *Interpreter) State(idx handle.ControlIdx) State {
	return in.states[idx]
}

// NodeDone reports whether the given node has reached Done.
func (in *Interpreter) NodeDone(idx handle.ControlIdx) bool {
	return idx != handle.InvalidControl && in.states[idx].Phase == Done
}

// Activate computes this cycle's activation set from the current states,
// without mutating anything; Advance, called after convergence has settled,
// performs the actual state transitions for next cycle.
func (in *Interpreter) Activate(root handle.ControlIdx) *Activation {
	act := newActivation()
	in.contribute(in.env.Continuous, nil, act)
	in.collect(root, nil, act)

	return act
}

func (in *Interpreter) collect(idx handle.ControlIdx, path ParPath, act *Activation) {
	if idx == handle.InvalidControl {
		return
	}

	n := &in.env.Control[idx]
	st := &in.states[idx]

	if st.Phase == Done {
		return
	}

	switch n.Kind {
	case ir.CtrlEmpty:
		// Contributes nothing; Advance promotes it straight to Done.

	case ir.CtrlEnable:
		in.contribute(in.env.Groups[n.Group].Assignments, path, act)

	case ir.CtrlSeq:
		if int(st.SeqIndex) < len(n.Children) {
			in.collect(n.Children[st.SeqIndex], path, act)
		}

	case ir.CtrlPar:
		for i, c := range n.Children {
			if !st.ParDone[i] {
				childPath := append(append(ParPath(nil), path...), uint16(i))
				in.collect(c, childPath, act)
			}
		}

	case ir.CtrlIf:
		if !st.Sampled {
			if n.CombGroup != handle.InvalidGroup {
				in.contribute(in.env.Groups[n.CombGroup].Assignments, path, act)
			}

			// Cond's owner is not necessarily the Dst/Src of any assignment
			// (e.g. a bare constant or comparator feeding the condition
			// directly), so it must be activated explicitly or its output
			// never gets computed into the buffer.
			act.ActiveCells[in.env.Ports[n.Cond].Owner] = true
		}

		if st.Sampled {
			if st.Branch == 1 {
				in.collect(n.Then, path, act)
			} else if st.Branch == 2 {
				in.collect(n.Else, path, act)
			}
		}

	case ir.CtrlWhile:
		if !st.Sampled {
			if n.CombGroup != handle.InvalidGroup {
				in.contribute(in.env.Groups[n.CombGroup].Assignments, path, act)
			}

			act.ActiveCells[in.env.Ports[n.Cond].Owner] = true
		}

		if st.Sampled && st.Branch == 1 {
			in.collect(n.Body, path, act)
		}

	case ir.CtrlInvoke:
		in.contribute(n.InvokeAssigns, path, act)
	}
}

func (in *Interpreter) contribute(assigns []handle.AssignIdx, path ParPath, act *Activation) {
	for _, aidx := range assigns {
		a := &in.env.Assignments[aidx]
		dstCell := in.env.Ports[a.Dst].Owner

		act.Assignments = append(act.Assignments, aidx)
		act.ActiveCells[dstCell] = true
		act.Writes = append(act.Writes, Write{Assign: aidx, Cell: dstCell, Path: path})

		if !a.IsConst {
			act.ActiveCells[in.env.Ports[a.SrcPort].Owner] = true
		}
	}
}

// Copier is the minimal write access Advance needs to perform an invoke's
// out-argument copies at its Done transition; pkg/sim's port buffer
// implements this directly alongside guard.PortReader.
type Copier interface {
	guard.PortReader
	Copy(dst, src handle.GlobalPortIdx)
}

// Advance inspects the port buffer as this cycle's Settle left it (assignment
// destinations such as group done holes still hold the values they settled
// to before the clock edge; clocked primitives' outputs have been refreshed
// by it) and transitions every live node's state in preparation for the next
// cycle. It returns whether root has reached Done.
func (in *Interpreter) Advance(root handle.ControlIdx, rw Copier) bool {
	in.advance(root, rw)
	return in.NodeDone(root)
}

func (in *Interpreter) advance(idx handle.ControlIdx, rw Copier) {
	if idx == handle.InvalidControl {
		return
	}

	n := &in.env.Control[idx]
	st := &in.states[idx]

	if st.Phase == Done {
		return
	}

	switch n.Kind {
	case ir.CtrlEmpty:
		st.Phase = Done

	case ir.CtrlEnable:
		st.Phase = Running
		g := &in.env.Groups[n.Group]

		if g.Combinational() || !rw.PortValue(g.DonePort).IsZero() {
			st.Phase = Done
		}

	case ir.CtrlSeq:
		if int(st.SeqIndex) >= len(n.Children) {
			st.Phase = Done
			return
		}

		child := n.Children[st.SeqIndex]
		in.advance(child, rw)

		if in.states[child].Phase == Done {
			st.SeqIndex++
		}

		if int(st.SeqIndex) >= len(n.Children) {
			st.Phase = Done
		} else {
			st.Phase = Running
		}

	case ir.CtrlPar:
		if st.ParPending {
			st.Phase = Done
			return
		}

		allDone := true

		for i, c := range n.Children {
			if st.ParDone[i] {
				continue
			}

			in.advance(c, rw)

			if in.states[c].Phase == Done {
				st.ParDone[i] = true
			} else {
				allDone = false
			}
		}

		if allDone {
			st.ParPending = true
		}

		st.Phase = Running

	case ir.CtrlIf:
		if !st.Sampled {
			if !rw.PortValue(n.Cond).IsZero() {
				st.Branch = 1
			} else {
				st.Branch = 2
			}

			st.Sampled = true
			st.Phase = Running

			return
		}

		child := n.Else
		if st.Branch == 1 {
			child = n.Then
		}

		if child == handle.InvalidControl {
			st.Phase = Done
			return
		}

		in.advance(child, rw)

		if in.states[child].Phase == Done {
			st.Phase = Done
		} else {
			st.Phase = Running
		}

	case ir.CtrlWhile:
		if !st.Sampled {
			st.Sampled = true

			if rw.PortValue(n.Cond).IsZero() {
				st.Phase = Done
				return
			}

			st.Branch = 1
			st.Phase = Running

			return
		}

		in.advance(n.Body, rw)

		if in.states[n.Body].Phase == Done {
			in.ResetSubtree(n.Body)
			st.Sampled = false
		}

		st.Phase = Running

	case ir.CtrlInvoke:
		if st.Phase == Idle {
			for _, rb := range n.RefSlots {
				in.env.RefSlots[rb.Slot].Bound = rb.Target
			}

			st.Phase = Running
		}

		calleeDone, ok := in.env.Cells[n.Callee].PortByName("done")
		if ok && !rw.PortValue(calleeDone).IsZero() {
			for _, c := range n.OutCopies {
				rw.Copy(c.Dst, c.Src)
			}

			for _, rb := range n.RefSlots {
				in.env.RefSlots[rb.Slot].Bound = handle.InvalidCell
			}

			st.Phase = Done
		}
	}
}
