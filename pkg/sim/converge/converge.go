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

// Package converge implements the fixed-point combinational propagation and
// clock-edge commit at the heart of the simulator: given an activation set
// and the current port buffer, iterate assignments and combinational
// primitives to a stable point, then tick every active clocked primitive
// exactly once.
package converge

import (
	"fmt"
	"sort"

	"github.com/calyxir/cider/pkg/ir"
	"github.com/calyxir/cider/pkg/ir/guard"
	"github.com/calyxir/cider/pkg/ir/handle"
	"github.com/calyxir/cider/pkg/sim/control"
	"github.com/calyxir/cider/pkg/util/bitvec"
	"github.com/calyxir/cider/pkg/util/diag"
)

// Buffer is the read/write port-value store the engine operates over;
// pkg/sim.Buffer implements this directly.
type Buffer interface {
	guard.PortReader
	SetPortValue(handle.GlobalPortIdx, bitvec.BitVec)
}

// MultipleDriverError reports two distinct assignments driving the same
// port to different values in the same cycle.
type MultipleDriverError struct {
	Port          handle.GlobalPortIdx
	First, Second handle.AssignIdx
	Name          string
}

func (e *MultipleDriverError) Error() string {
	return fmt.Sprintf("multiple drivers for %s: assignments %d and %d disagree", e.Name, e.First, e.Second)
}

// LoopError reports that the fixed-point iteration failed to settle within
// the configured bound: a combinational loop.
type LoopError struct {
	Iterations uint
	// Ports names the destination of every assignment active in the cycle
	// that failed to settle, not only the ports whose values kept changing.
	Ports []string
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("combinational loop: no fixed point after %d iterations, active assignment destinations: %v", e.Iterations, e.Ports)
}

// DefaultMaxIterations bounds the fixed-point loop when the caller does not
// override it.
const DefaultMaxIterations = 10_000

// Engine runs one cycle's worth of combinational settling and clock commit
// for a single Environment.
type Engine struct {
	env      *ir.Environment
	maxIters uint
}

// New constructs an Engine. A maxIters of 0 selects DefaultMaxIterations.
func New(env *ir.Environment, maxIters uint) *Engine {
	if maxIters == 0 {
		maxIters = DefaultMaxIterations
	}

	return &Engine{env: env, maxIters: maxIters}
}

// Settle runs the repeat-until-stable loop over act's assignments and active
// cells, then commits the clock edge by calling EvalClock on every active
// clocked primitive and refreshing its combinational outputs (so "done"
// reflects the post-edge state the interpreter samples next). It returns a
// *MultipleDriverError, a *LoopError, or an *ir.RuntimeError wrapping a
// primitive's own runtime failure (e.g. division by zero) on failure; the
// caller decides whether any of these is fatal. cycle is stamped onto any
// *ir.RuntimeError so the diagnostic carries when the failure happened.
func (e *Engine) Settle(buf Buffer, act *control.Activation, cycle uint64) error {
	order := append([]handle.AssignIdx(nil), act.Assignments...)
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	driverOf := make(map[handle.GlobalPortIdx]handle.AssignIdx, len(order))

	for iter := uint(0); ; iter++ {
		if iter >= e.maxIters {
			return &LoopError{Iterations: e.maxIters, Ports: e.oscillating(order)}
		}

		changed := false

		for _, aidx := range order {
			a := &e.env.Assignments[aidx]
			if !a.Active(buf) {
				continue
			}

			v := a.SrcValue(buf)

			if prev, ok := driverOf[a.Dst]; ok && prev != aidx {
				if !e.env.Assignments[prev].SrcValue(buf).Equals(v) {
					return &MultipleDriverError{Port: a.Dst, First: prev, Second: aidx, Name: e.env.PortName(a.Dst)}
				}
			}

			driverOf[a.Dst] = aidx

			if !buf.PortValue(a.Dst).Equals(v) {
				buf.SetPortValue(a.Dst, v)
				changed = true
			}
		}

		propagated, err := e.propagateCombinational(buf, act, cycle)
		if err != nil {
			return err
		}

		if propagated {
			changed = true
		}

		if !changed {
			break
		}
	}

	return e.commitClock(buf, act, cycle)
}

func (e *Engine) propagateCombinational(buf Buffer, act *control.Activation, cycle uint64) (bool, error) {
	changed := false

	for cidx := range act.ActiveCells {
		cell := &e.env.Cells[cidx]
		if cell.Primitive == nil {
			continue
		}

		in := e.readInputs(buf, cell)

		out, err := cell.Primitive.EvalCombinational(in)
		if err != nil {
			return false, e.runtimeError(cell, err, cycle)
		}

		if e.writeOutputs(buf, cell, out) {
			changed = true
		}
	}

	return changed, nil
}

func (e *Engine) commitClock(buf Buffer, act *control.Activation, cycle uint64) error {
	for cidx := range act.ActiveCells {
		cell := &e.env.Cells[cidx]
		if cell.Primitive == nil || cell.Primitive.Combinational() {
			continue
		}

		in := e.readInputs(buf, cell)

		if err := cell.Primitive.EvalClock(in); err != nil {
			return e.runtimeError(cell, err, cycle)
		}

		out, err := cell.Primitive.EvalCombinational(in)
		if err != nil {
			return e.runtimeError(cell, err, cycle)
		}

		e.writeOutputs(buf, cell, out)
	}

	return nil
}

// runtimeError wraps a primitive-reported failure (e.g. bitvec.ErrDivByZero)
// as an *ir.RuntimeError, attaching the offending cell and the cycle it
// failed on so the diagnostic carries enough context to act on without a
// stack trace.
func (e *Engine) runtimeError(cell *ir.CellInfo, err error, cycle uint64) error {
	return ir.NewRuntimeError(
		fmt.Sprintf("%s (cell %s): %s", cell.Primitive.Name(), cell.Name, err),
		diag.Span{Component: cell.Name},
		cycle,
		"",
	)
}

func (e *Engine) readInputs(buf Buffer, cell *ir.CellInfo) []bitvec.BitVec {
	in := make([]bitvec.BitVec, cell.NumInputs)
	for i := uint(0); i < cell.NumInputs; i++ {
		in[i] = buf.PortValue(cell.PortBase + handle.GlobalPortIdx(i))
	}

	return in
}

func (e *Engine) writeOutputs(buf Buffer, cell *ir.CellInfo, out []bitvec.BitVec) bool {
	changed := false
	numOut := cell.NumPorts - cell.NumInputs

	for i := uint(0); i < numOut && i < uint(len(out)); i++ {
		p := cell.PortBase + handle.GlobalPortIdx(cell.NumInputs+i)
		if !buf.PortValue(p).Equals(out[i]) {
			buf.SetPortValue(p, out[i])
			changed = true
		}
	}

	return changed
}

func (e *Engine) oscillating(order []handle.AssignIdx) []string {
	seen := make(map[handle.GlobalPortIdx]bool)

	var names []string

	for _, aidx := range order {
		dst := e.env.Assignments[aidx].Dst
		if seen[dst] {
			continue
		}

		seen[dst] = true
		names = append(names, e.env.PortName(dst))
	}

	return names
}
