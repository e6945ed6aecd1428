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

// Package primitive implements Cider's primitive library: the leaf cells
// (registers, memories, arithmetic, comparators, bitwise operators, slicing,
// and multi-cycle pipelines) whose behaviour is built in rather than
// expressed in Calyx. Every primitive implements the uniform Primitive
// interface below.
package primitive

import (
	"fmt"

	"github.com/calyxir/cider/pkg/util/bitvec"
)

// PortSig declares one input or output port of a primitive.
type PortSig struct {
	Name  string
	Width uint
}

// Primitive is the uniform contract every leaf cell implements.
type Primitive interface {
	// Name identifies which primitive this is (e.g. "std_reg").
	Name() string
	// Inputs lists this primitive's input ports, in the fixed order used by
	// EvalCombinational and EvalClock.
	Inputs() []PortSig
	// Outputs lists this primitive's output ports, in the fixed order
	// returned by EvalCombinational.
	Outputs() []PortSig
	// Combinational reports whether this primitive has no clocked state at
	// all (arithmetic, comparators, bitwise, slice, pad, sign-extend,
	// constants); such primitives never need EvalClock called.
	Combinational() bool
	// ClockedInputs names the subset of Inputs() that are read only at the
	// clock edge (EvalClock), not combinationally -- e.g. a register reads
	// "in" and "write_en" only at the edge, not in EvalCombinational.
	ClockedInputs() []string
	// EvalCombinational is pure and re-entrant: given the current input
	// values (in the order of Inputs()), it returns the current output
	// values (in the order of Outputs()). Primitives with clocked-only
	// inputs ignore those positions here. It reports an error instead of
	// panicking for a runtime-invalid input (e.g. division by zero); the
	// returned values are meaningless in that case.
	EvalCombinational(in []bitvec.BitVec) ([]bitvec.BitVec, error)
	// EvalClock is called exactly once per cycle, at the clock edge, after
	// convergence; it may mutate internal state from the clocked inputs. It
	// reports an error instead of panicking for a runtime-invalid input.
	EvalClock(in []bitvec.BitVec) error
	// Reset restores this primitive's internal state to its initial value.
	Reset()
	// DumpState serialises internal state for the native dump format.
	DumpState() ([]byte, error)
	// LoadState restores internal state previously produced by DumpState.
	LoadState([]byte) error
}

// MultiCycle is implemented by primitives which additionally expose a
// go/done handshake (e.g. mult_pipe, div): while "go" is held high, after N
// clock edges they raise "done" for one cycle with the result on "out".
// Such primitives still implement the base Primitive interface; MultiCycle
// only adds Latency.
type MultiCycle interface {
	Primitive
	// Latency is the fixed number of cycles between "go" first asserted and
	// "done" raised.
	Latency() uint
}

// Factory constructs a primitive instance from declared parameters (widths,
// sizes, etc), taking them explicitly rather than inferring them.
type Factory func(params map[string]uint) (Primitive, error)

var registry = map[string]Factory{}

func register(name string, f Factory) {
	registry[name] = f
}

// Lookup resolves a primitive by name, as referenced from an ast.CellDecl.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

// ErrUnknownPrimitive describes a cell naming a primitive not present in the
// library.
type ErrUnknownPrimitive struct {
	Name string
}

func (e *ErrUnknownPrimitive) Error() string {
	return fmt.Sprintf("unknown primitive %q", e.Name)
}

func requireParam(params map[string]uint, name string) (uint, error) {
	v, ok := params[name]
	if !ok {
		return 0, fmt.Errorf("missing required parameter %q", name)
	}

	return v, nil
}

func paramOr(params map[string]uint, name string, fallback uint) uint {
	if v, ok := params[name]; ok {
		return v
	}

	return fallback
}
