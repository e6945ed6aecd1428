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
package primitive

import (
	"github.com/calyxir/cider/pkg/util/bitvec"
)

// MultPipe implements mult_pipe/smult_pipe: a go/done handshake around
// std_mult's arithmetic, pipelined over a fixed number of cycles. It
// advances a fixed-latency operation one cycle at a time and signals
// completion once its step budget is exhausted.
type MultPipe struct {
	width   uint
	signed  bool
	latency uint
	step    uint
	running bool
	done    bool
	out     bitvec.BitVec
	a, b    bitvec.BitVec
}

func init() {
	register("std_mult_pipe", func(params map[string]uint) (Primitive, error) {
		width, err := requireParam(params, "width")
		if err != nil {
			return nil, err
		}

		return NewMultPipe(width, false), nil
	})
	register("std_smult_pipe", func(params map[string]uint) (Primitive, error) {
		width, err := requireParam(params, "width")
		if err != nil {
			return nil, err
		}

		return NewMultPipe(width, true), nil
	})
}

// NewMultPipe constructs a pipelined multiplier of the given width; latency
// is fixed at 4 cycles, matching Calyx's default std_mult_pipe.
func NewMultPipe(width uint, signed bool) *MultPipe {
	return &MultPipe{width: width, signed: signed, latency: 4}
}

// Name implementation for Primitive.
func (m *MultPipe) Name() string {
	if m.signed {
		return "std_smult_pipe"
	}

	return "std_mult_pipe"
}

// Inputs implementation for Primitive.
func (m *MultPipe) Inputs() []PortSig {
	return []PortSig{{"left", m.width}, {"right", m.width}, {"go", 1}}
}

// Outputs implementation for Primitive.
func (m *MultPipe) Outputs() []PortSig { return []PortSig{{"out", m.width}, {"done", 1}} }

// Combinational implementation for Primitive.
func (m *MultPipe) Combinational() bool { return false }

// ClockedInputs implementation for Primitive: everything is sampled at the
// clock edge; "left"/"right" are latched on the cycle "go" first asserts.
func (m *MultPipe) ClockedInputs() []string { return []string{"left", "right", "go"} }

// Latency implementation for MultiCycle.
func (m *MultPipe) Latency() uint { return m.latency }

// EvalCombinational implementation for Primitive.
func (m *MultPipe) EvalCombinational(_ []bitvec.BitVec) ([]bitvec.BitVec, error) {
	done := bitvec.Zero(1)
	if m.done {
		done = bitvec.FromUint64(1, 1)
	}

	return []bitvec.BitVec{m.out, done}, nil
}

// EvalClock implementation for Primitive.
func (m *MultPipe) EvalClock(in []bitvec.BitVec) error {
	goSignal := in[2]
	m.done = false

	if goSignal.IsZero() {
		m.running = false
		m.step = 0

		return nil
	}

	if !m.running {
		m.running = true
		m.step = 0
		m.a, m.b = in[0], in[1]
	}

	m.step++

	if m.step >= m.latency {
		m.out = bitvec.Mul(m.width, m.a, m.b)
		m.done = true
		m.running = false
		m.step = 0
	}

	return nil
}

// Reset implementation for Primitive.
func (m *MultPipe) Reset() {
	m.running, m.done, m.step = false, false, 0
	m.out = bitvec.Zero(m.width)
}

// DumpState implementation for Primitive: in-flight pipeline state is not
// part of the dump format -- a dump is only meaningful once all pipelines
// have drained.
func (m *MultPipe) DumpState() ([]byte, error) { return nil, nil }

// LoadState implementation for Primitive.
func (m *MultPipe) LoadState(_ []byte) error { return nil }

// DivPipe implements std_div_pipe/std_sdiv_pipe: a go/done division pipeline
// producing both quotient and remainder, pipelined the same way as MultPipe.
type DivPipe struct {
	width     uint
	signed    bool
	latency   uint
	step      uint
	running   bool
	done      bool
	quot, rem bitvec.BitVec
	a, b      bitvec.BitVec
}

func init() {
	register("std_div_pipe", func(params map[string]uint) (Primitive, error) {
		width, err := requireParam(params, "width")
		if err != nil {
			return nil, err
		}

		return NewDivPipe(width, false), nil
	})
	register("std_sdiv_pipe", func(params map[string]uint) (Primitive, error) {
		width, err := requireParam(params, "width")
		if err != nil {
			return nil, err
		}

		return NewDivPipe(width, true), nil
	})
}

// NewDivPipe constructs a pipelined divider of the given width; latency is
// fixed at 4 cycles, matching Calyx's default std_div_pipe.
func NewDivPipe(width uint, signed bool) *DivPipe {
	return &DivPipe{width: width, signed: signed, latency: 4}
}

// Name implementation for Primitive.
func (d *DivPipe) Name() string {
	if d.signed {
		return "std_sdiv_pipe"
	}

	return "std_div_pipe"
}

// Inputs implementation for Primitive.
func (d *DivPipe) Inputs() []PortSig {
	return []PortSig{{"left", d.width}, {"right", d.width}, {"go", 1}}
}

// Outputs implementation for Primitive.
func (d *DivPipe) Outputs() []PortSig {
	return []PortSig{{"out_quotient", d.width}, {"out_remainder", d.width}, {"done", 1}}
}

// Combinational implementation for Primitive.
func (d *DivPipe) Combinational() bool { return false }

// ClockedInputs implementation for Primitive.
func (d *DivPipe) ClockedInputs() []string { return []string{"left", "right", "go"} }

// Latency implementation for MultiCycle.
func (d *DivPipe) Latency() uint { return d.latency }

// EvalCombinational implementation for Primitive.
func (d *DivPipe) EvalCombinational(_ []bitvec.BitVec) ([]bitvec.BitVec, error) {
	done := bitvec.Zero(1)
	if d.done {
		done = bitvec.FromUint64(1, 1)
	}

	return []bitvec.BitVec{d.quot, d.rem, done}, nil
}

// EvalClock implementation for Primitive: reports bitvec.ErrDivByZero instead
// of panicking if the divisor is zero on the cycle the pipeline latches its
// result, leaving the pipeline's internal state as if this cycle never
// completed so the caller can decide how to recover.
func (d *DivPipe) EvalClock(in []bitvec.BitVec) error {
	goSignal := in[2]
	d.done = false

	if goSignal.IsZero() {
		d.running = false
		d.step = 0

		return nil
	}

	if !d.running {
		d.running = true
		d.step = 0
		d.a, d.b = in[0], in[1]
	}

	d.step++

	if d.step >= d.latency {
		quot, rem, err := bitvec.DivMod(d.width, d.a, d.b)
		if err != nil {
			d.running = false
			d.step = 0

			return err
		}

		d.quot, d.rem = quot, rem
		d.done = true
		d.running = false
		d.step = 0
	}

	return nil
}

// Reset implementation for Primitive.
func (d *DivPipe) Reset() {
	d.running, d.done, d.step = false, false, 0
	d.quot, d.rem = bitvec.Zero(d.width), bitvec.Zero(d.width)
}

// DumpState implementation for Primitive.
func (d *DivPipe) DumpState() ([]byte, error) { return nil, nil }

// LoadState implementation for Primitive.
func (d *DivPipe) LoadState(_ []byte) error { return nil }
