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
	"bytes"
	"encoding/gob"
	"math/big"

	"github.com/calyxir/cider/pkg/util/bitvec"
)

// Register implements std_reg: an N-bit register which reads "in" and
// "write_en" only at the clock edge, and combinationally exposes its
// current value on "out".
type Register struct {
	width       uint
	value       bitvec.BitVec
	justWritten bool
}

func init() {
	register("std_reg", func(params map[string]uint) (Primitive, error) {
		width, err := requireParam(params, "width")
		if err != nil {
			return nil, err
		}

		return NewRegister(width), nil
	})
}

// NewRegister constructs a zero-initialised register of the given width.
func NewRegister(width uint) *Register {
	return &Register{width: width, value: bitvec.Zero(width)}
}

// Name implementation for Primitive.
func (r *Register) Name() string { return "std_reg" }

// Inputs implementation for Primitive.
func (r *Register) Inputs() []PortSig {
	return []PortSig{{"in", r.width}, {"write_en", 1}}
}

// Outputs implementation for Primitive.
func (r *Register) Outputs() []PortSig {
	return []PortSig{{"out", r.width}, {"done", 1}}
}

// Combinational implementation for Primitive.
func (r *Register) Combinational() bool { return false }

// ClockedInputs implementation for Primitive: both "in" and "write_en" are
// sampled only at the clock edge.
func (r *Register) ClockedInputs() []string { return []string{"in", "write_en"} }

// EvalCombinational implementation for Primitive: "out" always reflects the
// register's stored value; "done" pulses high for exactly the cycle after a
// write (Calyx's std_reg asserts done whenever write_en was high on the
// previous clock edge -- tracked via the internal justWritten flag set in
// EvalClock).
func (r *Register) EvalCombinational(_ []bitvec.BitVec) ([]bitvec.BitVec, error) {
	done := bitvec.Zero(1)
	if r.justWritten {
		done = bitvec.FromUint64(1, 1)
	}

	return []bitvec.BitVec{r.value, done}, nil
}

// EvalClock implementation for Primitive.
func (r *Register) EvalClock(in []bitvec.BitVec) error {
	writeEn := in[1]
	r.justWritten = !writeEn.IsZero()

	if r.justWritten {
		r.value = in[0]
	}

	return nil
}

// Reset implementation for Primitive.
func (r *Register) Reset() {
	r.value = bitvec.Zero(r.width)
	r.justWritten = false
}

// DumpState implementation for Primitive.
func (r *Register) DumpState() ([]byte, error) {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(r.value.BigInt()); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// LoadState implementation for Primitive.
func (r *Register) LoadState(data []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(data))

	var raw big.Int
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	r.value = bitvec.FromBigInt(r.width, &raw)

	return nil
}
