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

// unaryOp is a one-input, one-output combinational primitive, covering
// std_not, std_wire and std_slice's neighbours.
type unaryOp struct {
	op    string
	width uint
	out   uint
	fn    func(width uint, a bitvec.BitVec) bitvec.BitVec
}

func registerUnary(op string, out func(width uint) uint, fn func(width uint, a bitvec.BitVec) bitvec.BitVec) {
	register(op, func(params map[string]uint) (Primitive, error) {
		width, err := requireParam(params, "width")
		if err != nil {
			return nil, err
		}

		return &unaryOp{op: op, width: width, out: out(width), fn: fn}, nil
	})
}

func init() {
	registerUnary("std_not", sameWidth, func(w uint, a bitvec.BitVec) bitvec.BitVec { return bitvec.BitNot(w, a) })
	registerUnary("std_wire", sameWidth, func(_ uint, a bitvec.BitVec) bitvec.BitVec { return a })

	register("std_slice", func(params map[string]uint) (Primitive, error) {
		inWidth, err := requireParam(params, "in_width")
		if err != nil {
			return nil, err
		}

		outWidth, err := requireParam(params, "out_width")
		if err != nil {
			return nil, err
		}

		return &unaryOp{op: "std_slice", width: inWidth, out: outWidth, fn: func(_ uint, a bitvec.BitVec) bitvec.BitVec {
			return bitvec.Slice(a, 0, outWidth)
		}}, nil
	})

	register("std_pad", func(params map[string]uint) (Primitive, error) {
		inWidth, err := requireParam(params, "in_width")
		if err != nil {
			return nil, err
		}

		outWidth, err := requireParam(params, "out_width")
		if err != nil {
			return nil, err
		}

		return &unaryOp{op: "std_pad", width: inWidth, out: outWidth, fn: func(_ uint, a bitvec.BitVec) bitvec.BitVec {
			return bitvec.Pad(a, outWidth)
		}}, nil
	})

	register("std_signext", func(params map[string]uint) (Primitive, error) {
		inWidth, err := requireParam(params, "in_width")
		if err != nil {
			return nil, err
		}

		outWidth, err := requireParam(params, "out_width")
		if err != nil {
			return nil, err
		}

		return &unaryOp{op: "std_signext", width: inWidth, out: outWidth, fn: func(_ uint, a bitvec.BitVec) bitvec.BitVec {
			return bitvec.SignExtend(a, outWidth)
		}}, nil
	})
}

// Name implementation for Primitive.
func (u *unaryOp) Name() string { return u.op }

// Inputs implementation for Primitive.
func (u *unaryOp) Inputs() []PortSig { return []PortSig{{"in", u.width}} }

// Outputs implementation for Primitive.
func (u *unaryOp) Outputs() []PortSig { return []PortSig{{"out", u.out}} }

// Combinational implementation for Primitive.
func (u *unaryOp) Combinational() bool { return true }

// ClockedInputs implementation for Primitive.
func (u *unaryOp) ClockedInputs() []string { return nil }

// EvalCombinational implementation for Primitive.
func (u *unaryOp) EvalCombinational(in []bitvec.BitVec) ([]bitvec.BitVec, error) {
	return []bitvec.BitVec{u.fn(u.width, in[0])}, nil
}

// EvalClock implementation for Primitive.
func (u *unaryOp) EvalClock(_ []bitvec.BitVec) error { return nil }

// Reset implementation for Primitive.
func (u *unaryOp) Reset() {}

// DumpState implementation for Primitive.
func (u *unaryOp) DumpState() ([]byte, error) { return nil, nil }

// LoadState implementation for Primitive.
func (u *unaryOp) LoadState(_ []byte) error { return nil }
