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

// binaryOp is a two-input, one-output combinational primitive: the common
// shape shared by std_add, std_sub, and the bitwise/comparator families. A
// handful of constructors parametrise over a single "compute" function
// rather than hand-writing a type per operator.
type binaryOp struct {
	op    string
	width uint
	out   uint
	fn    func(width uint, a, b bitvec.BitVec) (bitvec.BitVec, error)
}

func registerBinary(op string, out func(width uint) uint, fn func(width uint, a, b bitvec.BitVec) (bitvec.BitVec, error)) {
	register(op, func(params map[string]uint) (Primitive, error) {
		width, err := requireParam(params, "width")
		if err != nil {
			return nil, err
		}

		return &binaryOp{op: op, width: width, out: out(width), fn: fn}, nil
	})
}

func sameWidth(width uint) uint { return width }
func singleBit(_ uint) uint     { return 1 }

// pure lifts a binary op that can never fail into the (value, error) shape
// registerBinary expects.
func pure(fn func(width uint, a, b bitvec.BitVec) bitvec.BitVec) func(uint, bitvec.BitVec, bitvec.BitVec) (bitvec.BitVec, error) {
	return func(w uint, a, b bitvec.BitVec) (bitvec.BitVec, error) {
		return fn(w, a, b), nil
	}
}

func init() {
	registerBinary("std_add", sameWidth, pure(func(w uint, a, b bitvec.BitVec) bitvec.BitVec { return bitvec.Add(w, a, b) }))
	registerBinary("std_sub", sameWidth, pure(func(w uint, a, b bitvec.BitVec) bitvec.BitVec { return bitvec.Sub(w, a, b) }))
	registerBinary("std_mult", sameWidth, pure(func(w uint, a, b bitvec.BitVec) bitvec.BitVec { return bitvec.Mul(w, a, b) }))

	registerBinary("std_div", sameWidth, func(w uint, a, b bitvec.BitVec) (bitvec.BitVec, error) {
		q, _, err := bitvec.DivMod(w, a, b)
		return q, err
	})
	registerBinary("std_mod", sameWidth, func(w uint, a, b bitvec.BitVec) (bitvec.BitVec, error) {
		_, r, err := bitvec.DivMod(w, a, b)
		return r, err
	})

	registerBinary("std_lsh", sameWidth, pure(func(w uint, a, b bitvec.BitVec) bitvec.BitVec {
		return bitvec.Shl(w, a, uint(b.BigInt().Uint64()))
	}))
	registerBinary("std_rsh", sameWidth, pure(func(w uint, a, b bitvec.BitVec) bitvec.BitVec {
		return bitvec.ShrLogical(w, a, uint(b.BigInt().Uint64()))
	}))
	registerBinary("std_srsh", sameWidth, pure(func(w uint, a, b bitvec.BitVec) bitvec.BitVec {
		return bitvec.ShrArithmetic(w, a, uint(b.BigInt().Uint64()))
	}))

	registerBinary("std_and", sameWidth, pure(func(w uint, a, b bitvec.BitVec) bitvec.BitVec { return bitvec.BitAnd(w, a, b) }))
	registerBinary("std_or", sameWidth, pure(func(w uint, a, b bitvec.BitVec) bitvec.BitVec { return bitvec.BitOr(w, a, b) }))
	registerBinary("std_xor", sameWidth, pure(func(w uint, a, b bitvec.BitVec) bitvec.BitVec { return bitvec.BitXor(w, a, b) }))

	registerBinary("std_eq", singleBit, pure(func(_ uint, a, b bitvec.BitVec) bitvec.BitVec { return boolBit(bitvec.Cmp(a, b, false) == 0) }))
	registerBinary("std_neq", singleBit, pure(func(_ uint, a, b bitvec.BitVec) bitvec.BitVec { return boolBit(bitvec.Cmp(a, b, false) != 0) }))
	registerBinary("std_lt", singleBit, pure(func(_ uint, a, b bitvec.BitVec) bitvec.BitVec { return boolBit(bitvec.Cmp(a, b, false) < 0) }))
	registerBinary("std_le", singleBit, pure(func(_ uint, a, b bitvec.BitVec) bitvec.BitVec { return boolBit(bitvec.Cmp(a, b, false) <= 0) }))
	registerBinary("std_gt", singleBit, pure(func(_ uint, a, b bitvec.BitVec) bitvec.BitVec { return boolBit(bitvec.Cmp(a, b, false) > 0) }))
	registerBinary("std_ge", singleBit, pure(func(_ uint, a, b bitvec.BitVec) bitvec.BitVec { return boolBit(bitvec.Cmp(a, b, false) >= 0) }))

	registerBinary("std_sge", singleBit, pure(func(_ uint, a, b bitvec.BitVec) bitvec.BitVec { return boolBit(bitvec.Cmp(a, b, true) >= 0) }))
	registerBinary("std_sgt", singleBit, pure(func(_ uint, a, b bitvec.BitVec) bitvec.BitVec { return boolBit(bitvec.Cmp(a, b, true) > 0) }))
	registerBinary("std_sle", singleBit, pure(func(_ uint, a, b bitvec.BitVec) bitvec.BitVec { return boolBit(bitvec.Cmp(a, b, true) <= 0) }))
	registerBinary("std_slt", singleBit, pure(func(_ uint, a, b bitvec.BitVec) bitvec.BitVec { return boolBit(bitvec.Cmp(a, b, true) < 0) }))
	registerBinary("std_seq", singleBit, pure(func(_ uint, a, b bitvec.BitVec) bitvec.BitVec { return boolBit(bitvec.Cmp(a, b, true) == 0) }))
	registerBinary("std_sneq", singleBit, pure(func(_ uint, a, b bitvec.BitVec) bitvec.BitVec { return boolBit(bitvec.Cmp(a, b, true) != 0) }))
}

func boolBit(v bool) bitvec.BitVec {
	if v {
		return bitvec.FromUint64(1, 1)
	}

	return bitvec.Zero(1)
}

// Name implementation for Primitive.
func (b *binaryOp) Name() string { return b.op }

// Inputs implementation for Primitive.
func (b *binaryOp) Inputs() []PortSig {
	return []PortSig{{"left", b.width}, {"right", b.width}}
}

// Outputs implementation for Primitive.
func (b *binaryOp) Outputs() []PortSig { return []PortSig{{"out", b.out}} }

// Combinational implementation for Primitive.
func (b *binaryOp) Combinational() bool { return true }

// ClockedInputs implementation for Primitive.
func (b *binaryOp) ClockedInputs() []string { return nil }

// EvalCombinational implementation for Primitive.
func (b *binaryOp) EvalCombinational(in []bitvec.BitVec) ([]bitvec.BitVec, error) {
	out, err := b.fn(b.width, in[0], in[1])
	if err != nil {
		return nil, err
	}

	return []bitvec.BitVec{out}, nil
}

// EvalClock implementation for Primitive: combinational primitives have no
// clocked state.
func (b *binaryOp) EvalClock(_ []bitvec.BitVec) error { return nil }

// Reset implementation for Primitive.
func (b *binaryOp) Reset() {}

// DumpState implementation for Primitive: combinational primitives carry no
// state to dump.
func (b *binaryOp) DumpState() ([]byte, error) { return nil, nil }

// LoadState implementation for Primitive.
func (b *binaryOp) LoadState(_ []byte) error { return nil }
