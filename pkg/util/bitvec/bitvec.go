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

// Package bitvec provides arbitrary-width unsigned bit-vector values, the
// uniform representation used for every port value in the simulator.  Widths
// are tracked externally (on the Port, not the vector) since the same raw
// value is reinterpreted as signed or unsigned depending on the operator
// applied to it (see Cmp).
package bitvec

import (
	"errors"
	"math/big"
)

// BitVec is an arbitrary-width value stored modulo 2^width.  The zero value
// is the zero-width zero vector.
type BitVec struct {
	val   big.Int
	width uint
}

// Zero constructs a zero-valued bit-vector of the given width.
func Zero(width uint) BitVec {
	return BitVec{width: width}
}

// FromUint64 constructs a bit-vector of the given width from an unsigned
// 64bit value, masking off any bits beyond width.
func FromUint64(width uint, value uint64) BitVec {
	var v big.Int
	v.SetUint64(value)
	return mask(BitVec{v, width})
}

// FromBigInt constructs a bit-vector of the given width from an arbitrary
// precision integer, wrapping modulo 2^width.
func FromBigInt(width uint, value *big.Int) BitVec {
	var v big.Int
	v.Set(value)
	return mask(BitVec{v, width})
}

// Width returns the declared bitwidth of this vector.
func (b BitVec) Width() uint {
	return b.width
}

// BigInt returns the raw unsigned value as a big.Int.  Callers must not
// mutate the result.
func (b BitVec) BigInt() *big.Int {
	return &b.val
}

// IsZero determines whether this vector is all-zero bits (the truth value
// used when a guard treats a port as a boolean condition).
func (b BitVec) IsZero() bool {
	return b.val.Sign() == 0
}

// Equals determines bit-for-bit equality. Widths are not compared since a
// narrower and wider vector holding the same numeric value are considered
// equal for assignment-convergence purposes (guard comparisons may mix
// widths via padding).
func (b BitVec) Equals(other BitVec) bool {
	return b.val.Cmp(&other.val) == 0
}

// Signed reinterprets the raw bits as two's-complement signed and returns
// the resulting value.
func (b BitVec) Signed() *big.Int {
	var (
		result big.Int
		limit  big.Int
	)

	result.Set(&b.val)
	limit.Lsh(big.NewInt(1), b.width-1)

	if b.width == 0 || result.Cmp(&limit) < 0 {
		return &result
	}
	// Negative: subtract 2^width.
	var modulus big.Int
	modulus.Lsh(big.NewInt(1), b.width)
	result.Sub(&result, &modulus)

	return &result
}

// Cmp compares two bit-vectors of (assumed) equal width, either as unsigned
// magnitudes or as two's-complement signed values, per the guard's
// attribute.
func Cmp(lhs, rhs BitVec, signed bool) int {
	if signed {
		return lhs.Signed().Cmp(rhs.Signed())
	}

	return lhs.val.Cmp(&rhs.val)
}

// Add computes (lhs + rhs) mod 2^width, wrapping on overflow.
func Add(width uint, lhs, rhs BitVec) BitVec {
	var sum big.Int
	sum.Add(&lhs.val, &rhs.val)
	return mask(BitVec{sum, width})
}

// Sub computes (lhs - rhs) mod 2^width.
func Sub(width uint, lhs, rhs BitVec) BitVec {
	var diff big.Int
	diff.Sub(&lhs.val, &rhs.val)
	diff.Mod(&diff, modulusOf(width))
	return BitVec{diff, width}
}

// Mul computes (lhs * rhs) mod 2^width.
func Mul(width uint, lhs, rhs BitVec) BitVec {
	var prod big.Int
	prod.Mul(&lhs.val, &rhs.val)
	return mask(BitVec{prod, width})
}

// ErrDivByZero is returned by DivMod when rhs is zero.
var ErrDivByZero = errors.New("division by zero")

// DivMod computes unsigned (lhs/rhs, lhs%rhs), returning ErrDivByZero
// instead of panicking when rhs is zero.
func DivMod(width uint, lhs, rhs BitVec) (BitVec, BitVec, error) {
	if rhs.IsZero() {
		return BitVec{}, BitVec{}, ErrDivByZero
	}

	var q, r big.Int
	q.DivMod(&lhs.val, &rhs.val, &r)
	return BitVec{q, width}, BitVec{r, width}, nil
}

// Shl computes lhs << amount, truncated to width.
func Shl(width uint, lhs BitVec, amount uint) BitVec {
	var shifted big.Int
	shifted.Lsh(&lhs.val, amount)
	return mask(BitVec{shifted, width})
}

// ShrLogical computes an unsigned right shift.
func ShrLogical(width uint, lhs BitVec, amount uint) BitVec {
	var shifted big.Int
	shifted.Rsh(&lhs.val, amount)
	return BitVec{shifted, width}
}

// ShrArithmetic computes a sign-extending (arithmetic) right shift.
func ShrArithmetic(width uint, lhs BitVec, amount uint) BitVec {
	signed := lhs.Signed()

	var shifted big.Int
	shifted.Rsh(signed, amount)

	return mask(BitVec{shifted, width})
}

// BitNot computes the bitwise complement of lhs within width bits.
func BitNot(width uint, lhs BitVec) BitVec {
	var v big.Int
	v.Xor(&lhs.val, modulusMask(width))
	return BitVec{v, width}
}

// BitAnd computes the bitwise AND of lhs and rhs.
func BitAnd(width uint, lhs, rhs BitVec) BitVec {
	var v big.Int
	v.And(&lhs.val, &rhs.val)
	return BitVec{v, width}
}

// BitOr computes the bitwise OR of lhs and rhs.
func BitOr(width uint, lhs, rhs BitVec) BitVec {
	var v big.Int
	v.Or(&lhs.val, &rhs.val)
	return BitVec{v, width}
}

// BitXor computes the bitwise XOR of lhs and rhs.
func BitXor(width uint, lhs, rhs BitVec) BitVec {
	var v big.Int
	v.Xor(&lhs.val, &rhs.val)
	return BitVec{v, width}
}

// Slice extracts bits [lo,hi) from lhs, producing a (hi-lo)-bit result.
func Slice(lhs BitVec, lo, hi uint) BitVec {
	var shifted big.Int
	shifted.Rsh(&lhs.val, lo)
	return mask(BitVec{shifted, hi - lo})
}

// Pad zero-extends lhs to a wider width.
func Pad(lhs BitVec, width uint) BitVec {
	var v big.Int
	v.Set(&lhs.val)
	return BitVec{v, width}
}

// SignExtend sign-extends lhs (interpreted at its current width) to a wider
// width.
func SignExtend(lhs BitVec, width uint) BitVec {
	signed := lhs.Signed()
	return mask(FromBigInt(width, signed))
}

// String renders the vector in unsigned decimal.
func (b BitVec) String() string {
	return b.val.String()
}

func mask(b BitVec) BitVec {
	b.val.Mod(&b.val, modulusOf(b.width))
	return b
}

func modulusOf(width uint) *big.Int {
	var m big.Int
	m.Lsh(big.NewInt(1), width)
	return &m
}

func modulusMask(width uint) *big.Int {
	var m big.Int
	m.Lsh(big.NewInt(1), width)
	m.Sub(&m, big.NewInt(1))
	return &m
}
