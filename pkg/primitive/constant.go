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

// Constant implements std_const: a zero-input cell whose single output is
// fixed at elaboration time. Unlike a literal source term in an assignment,
// a std_const cell gets its own handle and so can be named from a control
// program (e.g. as an invoke argument).
type Constant struct {
	width uint
	value bitvec.BitVec
}

func init() {
	register("std_const", func(params map[string]uint) (Primitive, error) {
		width, err := requireParam(params, "width")
		if err != nil {
			return nil, err
		}

		value := paramOr(params, "value", 0)

		return NewConstant(width, value), nil
	})
}

// NewConstant constructs a std_const cell of the given width and value.
func NewConstant(width uint, value uint) *Constant {
	return &Constant{width: width, value: bitvec.FromUint64(width, uint64(value))}
}

// Name implementation for Primitive.
func (c *Constant) Name() string { return "std_const" }

// Inputs implementation for Primitive.
func (c *Constant) Inputs() []PortSig { return nil }

// Outputs implementation for Primitive.
func (c *Constant) Outputs() []PortSig { return []PortSig{{"out", c.width}} }

// Combinational implementation for Primitive.
func (c *Constant) Combinational() bool { return true }

// ClockedInputs implementation for Primitive.
func (c *Constant) ClockedInputs() []string { return nil }

// EvalCombinational implementation for Primitive.
func (c *Constant) EvalCombinational(_ []bitvec.BitVec) ([]bitvec.BitVec, error) {
	return []bitvec.BitVec{c.value}, nil
}

// EvalClock implementation for Primitive.
func (c *Constant) EvalClock(_ []bitvec.BitVec) error { return nil }

// Reset implementation for Primitive.
func (c *Constant) Reset() {}

// DumpState implementation for Primitive.
func (c *Constant) DumpState() ([]byte, error) { return nil, nil }

// LoadState implementation for Primitive.
func (c *Constant) LoadState(_ []byte) error { return nil }
