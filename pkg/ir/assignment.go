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
	"github.com/calyxir/cider/pkg/ir/guard"
	"github.com/calyxir/cider/pkg/ir/handle"
	"github.com/calyxir/cider/pkg/util/bitvec"
)

// Assignment is the elaborated, handle-addressed form of an ast.AssignDecl: a
// single guarded dataflow edge driving Dst from either a port or an
// immediate constant.
type Assignment struct {
	Dst handle.GlobalPortIdx
	// SrcPort is read when IsConst is false.
	SrcPort handle.GlobalPortIdx
	IsConst bool
	// ConstValue is read when IsConst is true.
	ConstValue bitvec.BitVec
	Guard      guard.Expr
	// Cache memoises Guard's evaluation across convergence iterations; see
	// pkg/ir/guard's design note on why this never changes the fixed point,
	// only the work needed to reach it.
	Cache *guard.Cache
	// OwnerGroup is the group this assignment belongs to, or
	// handle.InvalidGroup for a continuous assignment.
	OwnerGroup handle.GroupIdx
}

// NewAssignment constructs an Assignment and its guard cache together, so
// callers never forget to wire one up.
func NewAssignment(dst handle.GlobalPortIdx, srcPort handle.GlobalPortIdx, isConst bool, constValue bitvec.BitVec, g guard.Expr, owner handle.GroupIdx) Assignment {
	return Assignment{
		Dst:        dst,
		SrcPort:    srcPort,
		IsConst:    isConst,
		ConstValue: constValue,
		Guard:      g,
		Cache:      guard.NewCache(&g),
		OwnerGroup: owner,
	}
}

// SrcValue resolves this assignment's driven value against the given port
// reader, without regard to whether the guard currently holds.
func (a *Assignment) SrcValue(r guard.PortReader) bitvec.BitVec {
	if a.IsConst {
		return a.ConstValue
	}

	return r.PortValue(a.SrcPort)
}

// Active reports whether this assignment's guard currently holds, using the
// memoised Cache.
func (a *Assignment) Active(r guard.PortReader) bool {
	return a.Cache.Eval(&a.Guard, r)
}
