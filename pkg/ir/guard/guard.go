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

// Package guard implements the guard expression trees that gate assignments:
// small recursive boolean expressions over ports, evaluated on demand during
// convergence.
package guard

import (
	"fmt"

	"github.com/calyxir/cider/pkg/ir/handle"
	"github.com/calyxir/cider/pkg/util/bitvec"
	"github.com/calyxir/cider/pkg/util/sexp"
)

// Kind discriminates an Expr's variant.
type Kind uint8

// The guard variants: a constant true, a single port read, and the boolean
// combinators over them.
const (
	True Kind = iota
	Port
	Not
	And
	Or
	Cmp
)

// CmpOp names a guard comparison operator.
type CmpOp uint8

// The comparison operators a guard may use.
const (
	CmpEq CmpOp = iota
	CmpNeq
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// Expr is a guard expression tree node. As with ir.Node, this is a
// single flat tagged struct rather than an interface hierarchy: a guard
// composes and pattern-matches cleanly this way, and keeps evaluation code
// in one place.
type Expr struct {
	Kind     Kind
	Port     handle.GlobalPortIdx // Kind == Port
	Operand  *Expr                // Kind == Not
	Operands []Expr               // Kind == And, Or
	Op       CmpOp                // Kind == Cmp
	Lhs      handle.GlobalPortIdx // Kind == Cmp
	Rhs      handle.GlobalPortIdx // Kind == Cmp
	Signed   bool                 // Kind == Cmp
}

// NewTrue constructs the always-true guard.
func NewTrue() Expr { return Expr{Kind: True} }

// NewPort constructs a guard that is true iff the named port is non-zero.
func NewPort(p handle.GlobalPortIdx) Expr { return Expr{Kind: Port, Port: p} }

// NewNot negates a sub-guard.
func NewNot(e Expr) Expr { return Expr{Kind: Not, Operand: &e} }

// NewAnd conjoins two or more sub-guards.
func NewAnd(es ...Expr) Expr { return Expr{Kind: And, Operands: es} }

// NewOr disjoins two or more sub-guards.
func NewOr(es ...Expr) Expr { return Expr{Kind: Or, Operands: es} }

// NewCmp constructs a comparison guard between two ports.
func NewCmp(op CmpOp, lhs, rhs handle.GlobalPortIdx, signed bool) Expr {
	return Expr{Kind: Cmp, Op: op, Lhs: lhs, Rhs: rhs, Signed: signed}
}

// PortReader is the minimal interface an evaluation context must satisfy:
// read the current value of a port. The convergence engine's port-value
// buffer implements this directly.
type PortReader interface {
	PortValue(handle.GlobalPortIdx) bitvec.BitVec
}

// Eval evaluates this guard against the given port values. Evaluation is
// pure and re-entrant; callers wanting the "skip unless inputs changed"
// memoisation should go through a Cache (below) rather than calling Eval
// directly in a hot loop.
func (e *Expr) Eval(r PortReader) bool {
	switch e.Kind {
	case True:
		return true
	case Port:
		return !r.PortValue(e.Port).IsZero()
	case Not:
		return !e.Operand.Eval(r)
	case And:
		for i := range e.Operands {
			if !e.Operands[i].Eval(r) {
				return false
			}
		}

		return true
	case Or:
		for i := range e.Operands {
			if e.Operands[i].Eval(r) {
				return true
			}
		}

		return false
	case Cmp:
		lhs := r.PortValue(e.Lhs)
		rhs := r.PortValue(e.Rhs)
		c := bitvec.Cmp(lhs, rhs, e.Signed)

		switch e.Op {
		case CmpEq:
			return c == 0
		case CmpNeq:
			return c != 0
		case CmpLt:
			return c < 0
		case CmpLe:
			return c <= 0
		case CmpGt:
			return c > 0
		case CmpGe:
			return c >= 0
		}
	}

	panic("unreachable guard kind")
}

// Reads appends every port this guard (transitively) reads to into, used by
// the Cache to decide whether a re-evaluation is necessary.
func (e *Expr) Reads(into []handle.GlobalPortIdx) []handle.GlobalPortIdx {
	switch e.Kind {
	case True:
		return into
	case Port:
		return append(into, e.Port)
	case Not:
		return e.Operand.Reads(into)
	case And, Or:
		for i := range e.Operands {
			into = e.Operands[i].Reads(into)
		}

		return into
	case Cmp:
		return append(into, e.Lhs, e.Rhs)
	}

	return into
}

// Lisp renders this guard as an S-expression, e.g. (< r.out 10) or
// (and go (not done)).
func (e *Expr) Lisp(name func(handle.GlobalPortIdx) string) sexp.SExp {
	switch e.Kind {
	case True:
		return sexp.NewSymbol("true")
	case Port:
		return sexp.NewSymbol(name(e.Port))
	case Not:
		return sexp.NewList(sexp.NewSymbol("not"), e.Operand.Lisp(name))
	case And:
		return e.naryLisp("and", name)
	case Or:
		return e.naryLisp("or", name)
	case Cmp:
		return sexp.NewList(sexp.NewSymbol(cmpSymbol(e.Op)), sexp.NewSymbol(name(e.Lhs)), sexp.NewSymbol(name(e.Rhs)))
	}

	return sexp.NewSymbol("?")
}

func (e *Expr) naryLisp(op string, name func(handle.GlobalPortIdx) string) sexp.SExp {
	elements := make([]sexp.SExp, 0, len(e.Operands)+1)
	elements = append(elements, sexp.NewSymbol(op))

	for i := range e.Operands {
		elements = append(elements, e.Operands[i].Lisp(name))
	}

	return sexp.NewList(elements...)
}

func cmpSymbol(op CmpOp) string {
	switch op {
	case CmpEq:
		return "="
	case CmpNeq:
		return "!="
	case CmpLt:
		return "<"
	case CmpLe:
		return "<="
	case CmpGt:
		return ">"
	case CmpGe:
		return ">="
	}

	return fmt.Sprintf("cmp?%d", op)
}

// Cache memoises a single guard's last (inputs, value) pair, so the
// convergence engine's repeat-until-fixed-point loop can skip re-evaluating
// guards whose inputs have not changed since the last iteration. Correctness
// of the fixed point does not depend on this: it only ever skips work when
// the result provably cannot have changed.
type Cache struct {
	valid  bool
	result bool
	inputs []bitvec.BitVec
	reads  []handle.GlobalPortIdx
}

// NewCache builds a cache for a guard, precomputing its read-set once.
func NewCache(e *Expr) *Cache {
	reads := e.Reads(nil)
	return &Cache{reads: reads, inputs: make([]bitvec.BitVec, len(reads))}
}

// Eval returns the guard's value, re-evaluating only if the values on its
// read-set have changed since the previous call.
func (c *Cache) Eval(e *Expr, r PortReader) bool {
	changed := !c.valid

	for i, p := range c.reads {
		v := r.PortValue(p)
		if !changed && !v.Equals(c.inputs[i]) {
			changed = true
		}

		c.inputs[i] = v
	}

	if changed {
		c.result = e.Eval(r)
		c.valid = true
	}

	return c.result
}
