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

// Package ast defines the contract produced by the Calyx front-end parser: a
// hierarchical program of components, cells, groups and a control program,
// all addressed by textual identifiers. Parsing Calyx source text into this
// structure is the responsibility of an external front-end, out of scope
// for this repository; everything downstream -- elaboration, simulation,
// debugging -- consumes only this package's types.
package ast

// Program is the top-level unit produced by the front-end: a set of mutually
// referencing components plus the name of the entrypoint.
type Program struct {
	// Components holds every declared component, in any order; the
	// elaborator is responsible for topologically ordering them.
	Components []Component
	// Entrypoint names the component to instantiate as the root of the
	// simulation.
	Entrypoint string
}

// ComponentByName looks up a component by its declared name.
func (p *Program) ComponentByName(name string) (Component, bool) {
	for _, c := range p.Components {
		if c.Name == name {
			return c, true
		}
	}

	return Component{}, false
}

// Component is a single Calyx component: a named signature of input/output
// ports, a collection of cells, groups and continuous assignments, and one
// control program.
type Component struct {
	Name        string
	Inputs      []PortDecl
	Outputs     []PortDecl
	Cells       []CellDecl
	Groups      []GroupDecl
	CombGroups  []GroupDecl
	Continuous  []AssignDecl
	Control     ControlNode
}

// PortDecl declares a single named, width-typed port.
type PortDecl struct {
	Name       string
	Width      uint
	Attributes map[string]int
}

// HasAttribute determines whether a given attribute was declared on this
// port (e.g. "clk", "reset", "stable").
func (p *PortDecl) HasAttribute(name string) bool {
	_, ok := p.Attributes[name]
	return ok
}

// CellKind distinguishes the three forms a cell declaration can take.
type CellKind uint8

const (
	// CellPrimitive is a leaf cell whose behaviour is supplied by the
	// primitive library.
	CellPrimitive CellKind = iota
	// CellComponent is an instance of another component in this program.
	CellComponent
	// CellConstant is a fixed-value constant cell.
	CellConstant
)

// CellDecl declares a single cell within a component.
type CellDecl struct {
	Name string
	Kind CellKind
	// Primitive names the primitive (e.g. "std_reg") when Kind ==
	// CellPrimitive, or the referenced component's name when Kind ==
	// CellComponent. Unused for CellConstant.
	Primitive string
	// Params carries primitive construction parameters (e.g. {"width": 32}
	// for std_reg, {"size0":4,"width":8} for a 1-D memory).
	Params map[string]uint
	// ConstValue holds the fixed value for a CellConstant cell.
	ConstValue uint64
	// ConstWidth holds the bitwidth of a CellConstant cell.
	ConstWidth uint
	// IsRef marks a cell as a `ref` cell: a slot dynamically rebound to an
	// actual cell supplied by the caller at each invoke.
	IsRef bool
}

// PortRef names a port, either on a named cell ("r.in"), on the component's
// own signature ("this.go" via cell name ""), or on a group's implicit hole
// ("incr.done" via cell name naming the group).
type PortRef struct {
	Cell string
	Port string
}

// ThisPort constructs a reference to one of the enclosing component's own
// signature ports.
func ThisPort(name string) PortRef {
	return PortRef{Cell: "", Port: name}
}

// AssignDecl is a single guarded dataflow edge.
type AssignDecl struct {
	Dst   PortRef
	Src   Source
	Guard GuardExpr
}

// Source is the value side of an assignment: either a port reference or an
// immediate constant.
type Source struct {
	// Port is set when this source reads from a port.
	Port PortRef
	// IsConst indicates this source is an immediate constant rather than a
	// port reference.
	IsConst bool
	// ConstValue and ConstWidth describe the constant when IsConst is true.
	ConstValue uint64
	ConstWidth uint
}

// GuardExpr is a boolean expression over ports gating an assignment.
type GuardExpr interface {
	isGuardExpr()
}

// GuardTrue is the guard that is always satisfied.
type GuardTrue struct{}

func (GuardTrue) isGuardExpr() {}

// GuardPort treats the named port as a boolean (true iff non-zero).
type GuardPort struct {
	Port PortRef
}

func (GuardPort) isGuardExpr() {}

// GuardNot negates a sub-guard.
type GuardNot struct {
	Operand GuardExpr
}

func (GuardNot) isGuardExpr() {}

// GuardAnd is the conjunction of two or more sub-guards.
type GuardAnd struct {
	Operands []GuardExpr
}

func (GuardAnd) isGuardExpr() {}

// GuardOr is the disjunction of two or more sub-guards.
type GuardOr struct {
	Operands []GuardExpr
}

func (GuardOr) isGuardExpr() {}

// CmpOp names a comparison operator.
type CmpOp uint8

// Comparison operators available within a guard.
const (
	CmpEq CmpOp = iota
	CmpNeq
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// GuardCmp compares two ports, interpreting their bits as signed or unsigned
// per Signed.
type GuardCmp struct {
	Op     CmpOp
	Lhs    PortRef
	Rhs    PortRef
	Signed bool
}

func (GuardCmp) isGuardExpr() {}

// GroupDecl bundles a set of assignments under a `go`/`done` pair (or, for a
// combinational group, no holes at all).
type GroupDecl struct {
	Name        string
	Assignments []AssignDecl
	// Static marks this group as carrying a fixed latency; Latency is only
	// meaningful when Static is true.
	Static  bool
	Latency uint
}

// ControlNode is a tagged variant over the control tree node kinds. Exactly
// one group of fields is meaningful for any given value, selected by Kind;
// Go has no sum types, so this uses a single flat struct with every field
// present rather than subtype polymorphism.
type ControlNode struct {
	Kind ControlKind
	// Enable
	Group string
	// Seq / Par
	Children []ControlNode
	// If / While
	Cond      *PortRef
	CombGroup string // "" means no attached comb-group
	Then      *ControlNode
	Else      *ControlNode
	Body      *ControlNode
	// Invoke
	Callee      string
	InBindings  []ArgBinding
	OutBindings []ArgBinding
	RefBindings []RefBinding
}

// ControlKind discriminates ControlNode's variant.
type ControlKind uint8

// The seven control node kinds.
const (
	CtrlEmpty ControlKind = iota
	CtrlEnable
	CtrlSeq
	CtrlPar
	CtrlIf
	CtrlWhile
	CtrlInvoke
)

// ArgBinding binds one of a callee's signature ports to a port in the
// invoking component, for either an in-argument or an out-argument.
type ArgBinding struct {
	CalleePort string
	CallerPort PortRef
}

// RefBinding binds one of the callee's `ref` cell slots to an actual cell in
// the invoking component, for the duration of one invoke.
type RefBinding struct {
	RefSlot   string
	ActualCell string
}
