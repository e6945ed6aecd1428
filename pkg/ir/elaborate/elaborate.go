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

// Package elaborate transforms an ast.Program into a flat, handle-addressed
// ir.Environment: every component is instantiated (copied) at each
// reference site, textual port references become GlobalPortIdx handles, and
// ref-cell/invoke bindings are resolved into the Environment's ambient
// tables. This is the AST -> Environment half of the pipeline; pkg/sim
// walks the result.
package elaborate

import (
	"fmt"

	"github.com/calyxir/cider/pkg/ast"
	"github.com/calyxir/cider/pkg/ir"
	"github.com/calyxir/cider/pkg/ir/guard"
	"github.com/calyxir/cider/pkg/ir/handle"
	"github.com/calyxir/cider/pkg/primitive"
	"github.com/calyxir/cider/pkg/util"
	"github.com/calyxir/cider/pkg/util/bitvec"
	"github.com/calyxir/cider/pkg/util/diag"
)

// scope is the per-instantiation symbol table used while translating one
// component body: textual cell/group names to their freshly allocated
// handles.
type scope struct {
	self   handle.CellIdx
	cells  map[string]handle.CellIdx
	groups map[string]handle.GroupIdx
}

// Elaborator walks an ast.Program and produces an ir.Environment. Structural
// errors are collected rather than raised at the first mistake, so a single
// run reports every problem found.
type Elaborator struct {
	prog     *ast.Program
	env      *ir.Environment
	visiting map[string]bool
	errors   []error

	// SkipInvariants disables the non-structural invariant checks that
	// diagnose a well-formed but buggy design (currently just the group
	// done-hole reachability check) without which elaboration still
	// produces a usable Environment -- set from --no-verify. Structural
	// checks that elaboration cannot proceed without (duplicate cell,
	// unresolved port, unknown primitive, cyclic instantiation,
	// ref-cell-not-passed) are never skippable.
	SkipInvariants bool
}

// New constructs an Elaborator for the given program.
func New(prog *ast.Program) *Elaborator {
	return &Elaborator{
		prog:     prog,
		env:      &ir.Environment{},
		visiting: map[string]bool{},
	}
}

// Elaborate runs elaboration to completion, returning the flat Environment
// on success or the full set of structural errors collected along the way.
func (e *Elaborator) Elaborate() (*ir.Environment, []error) {
	if e.prog.Entrypoint == "" {
		e.errorf(diag.Span{}, "program has no entrypoint component")
		return nil, e.errors
	}

	root, ok := e.instantiate(e.prog.Entrypoint, util.NewPath(e.prog.Entrypoint))
	if !ok {
		return nil, e.errors
	}

	e.env.RootCell = root
	e.env.RootControl = e.env.Cells[root].ComponentControlRoot

	if len(e.errors) > 0 {
		return nil, e.errors
	}

	return e.env, nil
}

func (e *Elaborator) errorf(span diag.Span, format string, args ...any) {
	e.errors = append(e.errors, ir.NewElaborationError(fmt.Sprintf(format, args...), span))
}

// instantiate allocates one fresh copy of componentName's cells, ports,
// assignments, groups and control tree so that no state is shared between
// instances. It reports false (having recorded an error) on any
// unrecoverable structural failure for this instantiation.
func (e *Elaborator) instantiate(componentName string, path util.Path) (handle.CellIdx, bool) {
	span := diag.Span{Component: componentName}

	if e.visiting[componentName] {
		e.errorf(span, "cyclic component instantiation involving %q", componentName)
		return handle.InvalidCell, false
	}

	comp, ok := e.prog.ComponentByName(componentName)
	if !ok {
		e.errorf(span, "unknown component %q", componentName)
		return handle.InvalidCell, false
	}

	e.visiting[componentName] = true
	defer delete(e.visiting, componentName)

	selfIdx := handle.CellIdx(len(e.env.Cells))
	portBase := handle.GlobalPortIdx(len(e.env.Ports))
	names := make([]string, 0, len(comp.Inputs)+len(comp.Outputs))

	e.env.Cells = append(e.env.Cells, ir.CellInfo{
		Name:                  path.String(),
		Kind:                  ir.CellComponent,
		PortBase:              portBase,
		NumInputs:             uint(len(comp.Inputs)),
		ComponentControlRoot:  handle.InvalidControl,
		RefSlot:               handle.InvalidRefSlot,
		Path:                  path,
	})

	for _, p := range comp.Inputs {
		e.allocPort(selfIdx, p, ir.DirInput, path.Extend(p.Name))
		names = append(names, p.Name)
	}

	for _, p := range comp.Outputs {
		e.allocPort(selfIdx, p, ir.DirOutput, path.Extend(p.Name))
		names = append(names, p.Name)
	}

	e.env.Cells[selfIdx].PortNames = names
	e.env.Cells[selfIdx].NumPorts = uint(len(names))

	sc := &scope{self: selfIdx, cells: map[string]handle.CellIdx{}, groups: map[string]handle.GroupIdx{}}

	for _, cd := range comp.Cells {
		e.elaborateCell(sc, cd, path, span)
	}

	for _, gd := range comp.CombGroups {
		e.elaborateGroup(sc, gd, false, selfIdx, path)
	}

	for _, gd := range comp.Groups {
		e.elaborateGroup(sc, gd, true, selfIdx, path)
	}

	for _, a := range comp.Continuous {
		if asn, ok := e.translateAssign(sc, a, handle.InvalidGroup, span); ok {
			idx := handle.AssignIdx(len(e.env.Assignments))
			e.env.Assignments = append(e.env.Assignments, asn)
			e.env.Continuous = append(e.env.Continuous, idx)
		}
	}

	for name, gidx := range sc.groups {
		gd := lookupGroupDecl(comp, name)
		for _, a := range gd.Assignments {
			if asn, ok := e.translateAssign(sc, a, gidx, span); ok {
				idx := handle.AssignIdx(len(e.env.Assignments))
				e.env.Assignments = append(e.env.Assignments, asn)
				e.env.Groups[gidx].Assignments = append(e.env.Groups[gidx].Assignments, idx)
			}
		}
	}

	for _, gidx := range sc.groups {
		e.checkDoneReachable(gidx, span)
	}

	root, ok := e.translateControl(sc, comp.Control, path, span)
	if ok {
		e.env.Cells[selfIdx].ComponentControlRoot = root
	}

	return selfIdx, true
}

func lookupGroupDecl(comp ast.Component, name string) ast.GroupDecl {
	for _, g := range comp.Groups {
		if g.Name == name {
			return g
		}
	}

	for _, g := range comp.CombGroups {
		if g.Name == name {
			return g
		}
	}

	return ast.GroupDecl{Name: name}
}

func (e *Elaborator) allocPort(owner handle.CellIdx, decl ast.PortDecl, dir ir.Direction, path util.Path) handle.GlobalPortIdx {
	idx := handle.GlobalPortIdx(len(e.env.Ports))
	attrs := make(map[string]bool, len(decl.Attributes))

	for k := range decl.Attributes {
		attrs[k] = true
	}

	e.env.Ports = append(e.env.Ports, ir.Port{
		Name:  decl.Name,
		Width: decl.Width,
		Dir:   dir,
		Owner: owner,
		Attrs: attrs,
		Path:  path,
	})

	return idx
}

func (e *Elaborator) elaborateCell(sc *scope, cd ast.CellDecl, parentPath util.Path, span diag.Span) {
	if _, dup := sc.cells[cd.Name]; dup {
		e.errorf(span, "duplicate cell name %q", cd.Name)
		return
	}

	cellPath := parentPath.Extend(cd.Name)

	switch cd.Kind {
	case ast.CellComponent:
		idx, ok := e.instantiate(cd.Primitive, cellPath)
		if !ok {
			return
		}

		sc.cells[cd.Name] = idx

	case ast.CellPrimitive:
		factory, ok := primitive.Lookup(cd.Primitive)
		if !ok {
			e.errorf(span, "unknown primitive %q referenced by cell %q", cd.Primitive, cd.Name)
			return
		}

		prim, err := factory(cd.Params)
		if err != nil {
			e.errorf(span, "cell %q: %v", cd.Name, err)
			return
		}

		idx := e.allocPrimitiveCell(cd.Name, prim, cellPath, cd.IsRef)
		sc.cells[cd.Name] = idx

	case ast.CellConstant:
		prim := primitive.NewConstant(cd.ConstWidth, uint(cd.ConstValue))
		idx := e.allocPrimitiveCell(cd.Name, prim, cellPath, false)
		e.env.Cells[idx].Kind = ir.CellConstant
		sc.cells[cd.Name] = idx
	}
}

func (e *Elaborator) allocPrimitiveCell(name string, prim primitive.Primitive, path util.Path, isRef bool) handle.CellIdx {
	idx := handle.CellIdx(len(e.env.Cells))
	portBase := handle.GlobalPortIdx(len(e.env.Ports))

	ins := prim.Inputs()
	outs := prim.Outputs()
	names := make([]string, 0, len(ins)+len(outs))

	refSlot := handle.InvalidRefSlot
	if isRef {
		refSlot = handle.RefSlotIdx(len(e.env.RefSlots))
		e.env.RefSlots = append(e.env.RefSlots, ir.RefSlot{Name: name, Owner: idx, Bound: handle.InvalidCell})
	}

	e.env.Cells = append(e.env.Cells, ir.CellInfo{
		Name:      path.String(),
		Kind:      ir.CellPrimitive,
		PortBase:  portBase,
		NumInputs: uint(len(ins)),
		Primitive: prim,
		ComponentControlRoot: handle.InvalidControl,
		IsRef:     isRef,
		RefSlot:   refSlot,
		Path:      path,
	})

	for _, sig := range ins {
		e.env.Ports = append(e.env.Ports, ir.Port{Name: sig.Name, Width: sig.Width, Dir: ir.DirInput, Owner: idx, Path: path.Extend(sig.Name)})
		names = append(names, sig.Name)
	}

	for _, sig := range outs {
		e.env.Ports = append(e.env.Ports, ir.Port{Name: sig.Name, Width: sig.Width, Dir: ir.DirOutput, Owner: idx, Path: path.Extend(sig.Name)})
		names = append(names, sig.Name)
	}

	e.env.Cells[idx].PortNames = names
	e.env.Cells[idx].NumPorts = uint(len(names))

	return idx
}

func (e *Elaborator) elaborateGroup(sc *scope, gd ast.GroupDecl, hasHoles bool, owner handle.CellIdx, parentPath util.Path) {
	if _, dup := sc.groups[gd.Name]; dup {
		e.errorf(diag.Span{Component: parentPath.String()}, "duplicate group name %q", gd.Name)
		return
	}

	groupPath := parentPath.Extend(gd.Name)
	g := ir.Group{
		Name:      gd.Name,
		Static:    gd.Static,
		Latency:   gd.Latency,
		Path:      groupPath,
		Component: owner,
		GoPort:    handle.InvalidPort,
		DonePort:  handle.InvalidPort,
	}

	if hasHoles {
		g.GoPort = e.allocPort(owner, ast.PortDecl{Name: "go", Width: 1}, ir.DirInput, groupPath.Extend("go"))
		g.DonePort = e.allocPort(owner, ast.PortDecl{Name: "done", Width: 1}, ir.DirOutput, groupPath.Extend("done"))
	}

	idx := handle.GroupIdx(len(e.env.Groups))
	e.env.Groups = append(e.env.Groups, g)
	sc.groups[gd.Name] = idx
}

// checkDoneReachable enforces that every done hole of a non-combinational
// group (one with go/done holes at all) is driven by at least one of that
// group's own assignments. A group whose done hole nothing ever writes can
// never finish once enabled, hanging the control program silently; this is
// a purely syntactic check over the group's assignment list, not a guard
// satisfiability analysis.
func (e *Elaborator) checkDoneReachable(gidx handle.GroupIdx, span diag.Span) {
	if e.SkipInvariants {
		return
	}

	g := &e.env.Groups[gidx]
	if g.DonePort == handle.InvalidPort {
		return
	}

	for _, aidx := range g.Assignments {
		if e.env.Assignments[aidx].Dst == g.DonePort {
			return
		}
	}

	e.errorf(span, "group %q: done hole is never assigned by any of its assignments", g.Name)
}

func (e *Elaborator) resolvePort(sc *scope, ref ast.PortRef, span diag.Span) (handle.GlobalPortIdx, bool) {
	if ref.Cell == "" {
		p, ok := e.env.Cells[sc.self].PortByName(ref.Port)
		if !ok {
			e.errorf(span, "component has no port %q", ref.Port)
			return handle.InvalidPort, false
		}

		return p, true
	}

	if cellIdx, ok := sc.cells[ref.Cell]; ok {
		p, ok := e.env.Cells[cellIdx].PortByName(ref.Port)
		if !ok {
			e.errorf(span, "cell %q has no port %q", ref.Cell, ref.Port)
			return handle.InvalidPort, false
		}

		return p, true
	}

	if groupIdx, ok := sc.groups[ref.Cell]; ok {
		switch ref.Port {
		case "go":
			return e.env.Groups[groupIdx].GoPort, true
		case "done":
			return e.env.Groups[groupIdx].DonePort, true
		default:
			e.errorf(span, "group %q has no hole %q", ref.Cell, ref.Port)
			return handle.InvalidPort, false
		}
	}

	e.errorf(span, "unresolved port reference %s.%s", ref.Cell, ref.Port)

	return handle.InvalidPort, false
}

func (e *Elaborator) translateGuard(sc *scope, g ast.GuardExpr, span diag.Span) (guard.Expr, bool) {
	switch v := g.(type) {
	case nil:
		return guard.NewTrue(), true
	case ast.GuardTrue:
		return guard.NewTrue(), true
	case ast.GuardPort:
		p, ok := e.resolvePort(sc, v.Port, span)
		if !ok {
			return guard.Expr{}, false
		}

		return guard.NewPort(p), true
	case ast.GuardNot:
		operand, ok := e.translateGuard(sc, v.Operand, span)
		if !ok {
			return guard.Expr{}, false
		}

		return guard.NewNot(operand), true
	case ast.GuardAnd:
		operands, ok := e.translateGuardList(sc, v.Operands, span)
		if !ok {
			return guard.Expr{}, false
		}

		return guard.NewAnd(operands...), true
	case ast.GuardOr:
		operands, ok := e.translateGuardList(sc, v.Operands, span)
		if !ok {
			return guard.Expr{}, false
		}

		return guard.NewOr(operands...), true
	case ast.GuardCmp:
		lhs, ok1 := e.resolvePort(sc, v.Lhs, span)
		rhs, ok2 := e.resolvePort(sc, v.Rhs, span)

		if !ok1 || !ok2 {
			return guard.Expr{}, false
		}

		return guard.NewCmp(guard.CmpOp(v.Op), lhs, rhs, v.Signed), true
	default:
		e.errorf(span, "unrecognised guard expression %T", g)
		return guard.Expr{}, false
	}
}

func (e *Elaborator) translateGuardList(sc *scope, gs []ast.GuardExpr, span diag.Span) ([]guard.Expr, bool) {
	out := make([]guard.Expr, 0, len(gs))

	for _, g := range gs {
		t, ok := e.translateGuard(sc, g, span)
		if !ok {
			return nil, false
		}

		out = append(out, t)
	}

	return out, true
}

func (e *Elaborator) translateAssign(sc *scope, a ast.AssignDecl, owner handle.GroupIdx, span diag.Span) (ir.Assignment, bool) {
	dst, ok := e.resolvePort(sc, a.Dst, span)
	if !ok {
		return ir.Assignment{}, false
	}

	var (
		srcPort  handle.GlobalPortIdx
		constVal bitvec.BitVec
	)

	if a.Src.IsConst {
		constVal = bitvec.FromUint64(a.Src.ConstWidth, a.Src.ConstValue)
	} else {
		srcPort, ok = e.resolvePort(sc, a.Src.Port, span)
		if !ok {
			return ir.Assignment{}, false
		}
	}

	g, ok := e.translateGuard(sc, a.Guard, span)
	if !ok {
		return ir.Assignment{}, false
	}

	return ir.NewAssignment(dst, srcPort, a.Src.IsConst, constVal, g, owner), true
}

// translateControl recursively translates an ast.ControlNode into a
// pre-allocated ir.Node, appending synthesized invoke assignments/out-copies
// as it goes.
func (e *Elaborator) translateControl(sc *scope, node ast.ControlNode, path util.Path, span diag.Span) (handle.ControlIdx, bool) {
	idx := handle.ControlIdx(len(e.env.Control))
	e.env.Control = append(e.env.Control, ir.Node{
		Kind: ir.ControlKind(node.Kind),
		Path: path,
		Cond: handle.InvalidPort,
		CombGroup: handle.InvalidGroup,
		Then: handle.InvalidControl,
		Else: handle.InvalidControl,
		Body: handle.InvalidControl,
	})

	switch node.Kind {
	case ast.CtrlEmpty:
		// Nothing further to resolve.

	case ast.CtrlEnable:
		gidx, ok := sc.groups[node.Group]
		if !ok {
			e.errorf(span, "enable of unknown group %q", node.Group)
			return idx, false
		}

		e.env.Control[idx].Group = gidx

	case ast.CtrlSeq, ast.CtrlPar:
		children := make([]handle.ControlIdx, 0, len(node.Children))

		for i, c := range node.Children {
			cidx, ok := e.translateControl(sc, c, path.Extend(fmt.Sprintf("%d", i)), span)
			if !ok {
				return idx, false
			}

			children = append(children, cidx)
		}

		e.env.Control[idx].Children = children

	case ast.CtrlIf:
		if err := e.fillCond(sc, &e.env.Control[idx], node.Cond, node.CombGroup, span); err != nil {
			return idx, false
		}

		thenIdx, ok := e.translateControl(sc, derefControl(node.Then), path.Extend("t"), span)
		if !ok {
			return idx, false
		}

		e.env.Control[idx].Then = thenIdx

		if node.Else != nil {
			elseIdx, ok := e.translateControl(sc, *node.Else, path.Extend("f"), span)
			if !ok {
				return idx, false
			}

			e.env.Control[idx].Else = elseIdx
		}

	case ast.CtrlWhile:
		if err := e.fillCond(sc, &e.env.Control[idx], node.Cond, node.CombGroup, span); err != nil {
			return idx, false
		}

		bodyIdx, ok := e.translateControl(sc, derefControl(node.Body), path.Extend("b"), span)
		if !ok {
			return idx, false
		}

		e.env.Control[idx].Body = bodyIdx

	case ast.CtrlInvoke:
		return e.translateInvoke(sc, idx, node, span)

	default:
		e.errorf(span, "unrecognised control node kind %d", node.Kind)
		return idx, false
	}

	return idx, true
}

func derefControl(n *ast.ControlNode) ast.ControlNode {
	if n == nil {
		return ast.ControlNode{Kind: ast.CtrlEmpty}
	}

	return *n
}

func (e *Elaborator) fillCond(sc *scope, n *ir.Node, cond *ast.PortRef, combGroup string, span diag.Span) error {
	if cond != nil {
		p, ok := e.resolvePort(sc, *cond, span)
		if !ok {
			return fmt.Errorf("unresolved condition port")
		}

		n.Cond = p
	}

	if combGroup != "" {
		gidx, ok := sc.groups[combGroup]
		if !ok {
			e.errorf(span, "unknown comb-group %q", combGroup)
			return fmt.Errorf("unknown comb-group")
		}

		n.CombGroup = gidx
	}

	return nil
}

func (e *Elaborator) translateInvoke(sc *scope, idx handle.ControlIdx, node ast.ControlNode, span diag.Span) (handle.ControlIdx, bool) {
	calleeIdx, ok := sc.cells[node.Callee]
	if !ok {
		e.errorf(span, "invoke of unknown cell %q", node.Callee)
		return idx, false
	}

	e.env.Control[idx].Callee = calleeIdx

	goPort, ok := e.env.Cells[calleeIdx].PortByName("go")
	if ok {
		asn := ir.NewAssignment(goPort, handle.InvalidPort, true, bitvec.FromUint64(1, 1), guard.NewTrue(), handle.InvalidGroup)
		aidx := handle.AssignIdx(len(e.env.Assignments))
		e.env.Assignments = append(e.env.Assignments, asn)
		e.env.Control[idx].InvokeAssigns = append(e.env.Control[idx].InvokeAssigns, aidx)
	}

	for _, b := range node.InBindings {
		calleePort, ok := e.env.Cells[calleeIdx].PortByName(b.CalleePort)
		if !ok {
			e.errorf(span, "invoke of %q: callee has no port %q", node.Callee, b.CalleePort)
			return idx, false
		}

		callerPort, ok := e.resolvePort(sc, b.CallerPort, span)
		if !ok {
			return idx, false
		}

		asn := ir.NewAssignment(calleePort, callerPort, false, bitvec.BitVec{}, guard.NewTrue(), handle.InvalidGroup)
		aidx := handle.AssignIdx(len(e.env.Assignments))
		e.env.Assignments = append(e.env.Assignments, asn)
		e.env.Control[idx].InvokeAssigns = append(e.env.Control[idx].InvokeAssigns, aidx)
	}

	for _, b := range node.OutBindings {
		calleePort, ok := e.env.Cells[calleeIdx].PortByName(b.CalleePort)
		if !ok {
			e.errorf(span, "invoke of %q: callee has no port %q", node.Callee, b.CalleePort)
			return idx, false
		}

		callerPort, ok := e.resolvePort(sc, b.CallerPort, span)
		if !ok {
			return idx, false
		}

		e.env.Control[idx].OutCopies = append(e.env.Control[idx].OutCopies, ir.PortCopy{Dst: callerPort, Src: calleePort})
	}

	for _, rb := range node.RefBindings {
		slot := handle.InvalidRefSlot

		for i := range e.env.RefSlots {
			if e.env.RefSlots[i].Owner == calleeIdx && e.env.RefSlots[i].Name == rb.RefSlot {
				slot = handle.RefSlotIdx(i)
				break
			}
		}

		if slot == handle.InvalidRefSlot {
			e.errorf(span, "invoke of %q: no such ref slot %q", node.Callee, rb.RefSlot)
			return idx, false
		}

		target, ok := sc.cells[rb.ActualCell]
		if !ok {
			e.errorf(span, "invoke of %q: unknown actual cell %q bound to ref %q", node.Callee, rb.ActualCell, rb.RefSlot)
			return idx, false
		}

		e.env.Control[idx].RefSlots = append(e.env.Control[idx].RefSlots, ir.RefBinding{Slot: slot, Target: target})
	}

	return idx, true
}
