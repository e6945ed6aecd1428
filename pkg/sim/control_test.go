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
package sim_test

import (
	"context"
	"testing"

	"github.com/calyxir/cider/pkg/ast"
	"github.com/calyxir/cider/pkg/ir/elaborate"
	"github.com/calyxir/cider/pkg/sim"
)

// ifElseProgram builds a "main" component that writes 10 to a register when
// a constant flag cell is nonzero, or 20 when it is zero, exercising the
// CtrlIf branch-sampling behaviour.
func ifElseProgram(flagValue uint64) *ast.Program {
	branch := func(name string, value uint64) ast.GroupDecl {
		return ast.GroupDecl{
			Name: name,
			Assignments: []ast.AssignDecl{
				{
					Dst: ast.PortRef{Cell: "r", Port: "in"},
					Src: ast.Source{IsConst: true, ConstValue: value, ConstWidth: 8},
				},
				{
					Dst: ast.PortRef{Cell: "r", Port: "write_en"},
					Src: ast.Source{IsConst: true, ConstValue: 1, ConstWidth: 1},
				},
				{
					Dst: ast.PortRef{Cell: name, Port: "done"},
					Src: ast.Source{Port: ast.PortRef{Cell: "r", Port: "done"}},
				},
			},
		}
	}

	cond := ast.PortRef{Cell: "flag", Port: "out"}

	main := ast.Component{
		Name: "main",
		Cells: []ast.CellDecl{
			{Name: "r", Kind: ast.CellPrimitive, Primitive: "std_reg", Params: map[string]uint{"width": 8}},
			{Name: "flag", Kind: ast.CellConstant, ConstWidth: 1, ConstValue: flagValue},
		},
		Groups: []ast.GroupDecl{branch("gThen", 10), branch("gElse", 20)},
		Control: ast.ControlNode{
			Kind: ast.CtrlIf,
			Cond: &cond,
			Then: &ast.ControlNode{Kind: ast.CtrlEnable, Group: "gThen"},
			Else: &ast.ControlNode{Kind: ast.CtrlEnable, Group: "gElse"},
		},
	}

	return &ast.Program{Components: []ast.Component{main}, Entrypoint: "main"}
}

func runIfElse(t *testing.T, flagValue uint64) int64 {
	t.Helper()

	env, errs := elaborate.New(ifElseProgram(flagValue)).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("elaborate: %v", errs)
	}

	s := sim.New(env, sim.Options{})

	if err := s.Run(context.Background(), 10); err != nil {
		t.Fatalf("run: %v", err)
	}

	ri, ok := env.CellByName("main.r")
	if !ok {
		t.Fatalf("could not find cell main.r")
	}

	outPort, ok := env.Cells[ri].PortByName("out")
	if !ok {
		t.Fatalf("register has no out port")
	}

	return s.Buffer().PortValue(outPort).BigInt().Int64()
}

func TestIfTakesThenBranchWhenConditionHolds(t *testing.T) {
	if got := runIfElse(t, 1); got != 10 {
		t.Fatalf("expected then-branch value 10, got %d", got)
	}
}

func TestIfTakesElseBranchWhenConditionFails(t *testing.T) {
	if got := runIfElse(t, 0); got != 20 {
		t.Fatalf("expected else-branch value 20, got %d", got)
	}
}

// parProgram builds a "main" component with two independent registers, each
// written to completion by its own single-write group, run concurrently
// under a single `par`.
func parProgram() *ast.Program {
	write := func(reg string, group string, value uint64) ast.GroupDecl {
		return ast.GroupDecl{
			Name: group,
			Assignments: []ast.AssignDecl{
				{
					Dst: ast.PortRef{Cell: reg, Port: "in"},
					Src: ast.Source{IsConst: true, ConstValue: value, ConstWidth: 8},
				},
				{
					Dst: ast.PortRef{Cell: reg, Port: "write_en"},
					Src: ast.Source{IsConst: true, ConstValue: 1, ConstWidth: 1},
				},
				{
					Dst: ast.PortRef{Cell: group, Port: "done"},
					Src: ast.Source{Port: ast.PortRef{Cell: reg, Port: "done"}},
				},
			},
		}
	}

	main := ast.Component{
		Name: "main",
		Cells: []ast.CellDecl{
			{Name: "ra", Kind: ast.CellPrimitive, Primitive: "std_reg", Params: map[string]uint{"width": 8}},
			{Name: "rb", Kind: ast.CellPrimitive, Primitive: "std_reg", Params: map[string]uint{"width": 8}},
		},
		Groups: []ast.GroupDecl{write("ra", "gA", 7), write("rb", "gB", 9)},
		Control: ast.ControlNode{
			Kind: ast.CtrlPar,
			Children: []ast.ControlNode{
				{Kind: ast.CtrlEnable, Group: "gA"},
				{Kind: ast.CtrlEnable, Group: "gB"},
			},
		},
	}

	return &ast.Program{Components: []ast.Component{main}, Entrypoint: "main"}
}

// TestParCompletesOneCycleAfterLastChild pins the invariant that a `par`
// node reports Done exactly one cycle after its last child reaches Done.
// Both children write their register on cycle 1 and see its done pulse, and
// so complete, on cycle 2; the par then completes on cycle 3.
func TestParCompletesOneCycleAfterLastChild(t *testing.T) {
	env, errs := elaborate.New(parProgram()).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("elaborate: %v", errs)
	}

	s := sim.New(env, sim.Options{})

	done, err := s.Step()
	if err != nil {
		t.Fatalf("step 1: %v", err)
	}

	if done {
		t.Fatalf("expected par to still be running while both children are running")
	}

	done, err = s.Step()
	if err != nil {
		t.Fatalf("step 2: %v", err)
	}

	if done {
		t.Fatalf("expected par to still be running the cycle both children complete")
	}

	done, err = s.Step()
	if err != nil {
		t.Fatalf("step 3: %v", err)
	}

	if !done {
		t.Fatalf("expected par to report done exactly one cycle after its last child completed")
	}

	if got := s.Cycle(); got != 3 {
		t.Fatalf("expected completion after 3 cycles, got %d", got)
	}
}
