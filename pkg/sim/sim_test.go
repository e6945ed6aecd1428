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

// counterProgram builds a minimal "main" component with one std_reg and one
// std_add, wired so that enabling the "incr" group three times in sequence
// leaves the register holding 3.
func counterProgram() *ast.Program {
	incr := ast.GroupDecl{
		Name: "incr",
		Assignments: []ast.AssignDecl{
			{
				Dst: ast.PortRef{Cell: "add", Port: "left"},
				Src: ast.Source{Port: ast.PortRef{Cell: "r", Port: "out"}},
			},
			{
				Dst: ast.PortRef{Cell: "add", Port: "right"},
				Src: ast.Source{IsConst: true, ConstValue: 1, ConstWidth: 8},
			},
			{
				Dst: ast.PortRef{Cell: "r", Port: "in"},
				Src: ast.Source{Port: ast.PortRef{Cell: "add", Port: "out"}},
			},
			{
				Dst: ast.PortRef{Cell: "r", Port: "write_en"},
				Src: ast.Source{IsConst: true, ConstValue: 1, ConstWidth: 1},
			},
			{
				Dst: ast.PortRef{Cell: "incr", Port: "done"},
				Src: ast.Source{Port: ast.PortRef{Cell: "r", Port: "done"}},
			},
		},
	}

	enable := ast.ControlNode{Kind: ast.CtrlEnable, Group: "incr"}

	main := ast.Component{
		Name: "main",
		Cells: []ast.CellDecl{
			{Name: "r", Kind: ast.CellPrimitive, Primitive: "std_reg", Params: map[string]uint{"width": 8}},
			{Name: "add", Kind: ast.CellPrimitive, Primitive: "std_add", Params: map[string]uint{"width": 8}},
		},
		Groups:  []ast.GroupDecl{incr},
		Control: ast.ControlNode{Kind: ast.CtrlSeq, Children: []ast.ControlNode{enable, enable, enable}},
	}

	return &ast.Program{Components: []ast.Component{main}, Entrypoint: "main"}
}

func TestCounterRunsToCompletion(t *testing.T) {
	env, errs := elaborate.New(counterProgram()).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("elaborate: %v", errs)
	}

	s := sim.New(env, sim.Options{})

	if err := s.Run(context.Background(), 100); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !s.Done() {
		t.Fatalf("simulation did not complete")
	}

	if got := s.Cycle(); got != 3 {
		t.Fatalf("expected the three-fold increment to take 3 cycles, got %d", got)
	}

	ri, ok := env.CellByName("main.r")
	if !ok {
		t.Fatalf("could not find cell main.r")
	}

	outPort, ok := env.Cells[ri].PortByName("out")
	if !ok {
		t.Fatalf("register has no out port")
	}

	if got := s.Buffer().PortValue(outPort).BigInt().Int64(); got != 3 {
		t.Fatalf("expected register to hold 3, got %d", got)
	}
}

// whileCounterProgram builds the literal §8 "Counter" scenario: a 32-bit
// register `r` incremented by group `inc` under `while r < 10`, exercising
// ast.CtrlWhile's condition resampling rather than an unrolled seq.
func whileCounterProgram() *ast.Program {
	inc := ast.GroupDecl{
		Name: "inc",
		Assignments: []ast.AssignDecl{
			{
				Dst: ast.PortRef{Cell: "add", Port: "left"},
				Src: ast.Source{Port: ast.PortRef{Cell: "r", Port: "out"}},
			},
			{
				Dst: ast.PortRef{Cell: "add", Port: "right"},
				Src: ast.Source{IsConst: true, ConstValue: 1, ConstWidth: 32},
			},
			{
				Dst: ast.PortRef{Cell: "r", Port: "in"},
				Src: ast.Source{Port: ast.PortRef{Cell: "add", Port: "out"}},
			},
			{
				Dst: ast.PortRef{Cell: "r", Port: "write_en"},
				Src: ast.Source{IsConst: true, ConstValue: 1, ConstWidth: 1},
			},
			{
				Dst: ast.PortRef{Cell: "inc", Port: "done"},
				Src: ast.Source{Port: ast.PortRef{Cell: "r", Port: "done"}},
			},
		},
	}

	cond := ast.PortRef{Cell: "r_lt", Port: "out"}

	main := ast.Component{
		Name: "main",
		Cells: []ast.CellDecl{
			{Name: "r", Kind: ast.CellPrimitive, Primitive: "std_reg", Params: map[string]uint{"width": 32}},
			{Name: "add", Kind: ast.CellPrimitive, Primitive: "std_add", Params: map[string]uint{"width": 32}},
			{Name: "ten", Kind: ast.CellConstant, ConstWidth: 32, ConstValue: 10},
			{Name: "r_lt", Kind: ast.CellPrimitive, Primitive: "std_lt", Params: map[string]uint{"width": 32}},
		},
		Groups: []ast.GroupDecl{inc},
		Continuous: []ast.AssignDecl{
			{Dst: ast.PortRef{Cell: "r_lt", Port: "left"}, Src: ast.Source{Port: ast.PortRef{Cell: "r", Port: "out"}}},
			{Dst: ast.PortRef{Cell: "r_lt", Port: "right"}, Src: ast.Source{Port: ast.PortRef{Cell: "ten", Port: "out"}}},
		},
		Control: ast.ControlNode{
			Kind: ast.CtrlWhile,
			Cond: &cond,
			Body: &ast.ControlNode{Kind: ast.CtrlEnable, Group: "inc"},
		},
	}

	return &ast.Program{Components: []ast.Component{main}, Entrypoint: "main"}
}

// TestWhileCounterRunsUntilTen matches §8 scenario 1 literally: `while r <
// 10` repeatedly enabling `inc`, rather than an unrolled seq of three
// enables, so it exercises CtrlWhile's condition resampling each iteration.
func TestWhileCounterRunsUntilTen(t *testing.T) {
	env, errs := elaborate.New(whileCounterProgram()).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("elaborate: %v", errs)
	}

	s := sim.New(env, sim.Options{CheckDataRace: true, StrictRace: true})

	if err := s.Run(context.Background(), 1000); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !s.Done() {
		t.Fatalf("simulation did not complete")
	}

	ri, ok := env.CellByName("main.r")
	if !ok {
		t.Fatalf("could not find cell main.r")
	}

	outPort, ok := env.Cells[ri].PortByName("out")
	if !ok {
		t.Fatalf("register has no out port")
	}

	if got := s.Buffer().PortValue(outPort).BigInt().Int64(); got != 10 {
		t.Fatalf("expected register to hold 10, got %d", got)
	}
}

func TestCounterRespectsCycleLimit(t *testing.T) {
	env, errs := elaborate.New(counterProgram()).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("elaborate: %v", errs)
	}

	s := sim.New(env, sim.Options{})

	err := s.Run(context.Background(), 1)
	if err == nil {
		t.Fatalf("expected a cycle-limit error for a one-cycle budget")
	}

	if _, ok := err.(*sim.CycleLimitError); !ok {
		t.Fatalf("expected *sim.CycleLimitError, got %T: %v", err, err)
	}
}
