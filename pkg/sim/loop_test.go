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
	"testing"

	"github.com/calyxir/cider/pkg/ast"
	"github.com/calyxir/cider/pkg/ir/elaborate"
	"github.com/calyxir/cider/pkg/sim"
	"github.com/calyxir/cider/pkg/sim/converge"
)

// combinationalLoopProgram wires a component output back through a one-bit
// XOR-with-1 inverter into itself, so the convergence engine's fixed-point
// loop can never stabilize: a value toggles every iteration forever.
func combinationalLoopProgram() *ast.Program {
	main := ast.Component{
		Name:    "main",
		Outputs: []ast.PortDecl{{Name: "x", Width: 1}, {Name: "y", Width: 1}},
		Cells: []ast.CellDecl{
			{Name: "inv", Kind: ast.CellPrimitive, Primitive: "std_xor", Params: map[string]uint{"width": 1}},
		},
		Continuous: []ast.AssignDecl{
			{Dst: ast.PortRef{Port: "y"}, Src: ast.Source{Port: ast.PortRef{Port: "x"}}},
			{Dst: ast.PortRef{Cell: "inv", Port: "left"}, Src: ast.Source{Port: ast.PortRef{Port: "y"}}},
			{Dst: ast.PortRef{Cell: "inv", Port: "right"}, Src: ast.Source{IsConst: true, ConstValue: 1, ConstWidth: 1}},
			{Dst: ast.PortRef{Port: "x"}, Src: ast.Source{Port: ast.PortRef{Cell: "inv", Port: "out"}}},
		},
		Control: ast.ControlNode{Kind: ast.CtrlEmpty},
	}

	return &ast.Program{Components: []ast.Component{main}, Entrypoint: "main"}
}

func TestConvergeReportsCombinationalLoop(t *testing.T) {
	env, errs := elaborate.New(combinationalLoopProgram()).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("elaborate: %v", errs)
	}

	s := sim.New(env, sim.Options{})

	_, err := s.Step()
	if err == nil {
		t.Fatalf("expected a combinational-loop error")
	}

	if _, ok := err.(*converge.LoopError); !ok {
		t.Fatalf("expected *converge.LoopError, got %T: %v", err, err)
	}
}
