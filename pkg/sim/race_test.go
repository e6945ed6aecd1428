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
	"github.com/calyxir/cider/pkg/ir/handle"
	"github.com/calyxir/cider/pkg/race"
	"github.com/calyxir/cider/pkg/sim"
)

// concurrentWriteProgram builds a "main" component where two groups, run
// under a par, both drive the same register's input ports. Both write the
// same values, so the convergence engine's multiple-driver check (which only
// rejects disagreeing drivers) passes and only the race detector objects.
// Real Calyx would reject this at compile time; the interpreter's race
// detector exists to catch it when a front-end fails to.
func concurrentWriteProgram() *ast.Program {
	group := func(name string, value uint64) ast.GroupDecl {
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

	main := ast.Component{
		Name: "main",
		Cells: []ast.CellDecl{
			{Name: "r", Kind: ast.CellPrimitive, Primitive: "std_reg", Params: map[string]uint{"width": 8}},
		},
		Groups: []ast.GroupDecl{group("gA", 1), group("gB", 1)},
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

func TestRaceDetectorReportsConcurrentWrites(t *testing.T) {
	env, errs := elaborate.New(concurrentWriteProgram()).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("elaborate: %v", errs)
	}

	s := sim.New(env, sim.Options{CheckDataRace: true, StrictRace: true})

	_, err := s.Step()
	if err == nil {
		t.Fatalf("expected a data-race error on the first cycle")
	}

	if _, ok := err.(*race.Conflict); !ok {
		t.Fatalf("expected *race.Conflict, got %T: %v", err, err)
	}
}

func TestRaceDetectorHonoursEntanglement(t *testing.T) {
	env, errs := elaborate.New(concurrentWriteProgram()).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("elaborate: %v", errs)
	}

	s := sim.New(env, sim.Options{CheckDataRace: true, StrictRace: true})

	ri, ok := env.CellByName("main.r")
	if !ok {
		t.Fatalf("could not find cell main.r")
	}

	s.Entangle([]handle.CellIdx{ri})

	if _, err := s.Step(); err != nil {
		t.Fatalf("expected entanglement to suppress the race, got %v", err)
	}
}
