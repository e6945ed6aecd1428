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

// conflictingOutputProgram drives a single component output from two
// unconditional continuous assignments disagreeing on its value: the
// convergence engine must reject this rather than silently pick one.
func conflictingOutputProgram() *ast.Program {
	main := ast.Component{
		Name:    "main",
		Outputs: []ast.PortDecl{{Name: "o", Width: 8}},
		Continuous: []ast.AssignDecl{
			{Dst: ast.PortRef{Port: "o"}, Src: ast.Source{IsConst: true, ConstValue: 1, ConstWidth: 8}},
			{Dst: ast.PortRef{Port: "o"}, Src: ast.Source{IsConst: true, ConstValue: 2, ConstWidth: 8}},
		},
		Control: ast.ControlNode{Kind: ast.CtrlEmpty},
	}

	return &ast.Program{Components: []ast.Component{main}, Entrypoint: "main"}
}

func TestConvergeReportsMultipleDrivers(t *testing.T) {
	env, errs := elaborate.New(conflictingOutputProgram()).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("elaborate: %v", errs)
	}

	s := sim.New(env, sim.Options{})

	_, err := s.Step()
	if err == nil {
		t.Fatalf("expected a multiple-driver error")
	}

	if _, ok := err.(*converge.MultipleDriverError); !ok {
		t.Fatalf("expected *converge.MultipleDriverError, got %T: %v", err, err)
	}
}

// agreeingOutputProgram drives the same output from two continuous
// assignments that happen to agree: this is not a conflict.
func agreeingOutputProgram() *ast.Program {
	main := ast.Component{
		Name:    "main",
		Outputs: []ast.PortDecl{{Name: "o", Width: 8}},
		Continuous: []ast.AssignDecl{
			{Dst: ast.PortRef{Port: "o"}, Src: ast.Source{IsConst: true, ConstValue: 5, ConstWidth: 8}},
			{Dst: ast.PortRef{Port: "o"}, Src: ast.Source{IsConst: true, ConstValue: 5, ConstWidth: 8}},
		},
		Control: ast.ControlNode{Kind: ast.CtrlEmpty},
	}

	return &ast.Program{Components: []ast.Component{main}, Entrypoint: "main"}
}

func TestConvergeAllowsAgreeingDrivers(t *testing.T) {
	env, errs := elaborate.New(agreeingOutputProgram()).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("elaborate: %v", errs)
	}

	s := sim.New(env, sim.Options{})

	if _, err := s.Step(); err != nil {
		t.Fatalf("agreeing drivers should not error, got %v", err)
	}
}
