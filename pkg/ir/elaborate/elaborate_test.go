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
package elaborate_test

import (
	"strings"
	"testing"

	"github.com/calyxir/cider/pkg/ast"
	"github.com/calyxir/cider/pkg/ir/elaborate"
)

// groupProgram builds a "main" component with a single std_reg and a single
// group "set" whose assignments are supplied by the caller, so tests can
// vary just the done-hole wiring.
func groupProgram(assigns []ast.AssignDecl) *ast.Program {
	main := ast.Component{
		Name: "main",
		Cells: []ast.CellDecl{
			{Name: "r", Kind: ast.CellPrimitive, Primitive: "std_reg", Params: map[string]uint{"width": 8}},
		},
		Groups: []ast.GroupDecl{{Name: "set", Assignments: assigns}},
		Control: ast.ControlNode{
			Kind: ast.CtrlEnable, Group: "set",
		},
	}

	return &ast.Program{Components: []ast.Component{main}, Entrypoint: "main"}
}

func TestGroupDoneHoleMustBeAssigned(t *testing.T) {
	prog := groupProgram([]ast.AssignDecl{
		{
			Dst: ast.PortRef{Cell: "r", Port: "in"},
			Src: ast.Source{IsConst: true, ConstValue: 1, ConstWidth: 8},
		},
		{
			Dst: ast.PortRef{Cell: "r", Port: "write_en"},
			Src: ast.Source{IsConst: true, ConstValue: 1, ConstWidth: 1},
		},
	})

	_, errs := elaborate.New(prog).Elaborate()
	if len(errs) == 0 {
		t.Fatalf("expected an elaboration error for a group whose done hole is never assigned")
	}

	found := false

	for _, err := range errs {
		if strings.Contains(err.Error(), "done hole is never assigned") {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a done-hole-unreachable error, got: %v", errs)
	}
}

func TestGroupDoneHoleAssignedElaboratesCleanly(t *testing.T) {
	prog := groupProgram([]ast.AssignDecl{
		{
			Dst: ast.PortRef{Cell: "r", Port: "in"},
			Src: ast.Source{IsConst: true, ConstValue: 1, ConstWidth: 8},
		},
		{
			Dst: ast.PortRef{Cell: "r", Port: "write_en"},
			Src: ast.Source{IsConst: true, ConstValue: 1, ConstWidth: 1},
		},
		{
			Dst: ast.PortRef{Cell: "set", Port: "done"},
			Src: ast.Source{Port: ast.PortRef{Cell: "r", Port: "done"}},
		},
	})

	_, errs := elaborate.New(prog).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("unexpected elaboration errors: %v", errs)
	}
}
