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
package debug_test

import (
	"strings"
	"testing"

	"github.com/calyxir/cider/pkg/ast"
	"github.com/calyxir/cider/pkg/debug"
	"github.com/calyxir/cider/pkg/ir/elaborate"
	"github.com/calyxir/cider/pkg/sim"
)

func counterProgram() *ast.Program {
	incr := ast.GroupDecl{
		Name: "incr",
		Assignments: []ast.AssignDecl{
			{
				Dst: ast.PortRef{Cell: "r", Port: "in"},
				Src: ast.Source{IsConst: true, ConstValue: 1, ConstWidth: 8},
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

	main := ast.Component{
		Name:    "main",
		Cells:   []ast.CellDecl{{Name: "r", Kind: ast.CellPrimitive, Primitive: "std_reg", Params: map[string]uint{"width": 8}}},
		Groups:  []ast.GroupDecl{incr},
		Control: ast.ControlNode{Kind: ast.CtrlEnable, Group: "incr"},
	}

	return &ast.Program{Components: []ast.Component{main}, Entrypoint: "main"}
}

// twoCycleIncProgram builds a "main" component whose single group "inc"
// increments register "r" on its first active cycle, then relays r's done
// pulse through a second register "p" one cycle later before asserting its
// own done -- a group that stays Running across several external step
// boundaries, so a breakpoint set on it is observable via the debugger's
// Idle/Running edge detection.
func twoCycleIncProgram() *ast.Program {
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
				Dst: ast.PortRef{Cell: "p", Port: "in"},
				Src: ast.Source{IsConst: true, ConstValue: 1, ConstWidth: 1},
			},
			{
				Dst: ast.PortRef{Cell: "p", Port: "write_en"},
				Src: ast.Source{Port: ast.PortRef{Cell: "r", Port: "done"}},
			},
			{
				Dst: ast.PortRef{Cell: "inc", Port: "done"},
				Src: ast.Source{Port: ast.PortRef{Cell: "p", Port: "done"}},
			},
		},
	}

	main := ast.Component{
		Name: "main",
		Cells: []ast.CellDecl{
			{Name: "r", Kind: ast.CellPrimitive, Primitive: "std_reg", Params: map[string]uint{"width": 32}},
			{Name: "add", Kind: ast.CellPrimitive, Primitive: "std_add", Params: map[string]uint{"width": 32}},
			{Name: "p", Kind: ast.CellPrimitive, Primitive: "std_reg", Params: map[string]uint{"width": 1}},
		},
		Groups:  []ast.GroupDecl{inc},
		Control: ast.ControlNode{Kind: ast.CtrlEnable, Group: "inc"},
	}

	return &ast.Program{Components: []ast.Component{main}, Entrypoint: "main"}
}

// TestSessionBreakpointPausesAtFirstActivation matches §8 scenario 5's
// command stream (`break`, `continue`, `print`, `continue`): the debugger
// must pause exactly when "inc" first starts running, print r's live
// value, and then run the rest of the program to completion on the second
// `continue`. The group/register names and control program are this
// repository's own (scenario 5's literal `main::inc` names a group from a
// different scenario's fixture), but the mechanism under test -- pause, inspect, resume to
// completion -- is the one scenario 5 describes. The printed name is
// qualified as "main.r.out" (cell.port) rather than the bare "r" scenario
// 5's text uses, matching this debugger's print grammar.
func TestSessionBreakpointPausesAtFirstActivation(t *testing.T) {
	env, errs := elaborate.New(twoCycleIncProgram()).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("elaborate: %v", errs)
	}

	s := sim.New(env, sim.Options{})

	script := "break inc\ncontinue\nprint \\u main.r.out\ncontinue\n"
	var out strings.Builder

	session := debug.New(s, strings.NewReader(script), &out)
	session.Run()

	transcript := out.String()

	if !strings.Contains(transcript, "breakpoint: group inc started at cycle 1") {
		t.Fatalf("expected a breakpoint hit at the first activation of inc, got:\n%s", transcript)
	}

	if !strings.Contains(transcript, "main.r.out = 1") {
		t.Fatalf("expected the printed value of r at the breakpoint, got:\n%s", transcript)
	}

	if !strings.Contains(transcript, "program completed") {
		t.Fatalf("expected the run to finish after the second continue, got:\n%s", transcript)
	}
}

func TestSessionStepAndPrint(t *testing.T) {
	env, errs := elaborate.New(counterProgram()).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("elaborate: %v", errs)
	}

	s := sim.New(env, sim.Options{})

	script := "step\nprint main.r.out\nexit\n"
	var out strings.Builder

	session := debug.New(s, strings.NewReader(script), &out)
	code := session.Run()

	if code != debug.ExitDebuggerQuit {
		t.Fatalf("expected ExitDebuggerQuit, got %d", code)
	}

	if !strings.Contains(out.String(), "main.r.out = 1") {
		t.Fatalf("expected printed register value in transcript, got:\n%s", out.String())
	}
}

func TestSessionPrintState(t *testing.T) {
	env, errs := elaborate.New(counterProgram()).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("elaborate: %v", errs)
	}

	s := sim.New(env, sim.Options{})

	script := "step\nprint-state main.r\nexit\n"
	var out strings.Builder

	debug.New(s, strings.NewReader(script), &out).Run()

	if !strings.Contains(out.String(), "bytes of native state") {
		t.Fatalf("expected a native-state byte count in transcript, got:\n%s", out.String())
	}
}
