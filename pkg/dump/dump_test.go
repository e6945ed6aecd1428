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
package dump_test

import (
	"reflect"
	"testing"

	"github.com/calyxir/cider/pkg/ast"
	"github.com/calyxir/cider/pkg/dump"
	"github.com/calyxir/cider/pkg/ir/elaborate"
)

func registerOnlyEnv(t *testing.T) *ast.Program {
	t.Helper()

	main := ast.Component{
		Name: "main",
		Cells: []ast.CellDecl{
			{Name: "r", Kind: ast.CellPrimitive, Primitive: "std_reg", Params: map[string]uint{"width": 8}},
		},
		Control: ast.ControlNode{Kind: ast.CtrlEmpty},
	}

	return &ast.Program{Components: []ast.Component{main}, Entrypoint: "main"}
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	snap := dump.Snapshot{"main.r": {"42"}}

	data, err := dump.WriteJSON(snap)
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	got, err := dump.ReadJSON(data)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("round trip mismatch: got %v, want %v", got, snap)
	}
}

func TestSnapshotNativeRoundTrip(t *testing.T) {
	snap := dump.Snapshot{"main.r": {"7"}}

	data, err := dump.WriteNative(snap)
	if err != nil {
		t.Fatalf("WriteNative: %v", err)
	}

	got, err := dump.ReadNative(data)
	if err != nil {
		t.Fatalf("ReadNative: %v", err)
	}

	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("round trip mismatch: got %v, want %v", got, snap)
	}
}

func TestApplyThenCollectRegister(t *testing.T) {
	env, errs := elaborate.New(registerOnlyEnv(t)).Elaborate()
	if len(errs) > 0 {
		t.Fatalf("elaborate: %v", errs)
	}

	in := dump.Snapshot{"main.r": {"17"}}
	if err := dump.Apply(env, in); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	out, err := dump.Collect(env)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if !reflect.DeepEqual(out, in) {
		t.Fatalf("collected snapshot = %v, want %v", out, in)
	}
}
