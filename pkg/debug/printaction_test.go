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
package debug

import (
	"testing"

	"github.com/calyxir/cider/pkg/util/bitvec"
)

func TestParsePrintAction(t *testing.T) {
	tests := []struct {
		tok  string
		ok   bool
		want PrintAction
	}{
		{`\u`, true, PrintAction{Signed: false, Frac: 0}},
		{`\s`, true, PrintAction{Signed: true, Frac: 0}},
		{`\u.4`, true, PrintAction{Signed: false, Frac: 4}},
		{`\s.2`, true, PrintAction{Signed: true, Frac: 2}},
		{`r.out`, false, PrintAction{}},
		{`\x`, false, PrintAction{}},
		{`\u.`, false, PrintAction{}},
		{`\u.-1`, false, PrintAction{}},
	}

	for _, tt := range tests {
		got, ok := ParsePrintAction(tt.tok)
		if ok != tt.ok {
			t.Errorf("ParsePrintAction(%q) ok = %v, want %v", tt.tok, ok, tt.ok)
			continue
		}

		if ok && got != tt.want {
			t.Errorf("ParsePrintAction(%q) = %+v, want %+v", tt.tok, got, tt.want)
		}
	}
}

func TestPrintActionFormat(t *testing.T) {
	tests := []struct {
		name string
		pa   PrintAction
		v    bitvec.BitVec
		want string
	}{
		{"unsigned plain", PrintAction{}, bitvec.FromUint64(8, 5), "5"},
		{"signed negative", PrintAction{Signed: true}, bitvec.FromUint64(8, 255), "-1"},
		{"unsigned fixed point", PrintAction{Frac: 4}, bitvec.FromUint64(8, 83), "5.1875"},
		{"signed fixed point negative", PrintAction{Signed: true, Frac: 2}, bitvec.FromUint64(8, 246 /* -10 mod 256 */), "-2.50"},
	}

	for _, tt := range tests {
		if got := tt.pa.Format(tt.v); got != tt.want {
			t.Errorf("%s: Format() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
