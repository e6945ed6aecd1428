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
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/calyxir/cider/pkg/util/bitvec"
)

// PrintAction describes how a `print`/`print-state`/`watch` command should
// render a value: as an unsigned or signed decimal, optionally as a
// fixed-point number with a declared number of fractional bits, per the
// \u, \s, \u.N, \s.N codes of the debugger's grammar.
type PrintAction struct {
	Signed bool
	Frac   int // 0 when the value is a plain integer
}

// DefaultPrintAction renders a value as plain unsigned decimal.
var DefaultPrintAction = PrintAction{}

// ParsePrintAction recognises one of the debugger's print-code tokens
// (\u, \s, \u.N, \s.N); ok is false if tok isn't a recognised code, in which
// case the caller should treat tok as an ordinary name argument instead.
func ParsePrintAction(tok string) (PrintAction, bool) {
	if !strings.HasPrefix(tok, "\\u") && !strings.HasPrefix(tok, "\\s") {
		return PrintAction{}, false
	}

	pa := PrintAction{Signed: strings.HasPrefix(tok, "\\s")}
	rest := tok[2:]

	if rest == "" {
		return pa, true
	}

	if !strings.HasPrefix(rest, ".") {
		return PrintAction{}, false
	}

	n, err := strconv.Atoi(rest[1:])
	if err != nil || n < 0 {
		return PrintAction{}, false
	}

	pa.Frac = n

	return pa, true
}

// Format renders v according to this print action.
func (pa PrintAction) Format(v bitvec.BitVec) string {
	var i *big.Int
	if pa.Signed {
		i = v.Signed()
	} else {
		i = v.BigInt()
	}

	if pa.Frac == 0 {
		return i.String()
	}

	scale := new(big.Int).Lsh(big.NewInt(1), uint(pa.Frac))
	q, r := new(big.Int).QuoRem(i, scale, new(big.Int))
	frac := new(big.Int).Abs(r)
	// frac/2^Frac == frac*5^Frac/10^Frac, so Frac decimal digits are exact.
	frac.Mul(frac, new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(pa.Frac)), nil))

	sign := ""
	if i.Sign() < 0 && q.Sign() == 0 {
		sign = "-"
	}

	return fmt.Sprintf("%s%s.%0*d", sign, q.String(), pa.Frac, frac)
}
