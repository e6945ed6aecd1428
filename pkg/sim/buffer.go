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

package sim

import (
	"github.com/calyxir/cider/pkg/ir"
	"github.com/calyxir/cider/pkg/ir/handle"
	"github.com/calyxir/cider/pkg/util/bitvec"
)

// Buffer is the simulator's single port-value array, indexed by
// handle.GlobalPortIdx exactly as the Environment's Ports slice is. It
// implements guard.PortReader (for guard/assignment evaluation) and
// control.Copier (for the control interpreter's done/cond sampling and
// invoke out-copies).
type Buffer struct {
	env    *ir.Environment
	values []bitvec.BitVec
}

// NewBuffer allocates a buffer sized to env and initialises every port to
// its declared padding value.
func NewBuffer(env *ir.Environment) *Buffer {
	b := &Buffer{env: env, values: make([]bitvec.BitVec, len(env.Ports))}
	b.Reset()

	return b
}

// Reset restores every port to its declared padding value, used both at
// simulator construction and by the debugger's `restart` command.
func (b *Buffer) Reset() {
	for i := range b.env.Ports {
		b.values[i] = bitvec.FromUint64(b.env.Ports[i].Width, b.env.Ports[i].Padding)
	}
}

// PortValue implements guard.PortReader.
func (b *Buffer) PortValue(p handle.GlobalPortIdx) bitvec.BitVec {
	return b.values[p]
}

// SetPortValue writes a port's value directly, bypassing the convergence
// engine; used for copying invoke out-arguments and for test/debugger
// pokes.
func (b *Buffer) SetPortValue(p handle.GlobalPortIdx, v bitvec.BitVec) {
	b.values[p] = v
}

// Copy implements control.Copier: a one-shot value copy from src to dst.
func (b *Buffer) Copy(dst, src handle.GlobalPortIdx) {
	b.values[dst] = b.values[src]
}
