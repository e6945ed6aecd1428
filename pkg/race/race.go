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

// Package race implements the optional data-race detector, which flags two
// `par` arms writing the same cell under
// concurrent (neither-a-prefix-of-the-other) control paths in the same
// cycle, unless the pair is declared entangled.
package race

import (
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/calyxir/cider/pkg/ir"
	"github.com/calyxir/cider/pkg/ir/guard"
	"github.com/calyxir/cider/pkg/ir/handle"
	"github.com/calyxir/cider/pkg/sim/control"
)

// Conflict reports a detected race: the same cell written under two
// concurrent par-paths in the same cycle.
type Conflict struct {
	Cell        handle.CellIdx
	CellName    string
	PathA, PathB control.ParPath
	AssignA, AssignB handle.AssignIdx
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("data race on %s: concurrent writes under paths %v and %v", c.CellName, c.PathA, c.PathB)
}

// Detector tracks, per cell, the set of entangled cell groups (resources
// meant to be written by multiple concurrent arms by design) and performs
// the per-cycle concurrency check.
type Detector struct {
	env       *ir.Environment
	entangled map[handle.CellIdx]int // cell -> entanglement group id; 0 means ungrouped
}

// New constructs a Detector with no entangled groups declared.
func New(env *ir.Environment) *Detector {
	return &Detector{env: env, entangled: make(map[handle.CellIdx]int)}
}

// Entangle declares that every cell in cells forms one logical resource: the
// detector never reports a race between writers of cells in the same group.
func (d *Detector) Entangle(cells []handle.CellIdx) {
	group := len(d.entangled) + 1
	for _, c := range cells {
		d.entangled[c] = group
	}
}

// Check inspects this cycle's activation after convergence has settled
// (guards are evaluated against the final, stable buffer) and reports every
// conflict found. Writes to group go/done holes are not counted: each hole
// belongs to exactly one group. It never mutates the activation or the buffer.
func (d *Detector) Check(buf guard.PortReader, act *control.Activation) []*Conflict {
	nCells := uint(len(d.env.Cells))
	seen := bitset.New(nCells)
	multi := bitset.New(nCells)
	byCell := make(map[handle.CellIdx][]control.Write)

	holes := make(map[handle.GlobalPortIdx]bool, 2*len(d.env.Groups))
	for i := range d.env.Groups {
		holes[d.env.Groups[i].GoPort] = true
		holes[d.env.Groups[i].DonePort] = true
	}

	for _, w := range act.Writes {
		a := &d.env.Assignments[w.Assign]
		if holes[a.Dst] || !a.Active(buf) {
			continue
		}

		i := uint(w.Cell)
		if seen.Test(i) {
			multi.Set(i)
		}

		seen.Set(i)
		byCell[w.Cell] = append(byCell[w.Cell], w)
	}

	if multi.Count() == 0 {
		return nil
	}

	var conflicts []*Conflict

	cells := make([]handle.CellIdx, 0, multi.Count())

	for i, e := multi.NextSet(0); e; i, e = multi.NextSet(i + 1) {
		cells = append(cells, handle.CellIdx(i))
	}

	sort.Slice(cells, func(i, j int) bool { return cells[i] < cells[j] })

	for _, cell := range cells {
		writes := byCell[cell]

		if _, exempt := d.entangled[cell]; exempt {
			continue
		}

		for i := 0; i < len(writes); i++ {
			for j := i + 1; j < len(writes); j++ {
				if concurrent(writes[i].Path, writes[j].Path) {
					conflicts = append(conflicts, &Conflict{
						Cell:     cell,
						CellName: d.env.Cells[cell].Name,
						PathA:    writes[i].Path,
						PathB:    writes[j].Path,
						AssignA:  writes[i].Assign,
						AssignB:  writes[j].Assign,
					})
				}
			}
		}
	}

	return conflicts
}

// concurrent reports whether two par-paths are neither a prefix of the
// other, meaning they run under sibling branches of a par and so execute
// concurrently.
func concurrent(a, b control.ParPath) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return true
		}
	}
	// One is a prefix of the other (including the empty-path case).
	return false
}
