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

// Package sim is the top-level cycle-accurate simulator: it ties the
// control interpreter (pkg/sim/control), the convergence engine
// (pkg/sim/converge) and the optional data-race detector (pkg/race)
// together into a single per-cycle tick, exposed as an "Execute(steps)
// (uint, error)" style stepping contract.
package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/calyxir/cider/pkg/ir"
	"github.com/calyxir/cider/pkg/ir/handle"
	"github.com/calyxir/cider/pkg/race"
	"github.com/calyxir/cider/pkg/sim/control"
	"github.com/calyxir/cider/pkg/sim/converge"
)

// Options configures a Simulator's optional behaviours.
type Options struct {
	// CheckDataRace enables the race detector's per-cycle check.
	CheckDataRace bool
	// StrictRace halts the run on the first race found, rather than merely
	// logging it and continuing.
	StrictRace bool
	// MaxIterations bounds the convergence engine's fixed-point loop; 0
	// selects converge.DefaultMaxIterations.
	MaxIterations uint
	Log           *logrus.Logger
}

// Simulator owns one Environment's port buffer and runtime state and steps
// it one cycle at a time.
type Simulator struct {
	env     *ir.Environment
	buf     *Buffer
	control *control.Interpreter
	engine  *converge.Engine
	race    *race.Detector
	opts    Options

	cycle uint64
}

// New constructs a Simulator for env, with the port buffer and control
// state reset to their initial values.
func New(env *ir.Environment, opts Options) *Simulator {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	s := &Simulator{
		env:     env,
		buf:     NewBuffer(env),
		control: control.New(env),
		engine:  converge.New(env, opts.MaxIterations),
		opts:    opts,
	}

	if opts.CheckDataRace {
		s.race = race.New(env)
	}

	return s
}

// Buffer exposes the simulator's port-value buffer, used by the debugger's
// `print` command and by tests to read port values.
func (s *Simulator) Buffer() *Buffer { return s.buf }

// Environment exposes the elaborated program this simulator runs.
func (s *Simulator) Environment() *ir.Environment { return s.env }

// Cycle returns the number of cycles committed so far.
func (s *Simulator) Cycle() uint64 { return s.cycle }

// Done reports whether the root component's control tree has completed.
func (s *Simulator) Done() bool {
	return s.control.NodeDone(s.env.RootControl)
}

// ControlState exposes a control node's current runtime state, for the
// debugger's breakpoint/watchpoint/where commands.
func (s *Simulator) ControlState(idx handle.ControlIdx) control.State {
	return s.control.State(idx)
}

// EnableNodeForGroup finds the flat control-node index of the (unique)
// enable node driving group gi, or handle.InvalidControl if none exists.
func (s *Simulator) EnableNodeForGroup(gi handle.GroupIdx) handle.ControlIdx {
	for i := range s.env.Control {
		n := &s.env.Control[i]
		if n.Kind == ir.CtrlEnable && n.Group == gi {
			return handle.ControlIdx(i)
		}
	}

	return handle.InvalidControl
}

// Entangle forwards to the underlying race detector, a no-op if data-race
// checking was not enabled.
func (s *Simulator) Entangle(cells []handle.CellIdx) {
	if s.race != nil {
		s.race.Entangle(cells)
	}
}

// Restart returns the port buffer, the control tree and the cycle count to
// their initial values without discarding the Environment itself, for the
// debugger's `restart` command. Primitives' internal state (register and
// memory contents, pipeline progress) is not reset.
func (s *Simulator) Restart() {
	s.buf.Reset()
	s.control.Reset()
	s.cycle = 0
}

// Step runs exactly one cycle: compute this cycle's activation set, settle
// the convergence engine, optionally check for data races, then advance
// every live control node's state for the next cycle. It returns whether
// the root component's control tree completed on this cycle.
func (s *Simulator) Step() (bool, error) {
	act := s.control.Activate(s.env.RootControl)

	if err := s.engine.Settle(s.buf, act, s.cycle); err != nil {
		return false, err
	}

	if s.race != nil {
		if conflicts := s.race.Check(s.buf, act); len(conflicts) > 0 {
			for _, c := range conflicts {
				s.opts.Log.WithField("cycle", s.cycle).Warn(c.Error())
			}

			if s.opts.StrictRace {
				return false, conflicts[0]
			}
		}
	}

	s.cycle++
	done := s.control.Advance(s.env.RootControl, s.buf)

	return done, nil
}

// Execute runs up to n cycles, stopping early if the root component
// completes or an error occurs. It returns the number of cycles actually
// executed.
func (s *Simulator) Execute(n uint) (uint, error) {
	var i uint

	for ; i < n; i++ {
		if s.Done() {
			return i, nil
		}

		done, err := s.Step()
		if err != nil {
			return i, err
		}

		if done {
			return i + 1, nil
		}
	}

	return i, nil
}

// CycleLimitError reports that a run exhausted its configured cycle budget
// before the simulation completed.
type CycleLimitError struct {
	Limit uint
}

func (e *CycleLimitError) Error() string {
	return fmt.Sprintf("cycle limit of %d exceeded without completion", e.Limit)
}

// Run executes to completion or until budget cycles have elapsed, whichever
// comes first, honouring ctx cancellation at cycle boundaries (the only
// externally observable suspension point, per the concurrency model).
func (s *Simulator) Run(ctx context.Context, budget uint) error {
	executed, err := func() (uint, error) {
		var total uint

		for total < budget {
			select {
			case <-ctx.Done():
				return total, ctx.Err()
			default:
			}

			if s.Done() {
				return total, nil
			}

			n, err := s.Execute(1)
			total += n

			if err != nil {
				return total, err
			}
		}

		return total, nil
	}()

	if err != nil {
		return err
	}

	if !s.Done() && executed >= budget {
		return &CycleLimitError{Limit: budget}
	}

	return nil
}
