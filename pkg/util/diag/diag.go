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

// Package diag provides the structured diagnostics shared by elaboration,
// the simulator and the debugger: a one-line summary plus the span (source
// location, where available) and runtime context (cycle, control path,
// offending cell/port) that every fatal error should carry.
package diag

import (
	"fmt"
	"strings"

	"github.com/calyxir/cider/pkg/util/termio"
)

// Span identifies where a diagnostic originates: the component and
// (optionally) group it concerns, plus a file:line when a source-info table
// from the original frontend is available.
type Span struct {
	Component string
	Group     string
	File      string
	Line      uint
}

// String renders the span as "component::group (file:line)", omitting parts
// that are absent.
func (s Span) String() string {
	var sb strings.Builder

	sb.WriteString(s.Component)

	if s.Group != "" {
		sb.WriteString("::")
		sb.WriteString(s.Group)
	}

	if s.File != "" {
		fmt.Fprintf(&sb, " (%s:%d)", s.File, s.Line)
	}

	return sb.String()
}

// Severity classifies a Diagnostic.
type Severity uint8

// The diagnostic severities: parse, elaboration, runtime, race, debugger and
// resource-limit errors.
const (
	SeverityParse Severity = iota
	SeverityElaboration
	SeverityRuntime
	SeverityRace
	SeverityDebugger
	SeverityResource
)

// Diagnostic is a single structured error or warning.
type Diagnostic struct {
	Severity Severity
	Summary  string
	Span     Span
	// Cycle is the cycle number at which this diagnostic was raised; zero
	// when not applicable (e.g. an elaboration-time diagnostic).
	Cycle uint64
	// ControlPath, when non-empty, names the control position active when
	// this diagnostic was raised, as a dotted control-tree path.
	ControlPath string
	// Names lists the offending cell/port names for context.
	Names []string
}

// Error implements the error interface so a Diagnostic can be returned and
// propagated as a plain Go error through the call stack.
func (d *Diagnostic) Error() string {
	return d.Summary
}

// Printer renders diagnostics to a terminal, optionally colourised.
type Printer struct {
	Color bool
}

// NewPrinter constructs a diagnostic printer; color selects whether ANSI
// escapes are emitted (driven by the --force-color flag).
func NewPrinter(color bool) *Printer {
	return &Printer{color}
}

// Print writes one diagnostic as a one-line summary followed by indented
// structured context.
func (p *Printer) Print(d *Diagnostic) string {
	var sb strings.Builder

	sb.WriteString(p.colourise(d.Summary, termio.TERM_RED))
	sb.WriteString("\n")

	if d.Span.Component != "" {
		fmt.Fprintf(&sb, "  at %s\n", d.Span.String())
	}

	if d.Cycle > 0 || d.ControlPath != "" {
		fmt.Fprintf(&sb, "  cycle %d, control position %s\n", d.Cycle, d.ControlPath)
	}

	for _, n := range d.Names {
		fmt.Fprintf(&sb, "  %s\n", n)
	}

	return sb.String()
}

func (p *Printer) colourise(text string, colour uint) string {
	if !p.Color {
		return text
	}

	escape := termio.NewAnsiEscape().FgColour(colour).Build()
	reset := termio.ResetAnsiEscape().Build()

	return escape + text + reset
}
