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
package ir

import "github.com/calyxir/cider/pkg/util/diag"

// ElaborationError wraps a diag.Diagnostic raised while translating an
// ast.Program into an Environment (unknown primitive, dangling cell
// reference, and so on).
type ElaborationError struct {
	*diag.Diagnostic
}

// NewElaborationError constructs an ElaborationError with the elaboration
// severity already set.
func NewElaborationError(summary string, span diag.Span) *ElaborationError {
	return &ElaborationError{&diag.Diagnostic{Severity: diag.SeverityElaboration, Summary: summary, Span: span}}
}

// RuntimeError wraps a diag.Diagnostic raised during simulation, such as a
// primitive's own runtime failure (e.g. division by zero). Multiply-driven
// ports and combinational loops are reported by pkg/sim/converge's own
// error types instead.
type RuntimeError struct {
	*diag.Diagnostic
}

// NewRuntimeError constructs a RuntimeError with the runtime severity
// already set.
func NewRuntimeError(summary string, span diag.Span, cycle uint64, controlPath string) *RuntimeError {
	return &RuntimeError{&diag.Diagnostic{
		Severity:    diag.SeverityRuntime,
		Summary:     summary,
		Span:        span,
		Cycle:       cycle,
		ControlPath: controlPath,
	}}
}
