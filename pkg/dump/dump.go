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

// Package dump implements two memory/register dump encodings: a
// human-readable JSON form (one decimal-string array per stateful cell) and
// a native binary form built directly from each primitive's own
// DumpState/LoadState (gob-encoded, since math/big.Int already implements
// gob.GobEncoder/GobDecoder).
package dump

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/big"
	"sort"

	"github.com/segmentio/encoding/json"

	"github.com/calyxir/cider/pkg/ir"
)

// Snapshot maps a stateful cell's dotted path to its current decimal-string
// values, one entry per addressable word (a register has exactly one).
type Snapshot map[string][]string

// Collect walks env's cells and records one Snapshot entry per stateful
// (non-combinational) primitive, rendering its DumpState bytes back into
// decimal words via the primitive's own gob-encoded []*big.Int/*big.Int
// representation. A cell whose DumpState is empty (multi-cycle pipelines:
// see pkg/primitive/pipe.go's design note on in-flight state) or does not
// decode as either shape is skipped.
func Collect(env *ir.Environment) (Snapshot, error) {
	snap := make(Snapshot)

	for i := range env.Cells {
		cell := &env.Cells[i]
		if cell.Primitive == nil || cell.Primitive.Combinational() {
			continue
		}

		raw, err := cell.Primitive.DumpState()
		if err != nil {
			return nil, fmt.Errorf("dumping %s: %w", cell.Name, err)
		}

		if len(raw) == 0 {
			continue
		}

		words, err := decodeWords(raw)
		if err != nil {
			continue
		}

		snap[cell.Name] = words
	}

	return snap, nil
}

// Apply restores Snapshot entries onto env's matching cells, re-encoding
// each entry's decimal words into the gob form LoadState expects.
func Apply(env *ir.Environment, snap Snapshot) error {
	for i := range env.Cells {
		cell := &env.Cells[i]

		words, ok := snap[cell.Name]
		if !ok || cell.Primitive == nil {
			continue
		}

		raw, err := encodeWords(words)
		if err != nil {
			return fmt.Errorf("loading %s: %w", cell.Name, err)
		}

		if err := cell.Primitive.LoadState(raw); err != nil {
			return fmt.Errorf("loading %s: %w", cell.Name, err)
		}
	}

	return nil
}

// WriteJSON renders a Snapshot as indented JSON, sorted by cell name for
// deterministic output.
func WriteJSON(snap Snapshot) ([]byte, error) {
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}

	sort.Strings(names)

	ordered := make(map[string][]string, len(snap))
	for _, n := range names {
		ordered[n] = snap[n]
	}

	return json.MarshalIndent(ordered, "", "  ")
}

// ReadJSON parses a Snapshot from JSON previously produced by WriteJSON (or
// hand-written in the same shape for --data).
func ReadJSON(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	return snap, nil
}

// WriteNative gob-encodes a Snapshot directly, preserving exact big.Int
// precision without a decimal round-trip.
func WriteNative(snap Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(snap); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ReadNative decodes a Snapshot previously produced by WriteNative.
func ReadNative(data []byte) (Snapshot, error) {
	var snap Snapshot

	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&snap); err != nil {
		return nil, err
	}

	return snap, nil
}

// decodeWords interprets raw as a gob-encoded []*big.Int (memories) or a
// single *big.Int (registers), rendering each element as a decimal string.
func decodeWords(raw []byte) ([]string, error) {
	dec := gob.NewDecoder(bytes.NewReader(raw))

	var words []*big.Int
	if err := dec.Decode(&words); err == nil {
		out := make([]string, len(words))
		for i, w := range words {
			out[i] = w.String()
		}

		return out, nil
	}

	dec = gob.NewDecoder(bytes.NewReader(raw))

	var single big.Int
	if err := dec.Decode(&single); err != nil {
		return nil, err
	}

	return []string{single.String()}, nil
}

// encodeWords is decodeWords' inverse: it re-encodes decimal words back into
// the gob shape a primitive's LoadState expects, guessing single-register
// vs. memory shape from the element count.
func encodeWords(words []string) ([]byte, error) {
	parsed := make([]*big.Int, len(words))

	for i, w := range words {
		v, ok := new(big.Int).SetString(w, 10)
		if !ok {
			return nil, fmt.Errorf("malformed decimal word %q", w)
		}

		parsed[i] = v
	}

	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	if len(parsed) == 1 {
		if err := enc.Encode(parsed[0]); err != nil {
			return nil, err
		}
	} else if err := enc.Encode(parsed); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
