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
package primitive

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/big"

	"github.com/calyxir/cider/pkg/util/bitvec"
)

func init() {
	for dims := 1; dims <= 4; dims++ {
		d := dims
		register(fmt.Sprintf("comb_mem_d%d", d), func(params map[string]uint) (Primitive, error) {
			return newCombMemory(d, params)
		})
		register(fmt.Sprintf("seq_mem_d%d", d), func(params map[string]uint) (Primitive, error) {
			return newSeqMemory(d, params)
		})
	}
}

// shape returns the size0..sizeN-1 dimensions and the flattened element
// count for a given number of dimensions.
func shape(dims int, params map[string]uint) ([]uint, uint, error) {
	sizes := make([]uint, dims)
	total := uint(1)

	for i := 0; i < dims; i++ {
		key := fmt.Sprintf("size%d", i)

		s, err := requireParam(params, key)
		if err != nil {
			return nil, 0, err
		}

		sizes[i] = s
		total *= s
	}

	return sizes, total, nil
}

// CombMemory implements comb_mem_d1..d4: a purely combinational read, with a
// write committed at the clock edge when write_en is high. Addressing is
// row-major across the declared dimensions.
type CombMemory struct {
	dims     int
	sizes    []uint
	width    uint
	data     []bitvec.BitVec
	lastAddr uint
	writing  bool
}

func newCombMemory(dims int, params map[string]uint) (*CombMemory, error) {
	sizes, total, err := shape(dims, params)
	if err != nil {
		return nil, err
	}

	width, err := requireParam(params, "width")
	if err != nil {
		return nil, err
	}

	m := &CombMemory{dims: dims, sizes: sizes, width: width, data: make([]bitvec.BitVec, total)}
	m.Reset()

	return m, nil
}

func (m *CombMemory) addrInputs() []PortSig {
	sigs := make([]PortSig, m.dims)

	for i, s := range m.sizes {
		sigs[i] = PortSig{fmt.Sprintf("addr%d", i), bitsFor(s)}
	}

	return sigs
}

func (m *CombMemory) flatten(addrs []bitvec.BitVec) uint {
	idx := uint(0)

	for i := 0; i < m.dims; i++ {
		idx = idx*m.sizes[i] + uint(addrs[i].BigInt().Uint64())
	}

	return idx
}

// Name implementation for Primitive.
func (m *CombMemory) Name() string { return fmt.Sprintf("comb_mem_d%d", m.dims) }

// Inputs implementation for Primitive.
func (m *CombMemory) Inputs() []PortSig {
	sigs := m.addrInputs()
	return append(sigs, PortSig{"write_data", m.width}, PortSig{"write_en", 1})
}

// Outputs implementation for Primitive.
func (m *CombMemory) Outputs() []PortSig {
	return []PortSig{{"read_data", m.width}, {"done", 1}}
}

// Combinational implementation for Primitive.
func (m *CombMemory) Combinational() bool { return false }

// ClockedInputs implementation for Primitive: the write path is clocked; the
// read path (addresses) is combinational.
func (m *CombMemory) ClockedInputs() []string { return []string{"write_data", "write_en"} }

// EvalCombinational implementation for Primitive.
func (m *CombMemory) EvalCombinational(in []bitvec.BitVec) ([]bitvec.BitVec, error) {
	m.lastAddr = m.flatten(in[:m.dims])

	done := bitvec.Zero(1)
	if m.writing {
		done = bitvec.FromUint64(1, 1)
	}

	return []bitvec.BitVec{m.data[m.lastAddr], done}, nil
}

// EvalClock implementation for Primitive: the address lines are
// combinational, so the write lands at whichever flat index the last
// EvalCombinational call observed. Callers hold the address stable across
// the write cycle, since the activation set only changes at cycle
// boundaries.
func (m *CombMemory) EvalClock(in []bitvec.BitVec) error {
	writeData := in[m.dims]
	writeEn := in[m.dims+1]
	m.writing = !writeEn.IsZero()

	if m.writing {
		m.data[m.lastAddr] = writeData
	}

	return nil
}

// Reset implementation for Primitive.
func (m *CombMemory) Reset() {
	for i := range m.data {
		m.data[i] = bitvec.Zero(m.width)
	}

	m.writing = false
}

// DumpState implementation for Primitive: an ordered sequence of fixed-width
// unsigned values preserving shape.
func (m *CombMemory) DumpState() ([]byte, error) {
	return dumpWords(m.data)
}

// LoadState implementation for Primitive.
func (m *CombMemory) LoadState(data []byte) error {
	words, err := loadWords(data, m.width)
	if err != nil {
		return err
	}

	if len(words) != len(m.data) {
		return fmt.Errorf("memory dump has %d words, expected %d", len(words), len(m.data))
	}

	m.data = words

	return nil
}

// SeqMemory implements seq_mem_d1..d4: both read and write complete with a
// one-cycle latency, driven by a content_en/write_en handshake rather than a
// purely combinational read port.
type SeqMemory struct {
	dims  int
	sizes []uint
	width uint
	data  []bitvec.BitVec
	out   bitvec.BitVec
	done  bool
}

func newSeqMemory(dims int, params map[string]uint) (*SeqMemory, error) {
	sizes, total, err := shape(dims, params)
	if err != nil {
		return nil, err
	}

	width, err := requireParam(params, "width")
	if err != nil {
		return nil, err
	}

	m := &SeqMemory{dims: dims, sizes: sizes, width: width, data: make([]bitvec.BitVec, total)}
	m.Reset()

	return m, nil
}

func (m *SeqMemory) flatten(addrs []bitvec.BitVec) uint {
	idx := uint(0)

	for i := 0; i < m.dims; i++ {
		idx = idx*m.sizes[i] + uint(addrs[i].BigInt().Uint64())
	}

	return idx
}

// Name implementation for Primitive.
func (m *SeqMemory) Name() string { return fmt.Sprintf("seq_mem_d%d", m.dims) }

// Inputs implementation for Primitive.
func (m *SeqMemory) Inputs() []PortSig {
	sigs := make([]PortSig, m.dims)

	for i, s := range m.sizes {
		sigs[i] = PortSig{fmt.Sprintf("addr%d", i), bitsFor(s)}
	}

	return append(sigs, PortSig{"write_data", m.width}, PortSig{"write_en", 1}, PortSig{"content_en", 1})
}

// Outputs implementation for Primitive.
func (m *SeqMemory) Outputs() []PortSig {
	return []PortSig{{"read_data", m.width}, {"done", 1}}
}

// Combinational implementation for Primitive.
func (m *SeqMemory) Combinational() bool { return false }

// ClockedInputs implementation for Primitive: every input of a sequential
// memory is sampled only at the clock edge.
func (m *SeqMemory) ClockedInputs() []string {
	sigs := m.Inputs()
	names := make([]string, len(sigs))

	for i, s := range sigs {
		names[i] = s.Name
	}

	return names
}

// EvalCombinational implementation for Primitive: outputs reflect the result
// latched by the previous clock edge.
func (m *SeqMemory) EvalCombinational(_ []bitvec.BitVec) ([]bitvec.BitVec, error) {
	done := bitvec.Zero(1)
	if m.done {
		done = bitvec.FromUint64(1, 1)
	}

	return []bitvec.BitVec{m.out, done}, nil
}

// EvalClock implementation for Primitive.
func (m *SeqMemory) EvalClock(in []bitvec.BitVec) error {
	contentEn := in[m.dims+2]
	m.done = !contentEn.IsZero()

	if !m.done {
		return nil
	}

	idx := m.flatten(in[:m.dims])
	writeEn := in[m.dims+1]

	if !writeEn.IsZero() {
		m.data[idx] = in[m.dims]
	} else {
		m.out = m.data[idx]
	}

	return nil
}

// Reset implementation for Primitive.
func (m *SeqMemory) Reset() {
	for i := range m.data {
		m.data[i] = bitvec.Zero(m.width)
	}

	m.out = bitvec.Zero(m.width)
	m.done = false
}

// DumpState implementation for Primitive.
func (m *SeqMemory) DumpState() ([]byte, error) {
	return dumpWords(m.data)
}

// LoadState implementation for Primitive.
func (m *SeqMemory) LoadState(data []byte) error {
	words, err := loadWords(data, m.width)
	if err != nil {
		return err
	}

	if len(words) != len(m.data) {
		return fmt.Errorf("memory dump has %d words, expected %d", len(words), len(m.data))
	}

	m.data = words

	return nil
}

// bitsFor returns the minimum number of bits needed to address "size"
// distinct locations.
func bitsFor(size uint) uint {
	bits := uint(1)

	for (uint(1) << bits) < size {
		bits++
	}

	return bits
}

// dumpWords gob-encodes an ordered sequence of bit-vectors as raw big.Int
// values, preserving shape via the element count alone (width is tracked by
// the caller's schema metadata).
func dumpWords(words []bitvec.BitVec) ([]byte, error) {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)
	ints := make([]*big.Int, len(words))

	for i := range words {
		ints[i] = words[i].BigInt()
	}

	if err := enc.Encode(ints); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func loadWords(data []byte, width uint) ([]bitvec.BitVec, error) {
	dec := gob.NewDecoder(bytes.NewReader(data))

	var ints []*big.Int
	if err := dec.Decode(&ints); err != nil {
		return nil, err
	}

	words := make([]bitvec.BitVec, len(ints))
	for i := range ints {
		words[i] = bitvec.FromBigInt(width, ints[i])
	}

	return words, nil
}
