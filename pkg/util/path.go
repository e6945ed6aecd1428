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
package util

import (
	"bytes"
	"encoding/gob"
	"slices"
	"strings"
)

// Path is a dot-separated name referring to a cell, sub-cell or port, such as
// "mem.addr0" or "counter.r.write_en".  Debugger print arguments are parsed
// into a Path.
type Path struct {
	segments []string
}

// NewPath constructs a path from its dot-separated segments.
func NewPath(segments ...string) Path {
	return Path{segments}
}

// ParsePath splits a dotted name such as "mem.addr0" into a Path.
func ParsePath(name string) Path {
	if name == "" {
		return Path{}
	}

	return Path{strings.Split(name, ".")}
}

// Depth returns the number of segments in this path.
func (p *Path) Depth() uint {
	return uint(len(p.segments))
}

// Head returns the first (i.e. outermost) segment in this path.
func (p *Path) Head() string {
	return p.segments[0]
}

// Dehead removes the head from this path, returning an otherwise identical
// path.
func (p *Path) Dehead() Path {
	return Path{p.segments[1:]}
}

// Tail returns the last (i.e. innermost) segment in this path.
func (p *Path) Tail() string {
	n := len(p.segments) - 1
	return p.segments[n]
}

// Get returns the nth segment of this path.
func (p *Path) Get(nth uint) string {
	return p.segments[nth]
}

// Parent returns this path without its innermost segment.
func (p *Path) Parent() Path {
	n := p.Depth() - 1
	return Path{p.segments[0:n]}
}

// Extend returns this path extended with a new innermost segment.
func (p *Path) Extend(tail string) Path {
	nsegments := make([]string, len(p.segments)+1)
	copy(nsegments, p.segments)
	nsegments[len(p.segments)] = tail
	//
	return Path{nsegments}
}

// Equals determines whether two paths are the same.
func (p *Path) Equals(other Path) bool {
	return slices.Equal(p.segments, other.segments)
}

// PrefixOf checks whether this path is a prefix of the other.
func (p *Path) PrefixOf(other Path) bool {
	if len(p.segments) > len(other.segments) {
		return false
	}
	//
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	// Looks good
	return true
}

// String returns the dot-separated string representation of this path, e.g.
// "mem.addr0".
func (p *Path) String() string {
	return strings.Join(p.segments, ".")
}

// GobEncode a path, so it can be embedded in the native dump format and
// debugger state snapshots.
func (p *Path) GobEncode() (data []byte, err error) {
	var buffer bytes.Buffer
	//
	gobEncoder := gob.NewEncoder(&buffer)
	if err := gobEncoder.Encode(&p.segments); err != nil {
		return nil, err
	}
	//
	return buffer.Bytes(), nil
}

// GobDecode a previously encoded path.
func (p *Path) GobDecode(data []byte) error {
	buffer := bytes.NewBuffer(data)
	gobDecoder := gob.NewDecoder(buffer)
	//
	return gobDecoder.Decode(&p.segments)
}
