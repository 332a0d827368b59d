// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package tree

import (
	"fmt"
	"io"

	"github.com/patterntrack/roadfinder/pattern"
)

// ErrFormat is returned, wrapped, when deserialization finds an
// inconsistent tag, an unknown link type, or an out-of-range
// back-reference. Any partially built tree is discarded by the caller.
var ErrFormat = fmt.Errorf("tree deserialization failed")

// Deserialize rebuilds a pattern DAG from r. nPlanes, width and
// totalPatterns must match the values the tree was serialized with (the
// core file format carries no self-describing header; callers are expected
// to have stored these alongside the file). It returns the root pattern and
// the number of distinct patterns read.
func Deserialize(r io.Reader, nPlanes int, width int32, totalPatterns int) (*pattern.Pattern, int, error) {
	if nPlanes < 1 {
		return nil, 0, fmt.Errorf("%w: nPlanes must be positive, got %d", ErrFormat, nPlanes)
	}

	binSize := widthFieldSize(width)
	refSize := refFieldSize(totalPatterns)

	var patterns []*pattern.Pattern
	root, _, err := readRecord(r, binSize, refSize, nPlanes, &patterns)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if totalPatterns > 0 && len(patterns) != totalPatterns {
		return nil, 0, fmt.Errorf("%w: expected %d patterns, read %d", ErrFormat, totalPatterns, len(patterns))
	}

	return root, len(patterns), nil
}

// readRecord reads one node record (new or back-reference) and, for a new
// node, recurses into its children immediately, since the format stores
// child records inline. patterns accumulates every newly created Pattern in
// first-occurrence order, mirroring the Serializer's index assignment.
func readRecord(r io.Reader, binSize, refSize, nPlanes int, patterns *[]*pattern.Pattern) (*pattern.Pattern, pattern.LinkType, error) {
	headerVal, err := readUint(r, 1)
	if err != nil {
		return nil, 0, fmt.Errorf("could not read record header: %w", err)
	}
	header := byte(headerVal)
	typ := pattern.LinkType(header &^ 0x80)
	if typ > pattern.LinkShift|pattern.LinkMirror {
		return nil, 0, fmt.Errorf("unknown link type %d", typ)
	}

	if header&0x80 == 0 {
		idx, err := readUint(r, refSize)
		if err != nil {
			return nil, 0, fmt.Errorf("could not read back-reference index: %w", err)
		}
		if idx >= uint64(len(*patterns)) {
			return nil, 0, fmt.Errorf("back-reference index %d out of range (have %d patterns)", idx, len(*patterns))
		}
		return (*patterns)[idx], typ, nil
	}

	bits := make([]int32, nPlanes)
	for i := 1; i < nPlanes; i++ {
		v, err := readUint(r, binSize)
		if err != nil {
			return nil, 0, fmt.Errorf("could not read bin value %d: %w", i, err)
		}
		bits[i] = int32(v)
	}

	childCountVal, err := readUint(r, 2)
	if err != nil {
		return nil, 0, fmt.Errorf("could not read child count: %w", err)
	}

	p := pattern.New(bits)
	*patterns = append(*patterns, p)

	for i := uint64(0); i < childCountVal; i++ {
		child, ctyp, err := readRecord(r, binSize, refSize, nPlanes, patterns)
		if err != nil {
			return nil, 0, err
		}
		p.AddLink(child, ctyp)
	}

	return p, typ, nil
}
