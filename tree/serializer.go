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
	"encoding/binary"
	"fmt"
	"io"

	"github.com/patterntrack/roadfinder/pattern"
)

// ErrIO wraps any write failure encountered while serializing a tree.
var ErrIO = fmt.Errorf("tree serialization failed")

// widthFieldSize returns the number of bytes needed to encode a bin value up
// to width: ceil(log2(width+1)/8) bytes, clamped to the 1/2/4-byte sizes the
// format supports.
func widthFieldSize(width int32) int {
	switch {
	case width < 1<<8:
		return 1
	case width < 1<<16:
		return 2
	default:
		return 4
	}
}

// refFieldSize returns the number of bytes needed to encode a back-reference
// index into a tree with the given total pattern count.
func refFieldSize(totalPatterns int) int {
	switch {
	case totalPatterns < 1<<8:
		return 1
	case totalPatterns < 1<<16:
		return 2
	default:
		return 4
	}
}

func writeUint(w io.Writer, v uint64, size int) error {
	var buf [8]byte
	switch size {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(buf[:2], uint16(v))
	case 4:
		binary.BigEndian.PutUint32(buf[:4], uint32(v))
	default:
		return fmt.Errorf("unsupported field size %d", size)
	}
	_, err := w.Write(buf[:size])
	return err
}

func readUint(r io.Reader, size int) (uint64, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:size]); err != nil {
		return 0, err
	}
	switch size {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(buf[:2])), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(buf[:4])), nil
	default:
		return 0, fmt.Errorf("unsupported field size %d", size)
	}
}

// Serializer emits a pattern DAG to a byte stream using first-occurrence
// indexing: the first time a Pattern is reached it is written in full and
// assigned the next index; every subsequent reference to it is written as a
// short back-reference to that index.
//
// Serializer is itself a Visitor, so it is driven by Walk.
type Serializer struct {
	w         io.Writer
	index     map[*pattern.Pattern]uint64
	binSize   int
	refSize   int
	err       error
}

// NewSerializer creates a Serializer for a tree whose patterns have bit
// values up to width and whose total pattern count is totalPatterns (used
// to size back-reference indices up front, before the walk begins).
func NewSerializer(w io.Writer, width int32, totalPatterns int) *Serializer {
	return &Serializer{
		w:       w,
		index:   make(map[*pattern.Pattern]uint64),
		binSize: widthFieldSize(width),
		refSize: refFieldSize(totalPatterns),
	}
}

// Visit implements Visitor.
func (s *Serializer) Visit(nd *NodeDescriptor) VisitResult {
	if s.err != nil {
		return Terminate
	}

	child := nd.Link.Child
	if idx, ok := s.index[child]; ok {
		if err := writeUint(s.w, uint64(nd.Link.Type), 1); err != nil {
			s.err = err
			return Terminate
		}
		if err := writeUint(s.w, idx, s.refSize); err != nil {
			s.err = err
			return Terminate
		}
		return SkipChildren
	}

	idx := uint64(len(s.index))
	s.index[child] = idx

	header := uint64(nd.Link.Type) | 0x80
	if err := writeUint(s.w, header, 1); err != nil {
		s.err = err
		return Terminate
	}

	bits := child.Bits()
	for _, b := range bits[1:] {
		if err := writeUint(s.w, uint64(uint32(b)), s.binSize); err != nil {
			s.err = err
			return Terminate
		}
	}

	children := child.Links()
	if err := writeUint(s.w, uint64(len(children)), 2); err != nil {
		s.err = err
		return Terminate
	}

	return Recurse
}

// Serialize writes t's pattern DAG to w and returns the number of distinct
// patterns written.
func Serialize(t *PatternTree, w io.Writer) (int, error) {
	s := NewSerializer(w, t.params.Width, t.PatternCount())
	status := t.Walk(s)
	if s.err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIO, s.err)
	}
	if status == StatusTerminated {
		return 0, fmt.Errorf("%w: serialization aborted mid-walk", ErrIO)
	}
	return len(s.index), nil
}
