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

import "github.com/patterntrack/roadfinder/pattern"

// NodeDescriptor is a traversal snapshot: a Link together with the shift and
// mirror state accumulated along the path from the root. depth, shift and
// mirrored are cumulative; link.Child is the node currently being visited.
type NodeDescriptor struct {
	Link     *pattern.Link
	Parent   *pattern.Pattern // nil for the root
	Depth    int
	Shift    int64
	Mirrored bool
}

// EffectiveBits returns a one-level view of the pattern's bits for
// inspection: if the descriptor is mirrored, each bit is reflected about the
// last plane's bit; every bit is then doubled and the lowest bit of Shift is
// added. It does not compute the absolute bins ComparePattern matches
// against, which use the whole of Shift.
func (nd *NodeDescriptor) EffectiveBits() []int32 {
	bits := nd.Link.Child.Bits()
	out := make([]int32, len(bits))
	copy(out, bits)

	if nd.Mirrored {
		w := out[len(out)-1]
		for i := range out {
			out[i] = w - out[i]
		}
	}
	for i := range out {
		out[i] = (out[i] << 1) | int32(nd.Shift&1)
	}
	return out
}

// descend produces the NodeDescriptor for one step down through link.
func (nd *NodeDescriptor) descend(link *pattern.Link) *NodeDescriptor {
	return &NodeDescriptor{
		Link:     link,
		Parent:   nd.Link.Child,
		Depth:    nd.Depth + 1,
		Shift:    (nd.Shift << 1) + int64(b2i(link.Type.Shift())),
		Mirrored: nd.Mirrored != link.Type.Mirror(),
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
