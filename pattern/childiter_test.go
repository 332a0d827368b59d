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

package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patterntrack/roadfinder/pattern"
)

func TestChildIter_RootChildren_WidthOne(t *testing.T) {
	root := pattern.New([]int32{0, 0})
	it := pattern.NewChildIter(root, 1)

	type want struct {
		bits []int32
		typ  pattern.LinkType
	}
	expected := []want{
		{[]int32{0, 0}, pattern.LinkShift},
		{[]int32{0, 1}, pattern.LinkPlain},
		{[]int32{0, 1}, pattern.LinkShift | pattern.LinkMirror},
		{[]int32{0, 0}, pattern.LinkPlain},
	}

	for i, w := range expected {
		bits, typ, ok := it.Next()
		require.Truef(t, ok, "candidate %d should be present", i)
		assert.Equal(t, w.bits, bits)
		assert.Equal(t, w.typ, typ)
	}

	_, _, ok := it.Next()
	assert.False(t, ok)
}

func TestChildIter_RejectsOverWidth(t *testing.T) {
	root := pattern.New([]int32{0, 0})
	it := pattern.NewChildIter(root, 0)

	bits, typ, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, []int32{0, 0}, bits)
	assert.Equal(t, pattern.LinkShift, typ)

	bits, typ, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, []int32{0, 0}, bits)
	assert.Equal(t, pattern.LinkPlain, typ)

	_, _, ok = it.Next()
	assert.False(t, ok, "both middle candidates exceed width 0 and must be skipped")
}

func TestChildIter_Reset(t *testing.T) {
	root := pattern.New([]int32{0, 0})
	it := pattern.NewChildIter(root, 1)

	first, _, ok := it.Next()
	require.True(t, ok)

	it.Reset()

	again, _, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, first, again)
}

func TestChildIter_FirstBitAlwaysZero(t *testing.T) {
	root := pattern.New([]int32{0, 2, 5})
	it := pattern.NewChildIter(root, 100)

	for {
		bits, _, ok := it.Next()
		if !ok {
			break
		}
		require.NotEmpty(t, bits)
		assert.Equal(t, int32(0), bits[0], "canonical candidates always pin plane 0 to bit 0")
	}
}
