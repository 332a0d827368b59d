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

package pattern

import "math"

// SlopeCheck reports whether a candidate pattern's width is compatible with
// the maximum slope allowed at the given depth. The bound is strictest at
// depth 0 and loosens as 2^depth grows, which is why a pattern rejected
// at a shallow depth can still be valid once reused at a deeper one.
func SlopeCheck(p *Pattern, depth int, maxSlope float64) bool {
	w := p.Width()
	if w < 2 {
		return true
	}
	scale := math.Ldexp(1, depth) // 2^depth
	slope := math.Abs(float64(w-1) / scale)
	return slope <= maxSlope
}

// LineCheck verifies that a straight line can pass through a bin of every
// plane in the pattern, given the (normalized) plane z-positions. The term
// order below is deliberate: the band test is sensitive to floating-point
// rounding and must not be reordered.
//
// zpos must have the same length as the pattern and be normalized so that
// zpos[0] == 0 and the last entry == 1 (see Params.NormalizedZPos).
func LineCheck(p *Pattern, zpos []float64) bool {
	bits := p.Bits()
	n := len(bits)
	if n < 2 {
		return true
	}
	if n == 2 {
		// Vacuous: the loop body below never executes for n == 2.
		return true
	}

	xL := float64(bits[n-1])
	xRm1 := xL
	zL := zpos[n-1]
	zR := zL

	for i := n - 2; i >= 1; i-- {
		bi := float64(bits[i])
		zi := zpos[i]

		dL := xL*zi - bi*zL
		dR := xRm1*zi - bi*zR

		if math.Abs(dL) >= zL || math.Abs(dR) >= zR {
			return false
		}

		if i > 1 {
			if dL > 0 {
				xRm1, zR = bi, zi
			}
			if dR < 0 {
				xL, zL = bi, zi
			}
		}
	}

	return true
}
