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

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

// ErrParam is returned, wrapped, whenever generation parameters fail
// validation.
var ErrParam = fmt.Errorf("invalid generation parameters")

// Params is the input to the generator: a maximum resolution depth, a fixed
// bound on raw bit spread, the plane z-positions, and a maximum slope.
type Params struct {
	MaxDepth  int       `validate:"gte=1,lte=16" cbor:"max_depth"`
	Width     int32     `validate:"gt=0" cbor:"width"`
	ZPos      []float64 `validate:"gte=2,dive" cbor:"zpos"`
	MaxSlope  float64   `validate:"gte=0" cbor:"max_slope"`
}

var validate = validator.New()

// Validate checks every field of Params and, unlike a single failing
// assertion, reports every violated constraint at once via a multierror, so
// a caller sees the complete list of problems in one pass.
func (p Params) Validate() error {
	var result *multierror.Error

	if err := validate.Struct(p); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				result = multierror.Append(result, fmt.Errorf("field %s failed %q constraint", fe.Field(), fe.Tag()))
			}
		} else {
			result = multierror.Append(result, err)
		}
	}

	if len(p.ZPos) >= 2 {
		for i := 1; i < len(p.ZPos); i++ {
			if p.ZPos[i] <= p.ZPos[i-1] {
				result = multierror.Append(result, fmt.Errorf("zpos must be strictly increasing, got %v at index %d after %v", p.ZPos[i], i, p.ZPos[i-1]))
				break
			}
		}
	}

	if result != nil {
		result.ErrorFormat = func(errs []error) string {
			s := fmt.Sprintf("%d constraint violation(s):", len(errs))
			for _, e := range errs {
				s += "\n  - " + e.Error()
			}
			return s
		}
		return fmt.Errorf("%w: %s", ErrParam, result)
	}
	return nil
}

// NPlanes returns the number of detector planes described by the parameters.
func (p Params) NPlanes() int {
	return len(p.ZPos)
}

// NLevels returns the number of resolution levels the tree will contain,
// including the root (depth 0).
func (p Params) NLevels() int {
	return p.MaxDepth + 1
}

// NormalizedZPos returns the plane z-positions rescaled to [0, 1], as
// required by LineCheck.
func (p Params) NormalizedZPos() []float64 {
	out := make([]float64, len(p.ZPos))
	if len(p.ZPos) == 0 {
		return out
	}
	lo, hi := p.ZPos[0], p.ZPos[len(p.ZPos)-1]
	span := hi - lo
	for i, z := range p.ZPos {
		if span == 0 {
			out[i] = 0
			continue
		}
		out[i] = (z - lo) / span
	}
	return out
}
