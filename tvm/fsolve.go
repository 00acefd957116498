// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tvm

import (
	"math"
)

type objectiveFunc func(float64) float64

const (
	maxIterations = 100
	tolerance     = 1e-6
)

// bisect finds a root of f in [x1, x2] by repeatedly halving the interval
// that brackets a sign change. It stops when |f(mid)| < tolerance or after
// maxIterations halvings, returning the best midpoint. When f(x1) and f(x2)
// have the same sign there is no bracketed root and ErrNoConvergence is
// returned.
func bisect(f objectiveFunc, x1, x2 float64) (float64, error) {
	f1 := f(x1)
	f2 := f(x2)

	if math.IsNaN(f1) || math.IsNaN(f2) {
		return math.NaN(), ErrNoConvergence
	}
	if f1 == 0 {
		return x1, nil
	}
	if f2 == 0 {
		return x2, nil
	}
	if f1*f2 > 0 {
		return math.NaN(), ErrNoConvergence
	}

	var x3 float64
	for i := 0; i < maxIterations; i++ {
		x3 = 0.5 * (x1 + x2)
		f3 := f(x3)
		if math.Abs(f3) < tolerance {
			return x3, nil
		}

		if x3 == x1 || x3 == x2 {
			// x1 and x2 are successive floating-point numbers
			return x3, nil
		}

		if f3*f1 < 0 {
			x2 = x3
		} else {
			x1 = x3
			f1 = f3
		}
	}

	return x3, nil
}
