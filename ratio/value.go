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

package ratio

import (
	"strconv"

	"github.com/goccy/go-json"
)

// Value is the result of a ratio computation: either a number or
// undefined, when the ratio has no economic meaning for the inputs (a
// missing field or a non-positive divisor). Undefined values fail every
// threshold comparison.
type Value struct {
	val     float64
	defined bool
}

// Undefined is the zero Value
var Undefined = Value{}

// Of wraps a defined number
func Of(val float64) Value {
	return Value{val: val, defined: true}
}

// Divide returns num / den, or Undefined when den <= 0
func Divide(num, den float64) Value {
	return quotient(Of(num), Of(den))
}

// Float64 returns the number and whether it is defined
func (v Value) Float64() (float64, bool) {
	return v.val, v.defined
}

func (v Value) IsDefined() bool {
	return v.defined
}

// AtLeast reports v >= threshold; false when v is undefined
func (v Value) AtLeast(threshold float64) bool {
	return v.defined && v.val >= threshold
}

// AtMost reports v <= threshold; false when v is undefined
func (v Value) AtMost(threshold float64) bool {
	return v.defined && v.val <= threshold
}

// Or returns the number, or fallback when undefined
func (v Value) Or(fallback float64) float64 {
	if !v.defined {
		return fallback
	}
	return v.val
}

func (v Value) String() string {
	if !v.defined {
		return "undefined"
	}
	return strconv.FormatFloat(v.val, 'f', 4, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.defined {
		return []byte("null"), nil
	}
	return json.Marshal(v.val)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var f *float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	if f == nil {
		*v = Undefined
		return nil
	}
	*v = Of(*f)
	return nil
}

func quotient(num, den Value) Value {
	if !num.defined || !den.defined || den.val <= 0 {
		return Undefined
	}
	return Of(num.val / den.val)
}

func sum(a, b Value) Value {
	if !a.defined || !b.defined {
		return Undefined
	}
	return Of(a.val + b.val)
}

func difference(a, b Value) Value {
	if !a.defined || !b.defined {
		return Undefined
	}
	return Of(a.val - b.val)
}

func (v Value) scale(k float64) Value {
	if !v.defined {
		return Undefined
	}
	return Of(v.val * k)
}
