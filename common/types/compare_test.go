// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"math"
	"testing"

	"github.com/google/cel-core/common/types/ref"
)

type comparer interface {
	Compare(other ref.Val) ref.Val
}

func TestNumericCompare(t *testing.T) {
	tests := []struct {
		name string
		a    ref.Val
		b    ref.Val
		out  ref.Val
	}{
		{name: "int lt int", a: Int(-1), b: Int(2), out: IntNegOne},
		{name: "int eq int", a: Int(4), b: Int(4), out: IntZero},
		{name: "int gt int", a: Int(42), b: Int(-42), out: IntOne},
		{name: "uint lt uint", a: Uint(0), b: Uint(1), out: IntNegOne},
		{name: "uint eq uint", a: Uint(42), b: Uint(42), out: IntZero},
		{name: "uint gt uint", a: Uint(2), b: Uint(1), out: IntOne},
		{name: "double lt double", a: Double(-1.0), b: Double(-0.0), out: IntNegOne},
		{name: "double eq double", a: Double(1.5), b: Double(1.5), out: IntZero},
		{name: "negative zero eq positive zero", a: Double(math.Copysign(0, -1)), b: Double(0), out: IntZero},
		{name: "int lt uint", a: Int(-1), b: Uint(0), out: IntNegOne},
		{name: "int eq uint", a: Int(42), b: Uint(42), out: IntZero},
		{name: "int gt uint", a: Int(43), b: Uint(42), out: IntOne},
		{name: "max int lt max uint", a: Int(math.MaxInt64), b: Uint(math.MaxUint64), out: IntNegOne},
		{name: "max int eq max int as uint", a: Int(math.MaxInt64), b: Uint(math.MaxInt64), out: IntZero},
		{name: "int lt double", a: Int(3), b: Double(3.5), out: IntNegOne},
		{name: "int eq double", a: Int(3), b: Double(3.0), out: IntZero},
		{name: "int gt double", a: Int(3), b: Double(2.5), out: IntOne},
		{name: "int lt double inf", a: Int(math.MaxInt64), b: Double(math.Inf(1)), out: IntNegOne},
		{name: "int gt double neg inf", a: Int(math.MinInt64), b: Double(math.Inf(-1)), out: IntOne},
		{name: "uint lt double", a: Uint(3), b: Double(3.5), out: IntNegOne},
		{name: "uint eq double", a: Uint(3), b: Double(3.0), out: IntZero},
		{name: "uint gt negative double", a: Uint(0), b: Double(-1.0), out: IntOne},
		{name: "double saturates below int range", a: Double(-1e100), b: Int(math.MinInt64), out: IntNegOne},
		{name: "double saturates above int range", a: Double(1e100), b: Int(math.MaxInt64), out: IntOne},
		{name: "double saturates above uint range", a: Double(1e100), b: Uint(math.MaxUint64), out: IntOne},
		{name: "negative double lt uint", a: Double(-0.1), b: Uint(0), out: IntNegOne},
	}
	for _, tst := range tests {
		tc := tst
		t.Run(tc.name, func(t *testing.T) {
			cmp := tc.a.(comparer)
			got := cmp.Compare(tc.b)
			if got != tc.out {
				t.Errorf("%v.Compare(%v) got %v, wanted %v", tc.a, tc.b, got, tc.out)
			}
			// The reverse comparison must negate the result.
			rev := tc.b.(comparer).Compare(tc.a)
			if want := -tc.out.(Int); rev != want {
				t.Errorf("%v.Compare(%v) got %v, wanted %v", tc.b, tc.a, rev, want)
			}
		})
	}
}

func TestNumericCompareNaN(t *testing.T) {
	nan := Double(math.NaN())
	operands := []ref.Val{Int(1), Uint(1), Double(1.0), nan}
	for _, operand := range operands {
		if out := nan.Compare(operand); !IsError(out) {
			t.Errorf("NaN.Compare(%v) got %v, wanted error", operand, out)
		}
	}
	if out := Double(1.0).Compare(nan); !IsError(out) {
		t.Errorf("Compare(NaN) got %v, wanted error", out)
	}
}

func TestNumericEquals(t *testing.T) {
	tests := []struct {
		name string
		a    ref.Val
		b    ref.Val
		out  ref.Val
	}{
		{name: "int eq int", a: Int(42), b: Int(42), out: True},
		{name: "int eq uint", a: Int(42), b: Uint(42), out: True},
		{name: "int eq double", a: Int(42), b: Double(42.0), out: True},
		{name: "uint eq double", a: Uint(42), b: Double(42.0), out: True},
		{name: "negative int ne uint", a: Int(-1), b: Uint(math.MaxUint64), out: False},
		{name: "double ne int", a: Double(42.5), b: Int(42), out: False},
		{name: "nan ne nan", a: Double(math.NaN()), b: Double(math.NaN()), out: False},
		{name: "nan ne int", a: Double(math.NaN()), b: Int(1), out: False},
		{name: "int ne nan", a: Int(1), b: Double(math.NaN()), out: False},
		{name: "double inf eq double inf", a: Double(math.Inf(1)), b: Double(math.Inf(1)), out: True},
		{name: "bool types not equal", a: Int(1), b: True, out: False},
	}
	for _, tst := range tests {
		tc := tst
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.out {
				t.Errorf("%v.Equal(%v) got %v, wanted %v", tc.a, tc.b, got, tc.out)
			}
		})
	}
}

func TestCompareTransitivity(t *testing.T) {
	// Values chosen to exercise the saturation boundaries.
	vals := []ref.Val{
		Double(math.Inf(-1)),
		Int(math.MinInt64),
		Double(-1.5),
		Int(0),
		Uint(0),
		Double(0),
		Uint(42),
		Int(math.MaxInt64),
		Uint(math.MaxUint64),
		Double(math.Inf(1)),
	}
	for i := 0; i < len(vals); i++ {
		for j := i + 1; j < len(vals); j++ {
			a, b := vals[i].(comparer), vals[j]
			if out := a.Compare(b); out == IntOne {
				t.Errorf("%v.Compare(%v) got %v, wanted <= 0 for ordered values", vals[i], b, out)
			}
		}
	}
}
