// Copyright 2018 Google LLC
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
	"errors"
	"math"
	"testing"

	"github.com/google/cel-core/common/types/ref"
)

func TestTypeConvertToType(t *testing.T) {
	tests := []struct {
		in  ref.Val
		typ ref.Type
		out ref.Val
	}{
		{in: Int(42), typ: DoubleType, out: Double(42.0)},
		{in: Int(-1), typ: StringType, out: String("-1")},
		{in: Int(42), typ: UintType, out: Uint(42)},
		{in: Uint(42), typ: IntType, out: Int(42)},
		{in: Uint(18446744073709551615), typ: StringType, out: String("18446744073709551615")},
		{in: Double(-4.5), typ: StringType, out: String("-4.5")},
		{in: Double(4.0), typ: IntType, out: Int(4)},
		{in: Double(4.0), typ: UintType, out: Uint(4)},
		{in: String("-1"), typ: IntType, out: Int(-1)},
		{in: String("3.14"), typ: DoubleType, out: Double(3.14)},
		{in: String("true"), typ: BoolType, out: True},
		{in: Bool(true), typ: StringType, out: String("true")},
		{in: Bytes("ÿ"), typ: StringType, out: String("ÿ")},
		{in: String("hello"), typ: BytesType, out: Bytes("hello")},
		{in: NullValue, typ: StringType, out: String("null")},
	}
	for _, tst := range tests {
		tc := tst
		got := tc.in.ConvertToType(tc.typ)
		if got.Equal(tc.out) != True {
			t.Errorf("%v.ConvertToType(%v) got %v, wanted %v", tc.in, tc.typ, got, tc.out)
		}
	}
}

func TestNumericOverflow(t *testing.T) {
	tests := []struct {
		in  ref.Val
		typ ref.Type
		err error
	}{
		{in: Int(-1), typ: UintType, err: ErrUintOverflow},
		{in: Uint(math.MaxUint64), typ: IntType, err: ErrIntOverflow},
		{in: Double(math.MaxFloat64), typ: IntType, err: ErrIntOverflow},
		{in: Double(math.NaN()), typ: IntType, err: ErrIntOverflow},
		{in: Double(math.Inf(1)), typ: UintType, err: ErrUintOverflow},
		{in: Double(-1.0), typ: UintType, err: ErrUintOverflow},
	}
	for _, tst := range tests {
		tc := tst
		got := tc.in.ConvertToType(tc.typ)
		errVal, ok := got.(*Err)
		if !ok {
			t.Fatalf("%v.ConvertToType(%v) got %v, wanted overflow error", tc.in, tc.typ, got)
		}
		if !errors.Is(errVal, tc.err) {
			t.Errorf("%v.ConvertToType(%v) got %v, wanted %v", tc.in, tc.typ, errVal, tc.err)
		}
	}
}

func TestInt32Narrowing(t *testing.T) {
	if _, err := Int64ToInt32Checked(math.MaxInt32 + 1); !errors.Is(err, ErrIntOverflow) {
		t.Errorf("Int64ToInt32Checked() got %v, wanted overflow", err)
	}
	if v, err := Int64ToInt32Checked(-42); err != nil || v != -42 {
		t.Errorf("Int64ToInt32Checked(-42) got %v, %v", v, err)
	}
	if _, err := Uint64ToUint32Checked(math.MaxUint32 + 1); !errors.Is(err, ErrUintOverflow) {
		t.Errorf("Uint64ToUint32Checked() got %v, wanted overflow", err)
	}
	if v, err := Uint64ToUint32Checked(42); err != nil || v != 42 {
		t.Errorf("Uint64ToUint32Checked(42) got %v, %v", v, err)
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		in   ref.Val
		name string
	}{
		{in: True, name: "bool"},
		{in: Bytes("b"), name: "bytes"},
		{in: Double(1.0), name: "double"},
		{in: Int(1), name: "int"},
		{in: NullValue, name: "null_type"},
		{in: String("s"), name: "string"},
		{in: Uint(1), name: "uint"},
	}
	for _, tst := range tests {
		tc := tst
		if tc.in.Type().TypeName() != tc.name {
			t.Errorf("%v.Type().TypeName() got %s, wanted %s", tc.in, tc.in.Type().TypeName(), tc.name)
		}
	}
}
