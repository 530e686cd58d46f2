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
	"math"
	"strconv"

	"github.com/google/cel-core/common/types/ref"
)

// Int type that implements ref.Val as well as comparison and math operators.
type Int int64

// Int constants used for comparison results.
const (
	// IntZero is the zero-value for Int.
	IntZero   = Int(0)
	IntOne    = Int(1)
	IntNegOne = Int(-1)
)

// Compare implements the traits.Comparer interface method.
func (i Int) Compare(other ref.Val) ref.Val {
	switch ov := other.(type) {
	case Double:
		if math.IsNaN(float64(ov)) {
			return NewErr("NaN values cannot be ordered")
		}
		return compareIntDouble(i, ov)
	case Int:
		return compareInt(i, ov)
	case Uint:
		return compareIntUint(i, ov)
	default:
		return MaybeNoSuchOverloadErr(other)
	}
}

// ConvertToType implements the ref.Val interface method.
func (i Int) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case IntType:
		return i
	case UintType:
		u, err := int64ToUint64Checked(int64(i))
		if err != nil {
			return WrapErr(err)
		}
		return Uint(u)
	case DoubleType:
		return Double(i)
	case StringType:
		return String(strconv.FormatInt(int64(i), 10))
	case TypeType:
		return IntType
	}
	return NewErr("type conversion error from '%s' to '%s'", IntType, typeVal)
}

// Equal implements the ref.Val interface method.
func (i Int) Equal(other ref.Val) ref.Val {
	switch ov := other.(type) {
	case Double:
		if math.IsNaN(float64(ov)) {
			return False
		}
		return Bool(compareIntDouble(i, ov) == 0)
	case Int:
		return Bool(i == ov)
	case Uint:
		return Bool(compareIntUint(i, ov) == 0)
	default:
		return False
	}
}

// Negate implements the traits.Negater interface method.
func (i Int) Negate() ref.Val {
	val, err := negateInt64Checked(int64(i))
	if err != nil {
		return WrapErr(err)
	}
	return Int(val)
}

// Type implements the ref.Val interface method.
func (i Int) Type() ref.Type {
	return IntType
}

// Value implements the ref.Val interface method.
func (i Int) Value() interface{} {
	return int64(i)
}
