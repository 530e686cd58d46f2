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
	"fmt"
	"math"

	"github.com/google/cel-core/common/types/ref"
)

// Double type that implements ref.Val, comparison, and mathematical
// operations.
type Double float64

// Compare implements the traits.Comparer interface method.
func (d Double) Compare(other ref.Val) ref.Val {
	if math.IsNaN(float64(d)) {
		return NewErr("NaN values cannot be ordered")
	}
	switch ov := other.(type) {
	case Double:
		if math.IsNaN(float64(ov)) {
			return NewErr("NaN values cannot be ordered")
		}
		return compareDouble(d, ov)
	case Int:
		return compareDoubleInt(d, ov)
	case Uint:
		return compareDoubleUint(d, ov)
	default:
		return MaybeNoSuchOverloadErr(other)
	}
}

// ConvertToType implements the ref.Val interface method.
func (d Double) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case IntType:
		i, err := doubleToInt64Checked(float64(d))
		if err != nil {
			return WrapErr(err)
		}
		return Int(i)
	case UintType:
		u, err := doubleToUint64Checked(float64(d))
		if err != nil {
			return WrapErr(err)
		}
		return Uint(u)
	case DoubleType:
		return d
	case StringType:
		return String(fmt.Sprintf("%g", float64(d)))
	case TypeType:
		return DoubleType
	}
	return NewErr("type conversion error from '%s' to '%s'", DoubleType, typeVal)
}

// Equal implements the ref.Val interface method.
func (d Double) Equal(other ref.Val) ref.Val {
	if math.IsNaN(float64(d)) {
		return False
	}
	switch ov := other.(type) {
	case Double:
		if math.IsNaN(float64(ov)) {
			return False
		}
		return Bool(d == ov)
	case Int:
		return Bool(compareDoubleInt(d, ov) == 0)
	case Uint:
		return Bool(compareDoubleUint(d, ov) == 0)
	default:
		return False
	}
}

// Negate implements the traits.Negater interface method.
func (d Double) Negate() ref.Val {
	return -d
}

// Type implements the ref.Val interface method.
func (d Double) Type() ref.Type {
	return DoubleType
}

// Value implements the ref.Val interface method.
func (d Double) Value() interface{} {
	return float64(d)
}
