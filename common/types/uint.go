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

// Uint type implementation which supports comparison and math operators.
type Uint uint64

// Uint constants
const (
	uintZero = Uint(0)
)

// Compare implements the traits.Comparer interface method.
func (i Uint) Compare(other ref.Val) ref.Val {
	switch ov := other.(type) {
	case Double:
		if math.IsNaN(float64(ov)) {
			return NewErr("NaN values cannot be ordered")
		}
		return compareUintDouble(i, ov)
	case Int:
		return compareUintInt(i, ov)
	case Uint:
		return compareUint(i, ov)
	default:
		return MaybeNoSuchOverloadErr(other)
	}
}

// ConvertToType implements the ref.Val interface method.
func (i Uint) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case IntType:
		v, err := uint64ToInt64Checked(uint64(i))
		if err != nil {
			return WrapErr(err)
		}
		return Int(v)
	case UintType:
		return i
	case DoubleType:
		return Double(i)
	case StringType:
		return String(strconv.FormatUint(uint64(i), 10))
	case TypeType:
		return UintType
	}
	return NewErr("type conversion error from '%s' to '%s'", UintType, typeVal)
}

// Equal implements the ref.Val interface method.
func (i Uint) Equal(other ref.Val) ref.Val {
	switch ov := other.(type) {
	case Double:
		if math.IsNaN(float64(ov)) {
			return False
		}
		return Bool(compareUintDouble(i, ov) == 0)
	case Int:
		return Bool(compareUintInt(i, ov) == 0)
	case Uint:
		return Bool(i == ov)
	default:
		return False
	}
}

// Type implements the ref.Val interface method.
func (i Uint) Type() ref.Type {
	return UintType
}

// Value implements the ref.Val interface method.
func (i Uint) Value() interface{} {
	return uint64(i)
}
