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
	"strconv"
	"strings"

	"github.com/google/cel-core/common/types/ref"
)

// String type implementation which supports addition, comparison, matching,
// and size functions.
type String string

// Compare implements the traits.Comparer interface method.
func (s String) Compare(other ref.Val) ref.Val {
	otherString, ok := other.(String)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	return Int(strings.Compare(string(s), string(otherString)))
}

// ConvertToType implements the ref.Val interface method.
func (s String) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case IntType:
		if n, err := strconv.ParseInt(string(s), 10, 64); err == nil {
			return Int(n)
		}
	case UintType:
		if n, err := strconv.ParseUint(string(s), 10, 64); err == nil {
			return Uint(n)
		}
	case DoubleType:
		if n, err := strconv.ParseFloat(string(s), 64); err == nil {
			return Double(n)
		}
	case BoolType:
		if b, err := strconv.ParseBool(string(s)); err == nil {
			return Bool(b)
		}
	case BytesType:
		return Bytes(s)
	case StringType:
		return s
	case TypeType:
		return StringType
	}
	return NewErr("type conversion error from '%s' to '%s'", StringType, typeVal)
}

// Equal implements the ref.Val interface method.
func (s String) Equal(other ref.Val) ref.Val {
	otherString, ok := other.(String)
	return Bool(ok && s == otherString)
}

// Size implements the traits.Sizer interface method.
func (s String) Size() ref.Val {
	return Int(len([]rune(string(s))))
}

// Type implements the ref.Val interface method.
func (s String) Type() ref.Type {
	return StringType
}

// Value implements the ref.Val interface method.
func (s String) Value() interface{} {
	return string(s)
}
