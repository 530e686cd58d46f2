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
	structpb "google.golang.org/protobuf/types/known/structpb"

	"github.com/google/cel-core/common/types/ref"
)

// Null type implementation.
type Null structpb.NullValue

var (
	// NullValue singleton.
	NullValue = Null(structpb.NullValue_NULL_VALUE)
)

// ConvertToType implements ref.Val interface method.
func (n Null) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case StringType:
		return String("null")
	case NullType:
		return n
	case TypeType:
		return NullType
	}
	return NewErr("type conversion error from '%s' to '%s'", NullType, typeVal)
}

// Equal implements the ref.Val interface method.
func (n Null) Equal(other ref.Val) ref.Val {
	_, ok := other.(Null)
	return Bool(ok)
}

// Type implements the ref.Val interface method.
func (n Null) Type() ref.Type {
	return NullType
}

// Value implements the ref.Val interface method.
func (n Null) Value() interface{} {
	return structpb.NullValue_NULL_VALUE
}
