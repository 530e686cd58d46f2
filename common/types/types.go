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

// Package types contains the types of values which may appear as constants
// within an expression, along with the cross-type numeric comparison and
// overflow rules shared with the runtime.
package types

import (
	"github.com/google/cel-core/common/types/ref"
)

// Type value which is referenced by all constant values to describe their
// runtime type name.
type Type struct {
	name string
}

var (
	// BoolType singleton.
	BoolType = newType("bool")
	// BytesType singleton.
	BytesType = newType("bytes")
	// DoubleType singleton.
	DoubleType = newType("double")
	// ErrType singleton.
	ErrType = newType("error")
	// IntType singleton.
	IntType = newType("int")
	// NullType singleton.
	NullType = newType("null_type")
	// StringType singleton.
	StringType = newType("string")
	// TypeType singleton.
	TypeType = newType("type")
	// UintType singleton.
	UintType = newType("uint")
)

func newType(name string) *Type {
	return &Type{name: name}
}

// TypeName gives the type's name as a string.
func (t *Type) TypeName() string {
	return t.name
}

// ConvertToType implements the ref.Val interface method.
func (t *Type) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case TypeType:
		return TypeType
	case StringType:
		return String(t.TypeName())
	}
	return NewErr("type conversion error from '%s' to '%s'", TypeType, typeVal)
}

// Equal implements the ref.Val interface method.
func (t *Type) Equal(other ref.Val) ref.Val {
	otherType, ok := other.(ref.Type)
	return Bool(ok && t.TypeName() == otherType.TypeName())
}

// Type implements the ref.Val interface method.
func (t *Type) Type() ref.Type {
	return TypeType
}

// Value implements the ref.Val interface method.
func (t *Type) Value() interface{} {
	return t.name
}

// String renders the type name.
func (t *Type) String() string {
	return t.name
}
