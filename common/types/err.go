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
	"fmt"

	"github.com/google/cel-core/common/types/ref"
)

// Err type which extends the built-in go error and implements ref.Val.
type Err struct {
	error
}

var (
	// ErrIntOverflow is an error representing integer overflow.
	ErrIntOverflow = errors.New("integer overflow")

	// ErrUintOverflow is an error representing unsigned integer overflow.
	ErrUintOverflow = errors.New("unsigned integer overflow")

	// ErrRangeError is an error representing a out-of-range conversion.
	ErrRangeError = errors.New("range error")
)

// NewErr creates a new Err described by the format string and args.
func NewErr(format string, args ...interface{}) ref.Val {
	return &Err{fmt.Errorf(format, args...)}
}

// WrapErr wraps an existing Go error value into a CEL Err value.
func WrapErr(err error) ref.Val {
	return &Err{error: err}
}

// MaybeNoSuchOverloadErr returns the error or unknown overload error.
func MaybeNoSuchOverloadErr(val ref.Val) ref.Val {
	return ValOrErr(val, "no such overload")
}

// ValOrErr either returns the existing error or creates a new one.
func ValOrErr(val ref.Val, format string, args ...interface{}) ref.Val {
	if val == nil || !IsError(val) {
		return NewErr(format, args...)
	}
	return val
}

// ConvertToType implements ref.Val interface method.
func (e *Err) ConvertToType(typeVal ref.Type) ref.Val {
	// Errors are not convertible to other representations.
	return e
}

// Equal implements the ref.Val interface method.
func (e *Err) Equal(other ref.Val) ref.Val {
	// An error cannot be equal to any other value, so it returns itself.
	return e
}

// String implements fmt.Stringer.
func (e *Err) String() string {
	return e.error.Error()
}

// Type implements the ref.Val interface method.
func (e *Err) Type() ref.Type {
	return ErrType
}

// Value implements the ref.Val interface method.
func (e *Err) Value() interface{} {
	return e.error
}

// Is implements errors.Is.
func (e *Err) Is(target error) bool {
	return e.error.Error() == target.Error()
}

// Unwrap implements errors.Unwrap.
func (e *Err) Unwrap() error {
	return e.error
}

// IsError returns whether the input element ref.Val is an Err type.
func IsError(val ref.Val) bool {
	switch val.(type) {
	case *Err:
		return true
	default:
		return false
	}
}
