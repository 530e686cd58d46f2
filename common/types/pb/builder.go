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

package pb

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	dynamicpb "google.golang.org/protobuf/types/dynamicpb"

	"github.com/google/cel-core/common/types"
)

// messageBuilder assembles a dynamic message field by field.
type messageBuilder struct {
	msg *dynamicpb.Message
}

// SetField implements the MessageBuilder interface method.
func (b *messageBuilder) SetField(name string, value interface{}) error {
	fd := b.msg.Descriptor().Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		return fmt.Errorf("no such field '%s' on type '%s'", name, b.msg.Descriptor().FullName())
	}
	v, err := fieldValue(fd, value)
	if err != nil {
		return err
	}
	b.msg.Set(fd, v)
	return nil
}

// Build implements the MessageBuilder interface method.
func (b *messageBuilder) Build() proto.Message {
	return b.msg
}

// fieldValue converts a Go-native value to the protoreflect value required by
// the field descriptor, narrowing 64-bit integers with overflow checks.
func fieldValue(fd protoreflect.FieldDescriptor, value interface{}) (protoreflect.Value, error) {
	if msg, ok := value.(proto.Message); ok {
		return protoreflect.ValueOfMessage(msg.ProtoReflect()), nil
	}
	switch fd.Kind() {
	case protoreflect.BoolKind:
		if v, ok := value.(bool); ok {
			return protoreflect.ValueOfBool(v), nil
		}
	case protoreflect.BytesKind:
		if v, ok := value.([]byte); ok {
			return protoreflect.ValueOfBytes(v), nil
		}
	case protoreflect.DoubleKind:
		if v, ok := value.(float64); ok {
			return protoreflect.ValueOfFloat64(v), nil
		}
	case protoreflect.FloatKind:
		if v, ok := value.(float64); ok {
			return protoreflect.ValueOfFloat32(float32(v)), nil
		}
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		if v, ok := value.(int64); ok {
			i, err := types.Int64ToInt32Checked(v)
			if err != nil {
				return protoreflect.Value{}, err
			}
			return protoreflect.ValueOfInt32(i), nil
		}
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		if v, ok := value.(int64); ok {
			return protoreflect.ValueOfInt64(v), nil
		}
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		if v, ok := value.(uint64); ok {
			u, err := types.Uint64ToUint32Checked(v)
			if err != nil {
				return protoreflect.Value{}, err
			}
			return protoreflect.ValueOfUint32(u), nil
		}
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		if v, ok := value.(uint64); ok {
			return protoreflect.ValueOfUint64(v), nil
		}
	case protoreflect.StringKind:
		if v, ok := value.(string); ok {
			return protoreflect.ValueOfString(v), nil
		}
	}
	return protoreflect.Value{}, fmt.Errorf(
		"unsupported field conversion from %T to %v", value, fd.Kind())
}
