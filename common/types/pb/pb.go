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

// Package pb reflects over protocol buffer descriptors to generate message
// builders without binding the caller to a concrete message runtime.
package pb

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	dynamicpb "google.golang.org/protobuf/types/dynamicpb"

	// Well-known types must be linked into the binary so that the default
	// pool can resolve them by name.
	_ "google.golang.org/protobuf/types/known/anypb"
	_ "google.golang.org/protobuf/types/known/durationpb"
	_ "google.golang.org/protobuf/types/known/emptypb"
	_ "google.golang.org/protobuf/types/known/structpb"
	_ "google.golang.org/protobuf/types/known/timestamppb"
	_ "google.golang.org/protobuf/types/known/wrapperspb"
)

// Pool resolves message descriptors and produces builders for typed messages.
//
// Pools compose: see NewCompositePool for ordered scanning across several
// backing pools.
type Pool interface {
	// FindDescriptor returns the message descriptor for a qualified type name.
	FindDescriptor(typeName string) (protoreflect.MessageDescriptor, bool)

	// FindExtensionDescriptor returns the extension field descriptor for an
	// extension of the containing message by field name.
	FindExtensionDescriptor(containing protoreflect.MessageDescriptor, fieldName string) (protoreflect.ExtensionDescriptor, bool)

	// NewBuilder returns a builder for the qualified type name.
	NewBuilder(typeName string) (MessageBuilder, bool)
}

// MessageBuilder accumulates field values and produces a typed message.
type MessageBuilder interface {
	// SetField assigns a field by name.
	SetField(name string, value interface{}) error

	// Build returns the assembled message.
	Build() proto.Message
}

// Db maps from type name to descriptor information backed by a files and
// types registry pair.
type Db struct {
	files *protoregistry.Files
	types *protoregistry.Types
}

var (
	// DefaultDb used at evaluation time or unless overridden at check time.
	//
	// The default db resolves against the process-wide registries which
	// always include the protobuf well-known types.
	DefaultDb = &Db{
		files: protoregistry.GlobalFiles,
		types: protoregistry.GlobalTypes,
	}
)

// NewDb creates a Db backed by the given files and types registries.
func NewDb(files *protoregistry.Files, types *protoregistry.Types) *Db {
	return &Db{files: files, types: types}
}

// RegisterMessage indexes the file descriptor associated with the input
// message so that its types resolve by name.
func (pbdb *Db) RegisterMessage(message proto.Message) error {
	fd := message.ProtoReflect().Descriptor().ParentFile()
	if _, err := pbdb.files.FindFileByPath(fd.Path()); err == nil {
		return nil
	}
	return pbdb.files.RegisterFile(fd)
}

// FindDescriptor implements the Pool interface method.
func (pbdb *Db) FindDescriptor(typeName string) (protoreflect.MessageDescriptor, bool) {
	typeName = sanitizeProtoName(typeName)
	desc, err := pbdb.files.FindDescriptorByName(protoreflect.FullName(typeName))
	if err != nil {
		return nil, false
	}
	md, ok := desc.(protoreflect.MessageDescriptor)
	return md, ok
}

// FindExtensionDescriptor implements the Pool interface method.
func (pbdb *Db) FindExtensionDescriptor(containing protoreflect.MessageDescriptor, fieldName string) (protoreflect.ExtensionDescriptor, bool) {
	fieldName = sanitizeProtoName(fieldName)
	xt, err := pbdb.types.FindExtensionByName(protoreflect.FullName(fieldName))
	if err != nil {
		return nil, false
	}
	xd := xt.TypeDescriptor()
	if xd.ContainingMessage().FullName() != containing.FullName() {
		return nil, false
	}
	return xd, true
}

// NewBuilder implements the Pool interface method.
func (pbdb *Db) NewBuilder(typeName string) (MessageBuilder, bool) {
	md, found := pbdb.FindDescriptor(typeName)
	if !found {
		return nil, false
	}
	return &messageBuilder{msg: dynamicpb.NewMessage(md)}, true
}

// DescribeType returns the message descriptor for the type name or an error
// when the type is unresolvable.
func (pbdb *Db) DescribeType(typeName string) (protoreflect.MessageDescriptor, error) {
	md, found := pbdb.FindDescriptor(typeName)
	if !found {
		return nil, fmt.Errorf("unrecognized type '%s'", typeName)
	}
	return md, nil
}

// NewCompositePool composes pools into a single Pool whose lookups scan the
// backing pools in declared order and return the first match.
func NewCompositePool(pools ...Pool) Pool {
	return compositePool(pools)
}

type compositePool []Pool

// FindDescriptor implements the Pool interface method.
func (pools compositePool) FindDescriptor(typeName string) (protoreflect.MessageDescriptor, bool) {
	for _, pool := range pools {
		if md, found := pool.FindDescriptor(typeName); found {
			return md, true
		}
	}
	return nil, false
}

// FindExtensionDescriptor implements the Pool interface method.
func (pools compositePool) FindExtensionDescriptor(containing protoreflect.MessageDescriptor, fieldName string) (protoreflect.ExtensionDescriptor, bool) {
	for _, pool := range pools {
		if xd, found := pool.FindExtensionDescriptor(containing, fieldName); found {
			return xd, true
		}
	}
	return nil, false
}

// NewBuilder implements the Pool interface method.
func (pools compositePool) NewBuilder(typeName string) (MessageBuilder, bool) {
	for _, pool := range pools {
		if b, found := pool.NewBuilder(typeName); found {
			return b, true
		}
	}
	return nil, false
}

func sanitizeProtoName(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), ".")
}
