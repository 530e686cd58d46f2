// Copyright 2023 Google LLC
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

package ast

import (
	"testing"

	"google.golang.org/protobuf/proto"

	"github.com/google/cel-core/common"
	"github.com/google/cel-core/common/types"
	"github.com/google/cel-core/common/types/ref"
	"github.com/google/cel-core/operators"

	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

func TestConvertRoundTrip(t *testing.T) {
	fac := NewExprFactory()
	tests := []struct {
		name string
		expr Expr
	}{
		{
			name: "global call",
			expr: fac.NewCall(3, operators.Add,
				fac.NewLiteral(1, types.Int(1)),
				fac.NewLiteral(2, types.Int(2))),
		},
		{
			name: "member call",
			expr: fac.NewMemberCall(3, "size", fac.NewIdent(1, "x"), fac.NewLiteral(2, types.True)),
		},
		{
			name: "select",
			expr: fac.NewSelect(2, fac.NewIdent(1, "msg"), "field"),
		},
		{
			name: "presence test",
			expr: fac.NewPresenceTest(2, fac.NewIdent(1, "msg"), "field"),
		},
		{
			name: "list",
			expr: fac.NewList(3, []Expr{
				fac.NewLiteral(1, types.String("a")),
				fac.NewLiteral(2, types.Bytes("b")),
			}, []int32{1}),
		},
		{
			name: "map",
			expr: fac.NewMap(4, []EntryExpr{
				fac.NewMapEntry(3,
					fac.NewLiteral(1, types.String("k")),
					fac.NewLiteral(2, types.Double(1.5)), true),
			}),
		},
		{
			name: "struct",
			expr: fac.NewStruct(3, "google.type.Expr", []EntryExpr{
				fac.NewStructField(2, "expression", fac.NewLiteral(1, types.String("x")), false),
			}),
		},
		{
			name: "comprehension",
			expr: fac.NewComprehension(7,
				fac.NewList(1, []Expr{fac.NewLiteral(2, types.False)}, []int32{}),
				"i",
				"__result__",
				fac.NewLiteral(3, types.False),
				fac.NewLiteral(4, types.True),
				fac.NewLiteral(5, types.False),
				fac.NewLiteral(6, types.False)),
		},
		{
			name: "unspecified placeholder",
			expr: fac.NewUnspecifiedExpr(12),
		},
	}
	for _, tst := range tests {
		tc := tst
		t.Run(tc.name, func(t *testing.T) {
			pb, err := ExprToProto(tc.expr)
			if err != nil {
				t.Fatalf("ExprToProto() failed: %v", err)
			}
			back, err := ProtoToExpr(pb)
			if err != nil {
				t.Fatalf("ProtoToExpr() failed: %v", err)
			}
			pb2, err := ExprToProto(back)
			if err != nil {
				t.Fatalf("ExprToProto() round trip failed: %v", err)
			}
			if !proto.Equal(pb, pb2) {
				t.Errorf("round trip got %v, wanted %v", pb2, pb)
			}
		})
	}
}

func TestConvertSourceInfo(t *testing.T) {
	fac := NewExprFactory()
	src := common.NewStringSource("[false].exists(i, i)", "conversion-test")
	info := NewSourceInfo(src)
	info.SetOffsetRange(1, OffsetRange{Start: 0, Stop: 7})
	info.SetOffsetRange(13, OffsetRange{Start: 8, Stop: 14})
	info.SetMacroCall(13, fac.NewMemberCall(0, operators.Exists,
		fac.NewList(1, []Expr{fac.NewLiteral(2, types.False)}, []int32{}),
		fac.NewIdent(4, "i"),
		fac.NewIdent(5, "i")))

	pbInfo, err := SourceInfoToProto(info)
	if err != nil {
		t.Fatalf("SourceInfoToProto() failed: %v", err)
	}
	if pbInfo.GetLocation() != "conversion-test" {
		t.Errorf("proto location got %s", pbInfo.GetLocation())
	}
	if pbInfo.GetPositions()[13] != 8 {
		t.Errorf("proto positions got %v", pbInfo.GetPositions())
	}
	back, err := ProtoToSourceInfo(pbInfo)
	if err != nil {
		t.Fatalf("ProtoToSourceInfo() failed: %v", err)
	}
	if back.Description() != info.Description() {
		t.Errorf("Description() got %s, wanted %s", back.Description(), info.Description())
	}
	if r, found := back.GetOffsetRange(13); !found || r.Start != 8 {
		t.Errorf("GetOffsetRange(13) got %v, %t", r, found)
	}
	call, found := back.GetMacroCall(13)
	if !found || call.AsCall().FunctionName() != operators.Exists {
		t.Errorf("GetMacroCall(13) got %v, %t", call, found)
	}
}

func TestConvertParsedExpr(t *testing.T) {
	fac := NewExprFactory()
	e := fac.NewCall(3, operators.Equals,
		fac.NewIdent(1, "x"),
		fac.NewLiteral(2, types.String("hello")))
	a := NewAST(e, NewSourceInfo(common.NewTextSource(`x == "hello"`)))
	pb, err := ToParsedExpr(a)
	if err != nil {
		t.Fatalf("ToParsedExpr() failed: %v", err)
	}
	back, err := ToAST(pb)
	if err != nil {
		t.Fatalf("ToAST() failed: %v", err)
	}
	if back.Expr().AsCall().FunctionName() != operators.Equals {
		t.Errorf("ToAST() root got %v", back.Expr())
	}
	if MaxID(back) != MaxID(a) {
		t.Errorf("MaxID() got %d, wanted %d", MaxID(back), MaxID(a))
	}
}

func TestConvertVal(t *testing.T) {
	tests := []ref.Val{
		types.True,
		types.Bytes("bytes"),
		types.Double(3.2),
		types.Int(-1),
		types.NullValue,
		types.String("string"),
		types.Uint(27),
	}
	for _, tst := range tests {
		c, err := ValToConstant(tst)
		if err != nil {
			t.Errorf("ValToConstant(%v) failed: %v", tst, err)
		}
		v, err := ConstantToVal(c)
		if err != nil {
			t.Errorf("ConstantToVal(%v) failed: %v", c, err)
		}
		if tst.Equal(v) != types.True {
			t.Errorf("roundtrip from %v to %v and back did not produce equal results, got %v, wanted %v", tst, c, v, tst)
		}
	}
}

func TestConvertValErrors(t *testing.T) {
	if out, err := ValToConstant(types.BoolType); err == nil {
		t.Errorf("ValToConstant() got %v, wanted error", out)
	}
	if out, err := ConstantToVal(&exprpb.Constant{}); err == nil {
		t.Errorf("ConstantToVal() got %v, wanted error", out)
	}
}
