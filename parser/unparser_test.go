// Copyright 2019 Google LLC
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

package parser

import (
	"testing"

	"github.com/google/cel-core/common"
	"github.com/google/cel-core/common/ast"
	"github.com/google/cel-core/common/types"
	"github.com/google/cel-core/operators"
)

func emptyInfo() *ast.SourceInfo {
	return ast.NewSourceInfo(common.NewTextSource(""))
}

func TestUnparse(t *testing.T) {
	fac := ast.NewExprFactory()
	tests := []struct {
		name string
		expr ast.Expr
		out  string
	}{
		{
			name: "constant bool",
			expr: fac.NewLiteral(1, types.True),
			out:  "true",
		},
		{
			name: "constant string",
			expr: fac.NewLiteral(1, types.String("hello")),
			out:  `"hello"`,
		},
		{
			name: "constant bytes",
			expr: fac.NewLiteral(1, types.Bytes("hi")),
			out:  `b"\150\151"`,
		},
		{
			name: "constant double",
			expr: fac.NewLiteral(1, types.Double(4.5)),
			out:  "4.5",
		},
		{
			name: "constant whole double",
			expr: fac.NewLiteral(1, types.Double(4)),
			out:  "4.0",
		},
		{
			name: "constant uint",
			expr: fac.NewLiteral(1, types.Uint(42)),
			out:  "42u",
		},
		{
			name: "constant null",
			expr: fac.NewLiteral(1, types.NullValue),
			out:  "null",
		},
		{
			name: "binary operator",
			expr: fac.NewCall(3, operators.Add,
				fac.NewLiteral(1, types.Int(1)),
				fac.NewLiteral(2, types.Int(2))),
			out: "1 + 2",
		},
		{
			name: "binary operator precedence",
			expr: fac.NewCall(5, operators.Multiply,
				fac.NewLiteral(1, types.Int(2)),
				fac.NewCall(4, operators.Add,
					fac.NewLiteral(2, types.Int(3)),
					fac.NewLiteral(3, types.Int(4)))),
			out: "2 * (3 + 4)",
		},
		{
			name: "left recursive subtraction",
			expr: fac.NewCall(5, operators.Subtract,
				fac.NewLiteral(1, types.Int(1)),
				fac.NewCall(4, operators.Subtract,
					fac.NewLiteral(2, types.Int(2)),
					fac.NewLiteral(3, types.Int(3)))),
			out: "1 - (2 - 3)",
		},
		{
			name: "unary negation",
			expr: fac.NewCall(2, operators.Negate, fac.NewIdent(1, "x")),
			out:  "-x",
		},
		{
			name: "logical not",
			expr: fac.NewCall(2, operators.LogicalNot, fac.NewIdent(1, "x")),
			out:  "!x",
		},
		{
			name: "conditional",
			expr: fac.NewCall(4, operators.Conditional,
				fac.NewIdent(1, "cond"),
				fac.NewLiteral(2, types.Int(1)),
				fac.NewLiteral(3, types.Int(2))),
			out: "cond ? 1 : 2",
		},
		{
			name: "index",
			expr: fac.NewCall(3, operators.Index,
				fac.NewIdent(1, "m"),
				fac.NewLiteral(2, types.String("k"))),
			out: `m["k"]`,
		},
		{
			name: "member call",
			expr: fac.NewMemberCall(3, "size", fac.NewIdent(1, "x"), fac.NewLiteral(2, types.True)),
			out:  "x.size(true)",
		},
		{
			name: "global call",
			expr: fac.NewCall(2, "size", fac.NewIdent(1, "x")),
			out:  "size(x)",
		},
		{
			name: "select",
			expr: fac.NewSelect(2, fac.NewIdent(1, "msg"), "field"),
			out:  "msg.field",
		},
		{
			name: "presence test",
			expr: fac.NewPresenceTest(2, fac.NewIdent(1, "msg"), "field"),
			out:  "has(msg.field)",
		},
		{
			name: "list",
			expr: fac.NewList(3, []ast.Expr{
				fac.NewLiteral(1, types.Int(1)),
				fac.NewLiteral(2, types.Int(2)),
			}, []int32{1}),
			out: "[1, ?2]",
		},
		{
			name: "map",
			expr: fac.NewMap(4, []ast.EntryExpr{
				fac.NewMapEntry(3,
					fac.NewLiteral(1, types.String("k")),
					fac.NewLiteral(2, types.Int(1)), false),
			}),
			out: `{"k": 1}`,
		},
		{
			name: "struct",
			expr: fac.NewStruct(3, "google.type.Expr", []ast.EntryExpr{
				fac.NewStructField(2, "expression", fac.NewLiteral(1, types.String("x")), false),
			}),
			out: `google.type.Expr{expression: "x"}`,
		},
		{
			name: "in operator",
			expr: fac.NewCall(3, operators.In,
				fac.NewIdent(1, "x"),
				fac.NewList(2, []ast.Expr{}, []int32{})),
			out: "x in []",
		},
	}
	for _, tst := range tests {
		tc := tst
		t.Run(tc.name, func(t *testing.T) {
			got, err := Unparse(tc.expr, emptyInfo())
			if err != nil {
				t.Fatalf("Unparse() failed: %v", err)
			}
			if got != tc.out {
				t.Errorf("Unparse() got %q, wanted %q", got, tc.out)
			}
		})
	}
}

func TestUnparseComprehensionWithoutMacroFails(t *testing.T) {
	fac := ast.NewExprFactory()
	compre := fac.NewComprehension(7,
		fac.NewList(1, []ast.Expr{}, []int32{}),
		"i",
		"__result__",
		fac.NewLiteral(3, types.False),
		fac.NewLiteral(4, types.True),
		fac.NewLiteral(5, types.False),
		fac.NewLiteral(6, types.False))
	if out, err := Unparse(compre, emptyInfo()); err == nil {
		t.Errorf("Unparse() got %q, wanted error for comprehension without macro metadata", out)
	}
}

// existsAST builds the parsed representation of '[false].exists(i, i)'.
func existsAST(t *testing.T) *ast.AST {
	t.Helper()
	fac := ast.NewExprFactory()
	compre := fac.NewComprehension(13,
		fac.NewList(1, []ast.Expr{fac.NewLiteral(2, types.False)}, []int32{}),
		"i",
		"__result__",
		fac.NewLiteral(6, types.False),
		fac.NewCall(10, operators.NotStrictlyFalse,
			fac.NewCall(11, operators.LogicalNot, fac.NewAccuIdent(3))),
		fac.NewCall(9, operators.LogicalOr, fac.NewAccuIdent(7), fac.NewIdent(8, "i")),
		fac.NewAccuIdent(12))
	info := ast.NewSourceInfo(common.NewTextSource("[false].exists(i, i)"))
	info.SetMacroCall(13, fac.NewMemberCall(0, operators.Exists,
		fac.NewList(1, []ast.Expr{fac.NewLiteral(2, types.False)}, []int32{}),
		fac.NewIdent(4, "i"),
		fac.NewIdent(5, "i")))
	return ast.NewAST(compre, info)
}

func TestUnparseMacroCall(t *testing.T) {
	a := existsAST(t)
	got, err := Unparse(a.Expr(), a.SourceInfo())
	if err != nil {
		t.Fatalf("Unparse() failed: %v", err)
	}
	if got != "[false].exists(i, i)" {
		t.Errorf("Unparse() got %q, wanted %q", got, "[false].exists(i, i)")
	}
}

func TestUnparseMangledMacroCall(t *testing.T) {
	a := existsAST(t)
	m := ast.NewMutator()
	out, _, err := m.MangleComprehensionIdents(a, "@it", "@it2", "@ac")
	if err != nil {
		t.Fatalf("MangleComprehensionIdents() failed: %v", err)
	}
	got, err := Unparse(out.Expr(), out.SourceInfo())
	if err != nil {
		t.Fatalf("Unparse() failed: %v", err)
	}
	if got != "[false].exists(@it:0:0, @it:0:0)" {
		t.Errorf("Unparse() got %q, wanted %q", got, "[false].exists(@it:0:0, @it:0:0)")
	}
}

func TestUnparseBindMacro(t *testing.T) {
	fac := ast.NewExprFactory()
	add := fac.NewCall(3, operators.Add,
		fac.NewLiteral(1, types.Int(1)),
		fac.NewLiteral(2, types.Int(1)))
	a := ast.NewAST(add, ast.NewSourceInfo(common.NewTextSource("1 + 1")))
	m := ast.NewMutator()
	varInit := ast.NewAST(fac.NewLiteral(1, types.Int(3)), ast.NewSourceInfo(common.NewTextSource("3")))
	result := fac.NewCall(1, operators.Add,
		fac.NewIdent(2, "@r0"),
		fac.NewIdent(3, "@r0"))
	out, err := m.NewBindMacro(a, "@r0", varInit, result, 3)
	if err != nil {
		t.Fatalf("NewBindMacro() failed: %v", err)
	}
	got, err := Unparse(out.Expr(), out.SourceInfo())
	if err != nil {
		t.Fatalf("Unparse() failed: %v", err)
	}
	if got != "cel.bind(@r0, 3, @r0 + @r0)" {
		t.Errorf("Unparse() got %q, wanted %q", got, "cel.bind(@r0, 3, @r0 + @r0)")
	}
}

func TestUnparseWrapOnColumn(t *testing.T) {
	fac := ast.NewExprFactory()
	e := fac.NewCall(3, operators.LogicalAnd,
		fac.NewIdent(1, "request_claims_present"),
		fac.NewIdent(2, "request_principal_allowed"))
	got, err := Unparse(e, emptyInfo(), WrapOnColumn(10), WrapOnOperators(operators.LogicalAnd))
	if err != nil {
		t.Fatalf("Unparse() failed: %v", err)
	}
	want := "request_claims_present &&\nrequest_principal_allowed"
	if got != want {
		t.Errorf("Unparse() got %q, wanted %q", got, want)
	}
	got, err = Unparse(e, emptyInfo(), WrapOnColumn(10), WrapAfterColumnLimit(false))
	if err != nil {
		t.Fatalf("Unparse() failed: %v", err)
	}
	want = "request_claims_present\n&& request_principal_allowed"
	if got != want {
		t.Errorf("Unparse() got %q, wanted %q", got, want)
	}
}

func TestUnparseWrapOptionErrors(t *testing.T) {
	fac := ast.NewExprFactory()
	e := fac.NewLiteral(1, types.True)
	if _, err := Unparse(e, emptyInfo(), WrapOnColumn(0)); err == nil {
		t.Error("Unparse() with zero wrap column succeeded")
	}
	if _, err := Unparse(e, emptyInfo(), WrapOnOperators("not_an_operator")); err == nil {
		t.Error("Unparse() with unknown wrap operator succeeded")
	}
	if _, err := Unparse(e, emptyInfo(), WrapOnOperators(operators.LogicalNot)); err == nil {
		t.Error("Unparse() with unary wrap operator succeeded")
	}
}
