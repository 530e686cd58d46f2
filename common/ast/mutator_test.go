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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/google/cel-core/common"
	"github.com/google/cel-core/common/types"
	"github.com/google/cel-core/operators"
)

// existsMacroAST builds the parsed form of '[false].exists(i, i)' including
// the macro call metadata for the exists() macro.
func existsMacroAST(t *testing.T) *AST {
	t.Helper()
	fac := NewExprFactory()
	iterRange := fac.NewList(1, []Expr{fac.NewLiteral(2, types.False)}, []int32{})
	compre := fac.NewComprehension(13,
		iterRange,
		"i",
		"__result__",
		fac.NewLiteral(6, types.False),
		fac.NewCall(10, operators.NotStrictlyFalse,
			fac.NewCall(11, operators.LogicalNot, fac.NewAccuIdent(3))),
		fac.NewCall(9, operators.LogicalOr, fac.NewAccuIdent(7), fac.NewIdent(8, "i")),
		fac.NewAccuIdent(12))
	info := NewSourceInfo(common.NewTextSource("[false].exists(i, i)"))
	info.SetOffsetRange(1, OffsetRange{Start: 0, Stop: 7})
	info.SetOffsetRange(13, OffsetRange{Start: 8, Stop: 14})
	info.SetMacroCall(13, fac.NewMemberCall(0, operators.Exists,
		fac.NewList(1, []Expr{fac.NewLiteral(2, types.False)}, []int32{}),
		fac.NewIdent(4, "i"),
		fac.NewIdent(5, "i")))
	return NewAST(compre, info)
}

func assertIDsUnique(t *testing.T, a *AST) {
	t.Helper()
	seen := map[int64]bool{}
	PostOrderVisit(a.Expr(), NewExprVisitor(func(e Expr) {
		if e.ID() <= 0 {
			t.Errorf("node id %d is not positive", e.ID())
		}
		if seen[e.ID()] {
			t.Errorf("node id %d is duplicated", e.ID())
		}
		seen[e.ID()] = true
	}))
}

func TestMutatorReplaceSubtree(t *testing.T) {
	fac := NewExprFactory()
	add := fac.NewCall(3, operators.Add,
		fac.NewLiteral(1, types.Int(1)),
		fac.NewLiteral(2, types.Int(2)))
	a := NewAST(add, NewSourceInfo(common.NewTextSource("1 + 2")))
	a.SourceInfo().SetOffsetRange(1, OffsetRange{Start: 0, Stop: 1})
	a.SourceInfo().SetOffsetRange(2, OffsetRange{Start: 4, Stop: 5})

	m := NewMutator()
	out, err := m.ReplaceSubtree(a, fac.NewLiteral(100, types.Int(42)), 2)
	if err != nil {
		t.Fatalf("ReplaceSubtree() failed: %v", err)
	}
	// input is unchanged
	if add.AsCall().Args()[1].AsLiteral() != types.Int(2) {
		t.Error("ReplaceSubtree() modified its input")
	}
	assertIDsUnique(t, out)
	outArgs := out.Expr().AsCall().Args()
	if outArgs[1].AsLiteral() != types.Int(42) {
		t.Errorf("replacement got %v, wanted 42", outArgs[1].AsLiteral())
	}
	// the retained node keeps its position, the replaced node's position is dropped
	if _, found := out.SourceInfo().GetOffsetRange(outArgs[0].ID()); !found {
		t.Error("position for the retained node was dropped")
	}
	if len(out.SourceInfo().OffsetRanges()) != 1 {
		t.Errorf("OffsetRanges() got %v, wanted the replaced entry dropped",
			out.SourceInfo().OffsetRanges())
	}
}

func TestMutatorReplaceSubtreeRoot(t *testing.T) {
	fac := NewExprFactory()
	add := fac.NewCall(3, operators.Add,
		fac.NewLiteral(1, types.Int(1)),
		fac.NewLiteral(2, types.Int(2)))
	a := NewAST(add, NewSourceInfo(common.NewTextSource("1 + 2")))
	m := NewMutator()
	out, err := m.ReplaceSubtree(a, fac.NewIdent(1, "replaced"), 3)
	if err != nil {
		t.Fatalf("ReplaceSubtree() failed: %v", err)
	}
	if out.Expr().Kind() != IdentKind || out.Expr().AsIdent() != "replaced" {
		t.Errorf("root replacement got %v", out.Expr())
	}
	assertIDsUnique(t, out)
}

func TestMutatorReplaceSubtreeUnknownID(t *testing.T) {
	fac := NewExprFactory()
	a := NewAST(fac.NewLiteral(1, types.Int(1)), NewSourceInfo(common.NewTextSource("1")))
	m := NewMutator()
	if _, err := m.ReplaceSubtree(a, fac.NewLiteral(1, types.Int(2)), 9); err == nil {
		t.Error("ReplaceSubtree() succeeded on an unknown target id")
	}
}

func TestMutatorReplaceMacroRoot(t *testing.T) {
	a := existsMacroAST(t)
	fac := NewExprFactory()
	m := NewMutator()
	out, err := m.ReplaceSubtree(a, fac.NewLiteral(1, types.True), 13)
	if err != nil {
		t.Fatalf("ReplaceSubtree() failed: %v", err)
	}
	if len(out.SourceInfo().MacroCalls()) != 0 {
		t.Errorf("MacroCalls() got %v, wanted the macro entry removed",
			out.SourceInfo().MacroCalls())
	}
	if out.Expr().AsLiteral() != types.True {
		t.Errorf("macro root replacement got %v", out.Expr())
	}
}

func TestMutatorReplaceWithinMacro(t *testing.T) {
	a := existsMacroAST(t)
	fac := NewExprFactory()
	m := NewMutator()
	// Replace the 'false' literal within the iteration range of the macro.
	out, err := m.ReplaceSubtree(a, fac.NewLiteral(1, types.True), 2)
	if err != nil {
		t.Fatalf("ReplaceSubtree() failed: %v", err)
	}
	assertIDsUnique(t, out)
	if len(out.SourceInfo().MacroCalls()) != 1 {
		t.Fatalf("MacroCalls() got %v, wanted one entry", out.SourceInfo().MacroCalls())
	}
	// The macro call must now reference the updated literal.
	var macroID int64
	var call Expr
	for id, c := range out.SourceInfo().MacroCalls() {
		macroID, call = id, c
	}
	if out.Expr().ID() != macroID {
		t.Errorf("macro call keyed at %d, wanted the comprehension id %d", macroID, out.Expr().ID())
	}
	target := call.AsCall().Target()
	if target.Kind() != ListKind {
		t.Fatalf("macro call target got %v, wanted list", target)
	}
	if target.AsList().Elements()[0].AsLiteral() != types.True {
		t.Errorf("macro call body was not updated with the replacement: %v",
			target.AsList().Elements()[0])
	}
}

func TestMutatorReplaceSubtreeWithNewAST(t *testing.T) {
	a := existsMacroAST(t)
	fac := NewExprFactory()
	m := NewMutator()

	// The replacement is a full AST carrying its own extension metadata.
	replInfo := NewSourceInfo(common.NewTextSource("x"))
	replInfo.AddExtension(Extension{Name: "cel.lib.optional", Version: Version{Major: 1}})
	repl := NewAST(fac.NewIdent(1, "x"), replInfo)

	a.SourceInfo().AddExtension(Extension{Name: "cel.lib.optional", Version: Version{Major: 1}})
	a.SourceInfo().AddExtension(Extension{Name: "cel.lib.bindings", Version: Version{Major: 1}})

	out, err := m.ReplaceSubtreeWithNewAST(a, repl, 2)
	if err != nil {
		t.Fatalf("ReplaceSubtreeWithNewAST() failed: %v", err)
	}
	exts := out.SourceInfo().Extensions()
	if len(exts) != 2 {
		t.Errorf("Extensions() got %v, wanted de-duplicated set of 2", exts)
	}
}

func TestMutatorNewGlobalCall(t *testing.T) {
	fac := NewExprFactory()
	m := NewMutator()
	arg1 := NewAST(fac.NewLiteral(1, types.Int(1)), NewSourceInfo(common.NewTextSource("1")))
	arg2 := NewAST(fac.NewLiteral(1, types.Int(2)), NewSourceInfo(common.NewTextSource("2")))
	out, err := m.NewGlobalCall("max", arg1, arg2)
	if err != nil {
		t.Fatalf("NewGlobalCall() failed: %v", err)
	}
	assertIDsUnique(t, out)
	c := out.Expr().AsCall()
	if c.FunctionName() != "max" || len(c.Args()) != 2 {
		t.Errorf("NewGlobalCall() got %v", out.Expr())
	}
	if c.Args()[0].AsLiteral() != types.Int(1) || c.Args()[1].AsLiteral() != types.Int(2) {
		t.Errorf("NewGlobalCall() args got %v", c.Args())
	}
}

func TestMutatorNewMemberCall(t *testing.T) {
	fac := NewExprFactory()
	m := NewMutator()
	target := NewAST(fac.NewIdent(1, "x"), NewSourceInfo(common.NewTextSource("x")))
	arg := NewAST(fac.NewLiteral(1, types.Int(1)), NewSourceInfo(common.NewTextSource("1")))
	out, err := m.NewMemberCall("contains", target, arg)
	if err != nil {
		t.Fatalf("NewMemberCall() failed: %v", err)
	}
	assertIDsUnique(t, out)
	c := out.Expr().AsCall()
	if !c.IsMemberFunction() || c.Target().AsIdent() != "x" {
		t.Errorf("NewMemberCall() got %v", out.Expr())
	}
	if _, err = m.NewMemberCall("contains", nil); err == nil {
		t.Error("NewMemberCall() without target succeeded")
	}
}

func TestMutatorNewBindMacro(t *testing.T) {
	fac := NewExprFactory()
	add := fac.NewCall(3, operators.Add,
		fac.NewLiteral(1, types.Int(1)),
		fac.NewLiteral(2, types.Int(1)))
	a := NewAST(add, NewSourceInfo(common.NewTextSource("1 + 1")))
	m := NewMutator()

	varInit := NewAST(fac.NewLiteral(1, types.Int(3)), NewSourceInfo(common.NewTextSource("3")))
	result := fac.NewCall(1, operators.Add,
		fac.NewIdent(2, "@r0"),
		fac.NewIdent(3, "@r0"))
	out, err := m.NewBindMacro(a, "@r0", varInit, result, 3)
	if err != nil {
		t.Fatalf("NewBindMacro() failed: %v", err)
	}
	assertIDsUnique(t, out)
	root := out.Expr()
	if root.Kind() != ComprehensionKind {
		t.Fatalf("NewBindMacro() root got %v, wanted comprehension", root)
	}
	compre := root.AsComprehension()
	if compre.AccuVar() != "@r0" {
		t.Errorf("AccuVar() got %s, wanted @r0", compre.AccuVar())
	}
	if compre.IterVar() != "#unused" {
		t.Errorf("IterVar() got %s, wanted #unused", compre.IterVar())
	}
	if compre.AccuInit().AsLiteral() != types.Int(3) {
		t.Errorf("AccuInit() got %v, wanted 3", compre.AccuInit())
	}
	if compre.IterRange().Kind() != ListKind || compre.IterRange().AsList().Size() != 0 {
		t.Errorf("IterRange() got %v, wanted empty list", compre.IterRange())
	}
	if compre.LoopCondition().AsLiteral() != types.False {
		t.Errorf("LoopCondition() got %v, wanted false", compre.LoopCondition())
	}
	call, found := out.SourceInfo().GetMacroCall(root.ID())
	if !found {
		t.Fatal("GetMacroCall() missing the bind macro entry")
	}
	if call.AsCall().FunctionName() != "bind" || call.AsCall().Target().AsIdent() != "cel" {
		t.Errorf("macro call got %v, wanted cel.bind(...)", call)
	}
}

func TestMutatorMangleComprehensionIdents(t *testing.T) {
	a := existsMacroAST(t)
	m := NewMutator()
	out, mapping, err := m.MangleComprehensionIdents(a, "@it", "@it2", "@ac")
	if err != nil {
		t.Fatalf("MangleComprehensionIdents() failed: %v", err)
	}
	assertIDsUnique(t, out)
	compre := out.Expr().AsComprehension()
	if compre.IterVar() != "@it:0:0" {
		t.Errorf("IterVar() got %s, wanted @it:0:0", compre.IterVar())
	}
	if compre.AccuVar() != "@ac:0:0" {
		t.Errorf("AccuVar() got %s, wanted @ac:0:0", compre.AccuVar())
	}
	wantMapping := map[string]string{
		"@it:0:0": "i",
		"@ac:0:0": "__result__",
	}
	if diff := cmp.Diff(wantMapping, mapping); diff != "" {
		t.Errorf("mangled name mapping mismatch (-want +got):\n%s", diff)
	}
	// References to the iteration variable within the loop step are rewritten.
	step := compre.LoopStep().AsCall()
	if step.Args()[1].AsIdent() != "@it:0:0" {
		t.Errorf("loop step ident got %s, wanted @it:0:0", step.Args()[1].AsIdent())
	}
	if step.Args()[0].AsIdent() != "@ac:0:0" {
		t.Errorf("loop step accu ident got %s, wanted @ac:0:0", step.Args()[0].AsIdent())
	}
	// The macro call arguments reflect the mangled names for unparsing.
	var call Expr
	for _, c := range out.SourceInfo().MacroCalls() {
		call = c
	}
	if call == nil {
		t.Fatal("macro call missing after mangling")
	}
	args := call.AsCall().Args()
	if args[0].AsIdent() != "@it:0:0" || args[1].AsIdent() != "@it:0:0" {
		t.Errorf("macro call args got %v, wanted mangled identifiers", args)
	}
	// Input AST is untouched.
	if a.Expr().AsComprehension().IterVar() != "i" {
		t.Error("MangleComprehensionIdents() modified its input")
	}
}

func TestMutatorMangleNestedShadowing(t *testing.T) {
	fac := NewExprFactory()
	// Nested comprehensions rebinding the same source-level variable name:
	// the inner reference must resolve to the inner mangled name.
	inner := fac.NewComprehension(10,
		fac.NewList(4, []Expr{fac.NewLiteral(5, types.Int(2))}, []int32{}),
		"i",
		"__result__",
		fac.NewLiteral(6, types.False),
		fac.NewLiteral(7, types.True),
		fac.NewCall(9, operators.LogicalOr, fac.NewAccuIdent(11), fac.NewIdent(8, "i")),
		fac.NewAccuIdent(12))
	outer := fac.NewComprehension(20,
		fac.NewList(1, []Expr{fac.NewLiteral(2, types.Int(1))}, []int32{}),
		"i",
		"__result__",
		fac.NewLiteral(13, types.False),
		fac.NewLiteral(14, types.True),
		inner,
		fac.NewAccuIdent(15))
	a := NewAST(outer, NewSourceInfo(common.NewTextSource("nested")))
	m := NewMutator()
	out, _, err := m.MangleComprehensionIdents(a, "@it", "@it2", "@ac")
	if err != nil {
		t.Fatalf("MangleComprehensionIdents() failed: %v", err)
	}
	outCompre := out.Expr().AsComprehension()
	if outCompre.IterVar() != "@it:0:0" {
		t.Errorf("outer IterVar() got %s, wanted @it:0:0", outCompre.IterVar())
	}
	innerCompre := outCompre.LoopStep().AsComprehension()
	if innerCompre.IterVar() != "@it:1:0" {
		t.Errorf("inner IterVar() got %s, wanted @it:1:0", innerCompre.IterVar())
	}
	innerRef := innerCompre.LoopStep().AsCall().Args()[1]
	if innerRef.AsIdent() != "@it:1:0" {
		t.Errorf("inner reference got %s, wanted the inner binding @it:1:0", innerRef.AsIdent())
	}
	// No identifier in the result may collide with an outer comprehension variable
	// while being bound by an inner one.
	PostOrderVisit(out.Expr(), NewExprVisitor(func(e Expr) {
		if e.Kind() == IdentKind && e.AsIdent() == "i" {
			t.Errorf("unmangled identifier 'i' remains in the tree")
		}
	}))
}

func TestMutatorIterationLimit(t *testing.T) {
	fac := NewExprFactory()
	elems := make([]Expr, 100)
	for i := 0; i < 100; i++ {
		elems[i] = fac.NewLiteral(int64(i+1), types.Int(int64(i)))
	}
	list := fac.NewList(101, elems, []int32{})
	a := NewAST(list, NewSourceInfo(common.NewTextSource("large list")))
	m := NewMutatorWithIterationLimit(10)
	if _, err := m.ReplaceSubtree(a, fac.NewLiteral(1, types.True), 1); !errors.Is(err, ErrIterationLimit) {
		t.Errorf("ReplaceSubtree() got %v, wanted iteration limit error", err)
	}
	if _, _, err := m.MangleComprehensionIdents(a, "@it", "@it2", "@ac"); !errors.Is(err, ErrIterationLimit) {
		t.Errorf("MangleComprehensionIdents() got %v, wanted iteration limit error", err)
	}
}
