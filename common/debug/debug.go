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

// Package debug provides tools to print a parsed expression graph and
// adorn each expression element with additional metadata.
package debug

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/cel-core/common/ast"
	"github.com/google/cel-core/common/types"
	"github.com/google/cel-core/common/types/ref"
)

// Adorner returns debug metadata that will be tacked on to the string
// representation of an expression.
type Adorner interface {
	// GetMetadata for the input context.
	GetMetadata(ctx interface{}) string
}

// Writer manages writing expressions to an internal string.
type Writer interface {
	fmt.Stringer

	// Buffer pushes an expression into an internal queue of expressions to
	// write to a string.
	Buffer(e ast.Expr)
}

type emptyDebugAdorner struct {
}

var emptyAdorner Adorner = &emptyDebugAdorner{}

func (a *emptyDebugAdorner) GetMetadata(e interface{}) string {
	return ""
}

// ToDebugString gives the unadorned string representation of the Expr.
func ToDebugString(e ast.Expr) string {
	return ToAdornedDebugString(e, emptyAdorner)
}

// ToAdornedDebugString gives the adorned string representation of the Expr.
func ToAdornedDebugString(e ast.Expr, adorner Adorner) string {
	w := newDebugWriter(adorner)
	w.Buffer(e)
	return w.String()
}

// debugWriter is used to print out pretty-printed debug strings.
type debugWriter struct {
	adorner   Adorner
	buffer    bytes.Buffer
	indent    int
	lineStart bool
}

func newDebugWriter(a Adorner) *debugWriter {
	return &debugWriter{
		adorner:   a,
		indent:    0,
		lineStart: true,
	}
}

func (w *debugWriter) Buffer(e ast.Expr) {
	if e == nil {
		return
	}
	// Leaf nodes render on a single line the way they appear in the
	// expression literal form; composite nodes indent their fields.
	switch e.Kind() {
	case ast.LiteralKind:
		w.appendFormat("CONSTANT [%d] { value: ", e.ID())
		w.append(formatLiteral(e.AsLiteral()))
		w.append(" }")
		w.adorn(e)
		return
	case ast.IdentKind:
		w.appendFormat("IDENT [%d] { name: %s }", e.ID(), e.AsIdent())
		w.adorn(e)
		return
	}
	w.append(kindName(e.Kind()))
	w.appendFormat(" [%d] {", e.ID())
	switch e.Kind() {
	case ast.SelectKind:
		w.appendSelect(e.AsSelect())
	case ast.CallKind:
		w.appendCall(e.AsCall())
	case ast.ListKind:
		w.appendList(e.AsList())
	case ast.MapKind:
		w.appendMap(e.AsMap())
	case ast.StructKind:
		w.appendStruct(e.AsStruct())
	case ast.ComprehensionKind:
		w.appendComprehension(e.AsComprehension())
	}
	w.appendLine()
	w.append("}")
	w.adorn(e)
}

func (w *debugWriter) appendSelect(sel ast.SelectExpr) {
	w.appendLine()
	w.addIndent()
	w.append("operand: ")
	w.appendNested(sel.Operand())
	w.appendLine()
	w.append("field: ")
	w.append(sel.FieldName())
	if sel.IsTestOnly() {
		w.appendLine()
		w.append("test_only: true")
	}
	w.removeIndent()
}

func (w *debugWriter) appendCall(call ast.CallExpr) {
	w.appendLine()
	w.addIndent()
	w.append("function: ")
	w.append(call.FunctionName())
	if call.IsMemberFunction() {
		w.appendLine()
		w.append("target: ")
		w.appendNested(call.Target())
	}
	for _, arg := range call.Args() {
		w.appendLine()
		w.append("arg: ")
		w.appendNested(arg)
	}
	w.removeIndent()
}

func (w *debugWriter) appendList(list ast.ListExpr) {
	w.appendLine()
	w.addIndent()
	for _, elem := range list.Elements() {
		w.append("element: ")
		w.appendNested(elem)
		w.appendLine()
	}
	if len(list.OptionalIndices()) > 0 {
		w.appendFormat("optional_indices: %v", list.OptionalIndices())
		w.appendLine()
	}
	w.removeIndent()
}

func (w *debugWriter) appendMap(m ast.MapExpr) {
	w.appendLine()
	w.addIndent()
	for _, entry := range m.Entries() {
		mapEntry := entry.AsMapEntry()
		w.appendFormat("entry [%d] {", entry.ID())
		w.appendLine()
		w.addIndent()
		w.append("key: ")
		w.appendNested(mapEntry.Key())
		w.appendLine()
		w.append("value: ")
		w.appendNested(mapEntry.Value())
		if mapEntry.IsOptional() {
			w.appendLine()
			w.append("optional: true")
		}
		w.removeIndent()
		w.appendLine()
		w.append("}")
		w.adorn(entry)
		w.appendLine()
	}
	w.removeIndent()
}

func (w *debugWriter) appendStruct(obj ast.StructExpr) {
	w.appendLine()
	w.addIndent()
	w.append("name: ")
	w.append(obj.TypeName())
	w.appendLine()
	for _, entry := range obj.Fields() {
		field := entry.AsStructField()
		w.appendFormat("field [%d] {", entry.ID())
		w.appendLine()
		w.addIndent()
		w.append("name: ")
		w.append(field.Name())
		w.appendLine()
		w.append("value: ")
		w.appendNested(field.Value())
		if field.IsOptional() {
			w.appendLine()
			w.append("optional: true")
		}
		w.removeIndent()
		w.appendLine()
		w.append("}")
		w.adorn(entry)
		w.appendLine()
	}
	w.removeIndent()
}

func (w *debugWriter) appendComprehension(comprehension ast.ComprehensionExpr) {
	w.appendLine()
	w.addIndent()
	w.append("iter_var: ")
	w.append(comprehension.IterVar())
	w.appendLine()
	if comprehension.HasIterVar2() {
		w.append("iter_var2: ")
		w.append(comprehension.IterVar2())
		w.appendLine()
	}
	w.append("iter_range: ")
	w.appendNested(comprehension.IterRange())
	w.appendLine()
	w.append("accu_var: ")
	w.append(comprehension.AccuVar())
	w.appendLine()
	w.append("accu_init: ")
	w.appendNested(comprehension.AccuInit())
	w.appendLine()
	w.append("loop_condition: ")
	w.appendNested(comprehension.LoopCondition())
	w.appendLine()
	w.append("loop_step: ")
	w.appendNested(comprehension.LoopStep())
	w.appendLine()
	w.append("result: ")
	w.appendNested(comprehension.Result())
	w.removeIndent()
}

func (w *debugWriter) appendNested(e ast.Expr) {
	if e == nil || e.Kind() == ast.UnspecifiedExprKind {
		if e != nil && e.ID() != 0 {
			w.appendFormat("NOT_SET [%d] {}", e.ID())
		} else {
			w.append("NOT_SET {}")
		}
		return
	}
	w.append("{ ")
	w.addIndent()
	w.Buffer(e)
	w.removeIndent()
	w.append(" }")
}

func kindName(kind ast.ExprKind) string {
	switch kind {
	case ast.CallKind:
		return "CALL"
	case ast.ComprehensionKind:
		return "COMPREHENSION"
	case ast.IdentKind:
		return "IDENT"
	case ast.ListKind:
		return "LIST"
	case ast.LiteralKind:
		return "CONSTANT"
	case ast.MapKind:
		return "MAP"
	case ast.SelectKind:
		return "SELECT"
	case ast.StructKind:
		return "STRUCT"
	default:
		return "NOT_SET"
	}
}

func formatLiteral(c ref.Val) string {
	switch v := c.(type) {
	case types.Bool:
		return fmt.Sprintf("%t", v)
	case types.Bytes:
		return fmt.Sprintf("b\"%s\"", string(v))
	case types.Double:
		return fmt.Sprintf("%v", float64(v))
	case types.Int:
		return fmt.Sprintf("%d", int64(v))
	case types.String:
		return strconv.Quote(string(v))
	case types.Uint:
		return fmt.Sprintf("%du", uint64(v))
	case types.Null:
		return "null"
	default:
		panic("Unknown constant type")
	}
}

func (w *debugWriter) append(s string) {
	w.doIndent()
	w.buffer.WriteString(s)
}

func (w *debugWriter) appendFormat(f string, args ...interface{}) {
	w.append(fmt.Sprintf(f, args...))
}

func (w *debugWriter) doIndent() {
	if w.lineStart {
		w.lineStart = false
		w.buffer.WriteString(strings.Repeat("  ", w.indent))
	}
}

func (w *debugWriter) adorn(e interface{}) {
	w.append(w.adorner.GetMetadata(e))
}

func (w *debugWriter) appendLine() {
	w.buffer.WriteString("\n")
	w.lineStart = true
}

func (w *debugWriter) addIndent() {
	w.indent++
}

func (w *debugWriter) removeIndent() {
	w.indent--
	if w.indent < 0 {
		panic("negative indent")
	}
}

func (w *debugWriter) String() string {
	return w.buffer.String()
}
