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

// Visitor defines an object for visiting Expr and EntryExpr nodes within an expression graph.
type Visitor interface {
	// VisitExpr visits the input expression.
	VisitExpr(Expr)

	// VisitEntryExpr visits the input entry expression, i.e. a struct field or map entry.
	VisitEntryExpr(EntryExpr)
}

type baseVisitor struct {
	visitExpr      func(Expr)
	visitEntryExpr func(EntryExpr)
}

// VisitExpr visits the Expr if the internal expr visitor has been configured.
func (v *baseVisitor) VisitExpr(e Expr) {
	if v.visitExpr != nil {
		v.visitExpr(e)
	}
}

// VisitEntryExpr visits the entry if the internal expr entry visitor has been configured.
func (v *baseVisitor) VisitEntryExpr(e EntryExpr) {
	if v.visitEntryExpr != nil {
		v.visitEntryExpr(e)
	}
}

// NewExprVisitor creates a visitor which only visits expression nodes.
func NewExprVisitor(v func(Expr)) Visitor {
	return &baseVisitor{
		visitExpr:      v,
		visitEntryExpr: nil,
	}
}

// PostOrderVisit walks the expression graph and calls the visitor in post-order (bottom-up).
func PostOrderVisit(expr Expr, visitor Visitor) {
	visit(expr, visitor, postOrder, 0, 0)
}

// PreOrderVisit walks the expression graph and calls the visitor in pre-order (top-down).
func PreOrderVisit(expr Expr, visitor Visitor) {
	visit(expr, visitor, preOrder, 0, 0)
}

type visitOrder int

const (
	preOrder = iota + 1
	postOrder
)

// visit walks the expression graph and calls the visitor in either pre-order or post-order,
// optionally limiting the maximum number of nodes visited or the maximum depth traversed.
//
// A maxDepth of 0 means unlimited depth.
func visit(expr Expr, visitor Visitor, order visitOrder, depth, maxDepth int) {
	if maxDepth > 0 && depth == maxDepth {
		return
	}
	if order == preOrder {
		visitor.VisitExpr(expr)
	}
	switch expr.Kind() {
	case CallKind:
		c := expr.AsCall()
		if c.IsMemberFunction() {
			visit(c.Target(), visitor, order, depth+1, maxDepth)
		}
		for _, arg := range c.Args() {
			visit(arg, visitor, order, depth+1, maxDepth)
		}
	case ComprehensionKind:
		comp := expr.AsComprehension()
		visit(comp.IterRange(), visitor, order, depth+1, maxDepth)
		visit(comp.AccuInit(), visitor, order, depth+1, maxDepth)
		visit(comp.LoopCondition(), visitor, order, depth+1, maxDepth)
		visit(comp.LoopStep(), visitor, order, depth+1, maxDepth)
		visit(comp.Result(), visitor, order, depth+1, maxDepth)
	case ListKind:
		l := expr.AsList()
		for _, elem := range l.Elements() {
			visit(elem, visitor, order, depth+1, maxDepth)
		}
	case MapKind:
		m := expr.AsMap()
		for _, e := range m.Entries() {
			if order == preOrder {
				visitor.VisitEntryExpr(e)
			}
			entry := e.AsMapEntry()
			visit(entry.Key(), visitor, order, depth+1, maxDepth)
			visit(entry.Value(), visitor, order, depth+1, maxDepth)
			if order == postOrder {
				visitor.VisitEntryExpr(e)
			}
		}
	case SelectKind:
		visit(expr.AsSelect().Operand(), visitor, order, depth+1, maxDepth)
	case StructKind:
		s := expr.AsStruct()
		for _, f := range s.Fields() {
			if order == preOrder {
				visitor.VisitEntryExpr(f)
			}
			visit(f.AsStructField().Value(), visitor, order, depth+1, maxDepth)
			if order == postOrder {
				visitor.VisitEntryExpr(f)
			}
		}
	}
	if order == postOrder {
		visitor.VisitExpr(expr)
	}
}
