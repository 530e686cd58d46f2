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
	"fmt"

	"github.com/google/cel-core/common/types"
)

// ErrIterationLimit indicates that a single mutation visited more nodes than
// the mutator permits.
var ErrIterationLimit = errors.New("max iteration count exceeded")

// defaultIterationLimit bounds the number of node visits within a single
// mutation call.
const defaultIterationLimit = 1000

// Mutator performs copy-on-write rewrites of AST values.
//
// The input AST values are never modified; the mutated output shares no
// mutable state with its inputs. Every mutation renumbers the output
// expression ids and maintains the source info invariants for positions,
// macro calls, and extensions.
type Mutator struct {
	fac            ExprFactory
	iterationLimit int
}

// NewMutator returns a Mutator with the default iteration limit.
func NewMutator() *Mutator {
	return NewMutatorWithIterationLimit(defaultIterationLimit)
}

// NewMutatorWithIterationLimit returns a Mutator which may visit at most the
// given number of nodes in a single mutation call.
func NewMutatorWithIterationLimit(limit int) *Mutator {
	if limit <= 0 {
		limit = defaultIterationLimit
	}
	return &Mutator{
		fac:            NewExprFactory(),
		iterationLimit: limit,
	}
}

// ReplaceSubtree replaces the node at targetID within ast with a copy of newExpr and
// returns the mutated result.
//
// The replacement expression is stamped with fresh ids, the output expression ids are
// normalized, and position and macro metadata are updated to reflect the change.
func (m *Mutator) ReplaceSubtree(a *AST, newExpr Expr, targetID int64) (*AST, error) {
	repl := NewAST(m.fac.CopyExpr(newExpr), newEmptySourceInfo())
	return m.ReplaceSubtreeWithNewAST(a, repl, targetID)
}

// ReplaceSubtreeWithNewAST replaces the node at targetID within ast with the root of the
// replacement AST, merging the replacement's macro metadata and extensions into the result.
func (m *Mutator) ReplaceSubtreeWithNewAST(a, repl *AST, targetID int64) (*AST, error) {
	visits := newVisitBudget(m.iterationLimit)
	out := Copy(a)
	info := out.SourceInfo()

	// Stamp the replacement with ids beyond those present in the output tree so that
	// the graft cannot introduce duplicates ahead of the normalization pass.
	replCopy := Copy(repl)
	replGen := newIDGenerator(MaxID(out))
	if err := normalizeIDs(replGen.renumberStable, replCopy.Expr(), replCopy.SourceInfo(), visits); err != nil {
		return nil, err
	}

	target, err := m.findExpr(out.Expr(), targetID, visits)
	if err != nil {
		return nil, err
	}

	// A macro keyed by the target only survives when the replacement is itself a
	// macro expansion, in which case the replacement's macro call is re-keyed to
	// the target id below. The position of the replaced subtree no longer
	// describes the content grafted in, so it is dropped as well.
	info.ClearMacroCall(targetID)
	info.ClearOffsetRange(targetID)
	replRootID := replCopy.Expr().ID()
	for id, call := range replCopy.SourceInfo().MacroCalls() {
		if id == replRootID {
			info.SetMacroCall(targetID, call)
			continue
		}
		info.SetMacroCall(id, call)
	}
	for id, offset := range replCopy.SourceInfo().OffsetRanges() {
		info.SetOffsetRange(id, offset)
	}
	for _, ext := range replCopy.SourceInfo().Extensions() {
		info.AddExtension(ext)
	}
	target.SetKindCase(replCopy.Expr())

	if err := m.normalize(out, visits); err != nil {
		return nil, err
	}
	return out, nil
}

// NewGlobalCall creates an AST whose root node is a global function call over the
// root expressions of the argument ASTs.
//
// Macro metadata and extensions from the arguments are merged into the result.
func (m *Mutator) NewGlobalCall(function string, args ...*AST) (*AST, error) {
	return m.newCallAST(function, nil, args...)
}

// NewMemberCall creates an AST whose root node is a member function call with the
// root of target as the receiver.
func (m *Mutator) NewMemberCall(function string, target *AST, args ...*AST) (*AST, error) {
	if target == nil {
		return nil, fmt.Errorf("member call %q: missing target", function)
	}
	return m.newCallAST(function, target, args...)
}

func (m *Mutator) newCallAST(function string, target *AST, args ...*AST) (*AST, error) {
	visits := newVisitBudget(m.iterationLimit)
	info := newEmptySourceInfo()
	gen := newIDGenerator(0)
	merge := func(arg *AST) (Expr, error) {
		argCopy := Copy(arg)
		if err := normalizeIDs(gen.renumberStable, argCopy.Expr(), argCopy.SourceInfo(), visits); err != nil {
			return nil, err
		}
		for id, call := range argCopy.SourceInfo().MacroCalls() {
			info.SetMacroCall(id, call)
		}
		for id, offset := range argCopy.SourceInfo().OffsetRanges() {
			info.SetOffsetRange(id, offset)
		}
		for _, ext := range argCopy.SourceInfo().Extensions() {
			info.AddExtension(ext)
		}
		// Prevent id reuse across sibling argument trees.
		gen.idMap = make(map[int64]int64)
		return argCopy.Expr(), nil
	}

	var targetExpr Expr
	var err error
	if target != nil {
		targetExpr, err = merge(target)
		if err != nil {
			return nil, err
		}
	}
	argExprs := make([]Expr, len(args))
	for i, arg := range args {
		argExprs[i], err = merge(arg)
		if err != nil {
			return nil, err
		}
	}
	var root Expr
	if target != nil {
		root = m.fac.NewMemberCall(gen.nextID(), function, targetExpr, argExprs...)
	} else {
		root = m.fac.NewCall(gen.nextID(), function, argExprs...)
	}
	out := NewAST(root, info)
	if err := m.normalize(out, visits); err != nil {
		return nil, err
	}
	return out, nil
}

// NewBindMacro replaces the node at targetID with a cel.bind() macro binding varName
// to the value expression with the result expression as the remaining computation.
//
// The unexpanded cel.bind() call is recorded in the macro call metadata so that the
// mutated expression can be unparsed in its surface form.
func (m *Mutator) NewBindMacro(a *AST, varName string, varInit *AST, result Expr, targetID int64) (*AST, error) {
	visits := newVisitBudget(m.iterationLimit)
	bindInfo := newEmptySourceInfo()
	gen := newIDGenerator(0)
	initCopy := Copy(varInit)
	if err := normalizeIDs(gen.renumberStable, initCopy.Expr(), initCopy.SourceInfo(), visits); err != nil {
		return nil, err
	}
	for id, call := range initCopy.SourceInfo().MacroCalls() {
		bindInfo.SetMacroCall(id, call)
	}
	for _, ext := range initCopy.SourceInfo().Extensions() {
		bindInfo.AddExtension(ext)
	}
	gen.idMap = make(map[int64]int64)
	resultCopy := m.fac.CopyExpr(result)
	if err := renumberChecked(resultCopy, gen.renumberStable, visits); err != nil {
		return nil, err
	}

	// The bind macro expands to a single-iteration comprehension which
	// evaluates the bound value once and yields the result expression.
	bindID := gen.nextID()
	bind := m.fac.NewComprehension(bindID,
		m.fac.NewList(gen.nextID(), []Expr{}, []int32{}),
		"#unused",
		varName,
		initCopy.Expr(),
		m.fac.NewLiteral(gen.nextID(), types.False),
		m.fac.NewIdent(gen.nextID(), varName),
		resultCopy)
	bindInfo.SetMacroCall(bindID,
		m.fac.NewMemberCall(0, "bind",
			m.fac.NewIdent(gen.nextID(), "cel"),
			m.fac.NewIdent(gen.nextID(), varName),
			m.fac.CopyExpr(initCopy.Expr()),
			m.fac.CopyExpr(resultCopy)))
	bindAST := NewAST(bind, bindInfo)
	return m.ReplaceSubtreeWithNewAST(a, bindAST, targetID)
}

// MangleComprehensionIdents assigns fresh names to every comprehension variable in the
// AST and rewrites the identifier references which resolve to those variables.
//
// The names take the form <prefix>:<depth>:<typeIndex> where the depth reflects the
// comprehension nesting level, and the type index is an ordinal over distinct iteration
// variable types observed at the same depth. Parsed-only ASTs use a type index of 0.
// The returned map records the mangled name to original name assignments.
//
// Mangling is used ahead of subtree rearrangement to guarantee that moved expressions
// cannot capture iteration variables declared by enclosing comprehensions.
func (m *Mutator) MangleComprehensionIdents(a *AST, iterPrefix, iter2Prefix, accuPrefix string) (*AST, map[string]string, error) {
	visits := newVisitBudget(m.iterationLimit)
	out := Copy(a)
	ctx := &mangleContext{
		ast:         out,
		fac:         m.fac,
		visits:      visits,
		iterPrefix:  iterPrefix,
		iter2Prefix: iter2Prefix,
		accuPrefix:  accuPrefix,
		typesAtDepth: map[int][]string{},
		macroEnvs:    map[int64]map[string]string{},
		mapping:      map[string]string{},
	}
	if err := ctx.mangleExpr(out.Expr(), map[string]string{}, 0); err != nil {
		return nil, nil, err
	}
	// Propagate the renames into the unexpanded macro calls so that the
	// surface form agrees with the rewritten expansion.
	for id, call := range out.SourceInfo().MacroCalls() {
		env, found := ctx.macroEnvs[id]
		if !found {
			continue
		}
		if err := ctx.renameIdents(call, env); err != nil {
			return nil, nil, err
		}
	}
	if err := m.normalize(out, visits); err != nil {
		return nil, nil, err
	}
	return out, ctx.mapping, nil
}

type mangleContext struct {
	ast          *AST
	fac          ExprFactory
	visits       *visitBudget
	iterPrefix   string
	iter2Prefix  string
	accuPrefix   string
	typesAtDepth map[int][]string
	macroEnvs    map[int64]map[string]string
	mapping      map[string]string
}

func (ctx *mangleContext) mangleExpr(e Expr, env map[string]string, depth int) error {
	if err := ctx.visits.spend(); err != nil {
		return err
	}
	switch e.Kind() {
	case IdentKind:
		if mangled, found := env[e.AsIdent()]; found {
			e.SetKindCase(ctx.fac.NewIdent(e.ID(), mangled))
		}
		return nil
	case ComprehensionKind:
		compre := e.AsComprehension()
		// The iteration range and accumulator init are evaluated in the
		// enclosing scope where the comprehension variables are not bound.
		if err := ctx.mangleExpr(compre.IterRange(), env, depth+1); err != nil {
			return err
		}
		if err := ctx.mangleExpr(compre.AccuInit(), env, depth+1); err != nil {
			return err
		}
		typeIndex := ctx.typeIndex(depth, ctx.iterVarType(e))
		iterVar := fmt.Sprintf("%s:%d:%d", ctx.iterPrefix, depth, typeIndex)
		accuVar := fmt.Sprintf("%s:%d:%d", ctx.accuPrefix, depth, typeIndex)
		ctx.mapping[iterVar] = compre.IterVar()
		ctx.mapping[accuVar] = compre.AccuVar()
		iterVar2 := ""
		if compre.HasIterVar2() {
			iterVar2 = fmt.Sprintf("%s:%d:%d", ctx.iter2Prefix, depth, typeIndex)
			ctx.mapping[iterVar2] = compre.IterVar2()
		}
		// An inner comprehension which rebinds an outer name shadows the outer
		// mangled assignment for the extent of its subtree.
		scoped := make(map[string]string, len(env)+3)
		for k, v := range env {
			scoped[k] = v
		}
		scoped[compre.IterVar()] = iterVar
		if compre.HasIterVar2() {
			scoped[compre.IterVar2()] = iterVar2
		}
		scoped[compre.AccuVar()] = accuVar
		if err := ctx.mangleExpr(compre.LoopCondition(), scoped, depth+1); err != nil {
			return err
		}
		if err := ctx.mangleExpr(compre.LoopStep(), scoped, depth+1); err != nil {
			return err
		}
		if err := ctx.mangleExpr(compre.Result(), scoped, depth+1); err != nil {
			return err
		}
		if _, isMacro := ctx.ast.SourceInfo().GetMacroCall(e.ID()); isMacro {
			ctx.macroEnvs[e.ID()] = scoped
		}
		e.SetKindCase(ctx.fac.NewComprehensionTwoVar(e.ID(),
			compre.IterRange(),
			iterVar,
			iterVar2,
			accuVar,
			compre.AccuInit(),
			compre.LoopCondition(),
			compre.LoopStep(),
			compre.Result()))
		return nil
	case CallKind:
		c := e.AsCall()
		if c.IsMemberFunction() {
			if err := ctx.mangleExpr(c.Target(), env, depth); err != nil {
				return err
			}
		}
		for _, arg := range c.Args() {
			if err := ctx.mangleExpr(arg, env, depth); err != nil {
				return err
			}
		}
		return nil
	case ListKind:
		for _, elem := range e.AsList().Elements() {
			if err := ctx.mangleExpr(elem, env, depth); err != nil {
				return err
			}
		}
		return nil
	case MapKind:
		for _, entry := range e.AsMap().Entries() {
			mapEntry := entry.AsMapEntry()
			if err := ctx.mangleExpr(mapEntry.Key(), env, depth); err != nil {
				return err
			}
			if err := ctx.mangleExpr(mapEntry.Value(), env, depth); err != nil {
				return err
			}
		}
		return nil
	case SelectKind:
		return ctx.mangleExpr(e.AsSelect().Operand(), env, depth)
	case StructKind:
		for _, field := range e.AsStruct().Fields() {
			if err := ctx.mangleExpr(field.AsStructField().Value(), env, depth); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// iterVarType reports the checked type name of the comprehension's iteration
// variable, or an empty name for parsed-only ASTs.
func (ctx *mangleContext) iterVarType(e Expr) string {
	if !ctx.ast.IsChecked() {
		return ""
	}
	compre := e.AsComprehension()
	typeName := ""
	visitor := NewExprVisitor(func(sub Expr) {
		if typeName != "" || sub.Kind() != IdentKind || sub.AsIdent() != compre.IterVar() {
			return
		}
		if t := ctx.ast.GetType(sub.ID()); t != nil {
			typeName = t.TypeName()
		}
	})
	PreOrderVisit(compre.LoopCondition(), visitor)
	PreOrderVisit(compre.LoopStep(), visitor)
	PreOrderVisit(compre.Result(), visitor)
	return typeName
}

func (ctx *mangleContext) typeIndex(depth int, typeName string) int {
	names := ctx.typesAtDepth[depth]
	for i, name := range names {
		if name == typeName {
			return i
		}
	}
	ctx.typesAtDepth[depth] = append(names, typeName)
	return len(names)
}

// renameIdents rewrites identifier occurrences within a macro call tree.
func (ctx *mangleContext) renameIdents(call Expr, env map[string]string) error {
	var err error
	PostOrderVisit(call, NewExprVisitor(func(e Expr) {
		if budgetErr := ctx.visits.spend(); budgetErr != nil && err == nil {
			err = budgetErr
		}
		if e.Kind() != IdentKind {
			return
		}
		if mangled, found := env[e.AsIdent()]; found {
			e.SetKindCase(ctx.fac.NewIdent(e.ID(), mangled))
		}
	}))
	return err
}

// normalize renumbers the expression ids into a stable, gap-free sequence and
// reconciles the source info metadata with the renumbered tree.
func (m *Mutator) normalize(out *AST, visits *visitBudget) error {
	gen := newIDGenerator(0)
	info := out.SourceInfo()
	expr := out.Expr()
	if err := renumberChecked(expr, gen.renumberStable, visits); err != nil {
		return err
	}

	// Re-key the position map, dropping entries for ids no longer present.
	ranges := make(map[int64]OffsetRange, len(info.OffsetRanges()))
	for oldID, offset := range info.OffsetRanges() {
		if newID, found := gen.idMap[oldID]; found {
			ranges[newID] = offset
		}
	}
	info.offsetRanges = ranges

	// Re-key the macro calls, dropping entries whose expansion node was removed.
	calls := make(map[int64]Expr, len(info.MacroCalls()))
	for oldID, call := range info.MacroCalls() {
		newID, found := gen.idMap[oldID]
		if !found {
			continue
		}
		if err := renumberChecked(call, gen.renumberStable, visits); err != nil {
			return err
		}
		calls[newID] = call
	}
	info.macroCalls = calls

	// Rebuild the macro call subtrees from the renumbered expression so that the
	// placeholder nodes reference the ids now present in the tree. Nested macro
	// expansions are reduced to id-only placeholder nodes.
	sanitized := m.fac.CopyExpr(expr)
	sanitizedExprMap := make(map[int64]Expr)
	PostOrderVisit(sanitized, NewExprVisitor(func(e Expr) {
		if _, found := info.GetMacroCall(e.ID()); found {
			e.SetKindCase(nil)
		}
		sanitizedExprMap[e.ID()] = m.fac.CopyExpr(e)
	}))
	for id, call := range info.MacroCalls() {
		PostOrderVisit(call, NewExprVisitor(func(e Expr) {
			if update, found := sanitizedExprMap[e.ID()]; found {
				e.SetKindCase(update)
			}
		}))
		info.SetMacroCall(id, call)
	}

	// Checked metadata is keyed by id as well.
	if out.IsChecked() {
		typeMap := make(map[int64]*types.Type, len(out.typeMap))
		for oldID, t := range out.typeMap {
			if newID, found := gen.idMap[oldID]; found {
				typeMap[newID] = t
			}
		}
		out.typeMap = typeMap
		refMap := make(map[int64]*ReferenceInfo, len(out.refMap))
		for oldID, r := range out.refMap {
			if newID, found := gen.idMap[oldID]; found {
				refMap[newID] = r
			}
		}
		out.refMap = refMap
	}
	return nil
}

// findExpr locates the expression node with the given id.
func (m *Mutator) findExpr(root Expr, id int64, visits *visitBudget) (Expr, error) {
	var target Expr
	var err error
	PostOrderVisit(root, NewExprVisitor(func(e Expr) {
		if budgetErr := visits.spend(); budgetErr != nil && err == nil {
			err = budgetErr
		}
		if e.ID() == id {
			target = e
		}
	}))
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("no expression with id %d found in ast", id)
	}
	return target, nil
}

// normalizeIDs renumbers the expression and reconciles its macro metadata using the
// supplied generator.
func normalizeIDs(idGen IDGenerator, expr Expr, info *SourceInfo, visits *visitBudget) error {
	if err := renumberChecked(expr, idGen, visits); err != nil {
		return err
	}
	// First, update the macro call ids themselves.
	calls := make(map[int64]Expr, len(info.MacroCalls()))
	for id, call := range info.MacroCalls() {
		calls[idGen(id)] = call
	}
	info.macroCalls = calls
	// Then update the macro call definitions which refer to these ids.
	for id, call := range info.MacroCalls() {
		if err := renumberChecked(call, idGen, visits); err != nil {
			return err
		}
		info.SetMacroCall(id, call)
	}
	ranges := make(map[int64]OffsetRange, len(info.OffsetRanges()))
	for id, offset := range info.OffsetRanges() {
		ranges[idGen(id)] = offset
	}
	info.offsetRanges = ranges
	return nil
}

// renumberChecked renumbers the expression ids while spending the visit budget.
func renumberChecked(expr Expr, idGen IDGenerator, visits *visitBudget) error {
	var err error
	countingGen := func(id int64) int64 {
		if budgetErr := visits.spend(); budgetErr != nil && err == nil {
			err = budgetErr
		}
		return idGen(id)
	}
	expr.RenumberIDs(countingGen)
	return err
}

// newIDGenerator ensures that new ids are only created the first time they are encountered.
func newIDGenerator(seed int64) *idGenerator {
	return &idGenerator{
		idMap: make(map[int64]int64),
		seed:  seed,
	}
}

type idGenerator struct {
	idMap map[int64]int64
	seed  int64
}

func (gen *idGenerator) nextID() int64 {
	gen.seed++
	return gen.seed
}

func (gen *idGenerator) renumberStable(id int64) int64 {
	if id == 0 {
		return 0
	}
	if newID, found := gen.idMap[id]; found {
		return newID
	}
	nextID := gen.nextID()
	gen.idMap[id] = nextID
	return nextID
}

// visitBudget bounds the total number of node visits within a single mutation.
type visitBudget struct {
	remaining int
}

func newVisitBudget(limit int) *visitBudget {
	return &visitBudget{remaining: limit}
}

func (b *visitBudget) spend() error {
	if b.remaining <= 0 {
		return ErrIterationLimit
	}
	b.remaining--
	return nil
}

func newEmptySourceInfo() *SourceInfo {
	return &SourceInfo{
		offsetRanges: make(map[int64]OffsetRange),
		macroCalls:   make(map[int64]Expr),
	}
}
