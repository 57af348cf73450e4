// Package structure implements the structuring pass: turning a flat,
// line-numbered, GOTO-driven ast.Program into a goto-free
// structured.Program built only from sequencing, If, Loop, Break,
// BreakIf, Call and Return.
//
// The pass treats every jump — GOTO, GOSUB's implicit return, and END —
// uniformly as a "transfer to index T". A transfer whose target lies at
// or before the current position closes a loop (backward edge); one
// whose target lies strictly beyond the block currently being built is
// an escape, realized with a synthetic boolean flag keyed by its target
// so the block's caller can route control there once the block returns
// control to it. A transfer landing exactly on the block's own boundary
// needs no flag at all — it degenerates to a plain Break (or, outside
// any loop, falling off the end).
package structure

import (
	"fmt"
	"sort"

	"github.com/akashmaji946/basicstruct/ast"
	"github.com/akashmaji946/basicstruct/cflow"
	"github.com/akashmaji946/basicstruct/structured"
)

// Error reports a structuring failure: a GOTO whose target is not part
// of the unit currently being structured (it was extracted into a
// different procedure, or never existed), or a GOTO that jumps backward
// past the loop structure already built around it.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

type leafKind int

const (
	kindNone leafKind = iota
	kindGoto
	kindReturn
	kindEnd
)

// flatItem is one LabelledGroup reduced to its structuring-relevant
// shape: an optional guarding Condition (from unwrapping chained IFs)
// plus either a plain converted statement or a transfer.
type flatItem struct {
	line       int
	cond       *structured.Condition
	kind       leafKind
	targetLine int
	plain      structured.Stmt
}

// flattenLeaf walks a chain of nested IfStmt ("IF a THEN IF b THEN ...")
// down to its first non-If leaf, conjoining every condition along the
// way. A plain (unguarded) statement returns a nil Condition.
func flattenLeaf(stmt ast.Statement) (*structured.Condition, ast.Statement) {
	var cond *structured.Condition
	cur := stmt
	for {
		ifs, ok := cur.(*ast.IfStmt)
		if !ok {
			return cond, cur
		}
		term := structured.ComparisonCond(ifs.Cond)
		if cond == nil {
			c := term
			cond = &c
		} else {
			merged := cond.And(term)
			cond = &merged
		}
		cur = ifs.Then
	}
}

func classify(leaf ast.Statement) (leafKind, int) {
	switch s := leaf.(type) {
	case *ast.GotoStmt:
		return kindGoto, s.Target
	case *ast.ReturnStmt:
		return kindReturn, 0
	case *ast.EndStmt:
		return kindEnd, 0
	default:
		return kindNone, 0
	}
}

// convertLeaf converts a non-transfer leaf statement. REM carries no
// runtime behavior and is dropped; every other statement maps onto a
// structured counterpart one-for-one.
func convertLeaf(leaf ast.Statement) structured.Stmt {
	switch s := leaf.(type) {
	case *ast.PrintStmt:
		return &structured.Print{Items: s.Items, Newline: true}
	case *ast.LetStmt:
		return &structured.Let{Var: s.Var, Expr: s.Expr}
	case *ast.InputStmt:
		return &structured.Input{Vars: s.Vars}
	case *ast.GosubStmt:
		return &structured.Call{Proc: cflow.ProcName(s.Target)}
	case *ast.RemStmt:
		return nil
	default:
		return nil
	}
}

func buildItems(groups []*ast.LabelledGroup) []flatItem {
	items := make([]flatItem, 0, len(groups))
	for _, g := range groups {
		stmt := g.Statements[0]
		cond, leaf := flattenLeaf(stmt)
		kind, target := classify(leaf)
		it := flatItem{line: g.Line, cond: cond, kind: kind, targetLine: target}
		if kind == kindNone {
			it.plain = convertLeaf(leaf)
		}
		items = append(items, it)
	}
	return items
}

func lineIndexOf(groups []*ast.LabelledGroup) map[int]int {
	m := make(map[int]int, len(groups))
	for i, g := range groups {
		m[g.Line] = i
	}
	return m
}

// flagKey identifies a synthetic boolean: one per distinct (target,
// kind) pair, so every GOTO sharing a target reuses the same flag and
// assigns it only if it is not already true, while a RETURN/END sharing
// the same sentinel index as some GOTO still gets its own.
type flagKey struct {
	target int
	kind   leafKind
}

// pendingEscape is an escape this call could not land itself because its
// target lies beyond the range it was asked to build; the caller that
// owns a range containing target is responsible for routing to it.
type pendingEscape struct {
	flag   structured.BoolVar
	target int
	kind   leafKind
}

type builder struct {
	items     []flatItem
	lineIndex map[int]int
	flags     map[flagKey]structured.BoolVar
	seq       int
}

func newBuilder(groups []*ast.LabelledGroup) *builder {
	return &builder{
		items:     buildItems(groups),
		lineIndex: lineIndexOf(groups),
		flags:     make(map[flagKey]structured.BoolVar),
	}
}

func (b *builder) sentinel() int { return len(b.items) }

func (b *builder) allocFlag(target int, kind leafKind) structured.BoolVar {
	key := flagKey{target: target, kind: kind}
	if f, ok := b.flags[key]; ok {
		return f
	}
	b.seq++
	f := structured.BoolVar(fmt.Sprintf("t%d", b.seq))
	b.flags[key] = f
	return f
}

func (b *builder) resolveTarget(it flatItem) (int, error) {
	switch it.kind {
	case kindGoto:
		idx, ok := b.lineIndex[it.targetLine]
		if !ok {
			return 0, &Error{Line: it.line, Message: fmt.Sprintf("GOTO %d does not resolve inside this unit", it.targetLine)}
		}
		return idx, nil
	case kindReturn, kindEnd:
		return b.sentinel(), nil
	default:
		return 0, fmt.Errorf("resolveTarget called on a non-transfer item")
	}
}

// build structures items[lo:hi). inLoop reports whether this range is
// the body of a loop being assembled by an enclosing call, which governs
// whether an escape degenerates to a bare Break.
//
// When more than one backward edge lands inside [lo:hi), the one with
// the smallest target is the outermost loop: it must be structured
// first, wrapping every other backward edge (which necessarily targets
// somewhere inside it) into its body, where a recursive build call finds
// and structures them in turn. Picking any other backward edge first
// would strand an outer back edge's target below the body build() goes
// on to construct, which buildStraight cannot make sense of.
func (b *builder) build(lo, hi int, inLoop bool) ([]structured.Stmt, []pendingEscape, error) {
	bestI, bestTarget := -1, 0
	for i := lo; i < hi; i++ {
		it := b.items[i]
		if it.kind == kindNone {
			continue
		}
		target, err := b.resolveTarget(it)
		if err != nil {
			return nil, nil, err
		}
		if target >= lo && target <= i && (bestI == -1 || target < bestTarget) {
			bestI, bestTarget = i, target
		}
	}
	if bestI != -1 {
		return b.buildLoop(lo, hi, bestI, bestTarget, inLoop)
	}
	return b.buildStraight(lo, hi, inLoop)
}

// buildLoop wraps items[target:i] as a Loop whose back edge is item i,
// then continues with whatever follows at i+1. Escapes bubbling out of
// the loop body are routed into the remainder via routePending.
func (b *builder) buildLoop(lo, hi, i, target int, inLoop bool) ([]structured.Stmt, []pendingEscape, error) {
	before, beforePending, err := b.build(lo, target, inLoop)
	if err != nil {
		return nil, nil, err
	}

	loopBody, loopPending, err := b.build(target, i, true)
	if err != nil {
		return nil, nil, err
	}

	backEdge := b.items[i]
	if backEdge.cond != nil {
		loopBody = append(loopBody, &structured.BreakIf{Cond: structured.Negate(*backEdge.cond)})
	}
	// An unconditional backward GOTO needs nothing further — the loop
	// simply repeats.

	after, afterPending, err := b.routePending(loopPending, i+1, hi, inLoop)
	if err != nil {
		return nil, nil, err
	}

	stmts := append(before, &structured.Loop{Body: loopBody})
	stmts = append(stmts, after...)
	pending := append(beforePending, afterPending...)
	return stmts, pending, nil
}

// routePending builds items[lo:hi) given a set of escapes (typically
// bubbled out of a loop just closed) that must be checked, in ascending
// target order, before the code they would otherwise skip past runs.
func (b *builder) routePending(pending []pendingEscape, lo, hi int, inLoop bool) ([]structured.Stmt, []pendingEscape, error) {
	if len(pending) == 0 {
		return b.build(lo, hi, inLoop)
	}
	sort.Slice(pending, func(a, c int) bool { return pending[a].target < pending[c].target })

	head := pending[0]
	rest := pending[1:]

	if head.target > hi {
		// Doesn't land in this range at all; bubble everything up untouched.
		body, more, err := b.build(lo, hi, inLoop)
		if err != nil {
			return nil, nil, err
		}
		all := append(append([]pendingEscape{}, pending...), more...)
		return body, all, err
	}

	guarded, guardedPending, err := b.routePending(rest, lo, head.target, inLoop)
	if err != nil {
		return nil, nil, err
	}
	landing, landingPending, err := b.routePending(nil, head.target, hi, inLoop)
	if err != nil {
		return nil, nil, err
	}

	var out []structured.Stmt
	if len(guarded) > 0 {
		out = append(out, &structured.If{Cond: structured.BoolCond(head.flag, false), Then: guarded})
	}
	out = append(out, landing...)
	all := append(guardedPending, landingPending...)
	return out, all, nil
}

// buildStraight structures items[lo:hi) under the assumption it contains
// no internal backward edge (build already checked). It handles plain
// statements, same-range forward skips, loop-boundary exits (degenerate
// Break/BreakIf, no flag needed), and true cross-block escapes (via a
// target-keyed synthetic boolean).
func (b *builder) buildStraight(lo, hi int, inLoop bool) ([]structured.Stmt, []pendingEscape, error) {
	var out []structured.Stmt
	var pending []pendingEscape

	i := lo
	for i < hi {
		it := b.items[i]
		if it.kind == kindNone {
			if it.plain != nil {
				if it.cond != nil {
					out = append(out, &structured.If{Cond: *it.cond, Then: []structured.Stmt{it.plain}})
				} else {
					out = append(out, it.plain)
				}
			}
			i++
			continue
		}

		target, err := b.resolveTarget(it)
		if err != nil {
			return nil, nil, err
		}

		if it.kind == kindGoto && target < lo {
			// build already found and structured the outermost backward
			// edge landing in this range, so a GOTO reaching further back
			// than lo cannot be another loop's back edge — it escapes
			// whatever loop is currently being assembled altogether,
			// which the Loop/Break/BreakIf vocabulary has no way to
			// express.
			return nil, nil, &Error{Line: it.line, Message: fmt.Sprintf("GOTO %d jumps backward past the enclosing loop structure", it.targetLine)}
		}

		if target == hi && it.kind == kindGoto {
			// Exiting exactly at this block's own boundary: no flag needed.
			if inLoop {
				if it.cond != nil {
					out = append(out, &structured.BreakIf{Cond: *it.cond})
				} else {
					out = append(out, &structured.Break{})
				}
			}
			// Outside a loop, landing exactly on the boundary is a no-op:
			// control falls through to whatever the caller builds next.
			i = hi
			break
		}

		if (it.kind == kindReturn || it.kind == kindEnd) && !inLoop && i == hi-1 && hi == b.sentinel() {
			// A RETURN/END that is the unit's own last item has nothing
			// after it to guard: no synthetic flag is needed, since
			// falling through this statement and reaching the end of the
			// unit are the same outcome either way.
			var terminal structured.Stmt = &structured.Return{}
			if it.kind == kindEnd {
				terminal = &structured.End{}
			}
			if it.cond != nil {
				out = append(out, &structured.If{Cond: *it.cond, Then: []structured.Stmt{terminal}})
			} else {
				out = append(out, terminal)
			}
			i = hi
			break
		}

		if target < hi {
			// Same-range forward skip. The guarded prefix runs only
			// when the jump condition does NOT hold; the jump target's
			// code always follows.
			var prefix []structured.Stmt
			var prefixPending []pendingEscape
			if it.cond != nil {
				prefix, prefixPending, err = b.build(i+1, target, inLoop)
				if err != nil {
					return nil, nil, err
				}
				if len(prefix) > 0 {
					out = append(out, &structured.If{Cond: structured.Negate(*it.cond), Then: prefix})
				}
			}
			// An unconditional forward GOTO to a same-range target simply
			// discards the dead code in between.
			pending = append(pending, prefixPending...)
			rest, restPending, err := b.build(target, hi, inLoop)
			if err != nil {
				return nil, nil, err
			}
			out = append(out, rest...)
			pending = append(pending, restPending...)
			i = hi
			break
		}

		// target > hi, or this is a RETURN/END: a genuine escape. Flag it,
		// break out of the current loop (if any) right away, and guard
		// whatever follows in this range on the flag not having fired.
		flag := b.allocFlag(target, it.kind)
		if it.cond != nil {
			c := *it.cond
			out = append(out, &structured.SetBool{Var: flag, Or: &c})
		} else {
			out = append(out, &structured.SetBool{Var: flag, True: true})
		}
		if inLoop {
			out = append(out, &structured.BreakIf{Cond: structured.BoolCond(flag, false)})
		}
		rest, restPending, err := b.build(i+1, hi, inLoop)
		if err != nil {
			return nil, nil, err
		}
		if len(rest) > 0 {
			out = append(out, &structured.If{Cond: structured.BoolCond(flag, true), Then: rest})
		}
		pending = append(pending, restPending...)
		pending = append(pending, pendingEscape{flag: flag, target: target, kind: it.kind})
		i = hi
	}

	return out, pending, nil
}

// structureUnit runs the full pass over one self-contained run of
// LabelledGroups (the main program, or a single extracted procedure) and
// resolves every escape that bubbles all the way to the unit's own
// sentinel boundary into the RETURN/END it represents.
func structureUnit(groups []*ast.LabelledGroup) ([]structured.Stmt, error) {
	b := newBuilder(groups)
	stmts, pending, err := b.build(0, len(b.items), false)
	if err != nil {
		return nil, err
	}

	sentinel := b.sentinel()
	for _, pe := range pending {
		if pe.target != sentinel {
			return nil, fmt.Errorf("internal error: escape to index %d never resolved inside this unit", pe.target)
		}
		switch pe.kind {
		case kindReturn:
			stmts = append(stmts, &structured.If{Cond: structured.BoolCond(pe.flag, false), Then: []structured.Stmt{&structured.Return{}}})
		case kindEnd:
			stmts = append(stmts, &structured.If{Cond: structured.BoolCond(pe.flag, false), Then: []structured.Stmt{&structured.End{}}})
		default:
			return nil, fmt.Errorf("internal error: unexpected pending kind at sentinel")
		}
	}
	return stmts, nil
}

// Build runs control-flow analysis (package cflow) and the structuring
// pass over prog, producing a goto-free structured.Program ready for an
// emitter. It is the single entry point the rest of the pipeline calls
// after parsing.
func Build(prog *ast.Program) (*structured.Program, error) {
	tables := cflow.BuildTables(prog)
	if err := cflow.Resolve(prog, tables); err != nil {
		return nil, err
	}
	mainGroups, cprocs, err := cflow.ExtractProcedures(prog, tables)
	if err != nil {
		return nil, err
	}

	entry, err := structureUnit(mainGroups)
	if err != nil {
		return nil, err
	}

	procs := make([]*structured.Procedure, 0, len(cprocs))
	for _, cp := range cprocs {
		body, err := structureUnit(cp.Groups)
		if err != nil {
			return nil, fmt.Errorf("procedure %s: %w", cp.Name, err)
		}
		procs = append(procs, &structured.Procedure{Name: cp.Name, Body: body})
	}

	sp := &structured.Program{Procedures: procs, Entry: entry}
	sp.Vars, sp.BoolVars = structured.CollectVars(sp)

	if err := structured.Validate(sp); err != nil {
		return nil, fmt.Errorf("internal error: structured program failed validation: %w", err)
	}
	return sp, nil
}
