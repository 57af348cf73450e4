// Package cflow implements control-flow analysis: building the label
// index and the GOSUB-target set, resolving every jump against them, and
// extracting GOSUB targets into standalone procedures before the
// structuring pass ever sees them.
package cflow

import (
	"fmt"
	"sort"

	"github.com/akashmaji946/basicstruct/ast"
)

// Error reports a jump that could not be resolved, or a procedure whose
// body escapes its own boundary.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Tables holds where each line number lives in the top-level sequence,
// and which line numbers are GOSUB targets (and therefore must become
// procedures).
type Tables struct {
	LabelIndex   map[int]int
	GosubTargets map[int]bool
}

// BuildTables scans every LabelledGroup once, recording its position by
// line number and walking every statement (descending through nested
// IfStmt) to collect GOSUB targets.
func BuildTables(prog *ast.Program) *Tables {
	t := &Tables{
		LabelIndex:   make(map[int]int, len(prog.Groups)),
		GosubTargets: make(map[int]bool),
	}
	for i, g := range prog.Groups {
		if g.HasLine {
			t.LabelIndex[g.Line] = i
		}
		for _, stmt := range g.Statements {
			collectGosubTargets(stmt, t.GosubTargets)
		}
	}
	return t
}

func collectGosubTargets(stmt ast.Statement, targets map[int]bool) {
	switch s := stmt.(type) {
	case *ast.GosubStmt:
		targets[s.Target] = true
	case *ast.IfStmt:
		collectGosubTargets(s.Then, targets)
	}
}

// Resolve checks that every GOTO/GOSUB target named anywhere in prog
// labels some LabelledGroup; jumping to a nonexistent line is a
// compile-time error.
func Resolve(prog *ast.Program, t *Tables) error {
	for _, g := range prog.Groups {
		for _, stmt := range g.Statements {
			if err := resolveStmt(g, stmt, t); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolveStmt(g *ast.LabelledGroup, stmt ast.Statement, t *Tables) error {
	switch s := stmt.(type) {
	case *ast.GotoStmt:
		if _, ok := t.LabelIndex[s.Target]; !ok {
			return &Error{Line: g.Line, Message: fmt.Sprintf("unresolved label: GOTO %d has no matching line", s.Target)}
		}
	case *ast.GosubStmt:
		if _, ok := t.LabelIndex[s.Target]; !ok {
			return &Error{Line: g.Line, Message: fmt.Sprintf("unresolved label: GOSUB %d has no matching line", s.Target)}
		}
	case *ast.IfStmt:
		return resolveStmt(g, s.Then, t)
	}
	return nil
}

// ProcName is the name a GOSUB target line becomes once extracted.
func ProcName(target int) string {
	return fmt.Sprintf("f_%d", target)
}

// Procedure is a GOSUB target's body: the contiguous run of LabelledGroups
// starting at its line and continuing through (inclusive) the first
// RETURN reached in sequential order.
type Procedure struct {
	Name   string
	Target int
	Groups []*ast.LabelledGroup
}

// ExtractProcedures removes every GOSUB target's body from prog's
// top-level sequence and returns it as a standalone Procedure, leaving
// mainGroups holding only what's left of the main program. It also
// re-validates that no GOTO inside an extracted body jumps outside that
// body's own line range.
func ExtractProcedures(prog *ast.Program, t *Tables) (mainGroups []*ast.LabelledGroup, procs []*Procedure, err error) {
	targets := make([]int, 0, len(t.GosubTargets))
	for target := range t.GosubTargets {
		targets = append(targets, target)
	}
	sort.Ints(targets)

	extracted := make(map[int]bool) // group index -> true
	for _, target := range targets {
		startIdx, ok := t.LabelIndex[target]
		if !ok {
			return nil, nil, &Error{Message: fmt.Sprintf("unresolved label: GOSUB %d has no matching line", target)}
		}
		endIdx, found := findReturn(prog.Groups, startIdx)
		if !found {
			return nil, nil, &Error{Line: prog.Groups[startIdx].Line, Message: fmt.Sprintf("procedure for GOSUB %d never reaches a RETURN", target)}
		}

		body := append([]*ast.LabelledGroup(nil), prog.Groups[startIdx:endIdx+1]...)
		if err := checkProcedureBoundary(body, startIdx, endIdx); err != nil {
			return nil, nil, err
		}
		for i := startIdx; i <= endIdx; i++ {
			extracted[i] = true
		}
		procs = append(procs, &Procedure{Name: ProcName(target), Target: target, Groups: body})
	}

	for i, g := range prog.Groups {
		if !extracted[i] {
			mainGroups = append(mainGroups, g)
		}
	}
	return mainGroups, procs, nil
}

// findReturn scans forward from start for the first group whose statement
// is RETURN, returning its index.
func findReturn(groups []*ast.LabelledGroup, start int) (int, bool) {
	for i := start; i < len(groups); i++ {
		for _, stmt := range groups[i].Statements {
			if _, ok := stmt.(*ast.ReturnStmt); ok {
				return i, true
			}
		}
	}
	return 0, false
}

// checkProcedureBoundary rejects a GOTO whose target lies outside
// [startIdx, endIdx] — the procedure's own extracted range. A procedure
// body may not contain a GOTO whose target lies outside its own
// LabelledGroups.
func checkProcedureBoundary(body []*ast.LabelledGroup, startIdx, endIdx int) error {
	local := make(map[int]bool, len(body))
	for _, g := range body {
		if g.HasLine {
			local[g.Line] = true
		}
	}
	for _, g := range body {
		for _, stmt := range g.Statements {
			if err := checkGotoLocal(g, stmt, local); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkGotoLocal(g *ast.LabelledGroup, stmt ast.Statement, local map[int]bool) error {
	switch s := stmt.(type) {
	case *ast.GotoStmt:
		if !local[s.Target] {
			return &Error{Line: g.Line, Message: fmt.Sprintf("GOTO %d leaves its enclosing procedure", s.Target)}
		}
	case *ast.IfStmt:
		return checkGotoLocal(g, s.Then, local)
	}
	return nil
}
