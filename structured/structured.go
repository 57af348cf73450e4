// Package structured defines the structured AST: the goto-free tree the
// structuring pass (package structure) produces and the emitter
// collaborator consumes. It is the sole contract between this repo's core
// and the target-language pretty-printer.
package structured

import (
	"fmt"
	"sort"

	"github.com/akashmaji946/basicstruct/ast"
)

// Var is a plain user variable (A..Z). Reused from the numbered AST since
// a structured program's user-variable alphabet is identical.
type Var = ast.Var

// BoolVar names a synthetic boolean introduced by the structuring pass
// (t1, t2, ...). It is disjoint from Var's namespace (user programs can
// never write a lowercase name), so the two are kept as distinct types
// rather than risk a collision in the emitted variable table.
type BoolVar string

func (b BoolVar) String() string { return string(b) }

// Term is one operand of a Condition: either a relational comparison
// between two expressions, or a test of a synthetic boolean flag.
// Negating a Term never introduces a logical-not node — relational
// operators are complemented in place (ast.RelOp.Complement) and boolean
// tests flip their Negated bit — per the "Operator negation" design note.
type Term struct {
	IsBool bool

	// Populated when IsBool is false.
	Left, Right ast.Expr
	Op          ast.RelOp

	// Populated when IsBool is true.
	Bool    BoolVar
	Negated bool
}

// Logic is the connective joining every Term in a Condition.
type Logic int

const (
	And Logic = iota
	Or
)

// Condition is a conjunction or disjunction of Terms. User-written
// conditions are always conjunctions of plain comparisons (the grammar's
// chained IF produces nothing else); disjunctions and boolean tests only
// appear in conditions synthesized by the structuring pass itself — most
// visibly as the result of Negate.
type Condition struct {
	Terms []Term
	Logic Logic
}

// Negate returns the structural negation of c: De Morgan across the
// connective, relational-operator complementation or Negated-flip on each
// term. This is why Term never needs a dedicated Not node. A single-term
// condition keeps its connective, since there is nothing to flip.
func Negate(c Condition) Condition {
	terms := make([]Term, len(c.Terms))
	for i, t := range c.Terms {
		if t.IsBool {
			terms[i] = Term{IsBool: true, Bool: t.Bool, Negated: !t.Negated}
		} else {
			terms[i] = Term{Left: t.Left, Right: t.Right, Op: t.Op.Complement()}
		}
	}
	logic := c.Logic
	if len(c.Terms) > 1 {
		logic = Or
		if c.Logic == Or {
			logic = And
		}
	}
	return Condition{Terms: terms, Logic: logic}
}

// BoolCond builds the single-term condition "b" (or "!b" when negated is
// true) used to test a synthetic escape flag.
func BoolCond(b BoolVar, negated bool) Condition {
	return Condition{Terms: []Term{{IsBool: true, Bool: b, Negated: negated}}}
}

// ComparisonCond builds a single-comparison condition straight from a
// parsed ast.Comparison, the base case the structuring pass starts from
// before any conjunction-flattening or negation.
func ComparisonCond(c ast.Comparison) Condition {
	return Condition{Terms: []Term{{Left: c.Left, Right: c.Right, Op: c.Op}}}
}

// And combines two conditions that are each already a conjunction of
// plain comparisons — the shape produced while flattening a chained
// `IF a THEN IF b THEN ...`.
func (c Condition) And(other Condition) Condition {
	terms := append(append([]Term(nil), c.Terms...), other.Terms...)
	return Condition{Terms: terms, Logic: And}
}

// Stmt is any statement in the structured AST: sequences, If, Loop with
// Break/BreakIf, Call, Return, End, and the structured leaf statements.
type Stmt interface{ stmtNode() }

// PrintItem mirrors ast.PrintItem; carried over unchanged since printing
// semantics do not change across structuring.
type PrintItem = ast.PrintItem

// Print prints its items in order. Newline reports whether the emitter
// should terminate the line afterward (see SPEC_FULL's PRINT-separator
// supplement); it is always true for this grammar, which has no trailing
// separator, but the field exists so the emitter contract is stable if
// that supplement is ever exercised.
type Print struct {
	Items   []PrintItem
	Newline bool
}

func (*Print) stmtNode() {}

// Input reads one integer into each variable in order.
type Input struct{ Vars []Var }

func (*Input) stmtNode() {}

// Let assigns Expr to the user variable Var. Escape flags are never
// assigned through Let; SetBool does that.
type Let struct {
	Var  Var
	Expr ast.Expr
}

func (*Let) stmtNode() {}

// SetBool assigns a boolean expression to a synthetic flag: either an
// unconditional `true`, or `tk OR <cond>` which realizes "assign only if
// not already true" without needing an `If` guard around the assignment.
type SetBool struct {
	Var  BoolVar
	True bool       // true: unconditional tk := true
	Or   *Condition // non-nil: tk := tk || Or
}

func (*SetBool) stmtNode() {}

// If runs Then when Cond holds, Else (possibly empty) otherwise.
type If struct {
	Cond Condition
	Then []Stmt
	Else []Stmt
}

func (*If) stmtNode() {}

// Loop runs Body repeatedly until a Break or BreakIf fires. An empty Body
// with no Break anywhere inside is a legal (if useless) infinite loop,
// produced by a BASIC program that GOTOs its own line.
type Loop struct{ Body []Stmt }

func (*Loop) stmtNode() {}

// Break unconditionally exits the nearest enclosing Loop.
type Break struct{}

func (*Break) stmtNode() {}

// BreakIf exits the nearest enclosing Loop when Cond holds.
type BreakIf struct{ Cond Condition }

func (*BreakIf) stmtNode() {}

// Call invokes the named Procedure and returns control to the statement
// after it once the procedure's body reaches a Return.
type Call struct{ Proc string }

func (*Call) stmtNode() {}

// Return exits the nearest enclosing Procedure.
type Return struct{}

func (*Return) stmtNode() {}

// End halts the program.
type End struct{}

func (*End) stmtNode() {}

// Procedure is a named, goto-free statement sequence reachable only via
// Call, produced exclusively from a GOSUB target.
type Procedure struct {
	Name string
	Body []Stmt
}

// Program is the sole input to the emitter collaborator: every procedure,
// the entry block, and the full set of variables (user and synthetic)
// that appear anywhere in the program.
type Program struct {
	Procedures []*Procedure
	Entry      []Stmt
	Vars       []Var
	BoolVars   []BoolVar
}

// CollectVars walks the entire structured program — entry block and every
// procedure — and returns the set of plain variables and synthetic
// booleans actually assigned anywhere, sorted for determinism. This
// satisfies the invariant that every variable written anywhere in the
// output appears in the program's state set, via a single final pass
// instead of threading a symbol table through every earlier pass.
func CollectVars(prog *Program) (vars []Var, boolVars []BoolVar) {
	varSet := map[Var]bool{}
	boolSet := map[BoolVar]bool{}

	var walkStmts func([]Stmt)
	walkStmts = func(stmts []Stmt) {
		for _, s := range stmts {
			switch st := s.(type) {
			case *Input:
				for _, v := range st.Vars {
					varSet[v] = true
				}
			case *Let:
				varSet[st.Var] = true
			case *SetBool:
				boolSet[st.Var] = true
			case *If:
				collectCondVars(st.Cond, boolSet)
				walkStmts(st.Then)
				walkStmts(st.Else)
			case *Loop:
				walkStmts(st.Body)
			case *BreakIf:
				collectCondVars(st.Cond, boolSet)
			}
		}
	}

	walkStmts(prog.Entry)
	for _, p := range prog.Procedures {
		walkStmts(p.Body)
	}

	for v := range varSet {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })

	for b := range boolSet {
		boolVars = append(boolVars, b)
	}
	sort.Slice(boolVars, func(i, j int) bool { return boolVars[i] < boolVars[j] })

	return vars, boolVars
}

func collectCondVars(c Condition, boolSet map[BoolVar]bool) {
	for _, t := range c.Terms {
		if t.IsBool {
			boolSet[t.Bool] = true
		}
	}
}

// Validate checks the structured-AST invariants: no jump node
// exists by construction (the type system already forbids it — there is
// no Goto variant in this package), every Break/BreakIf is reachable only
// through walking inside a Loop, and every Call names a defined
// Procedure. It is intended to run once after structuring, as a
// self-check rather than a safety net the emitter depends on.
func Validate(prog *Program) error {
	procNames := map[string]bool{}
	for _, p := range prog.Procedures {
		procNames[p.Name] = true
	}

	if err := validateStmts(prog.Entry, false, procNames); err != nil {
		return err
	}
	for _, p := range prog.Procedures {
		if err := validateStmts(p.Body, true, procNames); err != nil {
			return fmt.Errorf("procedure %s: %w", p.Name, err)
		}
	}
	return nil
}

func validateStmts(stmts []Stmt, inProc bool, procNames map[string]bool) error {
	return validateBlock(stmts, false, inProc, procNames)
}

func validateBlock(stmts []Stmt, inLoop, inProc bool, procNames map[string]bool) error {
	for _, s := range stmts {
		switch st := s.(type) {
		case *Break, *BreakIf:
			if !inLoop {
				return fmt.Errorf("break outside of any loop")
			}
		case *Return:
			if !inProc {
				return fmt.Errorf("return outside of any procedure")
			}
		case *Call:
			if !procNames[st.Proc] {
				return fmt.Errorf("call to undefined procedure %q", st.Proc)
			}
		case *If:
			if err := validateBlock(st.Then, inLoop, inProc, procNames); err != nil {
				return err
			}
			if err := validateBlock(st.Else, inLoop, inProc, procNames); err != nil {
				return err
			}
		case *Loop:
			if err := validateBlock(st.Body, true, inProc, procNames); err != nil {
				return err
			}
		}
	}
	return nil
}
