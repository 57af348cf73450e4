// Package ast defines the numbered AST: the typed tree the parser produces
// and the control-flow/structuring passes consume. It is "numbered"
// because every LabelledGroup still carries the source line number that
// GOTO and GOSUB may target — the very thing the structuring pass exists
// to erase.
package ast

import "fmt"

// Var names a BASIC variable: a single uppercase letter. Synthetic
// booleans minted by the structuring pass are represented separately in
// the structured package, since user programs can never spell one.
type Var byte

func (v Var) String() string { return string(rune(v)) }

// RelOp is a relational operator appearing in a Comparison.
type RelOp string

const (
	OpLT RelOp = "<"
	OpGT RelOp = ">"
	OpEQ RelOp = "="
	OpLE RelOp = "<="
	OpGE RelOp = ">="
	OpNE RelOp = "<>"
)

// Complement returns the relational operator that negates op, e.g. the
// complement of "<" is ">=". Used by the structuring pass to negate a
// guarding condition directly instead of wrapping it in a logical-not
// node.
func (op RelOp) Complement() RelOp {
	switch op {
	case OpLT:
		return OpGE
	case OpGT:
		return OpLE
	case OpEQ:
		return OpNE
	case OpLE:
		return OpGT
	case OpGE:
		return OpLT
	case OpNE:
		return OpEQ
	}
	panic(fmt.Sprintf("ast: unknown relational operator %q", op))
}

// ArithOp is an arithmetic operator appearing in an Expr.
type ArithOp string

const (
	OpAdd ArithOp = "+"
	OpSub ArithOp = "-"
	OpMul ArithOp = "*"
	OpDiv ArithOp = "/"
)

// Expr is an arithmetic expression: a literal, a variable reference, or a
// binary operation over two sub-expressions. The parser builds this tree
// already respecting precedence (*, / bind tighter than +, -) and
// left-associativity, so no further rewriting is needed downstream.
type Expr interface{ exprNode() }

// Number is an integer literal.
type Number struct{ Value int32 }

func (*Number) exprNode() {}

// VarRef is a reference to a variable's current value.
type VarRef struct{ Name Var }

func (*VarRef) exprNode() {}

// Binary is a binary arithmetic operation.
type Binary struct {
	Op          ArithOp
	Left, Right Expr
}

func (*Binary) exprNode() {}

// Comparison is one relational test between two expressions. It is the
// atomic unit a THEN-chain's conjunction is built from; the parser never
// combines two Comparisons itself; that only happens when the structuring
// pass flattens a chain of nested If statements into one conjunction.
type Comparison struct {
	Left, Right Expr
	Op          RelOp
}

// Statement is any of the input-form statement kinds the grammar produces.
type Statement interface{ stmtNode() }

// PrintItem is one element of a PRINT list: either a string literal or an
// expression to evaluate and print.
type PrintItem struct {
	IsString bool
	Str      string
	Expr     Expr
}

// PrintStmt prints a comma-separated list of strings/expressions.
type PrintStmt struct{ Items []PrintItem }

func (*PrintStmt) stmtNode() {}

// InputStmt reads one integer per variable, in order.
type InputStmt struct{ Vars []Var }

func (*InputStmt) stmtNode() {}

// LetStmt assigns the value of an expression to a variable.
type LetStmt struct {
	Var  Var
	Expr Expr
}

func (*LetStmt) stmtNode() {}

// IfStmt is `IF <Cond> THEN <Then>`. Then may itself be another *IfStmt,
// which is exactly how a chained `IF a THEN IF b THEN ...` is represented:
// the parser must not flatten this nesting, since the structuring pass
// needs the outermost guard intact to decide how to classify the
// eventual jump or terminal statement.
type IfStmt struct {
	Cond Comparison
	Then Statement
}

func (*IfStmt) stmtNode() {}

// GotoStmt transfers control to a line number unconditionally (when not
// wrapped in an IfStmt) or conditionally (as the Then of an IfStmt).
type GotoStmt struct{ Target int }

func (*GotoStmt) stmtNode() {}

// GosubStmt calls the procedure rooted at a line number; control-flow
// analysis turns every distinct target into its own Procedure.
type GosubStmt struct{ Target int }

func (*GosubStmt) stmtNode() {}

// ReturnStmt returns from the nearest enclosing GOSUB-rooted procedure.
type ReturnStmt struct{}

func (*ReturnStmt) stmtNode() {}

// EndStmt halts the program.
type EndStmt struct{}

func (*EndStmt) stmtNode() {}

// RemStmt is a comment. It carries no runtime behaviour; it exists purely
// so a line number used as a jump target remains resolvable even when the
// line itself is just a remark.
type RemStmt struct{ Text string }

func (*RemStmt) stmtNode() {}

// LabelledGroup is an optional source line number plus the statements that
// share it. The grammar only ever produces a single statement per line,
// but the type carries a slice so a future dialect extension (e.g.
// colon-separated statements) would not need a new shape.
type LabelledGroup struct {
	Line       int  // 0 when HasLine is false
	HasLine    bool
	Statements []Statement
}

// Program is the top-level parse result: an ordered sequence of
// LabelledGroups, line-numbered or not, in source order.
type Program struct {
	Groups []*LabelledGroup
}
