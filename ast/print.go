package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a Program back into BASIC source text, in the canonical
// form the lexer and parser would reproduce identically if fed the
// output again. This supports a round-trip property: for any
// accepted program s, Lex(Print(Parse(s))) == Parse(s) modulo exact
// source spelling (whitespace, which the grammar treats as insignificant).
//
// Print is a debug tool, not part of the compilation pipeline proper —
// the real output comes from the emitter collaborator, which consumes the
// *structured* AST, not this one.
func Print(p *Program) string {
	var sb strings.Builder
	for _, g := range p.Groups {
		printGroup(&sb, g)
	}
	return sb.String()
}

func printGroup(sb *strings.Builder, g *LabelledGroup) {
	if g.HasLine {
		sb.WriteString(strconv.Itoa(g.Line))
		sb.WriteString(" ")
	}
	for i, stmt := range g.Statements {
		if i > 0 {
			sb.WriteString(" ")
		}
		printStmt(sb, stmt)
	}
	sb.WriteString("\n")
}

func printStmt(sb *strings.Builder, stmt Statement) {
	switch s := stmt.(type) {
	case *PrintStmt:
		sb.WriteString("PRINT ")
		for i, item := range s.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			if item.IsString {
				sb.WriteString("\"" + item.Str + "\"")
			} else {
				printExpr(sb, item.Expr)
			}
		}
	case *InputStmt:
		sb.WriteString("INPUT ")
		for i, v := range s.Vars {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(v.String())
		}
	case *LetStmt:
		sb.WriteString("LET ")
		sb.WriteString(s.Var.String())
		sb.WriteString(" = ")
		printExpr(sb, s.Expr)
	case *IfStmt:
		sb.WriteString("IF ")
		printExpr(sb, s.Cond.Left)
		sb.WriteString(string(s.Cond.Op))
		printExpr(sb, s.Cond.Right)
		sb.WriteString(" THEN ")
		printStmt(sb, s.Then)
	case *GotoStmt:
		sb.WriteString("GOTO ")
		sb.WriteString(strconv.Itoa(s.Target))
	case *GosubStmt:
		sb.WriteString("GOSUB ")
		sb.WriteString(strconv.Itoa(s.Target))
	case *ReturnStmt:
		sb.WriteString("RETURN")
	case *EndStmt:
		sb.WriteString("END")
	case *RemStmt:
		sb.WriteString("REM ")
		sb.WriteString(s.Text)
	default:
		panic(fmt.Sprintf("ast: Print: unhandled statement type %T", stmt))
	}
}

func printExpr(sb *strings.Builder, e Expr) {
	switch ex := e.(type) {
	case *Number:
		sb.WriteString(strconv.FormatInt(int64(ex.Value), 10))
	case *VarRef:
		sb.WriteString(ex.Name.String())
	case *Binary:
		printExprOperand(sb, ex.Left, ex.Op, false)
		sb.WriteString(string(ex.Op))
		printExprOperand(sb, ex.Right, ex.Op, true)
	default:
		panic(fmt.Sprintf("ast: Print: unhandled expression type %T", e))
	}
}

// printExprOperand parenthesises an operand when leaving it bare would
// change what the parser's precedence climbing rebuilds from the
// printed text. An operand binding strictly looser than its parent
// always needs parentheses. Because - and / are left-associative but
// not commutative, an equal-precedence operand on their right side
// needs parentheses too: A-B-C parses as (A-B)-C, so printing
// Sub(A,Sub(B,C)) as "A-B-C" would silently reassociate it on reparse.
func printExprOperand(sb *strings.Builder, e Expr, parentOp ArithOp, isRight bool) {
	bin, ok := e.(*Binary)
	if !ok {
		printExpr(sb, e)
		return
	}
	needsParens := looserBinds(bin.Op, parentOp)
	if isRight && !needsParens && precedence(bin.Op) == precedence(parentOp) && (parentOp == OpSub || parentOp == OpDiv) {
		needsParens = true
	}
	if needsParens {
		sb.WriteString("(")
		printExpr(sb, bin)
		sb.WriteString(")")
		return
	}
	printExpr(sb, e)
}

func looserBinds(op, parent ArithOp) bool {
	return precedence(op) < precedence(parent)
}

func precedence(op ArithOp) int {
	switch op {
	case OpMul, OpDiv:
		return 2
	case OpAdd, OpSub:
		return 1
	}
	return 0
}
