// Package emit is the reference emitter collaborator: it turns a
// structured.Program into readable target-language source. It exists to
// demonstrate that the structured AST is sufficient on its own — nothing
// about it is tied to a specific target language, but Go is the most
// natural fit for a control-flow tree built from sequencing, If, Loop,
// Break, BreakIf, Call and Return.
package emit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/akashmaji946/basicstruct/ast"
	"github.com/akashmaji946/basicstruct/structured"
)

// Go renders prog as a single Go source file defining one function per
// procedure plus a run() holding the entry block, all operating over a
// package-level var block declaring every variable CollectVars found.
func Go(prog *structured.Program) string {
	var sb strings.Builder

	sb.WriteString("package program\n\n")
	writeImports(&sb, prog)
	writeState(&sb, prog)

	sb.WriteString("func run() {\n")
	writeBlock(&sb, prog.Entry, 1)
	sb.WriteString("}\n")

	names := make([]string, 0, len(prog.Procedures))
	byName := make(map[string]*structured.Procedure, len(prog.Procedures))
	for _, p := range prog.Procedures {
		names = append(names, p.Name)
		byName[p.Name] = p
	}
	sort.Strings(names)
	for _, name := range names {
		p := byName[name]
		sb.WriteString("\nfunc " + p.Name + "() {\n")
		writeBlock(&sb, p.Body, 1)
		sb.WriteString("}\n")
	}

	return sb.String()
}

// writeImports scans every statement the program will emit and writes
// only the imports that output actually needs: "fmt" for Print/Input,
// "os" for End's os.Exit(0).
func writeImports(sb *strings.Builder, prog *structured.Program) {
	needsFmt, needsOS := false, false
	var scan func([]structured.Stmt)
	scan = func(stmts []structured.Stmt) {
		for _, s := range stmts {
			switch st := s.(type) {
			case *structured.Print, *structured.Input:
				needsFmt = true
			case *structured.End:
				needsOS = true
			case *structured.If:
				scan(st.Then)
				scan(st.Else)
			case *structured.Loop:
				scan(st.Body)
			}
		}
	}
	scan(prog.Entry)
	for _, p := range prog.Procedures {
		scan(p.Body)
	}

	if !needsFmt && !needsOS {
		return
	}
	sb.WriteString("import (\n")
	if needsFmt {
		sb.WriteString("\t\"fmt\"\n")
	}
	if needsOS {
		sb.WriteString("\t\"os\"\n")
	}
	sb.WriteString(")\n\n")
}

func writeState(sb *strings.Builder, prog *structured.Program) {
	if len(prog.Vars) == 0 && len(prog.BoolVars) == 0 {
		return
	}
	sb.WriteString("var (\n")
	for _, v := range prog.Vars {
		sb.WriteString(fmt.Sprintf("\t%s int32\n", v.String()))
	}
	for _, b := range prog.BoolVars {
		sb.WriteString(fmt.Sprintf("\t%s bool\n", b))
	}
	sb.WriteString(")\n\n")
}

func indent(n int) string { return strings.Repeat("\t", n) }

func writeBlock(sb *strings.Builder, stmts []structured.Stmt, depth int) {
	for _, s := range stmts {
		writeStmt(sb, s, depth)
	}
}

func writeStmt(sb *strings.Builder, stmt structured.Stmt, depth int) {
	pad := indent(depth)
	switch s := stmt.(type) {
	case *structured.Print:
		sb.WriteString(pad + "fmt.Print(")
		for i, item := range s.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			if item.IsString {
				sb.WriteString(fmt.Sprintf("%q", item.Str))
			} else {
				sb.WriteString(exprString(item.Expr))
			}
		}
		sb.WriteString(")\n")
		if s.Newline {
			sb.WriteString(pad + "fmt.Println()\n")
		}
	case *structured.Input:
		for _, v := range s.Vars {
			sb.WriteString(fmt.Sprintf("%sfmt.Scan(&%s)\n", pad, v.String()))
		}
	case *structured.Let:
		sb.WriteString(fmt.Sprintf("%s%s = %s\n", pad, s.Var.String(), exprString(s.Expr)))
	case *structured.SetBool:
		if s.True {
			sb.WriteString(fmt.Sprintf("%s%s = true\n", pad, s.Var))
		} else {
			sb.WriteString(fmt.Sprintf("%s%s = %s || %s\n", pad, s.Var, s.Var, condString(*s.Or)))
		}
	case *structured.If:
		sb.WriteString(pad + "if " + condString(s.Cond) + " {\n")
		writeBlock(sb, s.Then, depth+1)
		if len(s.Else) > 0 {
			sb.WriteString(pad + "} else {\n")
			writeBlock(sb, s.Else, depth+1)
		}
		sb.WriteString(pad + "}\n")
	case *structured.Loop:
		sb.WriteString(pad + "for {\n")
		writeBlock(sb, s.Body, depth+1)
		sb.WriteString(pad + "}\n")
	case *structured.Break:
		sb.WriteString(pad + "break\n")
	case *structured.BreakIf:
		sb.WriteString(pad + "if " + condString(s.Cond) + " {\n")
		sb.WriteString(indent(depth+1) + "break\n")
		sb.WriteString(pad + "}\n")
	case *structured.Call:
		sb.WriteString(pad + s.Proc + "()\n")
	case *structured.Return:
		sb.WriteString(pad + "return\n")
	case *structured.End:
		sb.WriteString(pad + "os.Exit(0)\n")
	default:
		panic(fmt.Sprintf("emit: unhandled structured statement %T", stmt))
	}
}

func condString(c structured.Condition) string {
	parts := make([]string, len(c.Terms))
	for i, t := range c.Terms {
		parts[i] = termString(t)
	}
	sep := " && "
	if c.Logic == structured.Or {
		sep = " || "
	}
	return strings.Join(parts, sep)
}

func termString(t structured.Term) string {
	if t.IsBool {
		if t.Negated {
			return "!" + string(t.Bool)
		}
		return string(t.Bool)
	}
	return exprString(t.Left) + goRelOp(t.Op) + exprString(t.Right)
}

func goRelOp(op ast.RelOp) string {
	switch op {
	case ast.OpLT:
		return " < "
	case ast.OpGT:
		return " > "
	case ast.OpEQ:
		return " == "
	case ast.OpLE:
		return " <= "
	case ast.OpGE:
		return " >= "
	case ast.OpNE:
		return " != "
	}
	panic(fmt.Sprintf("emit: unhandled relational operator %q", op))
}

func exprString(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.Number:
		return strconv.FormatInt(int64(ex.Value), 10)
	case *ast.VarRef:
		return ex.Name.String()
	case *ast.Binary:
		return exprOperand(ex.Left, ex.Op, false) + goArithOp(ex.Op) + exprOperand(ex.Right, ex.Op, true)
	}
	panic(fmt.Sprintf("emit: unhandled expression type %T", e))
}

// exprOperand parenthesises an operand when Go's own precedence
// climbing would otherwise regroup it differently than the source
// expression. Go's - and / are left-associative like BASIC's: an
// equal-precedence operand on the right of either needs parentheses,
// or A-B-C and A-(B-C) (likewise A/B*C and A/(B*C)) render identically
// while meaning different things.
func exprOperand(e ast.Expr, parent ast.ArithOp, isRight bool) string {
	bin, ok := e.(*ast.Binary)
	if !ok {
		return exprString(e)
	}
	needsParens := precedence(bin.Op) < precedence(parent)
	if isRight && !needsParens && precedence(bin.Op) == precedence(parent) && (parent == ast.OpSub || parent == ast.OpDiv) {
		needsParens = true
	}
	if needsParens {
		return "(" + exprString(bin) + ")"
	}
	return exprString(e)
}

func precedence(op ast.ArithOp) int {
	switch op {
	case ast.OpMul, ast.OpDiv:
		return 2
	case ast.OpAdd, ast.OpSub:
		return 1
	}
	return 0
}

func goArithOp(op ast.ArithOp) string {
	switch op {
	case ast.OpAdd:
		return " + "
	case ast.OpSub:
		return " - "
	case ast.OpMul:
		return " * "
	case ast.OpDiv:
		return " / "
	}
	panic(fmt.Sprintf("emit: unhandled arithmetic operator %q", op))
}
