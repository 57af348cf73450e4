// Package parser implements a recursive-descent parser for the grammar in
// spec.md's Grammar section. It produces the numbered AST (package ast):
// an ordered sequence of LabelledGroups that the control-flow analysis and
// structuring passes consume.
package parser

import (
	"fmt"
	"strconv"

	"github.com/akashmaji946/basicstruct/ast"
	"github.com/akashmaji946/basicstruct/lexer"
)

// Error is a fatal parse error: an unexpected token or a malformed
// grammar production. Propagation is fatal — the first Error
// encountered stops the parse.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parser holds the token cursor (current + one token of lookahead) plus a
// running log of diagnostics, mirroring the teacher's Parser struct
// (lexer.Lexer, CurrToken, NextToken, Errors []string).
type Parser struct {
	lex *lexer.Lexer

	curToken  lexer.Token
	peekToken lexer.Token

	// Errors records the message of each parse failure raised through
	// fail. Parsing stops at the first one, and lexical errors are not
	// recorded here. The pipeline itself only ever looks at the error
	// ParseProgram returns.
	Errors []string
}

// New creates a Parser over src, already primed with the first two
// lookahead tokens.
func New(src string) (*Parser, error) {
	p := &Parser{lex: lexer.New(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.curToken = p.peekToken
	tok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.peekToken = tok
	return nil
}

func (p *Parser) addError(msg string) {
	p.Errors = append(p.Errors, fmt.Sprintf("line %d: %s", p.curToken.Line, msg))
}

func (p *Parser) fail(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	p.addError(msg)
	return &Error{Line: p.curToken.Line, Message: msg}
}

func (p *Parser) expect(typ lexer.TokenType) error {
	if p.curToken.Type != typ {
		return p.fail("expected %s, got %s (%q)", typ, p.curToken.Type, p.curToken.Literal)
	}
	return nil
}

// ParseProgram parses the entire token stream into a Program. On the
// first malformed line it returns the partial program built so far
// together with the fatal error: a *Error for a grammar failure, or a
// *lexer.Error when the source does not lex (with a nil program if that
// happens while reading the first two tokens). Callers must treat any
// non-nil error as terminal.
func ParseProgram(src string) (*ast.Program, error) {
	p, err := New(src)
	if err != nil {
		return nil, err
	}

	prog := &ast.Program{}
	for p.curToken.Type != lexer.EOF {
		if p.curToken.Type == lexer.NEWLINE {
			if err := p.advance(); err != nil {
				return prog, err
			}
			continue
		}
		group, err := p.parseLine()
		if err != nil {
			return prog, err
		}
		prog.Groups = append(prog.Groups, group)
	}
	return prog, nil
}

// parseLine parses `[NUMBER] statement NEWLINE`.
func (p *Parser) parseLine() (*ast.LabelledGroup, error) {
	group := &ast.LabelledGroup{}

	if p.curToken.Type == lexer.NUMBER {
		n, err := strconv.Atoi(p.curToken.Literal)
		if err != nil {
			return nil, p.fail("malformed line number %q", p.curToken.Literal)
		}
		group.Line = n
		group.HasLine = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	group.Statements = []ast.Statement{stmt}

	if p.curToken.Type != lexer.NEWLINE && p.curToken.Type != lexer.EOF {
		return nil, p.fail("expected end of line, got %s (%q)", p.curToken.Type, p.curToken.Literal)
	}
	if p.curToken.Type == lexer.NEWLINE {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return group, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.curToken.Type {
	case lexer.PRINT:
		return p.parsePrint()
	case lexer.IF:
		return p.parseIf()
	case lexer.GOTO:
		return p.parseGoto()
	case lexer.GOSUB:
		return p.parseGosub()
	case lexer.RETURN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{}, nil
	case lexer.INPUT:
		return p.parseInput()
	case lexer.LET:
		return p.parseLet()
	case lexer.END:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.EndStmt{}, nil
	case lexer.REM:
		text := p.curToken.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.RemStmt{Text: text}, nil
	default:
		return nil, p.fail("unexpected token %s (%q) at start of statement", p.curToken.Type, p.curToken.Literal)
	}
}

// parsePrint parses `PRINT expr-list`.
func (p *Parser) parsePrint() (ast.Statement, error) {
	if err := p.advance(); err != nil { // consume PRINT
		return nil, err
	}

	item, err := p.parsePrintItem()
	if err != nil {
		return nil, err
	}
	items := []ast.PrintItem{item}

	for p.curToken.Type == lexer.COMMA {
		if err := p.advance(); err != nil {
			return nil, err
		}
		item, err := p.parsePrintItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &ast.PrintStmt{Items: items}, nil
}

func (p *Parser) parsePrintItem() (ast.PrintItem, error) {
	if p.curToken.Type == lexer.STRING {
		s := p.curToken.Literal
		if err := p.advance(); err != nil {
			return ast.PrintItem{}, err
		}
		return ast.PrintItem{IsString: true, Str: s}, nil
	}
	expr, err := p.parseExpression()
	if err != nil {
		return ast.PrintItem{}, err
	}
	return ast.PrintItem{Expr: expr}, nil
}

// parseInput parses `INPUT var-list`.
func (p *Parser) parseInput() (ast.Statement, error) {
	if err := p.advance(); err != nil { // consume INPUT
		return nil, err
	}
	if err := p.expect(lexer.VAR); err != nil {
		return nil, err
	}
	vars := []ast.Var{ast.Var(p.curToken.Literal[0])}
	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.curToken.Type == lexer.COMMA {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(lexer.VAR); err != nil {
			return nil, err
		}
		vars = append(vars, ast.Var(p.curToken.Literal[0]))
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return &ast.InputStmt{Vars: vars}, nil
}

// parseLet parses `LET VAR = expression`.
func (p *Parser) parseLet() (ast.Statement, error) {
	if err := p.advance(); err != nil { // consume LET
		return nil, err
	}
	if err := p.expect(lexer.VAR); err != nil {
		return nil, err
	}
	v := ast.Var(p.curToken.Literal[0])
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.EQ); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.LetStmt{Var: v, Expr: expr}, nil
}

// parseGoto parses `GOTO NUMBER`.
func (p *Parser) parseGoto() (ast.Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	target, err := p.parseLineNumber()
	if err != nil {
		return nil, err
	}
	return &ast.GotoStmt{Target: target}, nil
}

// parseGosub parses `GOSUB NUMBER`.
func (p *Parser) parseGosub() (ast.Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	target, err := p.parseLineNumber()
	if err != nil {
		return nil, err
	}
	return &ast.GosubStmt{Target: target}, nil
}

func (p *Parser) parseLineNumber() (int, error) {
	if err := p.expect(lexer.NUMBER); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(p.curToken.Literal)
	if err != nil {
		return 0, p.fail("malformed line number %q", p.curToken.Literal)
	}
	if err := p.advance(); err != nil {
		return 0, err
	}
	return n, nil
}

// parseIf parses `IF expression relop expression THEN statement`. The
// THEN-body is parsed by recursing into parseStatement, which means a
// THEN-body that is itself an IF produces a nested *ast.IfStmt — exactly
// the chained-conditional shape the structuring pass needs preserved.
func (p *Parser) parseIf() (ast.Statement, error) {
	if err := p.advance(); err != nil { // consume IF
		return nil, err
	}
	left, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	op, err := p.parseRelOp()
	if err != nil {
		return nil, err
	}
	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.THEN); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.IfStmt{Cond: ast.Comparison{Left: left, Right: right, Op: op}, Then: then}, nil
}

func (p *Parser) parseRelOp() (ast.RelOp, error) {
	var op ast.RelOp
	switch p.curToken.Type {
	case lexer.LT:
		op = ast.OpLT
	case lexer.GT:
		op = ast.OpGT
	case lexer.EQ:
		op = ast.OpEQ
	case lexer.LE:
		op = ast.OpLE
	case lexer.GE:
		op = ast.OpGE
	case lexer.NE:
		op = ast.OpNE
	default:
		return "", p.fail("expected relational operator, got %s (%q)", p.curToken.Type, p.curToken.Literal)
	}
	if err := p.advance(); err != nil {
		return "", err
	}
	return op, nil
}

// parseExpression parses `term (("+"|"-") term)*`.
func (p *Parser) parseExpression() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.curToken.Type == lexer.PLUS || p.curToken.Type == lexer.MINUS {
		op := ast.OpAdd
		if p.curToken.Type == lexer.MINUS {
			op = ast.OpSub
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseTerm parses `factor (("*"|"/") factor)*`.
func (p *Parser) parseTerm() (ast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.curToken.Type == lexer.STAR || p.curToken.Type == lexer.SLASH {
		op := ast.OpMul
		if p.curToken.Type == lexer.SLASH {
			op = ast.OpDiv
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseFactor parses `VAR | NUMBER | "(" expression ")"`.
func (p *Parser) parseFactor() (ast.Expr, error) {
	switch p.curToken.Type {
	case lexer.VAR:
		v := ast.Var(p.curToken.Literal[0])
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.VarRef{Name: v}, nil
	case lexer.NUMBER:
		n, err := strconv.Atoi(p.curToken.Literal)
		if err != nil {
			return nil, p.fail("malformed number %q", p.curToken.Literal)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Number{Value: int32(n)}, nil
	case lexer.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.fail("expected a variable, number, or '(', got %s (%q)", p.curToken.Type, p.curToken.Literal)
	}
}
