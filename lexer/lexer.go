package lexer

import (
	"fmt"
	"strings"
)

// Error is a fatal lexical error: an unknown character, an unterminated
// string, or a multi-letter word that is not a keyword. It always carries the source
// line so the pass can be named in the final diagnostic (see the
// diagnostics package).
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Lexer tokenises BASIC source text one byte at a time, tracking line
// numbers so every emitted Token can be blamed on a source line. It
// mirrors the teacher's single-struct, byte-oriented scanner: Src/Current/
// Position fields advanced by Advance and a Line counter bumped by
// NextToken at each newline, with no separate column
// tracking since nothing downstream needs it.
type Lexer struct {
	Src       string
	Current   byte
	Position  int
	SrcLength int
	Line      int
}

// New creates a Lexer positioned at the first byte of src, on line 1.
func New(src string) *Lexer {
	lex := &Lexer{Src: src, SrcLength: len(src), Line: 1}
	if lex.SrcLength > 0 {
		lex.Current = src[0]
	}
	return lex
}

// Peek returns the next byte without consuming it, or 0 at end of input.
func (lex *Lexer) Peek() byte {
	if lex.Position+1 >= lex.SrcLength {
		return 0
	}
	return lex.Src[lex.Position+1]
}

// Advance moves one byte forward, updating Current and Position.
func (lex *Lexer) Advance() {
	lex.Position++
	if lex.Position >= lex.SrcLength {
		lex.Current = 0
		lex.Position = lex.SrcLength
		return
	}
	lex.Current = lex.Src[lex.Position]
}

// skipSpacesAndComments eats horizontal whitespace and CR, but stops at a
// newline: a NEWLINE is a meaningful token in BASIC (it ends a logical
// line), so unlike the teacher's lexer it is not silently skipped here.
func (lex *Lexer) skipSpacesAndComments() {
	for lex.Current == ' ' || lex.Current == '\t' || lex.Current == '\r' {
		lex.Advance()
	}
}

// NextToken scans and returns the next token in the stream, terminating
// with a repeating EOF token once the source is exhausted.
func (lex *Lexer) NextToken() (Token, error) {
	lex.skipSpacesAndComments()
	line := lex.Line

	switch {
	case lex.Current == 0:
		return NewToken(EOF, "", line), nil
	case lex.Current == '\n':
		lex.Advance()
		lex.Line++
		return NewToken(NEWLINE, "\n", line), nil
	case lex.Current == '"':
		return lex.readString()
	case isDigit(lex.Current):
		return lex.readNumber()
	case isAlpha(lex.Current):
		return lex.readWord()
	}

	switch lex.Current {
	case '+':
		lex.Advance()
		return NewToken(PLUS, "+", line), nil
	case '-':
		lex.Advance()
		return NewToken(MINUS, "-", line), nil
	case '*':
		lex.Advance()
		return NewToken(STAR, "*", line), nil
	case '/':
		lex.Advance()
		return NewToken(SLASH, "/", line), nil
	case ',':
		lex.Advance()
		return NewToken(COMMA, ",", line), nil
	case '(':
		lex.Advance()
		return NewToken(LPAREN, "(", line), nil
	case ')':
		lex.Advance()
		return NewToken(RPAREN, ")", line), nil
	case '=':
		lex.Advance()
		return NewToken(EQ, "=", line), nil
	case '<':
		lex.Advance()
		if lex.Current == '=' {
			lex.Advance()
			return NewToken(LE, "<=", line), nil
		}
		if lex.Current == '>' {
			lex.Advance()
			return NewToken(NE, "<>", line), nil
		}
		return NewToken(LT, "<", line), nil
	case '>':
		lex.Advance()
		if lex.Current == '=' {
			lex.Advance()
			return NewToken(GE, ">=", line), nil
		}
		return NewToken(GT, ">", line), nil
	}

	bad := lex.Current
	lex.Advance()
	return Token{}, &Error{Line: line, Message: fmt.Sprintf("unexpected character %q", bad)}
}

// readString scans a double-quoted literal. Escape sequences are not part
// of the grammar: a string runs until the next '"' or end of input.
func (lex *Lexer) readString() (Token, error) {
	line := lex.Line
	lex.Advance() // consume opening quote
	var sb strings.Builder
	for lex.Current != '"' {
		if lex.Current == 0 || lex.Current == '\n' {
			return Token{}, &Error{Line: line, Message: "unterminated string literal"}
		}
		sb.WriteByte(lex.Current)
		lex.Advance()
	}
	lex.Advance() // consume closing quote
	return NewToken(STRING, sb.String(), line), nil
}

// readNumber scans a run of digits. The grammar has no decimal point and
// no unary minus, so a malformed number can only arise from a digit run
// immediately followed by another letter with no separator, which the
// caller treats as two distinct tokens — not a lex error — matching the
// spirit of TinyBasic's very small numeric grammar.
func (lex *Lexer) readNumber() (Token, error) {
	line := lex.Line
	start := lex.Position
	for isDigit(lex.Current) {
		lex.Advance()
	}
	return NewToken(NUMBER, lex.Src[start:lex.Position], line), nil
}

// readWord scans a keyword or a single-letter variable. REM is special:
// once recognised, the rest of the physical line becomes its literal, so
// that a labelled REM group still consumes the line the way a real
// comment would, and the NEWLINE that follows still terminates the group.
func (lex *Lexer) readWord() (Token, error) {
	line := lex.Line
	start := lex.Position
	for isAlpha(lex.Current) {
		lex.Advance()
	}
	word := lex.Src[start:lex.Position]
	upper := strings.ToUpper(word)

	if kw, ok := lookupKeyword(upper); ok {
		if kw == REM {
			lex.skipSpacesAndComments()
			textStart := lex.Position
			for lex.Current != '\n' && lex.Current != 0 {
				lex.Advance()
			}
			return NewToken(REM, lex.Src[textStart:lex.Position], line), nil
		}
		return NewToken(kw, upper, line), nil
	}

	if len(word) == 1 {
		return NewToken(VAR, upper, line), nil
	}
	return Token{}, &Error{Line: line, Message: fmt.Sprintf("unknown identifier %q (variables must be a single letter A..Z)", word)}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }

// Tokenize runs the lexer to completion and returns every token up to and
// including EOF. Useful for tests and for the debug REPL.
func Tokenize(src string) ([]Token, error) {
	lex := New(src)
	var out []Token
	for {
		tok, err := lex.NextToken()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Type == EOF {
			return out, nil
		}
	}
}
