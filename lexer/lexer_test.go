package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_FibonacciLine(t *testing.T) {
	toks, err := Tokenize("100 PRINT A\n")
	require.NoError(t, err)

	expected := []TokenType{NUMBER, PRINT, VAR, NEWLINE, EOF}
	require.Len(t, toks, len(expected))
	for i, typ := range expected {
		assert.Equal(t, typ, toks[i].Type, "token %d", i)
	}
	assert.Equal(t, "100", toks[0].Literal)
	assert.Equal(t, "A", toks[2].Literal)
}

func TestTokenize_RelationalOperators(t *testing.T) {
	toks, err := Tokenize("X<=9 X>=0 X<>1 X=1 X<1 X>1")
	require.NoError(t, err)

	var ops []TokenType
	for _, tok := range toks {
		switch tok.Type {
		case LE, GE, NE, EQ, LT, GT:
			ops = append(ops, tok.Type)
		}
	}
	assert.Equal(t, []TokenType{LE, GE, NE, EQ, LT, GT}, ops)
}

func TestTokenize_StringLiteral(t *testing.T) {
	toks, err := Tokenize(`10 PRINT "HI"` + "\n")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(toks), 3)
	assert.Equal(t, STRING, toks[2].Type)
	assert.Equal(t, "HI", toks[2].Literal)
}

func TestTokenize_UnterminatedString(t *testing.T) {
	_, err := Tokenize(`10 PRINT "HI`)
	require.Error(t, err)
	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, 1, lexErr.Line)
}

func TestTokenize_RemKeepsLineNumber(t *testing.T) {
	toks, err := Tokenize("20 REM this is a comment\n30 END\n")
	require.NoError(t, err)
	assert.Equal(t, REM, toks[1].Type)
	assert.Equal(t, "this is a comment", toks[1].Literal)
	assert.Equal(t, 1, toks[1].Line)
	assert.Equal(t, 2, toks[3].Line)
}

func TestTokenize_MultiLetterNonKeywordIsError(t *testing.T) {
	_, err := Tokenize("10 LET AB = 1\n")
	require.Error(t, err)
}

func TestTokenize_CRLF(t *testing.T) {
	toks, err := Tokenize("10 END\r\n20 END\r\n")
	require.NoError(t, err)
	var lines []int
	for _, tok := range toks {
		if tok.Type == NUMBER {
			lines = append(lines, tok.Line)
		}
	}
	assert.Equal(t, []int{1, 2}, lines)
}
