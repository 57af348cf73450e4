package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashmaji946/basicstruct/parser"
	"github.com/akashmaji946/basicstruct/structured"
)

func TestBuild_UnconditionalBackwardLoop(t *testing.T) {
	prog, err := parser.ParseProgram("10 PRINT \"HI\"\n20 GOTO 10\n")
	require.NoError(t, err)

	sp, err := Build(prog)
	require.NoError(t, err)
	require.Len(t, sp.Entry, 1)

	loop, ok := sp.Entry[0].(*structured.Loop)
	require.True(t, ok)
	require.Len(t, loop.Body, 1)
	_, ok = loop.Body[0].(*structured.Print)
	assert.True(t, ok)
}

func TestBuild_ConditionalBackwardLoopIsDoWhile(t *testing.T) {
	src := "10 LET A = 0\n" +
		"20 LET B = 1\n" +
		"30 PRINT A\n" +
		"40 LET C = A+B\n" +
		"50 LET A = B\n" +
		"60 LET B = C\n" +
		"70 IF B<1000 THEN GOTO 30\n" +
		"80 END\n"
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)

	sp, err := Build(prog)
	require.NoError(t, err)
	require.NoError(t, structured.Validate(sp))

	var loop *structured.Loop
	for _, s := range sp.Entry {
		if l, ok := s.(*structured.Loop); ok {
			loop = l
		}
	}
	require.NotNil(t, loop)

	last := loop.Body[len(loop.Body)-1]
	breakIf, ok := last.(*structured.BreakIf)
	require.True(t, ok)
	require.Len(t, breakIf.Cond.Terms, 1)
	assert.False(t, breakIf.Cond.Terms[0].IsBool)
}

func TestBuild_ForwardEscapeFromLoopIntroducesSyntheticBool(t *testing.T) {
	src := "10 LET X = 0\n" +
		"20 IF X>=5 THEN GOTO 100\n" +
		"30 LET X = X+1\n" +
		"40 GOTO 20\n" +
		"100 PRINT X\n"
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)

	sp, err := Build(prog)
	require.NoError(t, err)
	require.NoError(t, structured.Validate(sp))

	require.Len(t, sp.BoolVars, 1)

	var loop *structured.Loop
	var trailingPrint bool
	for _, s := range sp.Entry {
		switch st := s.(type) {
		case *structured.Loop:
			loop = st
		case *structured.Print:
			trailingPrint = true
		}
	}
	require.NotNil(t, loop)
	assert.True(t, trailingPrint)

	var sawSetBool, sawBreakIf bool
	for _, s := range loop.Body {
		switch s.(type) {
		case *structured.SetBool:
			sawSetBool = true
		case *structured.BreakIf:
			sawBreakIf = true
		}
	}
	assert.True(t, sawSetBool)
	assert.True(t, sawBreakIf)
}

func TestBuild_NestedBackwardLoopsNestCorrectly(t *testing.T) {
	// The inner loop's back edge (line 30 -> 20) comes before the outer
	// loop's back edge (line 60 -> 10) in source order, so build must pick
	// the outer one first or the inner back edge is left stranded outside
	// any range that contains its target.
	src := "10 LET F = 100\n" +
		"20 INPUT B\n" +
		"30 IF B<0 THEN GOTO 20\n" +
		"40 LET F = F-B\n" +
		"50 PRINT F\n" +
		"60 IF F>0 THEN GOTO 10\n" +
		"70 END\n"
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)

	sp, err := Build(prog)
	require.NoError(t, err)
	require.NoError(t, structured.Validate(sp))

	var outer *structured.Loop
	for _, s := range sp.Entry {
		if l, ok := s.(*structured.Loop); ok {
			outer = l
		}
	}
	require.NotNil(t, outer)

	var inner *structured.Loop
	for _, s := range outer.Body {
		if l, ok := s.(*structured.Loop); ok {
			inner = l
		}
	}
	require.NotNil(t, inner, "inner retry loop must be nested inside the outer loop's body")

	last := inner.Body[len(inner.Body)-1]
	breakIf, ok := last.(*structured.BreakIf)
	require.True(t, ok)
	assert.False(t, breakIf.Cond.Terms[0].IsBool)

	outerLast := outer.Body[len(outer.Body)-1]
	outerBreakIf, ok := outerLast.(*structured.BreakIf)
	require.True(t, ok)
	assert.False(t, outerBreakIf.Cond.Terms[0].IsBool)
}

func TestBuild_GosubBecomesCallIntoProcedure(t *testing.T) {
	src := "10 GOSUB 200\n" +
		"20 END\n" +
		"200 LET S = S+1\n" +
		"210 RETURN\n"
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)

	sp, err := Build(prog)
	require.NoError(t, err)
	require.NoError(t, structured.Validate(sp))

	require.Len(t, sp.Procedures, 1)
	assert.Equal(t, "f_200", sp.Procedures[0].Name)

	call, ok := sp.Entry[0].(*structured.Call)
	require.True(t, ok)
	assert.Equal(t, "f_200", call.Proc)
}

func TestBuild_ChainedIfFlattensToConjunction(t *testing.T) {
	src := "10 IF X>=0 THEN IF X<=9 THEN IF Y>=0 THEN IF Y<=9 THEN GOTO 30\n" +
		"20 PRINT \"MISS\"\n" +
		"30 PRINT \"HIT\"\n"
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)

	sp, err := Build(prog)
	require.NoError(t, err)
	require.NoError(t, structured.Validate(sp))

	ifStmt, ok := sp.Entry[0].(*structured.If)
	require.True(t, ok)
	require.Len(t, ifStmt.Cond.Terms, 4)
	// The forward jump skips line 20, so line 20 is guarded by the negated
	// conjunction, which De Morgan turns into a four-term disjunction.
	assert.Equal(t, structured.Or, ifStmt.Cond.Logic)
}

func TestBuild_UnresolvedGotoInProcedureIsError(t *testing.T) {
	src := "10 GOSUB 200\n" +
		"20 END\n" +
		"200 GOTO 999\n" +
		"210 RETURN\n"
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)

	_, err = Build(prog)
	require.Error(t, err)
}
