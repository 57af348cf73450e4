package cflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashmaji946/basicstruct/parser"
)

func TestBuildTables_GosubTargets(t *testing.T) {
	prog, err := parser.ParseProgram("10 GOSUB 200\n200 LET S = S+1\n210 RETURN\n220 END\n")
	require.NoError(t, err)

	tables := BuildTables(prog)
	assert.True(t, tables.GosubTargets[200])
	assert.Equal(t, 1, tables.LabelIndex[200])
	assert.Equal(t, 3, tables.LabelIndex[220])
}

func TestResolve_UnresolvedGoto(t *testing.T) {
	prog, err := parser.ParseProgram("10 GOTO 999\n")
	require.NoError(t, err)
	tables := BuildTables(prog)
	err = Resolve(prog, tables)
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
}

func TestResolve_GotoInsideChainedIf(t *testing.T) {
	prog, err := parser.ParseProgram("10 IF X>=0 THEN IF X<=9 THEN GOTO 999\n")
	require.NoError(t, err)
	tables := BuildTables(prog)
	err = Resolve(prog, tables)
	require.Error(t, err)
}

func TestExtractProcedures_RemovesBodyFromMain(t *testing.T) {
	prog, err := parser.ParseProgram("10 GOSUB 200\n20 END\n200 LET S = S+1\n210 RETURN\n")
	require.NoError(t, err)
	tables := BuildTables(prog)
	require.NoError(t, Resolve(prog, tables))

	main, procs, err := ExtractProcedures(prog, tables)
	require.NoError(t, err)
	require.Len(t, main, 2)
	assert.Equal(t, 10, main[0].Line)
	assert.Equal(t, 20, main[1].Line)

	require.Len(t, procs, 1)
	assert.Equal(t, "f_200", procs[0].Name)
	require.Len(t, procs[0].Groups, 2)
	assert.Equal(t, 200, procs[0].Groups[0].Line)
	assert.Equal(t, 210, procs[0].Groups[1].Line)
}

func TestExtractProcedures_GotoLeavingProcedureIsError(t *testing.T) {
	prog, err := parser.ParseProgram("10 GOSUB 200\n20 END\n200 GOTO 20\n210 RETURN\n")
	require.NoError(t, err)
	tables := BuildTables(prog)
	require.NoError(t, Resolve(prog, tables))

	_, _, err = ExtractProcedures(prog, tables)
	require.Error(t, err)
}

func TestExtractProcedures_NoReturnIsError(t *testing.T) {
	prog, err := parser.ParseProgram("10 GOSUB 200\n200 LET S = 1\n")
	require.NoError(t, err)
	tables := BuildTables(prog)
	require.NoError(t, Resolve(prog, tables))

	_, _, err = ExtractProcedures(prog, tables)
	require.Error(t, err)
}
