package structured

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashmaji946/basicstruct/ast"
)

func TestNegate_ComparisonComplements(t *testing.T) {
	c := ComparisonCond(ast.Comparison{Left: &ast.VarRef{Name: 'A'}, Op: ast.OpLT, Right: &ast.Number{Value: 9}})
	n := Negate(c)
	require.Len(t, n.Terms, 1)
	assert.Equal(t, ast.OpGE, n.Terms[0].Op)
	assert.Equal(t, And, n.Logic)
}

func TestNegate_BoolFlipsAndDeMorgan(t *testing.T) {
	c := Condition{
		Logic: And,
		Terms: []Term{
			{IsBool: true, Bool: "t1", Negated: false},
			{IsBool: true, Bool: "t2", Negated: true},
		},
	}
	n := Negate(c)
	assert.Equal(t, Or, n.Logic)
	require.Len(t, n.Terms, 2)
	assert.True(t, n.Terms[0].Negated)
	assert.False(t, n.Terms[1].Negated)
}

func TestNegate_Involution(t *testing.T) {
	c := ComparisonCond(ast.Comparison{Left: &ast.VarRef{Name: 'X'}, Op: ast.OpEQ, Right: &ast.Number{Value: 1}})
	twice := Negate(Negate(c))
	assert.Equal(t, c.Terms[0].Op, twice.Terms[0].Op)
	assert.Equal(t, c.Logic, twice.Logic)
}

func TestConditionAnd_Flattens(t *testing.T) {
	a := ComparisonCond(ast.Comparison{Left: &ast.VarRef{Name: 'X'}, Op: ast.OpGE, Right: &ast.Number{Value: 0}})
	b := ComparisonCond(ast.Comparison{Left: &ast.VarRef{Name: 'X'}, Op: ast.OpLE, Right: &ast.Number{Value: 9}})
	combined := a.And(b)
	require.Len(t, combined.Terms, 2)
	assert.Equal(t, And, combined.Logic)
}

func TestCollectVars_FindsUserAndSyntheticVars(t *testing.T) {
	prog := &Program{
		Entry: []Stmt{
			&Let{Var: 'A', Expr: &ast.Number{Value: 0}},
			&Loop{Body: []Stmt{
				&SetBool{Var: "t1", True: true},
				&BreakIf{Cond: BoolCond("t1", false)},
				&Let{Var: 'B', Expr: &ast.VarRef{Name: 'A'}},
			}},
		},
	}
	vars, boolVars := CollectVars(prog)
	assert.Equal(t, []Var{'A', 'B'}, vars)
	assert.Equal(t, []BoolVar{"t1"}, boolVars)
}

func TestValidate_BreakOutsideLoopIsError(t *testing.T) {
	prog := &Program{Entry: []Stmt{&Break{}}}
	err := Validate(prog)
	require.Error(t, err)
}

func TestValidate_ReturnOutsideProcedureIsError(t *testing.T) {
	prog := &Program{Entry: []Stmt{&Return{}}}
	err := Validate(prog)
	require.Error(t, err)
}

func TestValidate_CallToUndefinedProcedureIsError(t *testing.T) {
	prog := &Program{Entry: []Stmt{&Call{Proc: "f_999"}}}
	err := Validate(prog)
	require.Error(t, err)
}

func TestValidate_WellFormedProgramPasses(t *testing.T) {
	prog := &Program{
		Procedures: []*Procedure{
			{Name: "f_200", Body: []Stmt{&Return{}}},
		},
		Entry: []Stmt{
			&Call{Proc: "f_200"},
			&Loop{Body: []Stmt{&Break{}}},
		},
	}
	assert.NoError(t, Validate(prog))
}
