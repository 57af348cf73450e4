package emit

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashmaji946/basicstruct/parser"
	"github.com/akashmaji946/basicstruct/structure"
)

func TestGo_RendersCallAndProcedure(t *testing.T) {
	src := "10 GOSUB 200\n" +
		"20 END\n" +
		"200 LET S = S+1\n" +
		"210 RETURN\n"
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)

	sp, err := structure.Build(prog)
	require.NoError(t, err)

	out := Go(sp)
	assert.Contains(t, out, "func run() {")
	assert.Contains(t, out, "func f_200() {")
	assert.Contains(t, out, "f_200()")
	assert.Contains(t, out, "return")
	assert.Contains(t, out, "os.Exit(0)")
}

func TestGo_RendersPrintAndLoop(t *testing.T) {
	src := "10 PRINT \"HI\"\n20 GOTO 10\n"
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)

	sp, err := structure.Build(prog)
	require.NoError(t, err)

	out := Go(sp)
	assert.Contains(t, out, "for {")
	assert.Contains(t, out, `fmt.Print("HI")`)
}

func TestGo_RightOperandOfSubAndDivNeedsParensAtEqualPrecedence(t *testing.T) {
	// A-(B-C) must keep its parens in the emitted Go too: Go's own - and /
	// are left-associative, so A - B - C would compile to a different value.
	src := "10 LET A = 9\n20 LET B = 3\n30 LET C = 1\n40 LET X = A-(B-C)\n50 LET Y = A/(B*C)\n60 END\n"
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)

	sp, err := structure.Build(prog)
	require.NoError(t, err)

	out := Go(sp)
	assert.Contains(t, out, "X = A - (B - C)")
	assert.Contains(t, out, "Y = A / (B * C)")
}

// TestGo_TranspilesTestdataProgramsEndToEnd runs every sample program under
// testdata/ through the full parse → structure → emit pipeline, checking
// each against the structural shape its scenario requires.
func TestGo_TranspilesTestdataProgramsEndToEnd(t *testing.T) {
	cases := []struct {
		file   string
		checks []string
	}{
		{"fibonacci.bas", []string{"for {", "if B > 1000 {", "break"}},
		{"hi_loop.bas", []string{"for {", `fmt.Print("HI")`}},
		{"forward_escape.bas", []string{"for {", "fmt.Scan(&X)", "t1 bool", "t1 = t1 || X < 0"}},
		{"gosub_extraction.bas", []string{"func f_200() {", "f_200()", "return"}},
		{"chained_if.bas", []string{"X >= 0 && X <= 9 && Y >= 0 && Y <= 9"}},
		{"lunar_lander.bas", []string{"for {", "\t\tfor {", "break"}},
	}

	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			src, err := os.ReadFile("../testdata/" + tc.file)
			require.NoError(t, err)

			prog, err := parser.ParseProgram(string(src))
			require.NoError(t, err)

			sp, err := structure.Build(prog)
			require.NoError(t, err)

			out := Go(sp)
			for _, want := range tc.checks {
				assert.Contains(t, out, want)
			}
		})
	}
}
