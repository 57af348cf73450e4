// Command basicstruct transpiles numbered, GOTO-driven TinyBasic-dialect
// source into goto-free structured source. Usage:
//
//	basicstruct transpile program.bas [-o out.go]
//	basicstruct repl
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/akashmaji946/basicstruct/config"
	"github.com/akashmaji946/basicstruct/diagnostics"
	"github.com/akashmaji946/basicstruct/emit"
	"github.com/akashmaji946/basicstruct/parser"
	"github.com/akashmaji946/basicstruct/repl"
	"github.com/akashmaji946/basicstruct/structure"
)

const (
	version = "v0.1.0"
	author  = "the basicstruct maintainers"
	banner = `
 _     _     _            _                   _
| |__ | |__ (_) ___      ___| |_ _ __ _   _  ___| |_
| '_ \| '_ \| |/ __|    / __| __| '__| | | |/ __| __|
| |_) | |_) | |\__ \    \__ \ |_| |  | |_| | (__| |_
|_.__/|_.__/|_||___/____|___/\__|_|   \__,_|\___|\__|
`
	line = "----------------------------------------------------------------"
)

var (
	redColor = color.New(color.FgRed)
	outFlag  string
)

var rootCmd = &cobra.Command{
	Use:          "basicstruct",
	Short:        "basicstruct",
	SilenceUsage: true,
	Long:         "Transpile numbered, GOTO-driven BASIC into goto-free structured Go source.",
}

var transpileCmd = &cobra.Command{
	Use:   "transpile <file.bas>",
	Short: "Transpile a BASIC source file into structured Go source",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranspile,
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive console over the transpiler pipeline",
	RunE:  runRepl,
}

func init() {
	transpileCmd.Flags().StringVarP(&outFlag, "out", "o", "", "output file (defaults to stdout)")
	rootCmd.AddCommand(transpileCmd, replCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTranspile(cmd *cobra.Command, args []string) error {
	logger := diagnostics.NewLogger(os.Stderr)
	inputPath := args[0]

	cfg, err := config.Load(".")
	if err != nil {
		logger.Report(diagnostics.New(diagnostics.StageIO, 0, err))
		return err
	}

	source, err := os.ReadFile(inputPath)
	if err != nil {
		logger.Report(diagnostics.New(diagnostics.StageIO, 0, err))
		return err
	}

	prog, err := parser.ParseProgram(string(source))
	if err != nil {
		logger.Report(diagnostics.New(diagnostics.StageParse, 0, err))
		return err
	}

	sp, err := structure.Build(prog)
	if err != nil {
		logger.Report(diagnostics.New(diagnostics.StageStructure, 0, err))
		return err
	}

	var out string
	switch cfg.Target {
	case "go", "":
		out = emit.Go(sp)
	default:
		err := fmt.Errorf("unknown target %q", cfg.Target)
		logger.Report(diagnostics.New(diagnostics.StageIO, 0, err))
		return err
	}

	if outFlag == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(outFlag, []byte(out), 0o644); err != nil {
		logger.Report(diagnostics.New(diagnostics.StageIO, 0, err))
		return err
	}
	return nil
}

func runRepl(cmd *cobra.Command, args []string) error {
	r := repl.NewRepl(banner, version, author, line, "basicstruct >>> ")
	r.Start(os.Stdout)
	return nil
}
