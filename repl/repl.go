// Package repl implements an interactive console for building up a
// TinyBasic-dialect program line by line and inspecting it at every
// stage of the pipeline — tokens, the numbered AST, and the structured,
// goto-free program — before ever writing a file. It borrows its shape
// (readline for editing/history, color for feedback, panic recovery
// around each command) directly from the interpreter REPL this project
// started from.
package repl

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/akashmaji946/basicstruct/ast"
	"github.com/akashmaji946/basicstruct/emit"
	"github.com/akashmaji946/basicstruct/lexer"
	"github.com/akashmaji946/basicstruct/parser"
	"github.com/akashmaji946/basicstruct/structure"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl holds the cosmetic configuration for an interactive session: the
// banner shown at startup, version/author strings, and the prompt.
type Repl struct {
	Banner  string
	Version string
	Author  string
	Line    string
	Prompt  string
}

// NewRepl builds a Repl ready to Start.
func NewRepl(banner, version, author, line, prompt string) *Repl {
	return &Repl{Banner: banner, Version: version, Author: author, Line: line, Prompt: prompt}
}

func (r *Repl) printBanner(w io.Writer) {
	blueColor.Fprintf(w, "%s\n", r.Line)
	greenColor.Fprintf(w, "%s\n", r.Banner)
	blueColor.Fprintf(w, "%s\n", r.Line)
	yellowColor.Fprintln(w, "Version: "+r.Version+" | Author: "+r.Author)
	blueColor.Fprintf(w, "%s\n", r.Line)
	cyanColor.Fprintln(w, "Type numbered BASIC lines, one per prompt.")
	cyanColor.Fprintln(w, "  .tokens   show the tokens lexed so far")
	cyanColor.Fprintln(w, "  .ast      show the numbered AST built so far")
	cyanColor.Fprintln(w, "  .run      structure the buffered program and show the emitted Go source")
	cyanColor.Fprintln(w, "  .reset    discard the buffered program")
	cyanColor.Fprintln(w, "  .exit     quit")
	blueColor.Fprintf(w, "%s\n", r.Line)
}

// Start runs the read-eval-print loop until the user exits or EOF.
func (r *Repl) Start(w io.Writer) {
	r.printBanner(w)

	rl, err := readline.New(r.Prompt)
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	var buf strings.Builder

	for {
		line, err := rl.Readline()
		if err != nil {
			w.Write([]byte("Good bye!\n"))
			return
		}
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		rl.SaveHistory(line)

		switch strings.TrimSpace(line) {
		case ".exit":
			w.Write([]byte("Good bye!\n"))
			return
		case ".reset":
			buf.Reset()
			cyanColor.Fprintln(w, "buffer cleared")
			continue
		case ".tokens":
			r.showTokens(w, buf.String())
			continue
		case ".ast":
			r.showAST(w, buf.String())
			continue
		case ".run":
			r.showStructured(w, buf.String())
			continue
		}

		buf.WriteString(line)
		buf.WriteString("\n")
	}
}

func (r *Repl) showTokens(w io.Writer, src string) {
	defer r.recoverPanic(w)
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		redColor.Fprintf(w, "[LEX ERROR] %v\n", err)
		return
	}
	for _, tok := range tokens {
		yellowColor.Fprintf(w, "%-10s %-15q line %d\n", tok.Type, tok.Literal, tok.Line)
	}
}

func (r *Repl) showAST(w io.Writer, src string) {
	defer r.recoverPanic(w)
	prog, err := parser.ParseProgram(src)
	if err != nil {
		redColor.Fprintf(w, "[PARSE ERROR] %v\n", err)
		return
	}
	yellowColor.Fprint(w, ast.Print(prog))
}

func (r *Repl) showStructured(w io.Writer, src string) {
	defer r.recoverPanic(w)
	prog, err := parser.ParseProgram(src)
	if err != nil {
		redColor.Fprintf(w, "[PARSE ERROR] %v\n", err)
		return
	}
	sp, err := structure.Build(prog)
	if err != nil {
		redColor.Fprintf(w, "[STRUCTURE ERROR] %v\n", err)
		return
	}
	yellowColor.Fprint(w, emit.Go(sp))
}

func (r *Repl) recoverPanic(w io.Writer) {
	if rec := recover(); rec != nil {
		redColor.Fprintf(w, "[RUNTIME ERROR] %v\n", rec)
	}
}
