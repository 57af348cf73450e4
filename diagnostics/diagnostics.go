// Package diagnostics implements the error taxonomy every pass in the
// pipeline reports through: lexing, parsing, control-flow resolution,
// and structuring each surface a distinct Stage, logged with logrus the
// way sqlcode's cmd package logs database operations — structured
// fields first, a single human-readable line second.
package diagnostics

import (
	"io"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Stage names which pass in the pipeline produced a Diagnostic.
type Stage string

const (
	StageLex       Stage = "lex"
	StageParse     Stage = "parse"
	StageResolve   Stage = "resolve"
	StageStructure Stage = "structure"
	StageIO        Stage = "io"
)

// Diagnostic is one reportable failure: which stage produced it, the
// source line it concerns (0 when not line-specific, e.g. an IOError),
// and the underlying cause.
type Diagnostic struct {
	Stage Stage
	Line  int
	Cause error
}

func (d *Diagnostic) Error() string {
	if d.Line > 0 {
		return string(d.Stage) + " error at line " + strconv.Itoa(d.Line) + ": " + d.Cause.Error()
	}
	return string(d.Stage) + " error: " + d.Cause.Error()
}

func (d *Diagnostic) Unwrap() error { return d.Cause }

// New wraps cause as a Diagnostic for the given stage and line.
func New(stage Stage, line int, cause error) *Diagnostic {
	return &Diagnostic{Stage: stage, Line: line, Cause: cause}
}

// Logger wraps a logrus.Logger configured the way this pipeline wants
// its diagnostics shaped: one structured entry per Diagnostic, with
// pass/line/cause fields a log aggregator can filter on.
type Logger struct {
	*logrus.Logger
}

// NewLogger builds a Logger writing to out. Text formatting (rather than
// JSON) matches a CLI tool meant to be read by a human at a terminal.
func NewLogger(out io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return &Logger{Logger: l}
}

// Report logs d as a single structured error entry.
func (l *Logger) Report(d *Diagnostic) {
	entry := l.WithFields(logrus.Fields{
		"pass":  string(d.Stage),
		"cause": d.Cause.Error(),
	})
	if d.Line > 0 {
		entry = entry.WithField("line", d.Line)
	}
	entry.Error(d.Error())
}
