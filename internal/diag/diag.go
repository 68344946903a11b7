// Package diag is the toolchain's one place for trace/diagnostic output.
// Neither the teacher nor anything else in the retrieved dependency corpus
// pulls in a structured logging library; like the teacher, vc8 writes
// human-readable lines to stderr, gated behind an explicit verbosity flag
// rather than a log-level hierarchy.
package diag

import (
	"fmt"
	"io"
	"os"
)

// Logger writes verbose trace output when enabled, and is silent otherwise.
type Logger struct {
	Verbose bool
	Out     io.Writer
}

// New returns a Logger writing to stderr.
func New(verbose bool) *Logger {
	return &Logger{Verbose: verbose, Out: os.Stderr}
}

// Tracef prints a diagnostic line only when verbose mode is on.
func (l *Logger) Tracef(format string, args ...any) {
	if l == nil || !l.Verbose {
		return
	}
	fmt.Fprintf(l.Out, format+"\n", args...)
}

// Stage prints a pipeline-stage banner in verbose mode, used by `vc8 compile
// --trace` (which turns verbose mode on for its logger) to show the
// lexer/parser/codegen handoff.
func (l *Logger) Stage(name, body string) {
	if l == nil || !l.Verbose {
		return
	}
	fmt.Fprintf(l.Out, "--- %s ---\n%s\n", name, body)
}
