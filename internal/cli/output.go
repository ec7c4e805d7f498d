package cli

import (
	"fmt"
	"io"
)

// The helpers below write CLI output and ignore write errors: when stdout
// or stderr is gone there is nowhere left to report the failure, and the
// exit code still reflects the outcome.

// Writef writes formatted output to w.
func Writef(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// Writeln writes its operands and a newline to w.
//
//	cli.Writeln(stderr, "ui5check: no files specified")
//	cli.Writeln(stdout) // blank line
func Writeln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}

// Write writes s to w, typically a diff or a rendered report.
func Write(w io.Writer, s string) {
	_, _ = io.WriteString(w, s)
}
