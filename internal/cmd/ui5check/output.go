package ui5check

import (
	"encoding/json"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/albertocavalcante/ui5ls/internal/ci"
	"github.com/albertocavalcante/ui5ls/internal/cli"
	"github.com/albertocavalcante/ui5ls/internal/validation"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

// isTerminal reports whether w is a terminal that accepts colors.
func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func paint(on bool, code, s string) string {
	if !on {
		return s
	}
	return code + s + ansiReset
}

func severityColor(s validation.Severity) string {
	switch s {
	case validation.SeverityError:
		return ansiRed
	case validation.SeverityWarning:
		return ansiYellow
	default:
		return ansiCyan
	}
}

func outputText(w io.Writer, result *Result, color bool) int {
	for _, f := range result.Files {
		for _, d := range f.Diagnostics {
			pos := f.Doc.Position(d.Span.Start)
			cli.Writef(w, "%s:%d:%d: %s: %s [%d]\n",
				paint(color, ansiBold, f.Path), pos.Line+1, pos.Character+1,
				paint(color, severityColor(d.Severity), d.Severity.String()),
				d.Message, d.Code)
		}
	}

	errors := result.ErrorCount()
	warnings := result.WarningCount()
	if errors > 0 || warnings > 0 {
		cli.Writeln(w)
		cli.Writef(w, "Found %d error(s) and %d warning(s) in %d file(s)\n",
			errors, warnings, len(result.Files))
	} else {
		cli.Writef(w, "Checked %d file(s), no issues found\n", len(result.Files))
	}

	return exitCode(errors, warnings)
}

type jsonOutput struct {
	Files       int              `json:"files"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

type jsonDiagnostic struct {
	File     string          `json:"file"`
	Line     int             `json:"line"`
	Column   int             `json:"column"`
	Severity string          `json:"severity"`
	Code     int             `json:"code"`
	Kind     validation.Kind `json:"kind"`
	Message  string          `json:"message"`
}

func outputJSON(w io.Writer, result *Result) int {
	out := jsonOutput{
		Files:       len(result.Files),
		Errors:      result.ErrorCount(),
		Warnings:    result.WarningCount(),
		Diagnostics: []jsonDiagnostic{},
	}

	for _, f := range result.Files {
		for _, d := range f.Diagnostics {
			pos := f.Doc.Position(d.Span.Start)
			out.Diagnostics = append(out.Diagnostics, jsonDiagnostic{
				File:     f.Path,
				Line:     pos.Line + 1,
				Column:   pos.Character + 1,
				Severity: d.Severity.String(),
				Code:     d.Code,
				Kind:     d.Kind,
				Message:  d.Message,
			})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return cli.ExitError
	}
	return exitCode(out.Errors, out.Warnings)
}

// ciReport converts a result for the CI reporters.
func ciReport(result *Result) *ci.Report {
	report := &ci.Report{Files: make([]ci.FileReport, 0, len(result.Files))}
	for _, f := range result.Files {
		fr := ci.FileReport{Path: f.Path}
		for _, d := range f.Diagnostics {
			pos := f.Doc.Position(d.Span.Start)
			fr.Findings = append(fr.Findings, ci.Finding{
				Line:     pos.Line + 1,
				Column:   pos.Character + 1,
				Severity: d.Severity.String(),
				Code:     d.Code,
				Kind:     string(d.Kind),
				Message:  d.Message,
			})
		}
		report.Files = append(report.Files, fr)
	}
	return report
}

func exitCode(errors, warnings int) int {
	if errors > 0 {
		return cli.ExitError
	}
	if warnings > 0 {
		return cli.ExitWarning
	}
	return cli.ExitOK
}
