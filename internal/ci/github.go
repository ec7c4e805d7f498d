package ci

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// GitHubHandler outputs findings in GitHub Actions format.
type GitHubHandler struct {
	Config Config
}

// Handle writes workflow annotations, the job summary and step outputs.
func (h *GitHubHandler) Handle(report *Report, stdout, stderr io.Writer) error {
	if h.Config.Annotations {
		h.writeAnnotations(report, stdout)
	}

	if h.Config.Summary {
		if err := h.writeSummary(report); err != nil {
			fmt.Fprintf(stderr, "ui5check: warning: writing summary: %v\n", err)
		}
	}

	if err := h.writeOutputs(report); err != nil {
		fmt.Fprintf(stderr, "ui5check: warning: writing outputs: %v\n", err)
	}

	return nil
}

// writeAnnotations outputs GitHub workflow commands for PR annotations.
func (h *GitHubHandler) writeAnnotations(report *Report, w io.Writer) {
	for _, file := range report.Files {
		relPath := relative(file.Path)
		for _, f := range file.Findings {
			command := "warning"
			switch {
			case f.IsError():
				command = "error"
			case f.Severity == "info" || f.Severity == "hint":
				command = "notice"
			}
			fmt.Fprintf(w, "::%s file=%s,line=%d,col=%d,title=%s::%s\n",
				command, escapeProperty(relPath), f.Line, f.Column,
				escapeProperty(fmt.Sprintf("%s (%d)", f.Kind, f.Code)),
				escapeAnnotation(f.Message))
		}
	}
}

// writeSummary writes Markdown summary to $GITHUB_STEP_SUMMARY.
func (h *GitHubHandler) writeSummary(report *Report) error {
	summaryPath := os.Getenv("GITHUB_STEP_SUMMARY")
	if summaryPath == "" {
		return nil
	}

	f, err := os.OpenFile(summaryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	errors, warnings, files := report.Summary()

	fmt.Fprintln(f, "## UI5 View Check")
	fmt.Fprintln(f)
	fmt.Fprintln(f, "| Result | Count |")
	fmt.Fprintln(f, "|--------|-------|")
	fmt.Fprintf(f, "| Files | %d |\n", files)
	fmt.Fprintf(f, "| Errors | %d |\n", errors)
	fmt.Fprintf(f, "| Warnings | %d |\n", warnings)
	fmt.Fprintln(f)

	if errors+warnings == 0 {
		return nil
	}

	fmt.Fprintln(f, "<details>")
	fmt.Fprintln(f, "<summary>Findings</summary>")
	fmt.Fprintln(f)
	fmt.Fprintln(f, "```")
	for _, file := range report.Files {
		for _, d := range file.Findings {
			fmt.Fprintf(f, "%s:%d:%d: %s: %s [%d]\n",
				relative(file.Path), d.Line, d.Column, d.Severity, d.Message, d.Code)
		}
	}
	fmt.Fprintln(f, "```")
	fmt.Fprintln(f, "</details>")

	return nil
}

// writeOutputs writes step outputs to $GITHUB_OUTPUT.
func (h *GitHubHandler) writeOutputs(report *Report) error {
	outputPath := os.Getenv("GITHUB_OUTPUT")
	if outputPath == "" {
		return nil
	}

	f, err := os.OpenFile(outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	errors, warnings, files := report.Summary()

	fmt.Fprintf(f, "errors=%d\n", errors)
	fmt.Fprintf(f, "warnings=%d\n", warnings)
	fmt.Fprintf(f, "files=%d\n", files)

	return nil
}

// relative makes path relative to the working directory when possible.
func relative(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// escapeAnnotation escapes special characters for workflow command data.
func escapeAnnotation(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}

// escapeProperty escapes workflow command property values.
func escapeProperty(s string) string {
	s = escapeAnnotation(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	s = strings.ReplaceAll(s, ",", "%2C")
	return s
}
