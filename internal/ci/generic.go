package ci

import (
	"fmt"
	"io"
	"strings"
)

// GenericHandler prints a plain summary block.
// Used as fallback for CI systems without an annotation format.
type GenericHandler struct {
	Config Config
	Name   string
}

// Handle prints the summary for generic CI systems.
func (h *GenericHandler) Handle(report *Report, stdout, _ io.Writer) error {
	if h.Config.Quiet || !h.Config.Summary {
		return nil
	}

	errors, warnings, files := report.Summary()

	fmt.Fprintf(stdout, "UI5 Check Results (%s)\n", h.Name)
	fmt.Fprintln(stdout, strings.Repeat("=", 40))
	fmt.Fprintf(stdout, "Files:    %d\n", files)
	fmt.Fprintf(stdout, "Errors:   %d\n", errors)
	fmt.Fprintf(stdout, "Warnings: %d\n", warnings)

	return nil
}
