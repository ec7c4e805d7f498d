// Package cli provides shared utilities for the ui5ls command line tools.
package cli

// Exit codes shared by ui5ls and ui5check.
//
//   - 0: success, nothing to report
//   - 1: errors in the checked views, or the tool itself failed
//   - 2: only warnings, such as uses of deprecated classes
const (
	ExitOK      = 0
	ExitError   = 1
	ExitWarning = 2
)
