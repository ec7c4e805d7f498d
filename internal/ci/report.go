package ci

// Report is the outcome of checking a set of views and fragments.
type Report struct {
	Files []FileReport `json:"files"`
}

// FileReport holds the findings for one file.
type FileReport struct {
	Path     string    `json:"path"`
	Findings []Finding `json:"findings"`
}

// Finding is a single diagnostic. Line and Column are 1-based.
type Finding struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Code     int    `json:"code"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// IsError reports whether the finding fails the check.
func (f Finding) IsError() bool {
	return f.Severity == "error"
}

// Summary counts findings by outcome.
func (r *Report) Summary() (errors, warnings, files int) {
	for _, f := range r.Files {
		for _, d := range f.Findings {
			if d.IsError() {
				errors++
			} else {
				warnings++
			}
		}
	}
	return errors, warnings, len(r.Files)
}

// HasErrors returns true if any finding is an error.
func (r *Report) HasErrors() bool {
	errors, _, _ := r.Summary()
	return errors > 0
}
