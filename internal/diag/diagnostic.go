package diag

import (
	"cpdlint/internal/source"
)

// Note attaches secondary context to a diagnostic (e.g. the first
// definition site of a duplicated macro).
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one finding of the analysis pipeline. Checks create
// diagnostics in stage-local coordinates; the pipeline translates Primary
// (and every note span) into original-document coordinates exactly once
// before the diagnostic leaves the pass.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}
