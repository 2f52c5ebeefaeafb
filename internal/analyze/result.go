package analyze

import (
	"cpdlint/internal/catalogue"
	"cpdlint/internal/diag"
	"cpdlint/internal/source"
	"cpdlint/internal/stage"
)

// Result is the complete outcome of one analysis pass. Diagnostics are in
// original-document coordinates, sorted and deduplicated. Stage snapshots are
// kept for the expand/debug surfaces; they are immutable after the pass.
type Result struct {
	Path string
	Hash source.Digest

	Diagnostics *diag.Bag
	Catalogue   *catalogue.Index

	Stage1 stage.Content
	Stage2 stage.Content
	Stage3 stage.Content

	// Stale is set when a newer pass for the same document was requested
	// while this one was running; the caller must not publish these results.
	Stale bool
}

// HasErrors reports whether the pass produced at least one error.
func (r *Result) HasErrors() bool {
	return r.Diagnostics.HasErrors()
}
