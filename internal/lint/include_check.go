package lint

import (
	"strings"

	"cpdlint/internal/diag"
	"cpdlint/internal/include"
	"cpdlint/internal/source"
	"cpdlint/internal/stage"
)

// IncludeSyntax is the Stage-1 structural check: any #include directive still
// present in the resolved text failed to resolve; classify it and flag it.
// Directives the resolver flagged itself (cycle, missing target) classify as
// well-formed here and produce nothing.
func IncludeSyntax(content stage.Content, file source.FileID, rep diag.Reporter) {
	for i, line := range content.Lines {
		if !include.IsDirective(line) {
			continue
		}
		_, code := include.Classify(line)
		if code == 0 {
			continue
		}
		start := len(line) - len(strings.TrimLeft(line, " \t"))
		sp := source.ColSpan(file, uint32(i), start, len(line))
		var msg string
		switch code {
		case diag.StructMissingFilename:
			msg = "'#include' requires a filename"
		case diag.StructInvalidPath:
			msg = "include path must be a simple relative filename; quote names containing spaces"
		default:
			msg = "malformed '#include' statement"
		}
		rep.Report(code, diag.SevError, sp, msg, nil)
	}
}
