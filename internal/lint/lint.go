// Package lint implements the staged check set: structural checks over the
// include-resolved text, usage checks over the catalogued text and semantic
// checks over the fully expanded text. Every check collects diagnostics in
// stage-local coordinates; translation to original coordinates happens once,
// in the analyzer, never inside a check.
package lint

import (
	"cpdlint/internal/diag"
	"cpdlint/internal/macro"
	"cpdlint/internal/source"
	"cpdlint/internal/stage"
)

// Context is the immutable input shared by the semantic checks of one pass.
type Context struct {
	File   source.FileID
	Stage2 macro.CatalogResult
	Stage3 macro.ExpandResult
}

// template reports whether a Stage-3 line is macro-definition template text.
func (c *Context) template(line int) bool {
	if line < 0 || line >= len(c.Stage3.Template) {
		return false
	}
	return c.Stage3.Template[line]
}

// Check is one independent validation. Stage names the coordinate space of
// the diagnostics it emits; the analyzer translates from there. Checks are
// free of shared state, so the analyzer may fan them out concurrently over
// the same snapshot.
type Check struct {
	Name  string
	Stage stage.Index
	Run   func(ctx *Context, rep diag.Reporter)
}

// Checks returns the full semantic check set in a stable order.
func Checks() []Check {
	return []Check{
		{Name: "delimiter-balance", Stage: stage.Expanded, Run: checkDelimiters},
		{Name: "control-blocks", Stage: stage.Expanded, Run: checkControlBlocks},
		{Name: "identifiers", Stage: stage.Expanded, Run: checkIdentifiers},
		{Name: "macro-usage", Stage: stage.Catalogued, Run: checkMacroUsage},
		{Name: "operators", Stage: stage.Expanded, Run: checkOperators},
		{Name: "assignments", Stage: stage.Expanded, Run: checkAssignments},
		{Name: "keywords", Stage: stage.Expanded, Run: checkKeywords},
	}
}
