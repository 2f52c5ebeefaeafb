package lint

import (
	"cpdlint/internal/diag"
	"cpdlint/internal/scan"
	"cpdlint/internal/source"
)

// checkAssignments validates assignment shape per statement: a statement must
// not start with '=' and may contain at most one non-comparison '='.
// Comparison operators (==, <=, >=, !=) are scanned as Operator tokens and do
// not count.
func checkAssignments(ctx *Context, rep diag.Reporter) {
	for i, line := range ctx.Stage3.Content.Lines {
		if ctx.template(i) {
			continue
		}
		n := uint32(i)
		toks := scan.Tokens(line)
		if len(toks) == 0 {
			continue
		}
		if toks[0].Kind == scan.Directive {
			// директивные строки — не выражения-присваивания
			continue
		}
		if toks[0].Kind == scan.Assign {
			rep.Report(diag.SemMalformedAssignment, diag.SevError,
				source.ColSpan(ctx.File, n, toks[0].Start, toks[0].End),
				"statement cannot start with '='", nil)
			continue
		}
		seen := 0
		for _, tok := range toks {
			if tok.Kind != scan.Assign {
				continue
			}
			seen++
			if seen == 2 {
				rep.Report(diag.SemMalformedAssignment, diag.SevError,
					source.ColSpan(ctx.File, n, tok.Start, tok.End),
					"multiple assignments in one statement", nil)
				break
			}
		}
	}
}
