package lint

import (
	"fmt"

	"cpdlint/internal/diag"
	"cpdlint/internal/scan"
	"cpdlint/internal/source"
)

// checkOperators flags invalid operator runs: the same operator twice in a
// row, or any run of three and more. A pair like "* -" is legal (unary minus
// after a binary operator); a pair like "* *" is not.
func checkOperators(ctx *Context, rep diag.Reporter) {
	for i, line := range ctx.Stage3.Content.Lines {
		if ctx.template(i) {
			continue
		}
		n := uint32(i)
		toks := scan.Tokens(line)
		run := 0
		runStart := 0
		for j, tok := range toks {
			if tok.Kind != scan.Operator && tok.Kind != scan.Assign {
				run = 0
				continue
			}
			run++
			if run == 1 {
				runStart = j
				continue
			}
			prev := toks[j-1]
			switch {
			case run >= 3:
				first := toks[runStart]
				rep.Report(diag.SemOperatorSequence, diag.SevError,
					source.ColSpan(ctx.File, n, first.Start, tok.End),
					"sequence of three or more operators", nil)
				run = 0
			case prev.Text == tok.Text:
				rep.Report(diag.SemOperatorSequence, diag.SevError,
					source.ColSpan(ctx.File, n, prev.Start, tok.End),
					fmt.Sprintf("operator %q is repeated", tok.Text), nil)
				run = 0
			case tok.Text == "+" || tok.Text == "-" || tok.Text == "!":
				// унарный знак после бинарного оператора
			default:
				rep.Report(diag.SemOperatorSequence, diag.SevError,
					source.ColSpan(ctx.File, n, prev.Start, tok.End),
					fmt.Sprintf("operator %q cannot follow %q", tok.Text, prev.Text), nil)
				run = 0
			}
		}
	}
}
