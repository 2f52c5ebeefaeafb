package lint

import (
	"fmt"

	"cpdlint/internal/diag"
	"cpdlint/internal/macro"
	"cpdlint/internal/scan"
	"cpdlint/internal/source"
)

// checkMacroUsage compares every macro invocation against the declared arity.
// It reads the Stage-2 text: invocations are still visible there, while the
// expander has already rewritten them out of the Stage-3 text. The expander
// still substitutes whatever arguments it did receive; only this check
// reports the count mismatch.
func checkMacroUsage(ctx *Context, rep diag.Reporter) {
	for i, line := range ctx.Stage2.Content.Lines {
		n := uint32(i)
		if ctx.Stage2.InRegion(n) {
			continue
		}
		for _, tok := range scan.Tokens(line) {
			if tok.Kind != scan.MacroName {
				continue
			}
			def, known := ctx.Stage2.Table.Lookup(tok.Text)
			if !known {
				continue
			}
			argc := 0
			end := tok.End
			if tok.End < len(line) && line[tok.End] == '(' {
				args, argsEnd, balanced := macro.ParseArgs(line, tok.End)
				if balanced {
					argc = len(args)
					end = argsEnd
				}
			}
			if argc == def.Arity() {
				continue
			}
			rep.Report(diag.SemMacroArity, diag.SevError,
				source.ColSpan(ctx.File, n, tok.Start, end),
				fmt.Sprintf("macro %q expects %d argument(s), got %d",
					tok.Text, def.Arity(), argc), nil)
		}
	}
}
