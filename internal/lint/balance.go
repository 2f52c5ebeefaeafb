package lint

import (
	"fmt"

	"cpdlint/internal/diag"
	"cpdlint/internal/nesting"
	"cpdlint/internal/scan"
	"cpdlint/internal/source"
)

type delimiterClass struct {
	open  scan.TokenKind
	close scan.TokenKind
	name  string
	sym   string
	csym  string
}

var delimiterClasses = []delimiterClass{
	{open: scan.LParen, close: scan.RParen, name: "parenthesis", sym: "(", csym: ")"},
	{open: scan.LBracket, close: scan.RBracket, name: "bracket", sym: "[", csym: "]"},
	{open: scan.LBrace, close: scan.RBrace, name: "brace", sym: "{", csym: "}"},
}

// checkDelimiters runs three independent balance passes, one per delimiter
// class. Each pass reports the first closer-without-opener immediately and
// returns early to avoid cascades, or the first unmatched opener at end of
// document. The checker holds no state across runs: re-running it over the
// same text yields identical diagnostics.
func checkDelimiters(ctx *Context, rep diag.Reporter) {
	for _, class := range delimiterClasses {
		checkDelimiterClass(ctx, class, rep)
	}
}

func checkDelimiterClass(ctx *Context, class delimiterClass, rep diag.Reporter) {
	st := nesting.New(nesting.DelimiterTable())
	for i, line := range ctx.Stage3.Content.Lines {
		n := uint32(i)
		for _, tok := range scan.Tokens(line) {
			switch tok.Kind {
			case class.open:
				st.Open(class.sym, n, uint32(tok.Start))
			case class.close:
				if _, res := st.Close(class.csym); res == nesting.NoOpener {
					rep.Report(diag.SemCloserWithoutOpener, diag.SevError,
						source.ColSpan(ctx.File, n, tok.Start, tok.End),
						fmt.Sprintf("closing %s %q has no opener", class.name, class.csym), nil)
					return
				}
			}
		}
	}
	if unclosed := st.Unclosed(); len(unclosed) > 0 {
		first := unclosed[0]
		rep.Report(diag.SemUnclosedDelimiter, diag.SevError,
			source.ColSpan(ctx.File, first.Line, int(first.Col), int(first.Col)+1),
			fmt.Sprintf("%s %q is never closed", class.name, class.sym), nil)
	}
}
