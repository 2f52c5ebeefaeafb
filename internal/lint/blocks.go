package lint

import (
	"fmt"

	"cpdlint/internal/diag"
	"cpdlint/internal/nesting"
	"cpdlint/internal/scan"
	"cpdlint/internal/source"
)

// checkControlBlocks verifies that every #if/#repeat/#for/#while/#def opened
// in the expanded text is closed by its matching terminator. Mismatched
// terminators are reported immediately at the terminator; unclosed openers
// are reported once each at end of document, anchored at their opening lines.
func checkControlBlocks(ctx *Context, rep diag.Reporter) {
	st := nesting.New(nesting.ControlTable())
	for i, line := range ctx.Stage3.Content.Lines {
		if ctx.template(i) {
			// терминированность определений проверяет каталогизатор; тело
			// макроса балансируется там, куда оно развёрнуто
			continue
		}
		n := uint32(i)
		toks := scan.Tokens(line)
		if len(toks) == 0 || toks[0].Kind != scan.Directive {
			continue
		}
		tok := toks[0]
		switch tok.Text {
		case "if", "repeat", "for", "while", "def":
			st.Open(tok.Text, n, uint32(tok.Start))
		case "end def":
			// непарный '#end def' уже отмечен каталогизатором (CPD2008)
			st.Close(tok.Text)
		case "end if", "loop":
			if _, res := st.Close(tok.Text); res == nesting.NoOpener {
				sp := source.ColSpan(ctx.File, n, tok.Start, tok.End)
				if opener, found := deepMatch(st, tok.Text); found {
					rep.Report(diag.SemMismatchedCloser, diag.SevError, sp,
						fmt.Sprintf("'#%s' cannot close '#%s'; close the inner block first", tok.Text, opener), nil)
				} else {
					rep.Report(diag.SemLoopWithoutOpener, diag.SevError, sp,
						fmt.Sprintf("'#%s' without matching opener", tok.Text), nil)
				}
			}
		}
	}
	for _, frame := range st.Unclosed() {
		rep.Report(diag.SemUnclosedControlBlock, diag.SevError,
			source.ColSpan(ctx.File, frame.Line, int(frame.Col), int(frame.Col)+1),
			fmt.Sprintf("'#%s' is not closed before end of document", frame.Sym), nil)
	}
}

// deepMatch reports whether any open frame below the top could be closed by
// the symbol — then the terminator is mismatched rather than orphaned, and
// the frame in between is the one to name.
func deepMatch(st *nesting.Stack, closer string) (string, bool) {
	table := nesting.ControlTable()[closer]
	frames := st.Unclosed()
	if len(frames) == 0 {
		return "", false
	}
	for _, f := range frames[:len(frames)-1] {
		for _, opener := range table {
			if f.Sym == opener {
				return frames[len(frames)-1].Sym, true
			}
		}
	}
	return "", false
}
