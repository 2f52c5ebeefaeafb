package lint

import (
	"fmt"
	"sort"

	"cpdlint/internal/diag"
	"cpdlint/internal/scan"
	"cpdlint/internal/source"
)

// reservedKeywords is the fixed directive keyword set of the language.
// Состав фиксирован: коды наружу стабильны, новые ключевые слова — новая
// версия языка.
var reservedKeywords = map[string]bool{
	"if": true, "else": true, "else if": true,
	"end if": true, "end def": true,
	"repeat": true, "for": true, "while": true, "loop": true,
	"break": true, "continue": true,
	"def": true, "include": true,
	"local": true, "global": true,
	"rad": true, "deg": true, "gra": true,
	"val": true, "equ": true, "noc": true,
	"show": true, "hide": true,
	"pre": true, "post": true,
	"round": true, "format": true,
	"input": true, "pause": true, "md": true,
}

var keywordPool = func() []string {
	pool := make([]string, 0, len(reservedKeywords))
	for k := range reservedKeywords {
		pool = append(pool, k)
	}
	sort.Strings(pool)
	return pool
}()

// checkKeywords validates every #directive keyword against the reserved set,
// suggesting близкие по написанию ключевые слова.
func checkKeywords(ctx *Context, rep diag.Reporter) {
	for i, line := range ctx.Stage3.Content.Lines {
		if ctx.template(i) {
			// тело определения проверяется там, куда оно развёрнуто
			continue
		}
		n := uint32(i)
		for _, tok := range scan.Tokens(line) {
			if tok.Kind != scan.Directive {
				continue
			}
			if reservedKeywords[tok.Text] {
				continue
			}
			msg := fmt.Sprintf("unknown directive keyword '#%s'", tok.Text)
			rep.Report(diag.SemUnknownKeyword, diag.SevError,
				source.ColSpan(ctx.File, n, tok.Start, tok.End),
				withSuggestions(msg, tok.Text, keywordPool), nil)
		}
	}
}
