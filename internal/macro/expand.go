package macro

import (
	"strings"

	"cpdlint/internal/diag"
	"cpdlint/internal/scan"
	"cpdlint/internal/source"
	"cpdlint/internal/stage"
)

// MaxDepth bounds nested single-line expansion; maxExpandWork bounds the
// total number of substitution steps over the whole document, so a block
// macro whose body re-invokes itself cannot fan out exponentially. Exceeding
// either limit is fatal for the offending construct only: the invocation is
// left as inert text and the pass continues.
const (
	MaxDepth      = 64
	maxExpandWork = 4096
)

// ExpandResult is the Stage-3 snapshot: the macro-expanded text with
// provenance back to Stage 2, plus a per-line template flag for lines that
// belong to macro definitions (identifier checks skip those).
type ExpandResult struct {
	Content  stage.Content
	Template []bool
}

type expander struct {
	cat    CatalogResult
	fileID source.FileID
	rep    diag.Reporter

	lines    []string
	origin   []uint32
	template []bool

	work          int
	limitReported bool
}

// Expand rewrites the Stage-2 text by substituting macro invocations with
// their bound, parameter-expanded bodies. Expansion is strictly textual and
// recursive up to MaxDepth. Every produced line inherits provenance pointing
// at the invocation line — the line the user edited is what any downstream
// diagnostic must anchor to. Invocations of undefined names are left
// untouched so the identifier check reports them uniformly.
func Expand(cat CatalogResult, fileID source.FileID, rep diag.Reporter) ExpandResult {
	e := &expander{cat: cat, fileID: fileID, rep: rep}
	for i, line := range cat.Content.Lines {
		n := uint32(i)
		if cat.InRegion(n) {
			// определения проходят насквозь как шаблонный текст
			e.emit(line, n, true)
			continue
		}
		for _, out := range e.expandLine(line, n, 0) {
			e.emit(out, n, false)
		}
	}
	return ExpandResult{
		Content:  stage.Content{Lines: e.lines, Origin: e.origin},
		Template: e.template,
	}
}

func (e *expander) emit(line string, origin uint32, template bool) {
	e.lines = append(e.lines, line)
	e.origin = append(e.origin, origin)
	e.template = append(e.template, template)
}

// expandLine returns the full expansion of one line. at is the Stage-2 line
// used to anchor the recursion-limit diagnostic.
func (e *expander) expandLine(line string, at uint32, depth int) []string {
	inv, ok := e.findInvocation(line)
	if !ok {
		return []string{line}
	}

	// работа считается по подстановкам, не по строкам: документ без
	// макросов бюджета не расходует
	e.work++
	if depth > MaxDepth || e.work > maxExpandWork {
		if !e.limitReported {
			e.limitReported = true
			msg := "macro expansion exceeds the recursion limit; invocation left unexpanded"
			if e.work > maxExpandWork {
				msg = "macro expansion exceeds the expansion budget; invocation left unexpanded"
			}
			e.rep.Report(diag.PipeRecursionLimit, diag.SevError,
				source.LineSpan(e.fileID, at), msg, nil)
		}
		return []string{line}
	}

	prefix := line[:inv.start]
	suffix := line[inv.end:]
	body := substitute(inv.def.Body, inv.def.Params, inv.args)

	if len(body) == 1 {
		return e.expandLine(prefix+body[0]+suffix, at, depth+1)
	}

	// блочный макрос: тело разворачивается в собственные строки, хвосты
	// исходной строки приклеиваются к первой и последней
	var out []string
	for i, b := range body {
		assembled := b
		if i == 0 {
			assembled = prefix + assembled
		}
		if i == len(body)-1 {
			assembled += suffix
		}
		out = append(out, e.expandLine(assembled, at, depth+1)...)
	}
	if len(body) == 0 {
		out = append(out, e.expandLine(prefix+suffix, at, depth+1)...)
	}
	return out
}

type invocation struct {
	def   *Definition
	args  []string
	start int
	end   int
}

// findInvocation locates the leftmost resolvable macro invocation on a line:
// a known name with the terminal marker, optionally followed by a
// parenthesized, separator-split argument list.
func (e *expander) findInvocation(line string) (invocation, bool) {
	for _, tok := range scan.Tokens(line) {
		if tok.Kind != scan.MacroName {
			continue
		}
		def, known := e.cat.Table.Lookup(tok.Text)
		if !known {
			continue
		}
		inv := invocation{def: def, start: tok.Start, end: tok.End}
		if tok.End < len(line) && line[tok.End] == '(' {
			args, end, balanced := ParseArgs(line, tok.End)
			if balanced {
				inv.args = args
				inv.end = end
			}
		}
		return inv, true
	}
	return invocation{}, false
}

// ParseArgs reads a balanced parenthesized argument list starting at open.
// Returns the raw argument texts, the offset just past the closing paren and
// whether the list was balanced.
func ParseArgs(line string, open int) ([]string, int, bool) {
	depth := 0
	var args []string
	argStart := open + 1
	for i := open; i < len(line); i++ {
		switch line[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				args = append(args, strings.TrimSpace(line[argStart:i]))
				if len(args) == 1 && args[0] == "" {
					args = nil
				}
				return args, i + 1, true
			}
		case ';', ',':
			if depth == 1 {
				args = append(args, strings.TrimSpace(line[argStart:i]))
				argStart = i + 1
			}
		}
	}
	return nil, 0, false
}

// substitute performs the positional textual substitution of formal
// parameters in the body. Arguments beyond the declared arity are ignored and
// missing ones leave the formal parameter text in place; the arity mismatch
// itself is reported by the usage check, not here.
func substitute(body, params, args []string) []string {
	out := make([]string, len(body))
	for i, line := range body {
		out[i] = substituteLine(line, params, args)
	}
	return out
}

// substituteLine replaces whole formal-parameter tokens only: a parameter x$
// must not fire inside the longer name xx$ or inside quoted text.
func substituteLine(line string, params, args []string) string {
	if len(params) == 0 || len(args) == 0 {
		return line
	}
	byName := make(map[string]string, len(params))
	for i, p := range params {
		if i < len(args) {
			byName[p] = args[i]
		}
	}

	toks := scan.Tokens(line)
	var b strings.Builder
	last := 0
	for _, tok := range toks {
		if tok.Kind != scan.MacroName {
			continue
		}
		repl, ok := byName[tok.Text]
		if !ok {
			continue
		}
		b.WriteString(line[last:tok.Start])
		b.WriteString(repl)
		last = tok.End
	}
	b.WriteString(line[last:])
	return b.String()
}
