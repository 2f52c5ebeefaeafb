package macro

import (
	"fmt"
	"strings"

	"cpdlint/internal/diag"
	"cpdlint/internal/include"
	"cpdlint/internal/nesting"
	"cpdlint/internal/scan"
	"cpdlint/internal/source"
	"cpdlint/internal/stage"
)

// Region is an inclusive range of Stage-2 lines occupied by one macro
// definition (header, body and terminator). The expander passes these through
// untouched and the identifier checks skip them: definition bodies are
// templates, not live code.
type Region struct {
	Start uint32
	End   uint32
}

// Contains reports whether the region covers line n.
func (r Region) Contains(n uint32) bool {
	return n >= r.Start && n <= r.End
}

// CatalogResult is the Stage-2 snapshot: the (textually unchanged) content
// with identity provenance back to Stage 1, the macro table, and the line
// regions occupied by definitions.
type CatalogResult struct {
	Content stage.Content
	Table   *Table
	Regions []Region
}

// InRegion reports whether a Stage-2 line belongs to a definition region.
func (c CatalogResult) InRegion(line uint32) bool {
	for _, r := range c.Regions {
		if r.Contains(line) {
			return true
		}
	}
	return false
}

type cataloguer struct {
	fileID  source.FileID
	rep     diag.Reporter
	src     []string
	table   *Table
	regions []Region

	control *nesting.Stack

	// состояние блочного определения
	inDef    bool
	defStart uint32
	pending  *Definition
}

// Catalog scans the Stage-1 text for macro definitions, validates them,
// detects duplicates and produces the Stage-2 snapshot. Content passes through
// unchanged, so the provenance map is the identity.
func Catalog(res include.Result, fileID source.FileID, rep diag.Reporter) CatalogResult {
	c := &cataloguer{
		fileID:  fileID,
		rep:     rep,
		src:     res.SourceFile,
		table:   NewTable(),
		control: nesting.New(nesting.ControlTable()),
	}
	for i, line := range res.Content.Lines {
		c.scanLine(uint32(i), line)
	}
	if c.inDef {
		// конец документа раньше, чем #end def
		c.rep.Report(diag.MacroUnterminatedDef, diag.SevError,
			source.LineSpan(c.fileID, c.defStart),
			"macro definition is never terminated by '#end def'", nil)
		c.finishDef(uint32(len(res.Content.Lines)) - 1)
	}
	return CatalogResult{
		Content: stage.NewIdentity(res.Content.Lines),
		Table:   c.table,
		Regions: c.regions,
	}
}

func (c *cataloguer) sourceOf(line uint32) string {
	if int(line) < len(c.src) {
		return c.src[line]
	}
	return ""
}

func (c *cataloguer) scanLine(n uint32, line string) {
	toks := scan.Tokens(line)
	if len(toks) == 0 || toks[0].Kind != scan.Directive {
		if c.inDef {
			c.appendBody(line)
		}
		return
	}

	switch toks[0].Text {
	case "def":
		c.scanDef(n, line, toks)
	case "end def":
		if !c.inDef {
			c.rep.Report(diag.MacroEndWithoutDef, diag.SevError,
				tokenSpan(c.fileID, n, toks[0]),
				"'#end def' has no matching '#def'", nil)
			return
		}
		c.finishDef(n)
	case "if", "repeat", "for", "while":
		c.control.Open(toks[0].Text, n, uint32(toks[0].Start))
		if c.inDef {
			c.appendBody(line)
		}
	case "end if", "loop":
		c.control.Close(toks[0].Text)
		if c.inDef {
			c.appendBody(line)
		}
	default:
		if c.inDef {
			c.appendBody(line)
		}
	}
}

func (c *cataloguer) appendBody(line string) {
	if c.pending != nil {
		c.pending.Body = append(c.pending.Body, line)
	}
}

// finishDef closes the open block definition at line n and registers it.
func (c *cataloguer) finishDef(n uint32) {
	c.regions = append(c.regions, Region{Start: c.defStart, End: n})
	if c.pending != nil {
		c.register(c.pending)
	}
	c.inDef = false
	c.pending = nil
}

func (c *cataloguer) register(def *Definition) {
	if c.table.Add(def) {
		return
	}
	first, _ := c.table.Lookup(def.Name)
	c.rep.Report(diag.MacroDuplicate, diag.SevError,
		source.LineSpan(c.fileID, def.Line),
		fmt.Sprintf("macro %q is already defined", def.Name),
		[]diag.Note{{
			Span: source.LineSpan(c.fileID, first.Line),
			Msg:  "first defined here",
		}})
}

func (c *cataloguer) scanDef(n uint32, line string, toks []scan.Token) {
	if c.inDef {
		// вложенное определение: ошибка, флаг не сбрасываем
		c.rep.Report(diag.MacroNestedDef, diag.SevError,
			tokenSpan(c.fileID, n, toks[0]),
			"macro definitions cannot be nested", nil)
		c.appendBody(line)
		return
	}

	if c.control.Depth() > 0 {
		// определение внутри #if/#repeat/... вычисляется один раз, не на
		// каждую итерацию/ветку
		c.rep.Report(diag.MacroDefInControlBlock, diag.SevWarning,
			tokenSpan(c.fileID, n, toks[0]),
			"macro definition inside a control block has no effect", nil)
	}

	def, multiline, _ := c.parseHeader(n, line, toks)
	if !multiline {
		if def != nil {
			c.register(def)
		}
		c.regions = append(c.regions, Region{Start: n, End: n})
		return
	}
	c.inDef = true
	c.defStart = n
	c.pending = def
}

// parseHeader validates "#def name$(p1$; p2$) [= body]". It reports marker and
// shape violations with precise column ranges and returns the definition (nil
// when the name is unusable), whether the definition is block-form, and
// whether the header parsed cleanly.
func (c *cataloguer) parseHeader(n uint32, line string, toks []scan.Token) (*Definition, bool, bool) {
	ok := true
	i := 1

	if i >= len(toks) {
		c.rep.Report(diag.MacroMalformedDef, diag.SevError,
			tokenSpan(c.fileID, n, toks[0]),
			"'#def' requires a macro name", nil)
		return nil, false, false
	}

	var name string
	switch toks[i].Kind {
	case scan.MacroName:
		name = toks[i].Text
	case scan.Ident:
		c.rep.Report(diag.MacroNameNoMarker, diag.SevError,
			tokenSpan(c.fileID, n, toks[i]),
			fmt.Sprintf("macro name %q must end with '$'", toks[i].Text), nil)
		name = toks[i].Text + "$"
		ok = false
	default:
		c.rep.Report(diag.MacroMalformedDef, diag.SevError,
			tokenSpan(c.fileID, n, toks[i]),
			fmt.Sprintf("expected macro name, found %q", toks[i].Text), nil)
		return nil, hasAssign(toks) == -1, false
	}
	i++

	var params []string
	if i < len(toks) && toks[i].Kind == scan.LParen {
		i++
		expectParam := true
		for i < len(toks) && toks[i].Kind != scan.RParen {
			switch {
			case toks[i].Kind == scan.MacroName && expectParam:
				params = append(params, toks[i].Text)
				expectParam = false
			case toks[i].Kind == scan.Ident && expectParam:
				c.rep.Report(diag.MacroParamNoMarker, diag.SevError,
					tokenSpan(c.fileID, n, toks[i]),
					fmt.Sprintf("parameter %q must end with '$'", toks[i].Text), nil)
				params = append(params, toks[i].Text+"$")
				expectParam = false
				ok = false
			case toks[i].Kind == scan.Separator && !expectParam:
				expectParam = true
			default:
				c.rep.Report(diag.MacroMalformedDef, diag.SevError,
					tokenSpan(c.fileID, n, toks[i]),
					fmt.Sprintf("unexpected %q in parameter list", toks[i].Text), nil)
				ok = false
				// не зацикливаемся на мусоре
				expectParam = false
			}
			i++
		}
		if i >= len(toks) {
			c.rep.Report(diag.MacroMalformedDef, diag.SevError,
				source.LineSpan(c.fileID, n),
				"parameter list is not closed", nil)
			ok = false
		} else {
			i++ // RParen
		}
	}

	def := &Definition{
		Name:       name,
		Params:     params,
		Line:       n,
		SourceFile: c.sourceOf(n),
	}

	if i < len(toks) && toks[i].Kind == scan.Assign {
		body := strings.TrimSpace(line[toks[i].End:])
		if body == "" {
			c.rep.Report(diag.MacroMalformedDef, diag.SevError,
				tokenSpan(c.fileID, n, toks[i]),
				"inline macro definition has an empty body", nil)
			ok = false
		}
		def.Body = []string{body}
		if !ok {
			return def, false, false
		}
		return def, false, true
	}

	if i < len(toks) {
		c.rep.Report(diag.MacroMalformedDef, diag.SevError,
			tokenSpan(c.fileID, n, toks[i]),
			fmt.Sprintf("unexpected %q after macro header", toks[i].Text), nil)
		ok = false
	}
	def.Multiline = true
	return def, true, ok
}

func hasAssign(toks []scan.Token) int {
	for i, t := range toks {
		if t.Kind == scan.Assign {
			return i
		}
	}
	return -1
}

func tokenSpan(file source.FileID, line uint32, t scan.Token) source.Span {
	return source.ColSpan(file, line, t.Start, t.End)
}
