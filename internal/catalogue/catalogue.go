// Package catalogue builds the structured definition metadata consumed by
// navigation tooling: macros, functions, variables and custom units, each
// with its original-document line and source file tag.
package catalogue

import (
	"strings"

	"cpdlint/internal/macro"
	"cpdlint/internal/scan"
	"cpdlint/internal/stage"
)

// Entry is one named definition.
type Entry struct {
	Name string
	// Expression is the defining text, "" when not applicable.
	Expression string
	// Line is in original-document coordinates.
	Line uint32
	// SourceFile is "" for local definitions, the included filename otherwise.
	SourceFile string
}

// MacroEntry extends Entry with macro-specific metadata.
type MacroEntry struct {
	Entry
	Params    []string
	Multiline bool
}

// DuplicateEntry surfaces a macro name collision in original coordinates.
type DuplicateEntry struct {
	Name      string
	FirstLine uint32
	DupLine   uint32
}

// Index is the whole catalogue of one successful pass. It is built once and
// replaced wholesale on the next pass; никто его не мутирует по месту.
type Index struct {
	Macros     []MacroEntry
	Duplicates []DuplicateEntry
	Functions  []Entry
	Variables  []Entry
	Units      []Entry
}

// Build assembles the catalogue from the pipeline snapshots. All lines are
// translated to original coordinates here, once.
func Build(cat macro.CatalogResult, exp macro.ExpandResult, srcFiles []string, tr *stage.Translator) *Index {
	idx := &Index{}

	for _, def := range cat.Table.Definitions() {
		expr := ""
		if !def.Multiline && len(def.Body) == 1 {
			expr = def.Body[0]
		}
		idx.Macros = append(idx.Macros, MacroEntry{
			Entry: Entry{
				Name:       def.Name,
				Expression: expr,
				Line:       tr.ToOriginal(stage.Catalogued, def.Line),
				SourceFile: def.SourceFile,
			},
			Params:    def.Params,
			Multiline: def.Multiline,
		})
	}
	for _, dup := range cat.Table.Duplicates() {
		idx.Duplicates = append(idx.Duplicates, DuplicateEntry{
			Name:      dup.Name,
			FirstLine: tr.ToOriginal(stage.Catalogued, dup.FirstLine),
			DupLine:   tr.ToOriginal(stage.Catalogued, dup.DupLine),
		})
	}

	seenFn := map[string]bool{}
	seenVar := map[string]bool{}
	seenUnit := map[string]bool{}
	for i, line := range exp.Content.Lines {
		if i < len(exp.Template) && exp.Template[i] {
			continue
		}
		n := uint32(i)
		toks := scan.Tokens(line)
		name, kind, expr := classify(line, toks)
		if name == "" {
			continue
		}
		entry := Entry{
			Name:       name,
			Expression: expr,
			Line:       tr.ToOriginal(stage.Expanded, n),
			SourceFile: sourceTag(srcFiles, tr, n),
		}
		switch kind {
		case kindFunction:
			if !seenFn[name] {
				seenFn[name] = true
				idx.Functions = append(idx.Functions, entry)
			}
		case kindVariable:
			if !seenVar[name] {
				seenVar[name] = true
				idx.Variables = append(idx.Variables, entry)
			}
		case kindUnit:
			if !seenUnit[name] {
				seenUnit[name] = true
				idx.Units = append(idx.Units, entry)
			}
		}
	}
	return idx
}

type defKind uint8

const (
	kindNone defKind = iota
	kindFunction
	kindVariable
	kindUnit
)

func classify(line string, toks []scan.Token) (string, defKind, string) {
	if len(toks) >= 2 && toks[0].Kind == scan.Ident {
		if toks[1].Kind == scan.Assign {
			return toks[0].Text, kindVariable, strings.TrimSpace(line[toks[1].End:])
		}
		if toks[1].Kind == scan.LParen {
			for i := 2; i < len(toks)-1; i++ {
				if toks[i].Kind == scan.RParen {
					if toks[i+1].Kind == scan.Assign {
						return toks[0].Text, kindFunction, strings.TrimSpace(line[toks[i+1].End:])
					}
					break
				}
			}
		}
	}
	if strings.HasPrefix(strings.TrimLeft(line, " \t"), ".") &&
		len(toks) >= 3 && toks[1].Kind == scan.Ident && toks[2].Kind == scan.Assign {
		return toks[1].Text, kindUnit, strings.TrimSpace(line[toks[2].End:])
	}
	return "", kindNone, ""
}

// sourceTag resolves the Stage-1 source file tag of an expanded line by
// walking provenance back to the resolved text. srcFiles is indexed by
// Stage-1 line.
func sourceTag(srcFiles []string, tr *stage.Translator, line uint32) string {
	if srcFiles == nil {
		return ""
	}
	s1 := tr.To(stage.Expanded, stage.Resolved, line)
	if int(s1) < len(srcFiles) {
		return srcFiles[s1]
	}
	return ""
}
