package stage

import (
	"cpdlint/internal/diag"
	"cpdlint/internal/source"
)

// Translator composes the stored provenance maps so that a line discovered at
// any stage resolves to an original-document line. It is a pure function of
// the three maps; the transformations themselves are never re-run.
type Translator struct {
	// maps[Resolved], maps[Catalogued], maps[Expanded]; Original has no map.
	maps [4]Content
}

// NewTranslator captures the three stage snapshots of one pass.
func NewTranslator(resolved, catalogued, expanded Content) *Translator {
	t := &Translator{}
	t.maps[Resolved] = resolved
	t.maps[Catalogued] = catalogued
	t.maps[Expanded] = expanded
	return t
}

// To resolves a line from one stage's coordinates into an earlier stage's,
// composing provenance maps stage by stage.
func (t *Translator) To(from, to Index, line uint32) uint32 {
	for s := from; s > to; s-- {
		line = t.maps[s].OriginOf(line)
	}
	return line
}

// ToOriginal resolves a line expressed in the given stage's coordinates to an
// original-document line.
func (t *Translator) ToOriginal(from Index, line uint32) uint32 {
	return t.To(from, Original, line)
}

// Span rewrites a stage-local span into original coordinates. Columns are
// carried over untouched: stage transformations are line-granular, and the
// invocation/directive line the user edited is the anchor we want.
func (t *Translator) Span(from Index, sp source.Span) source.Span {
	return sp.WithLine(t.ToOriginal(from, sp.Line))
}

// Diagnostic rewrites one stage-local diagnostic, primary span and notes.
func (t *Translator) Diagnostic(from Index, d diag.Diagnostic) diag.Diagnostic {
	d.Primary = t.Span(from, d.Primary)
	for i := range d.Notes {
		d.Notes[i].Span = t.Span(from, d.Notes[i].Span)
	}
	return d
}

// Bag translates a whole bag of diagnostics collected at one stage.
// Вызывается ровно один раз на выходе из прохода: повторная трансляция
// уже оригинальных координат не предусмотрена.
func (t *Translator) Bag(from Index, bag *diag.Bag) *diag.Bag {
	out := diag.NewBag(int(bag.Cap()))
	for _, d := range bag.Items() {
		out.Add(t.Diagnostic(from, d))
	}
	return out
}
