// Package stage holds the text snapshots produced by the resolution pipeline
// and the line-provenance machinery that maps any stage-local line back to the
// original document.
package stage

// Index identifies one snapshot of the pipeline.
// Original — текст, который редактирует пользователь; дальше по конвейеру
// каждый номер строки имеет смысл только внутри своей стадии.
type Index uint8

const (
	// Original is the raw document (stage 0).
	Original Index = iota
	// Resolved is the include-expanded text (stage 1).
	Resolved
	// Catalogued is the macro-catalogued text (stage 2).
	Catalogued
	// Expanded is the macro-expanded text (stage 3).
	Expanded
)

func (i Index) String() string {
	switch i {
	case Original:
		return "original"
	case Resolved:
		return "resolved"
	case Catalogued:
		return "catalogued"
	case Expanded:
		return "expanded"
	}
	return "unknown"
}

// Content is the line sequence produced by one pipeline stage together with
// its provenance map: Origin[i] is the line of the *previous* stage that line
// i descends from. Many-to-one is expected (all lines injected by an include
// or a macro expansion share one origin); one-to-many is never stored.
type Content struct {
	Lines  []string
	Origin []uint32
}

// NewIdentity builds a stage whose every line descends from the same-numbered
// line of the previous stage.
func NewIdentity(lines []string) Content {
	origin := make([]uint32, len(lines))
	for i := range origin {
		origin[i] = uint32(i)
	}
	return Content{Lines: lines, Origin: origin}
}

// Len returns the number of lines in the snapshot.
func (c Content) Len() int {
	return len(c.Lines)
}

// Line returns line n, or an empty string when out of range.
func (c Content) Line(n int) string {
	if n < 0 || n >= len(c.Lines) {
		return ""
	}
	return c.Lines[n]
}

// OriginOf maps a stage-local line to its predecessor-stage line.
// Непокрытые строки считаются своим же номером (identity fallback):
// инварианты стадий этого не допускают, но одна дырка в карте не должна
// ронять весь проход.
func (c Content) OriginOf(line uint32) uint32 {
	if int(line) >= len(c.Origin) {
		return line
	}
	return c.Origin[line]
}
