// Package scan performs the two lexical passes every Stage-3 check shares:
// a quote-aware split of each line into code/quoted/comment segments, and a
// token scan of the code segments. Checks consume these instead of re-scanning
// lines with their own patterns.
package scan

// SegmentKind tags one region of a line.
type SegmentKind uint8

const (
	// Code is an analyzable region.
	Code SegmentKind = iota
	// Quoted is a double-quoted string region, quotes included.
	Quoted
	// Comment runs from a single quote to end of line.
	Comment
)

// Segment is one region of a line. Start is the byte offset of the first
// character of Text within the line.
type Segment struct {
	Kind  SegmentKind
	Text  string
	Start int
}

// Segments splits a line into code, quoted-string and comment regions in one
// left-to-right scan. Незакрытая кавычка тянется до конца строки — это
// сознательно: проверки не должны спотыкаться о битый ввод.
func Segments(line string) []Segment {
	var out []Segment
	start := 0
	i := 0
	flushCode := func(end int) {
		if end > start {
			out = append(out, Segment{Kind: Code, Text: line[start:end], Start: start})
		}
	}
	for i < len(line) {
		switch line[i] {
		case '"':
			flushCode(i)
			qstart := i
			i++
			for i < len(line) && line[i] != '"' {
				i++
			}
			if i < len(line) {
				i++ // закрывающая кавычка
			}
			out = append(out, Segment{Kind: Quoted, Text: line[qstart:i], Start: qstart})
			start = i
		case '\'':
			flushCode(i)
			out = append(out, Segment{Kind: Comment, Text: line[i:], Start: i})
			return out
		default:
			i++
		}
	}
	flushCode(len(line))
	return out
}

// CodeSegments returns only the analyzable regions of a line.
func CodeSegments(line string) []Segment {
	segs := Segments(line)
	out := segs[:0]
	for _, s := range segs {
		if s.Kind == Code {
			out = append(out, s)
		}
	}
	return out
}
