package source

import (
	"fmt"
)

// Span addresses a range of characters on a single line of a document.
// Line нумеруется с нуля; Start включительно, End не включительно.
type Span struct {
	File  FileID
	Line  uint32
	Start uint32
	End   uint32
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d:%d-%d", s.File, s.Line, s.Start, s.End)
}

// WithLine returns a copy of the span anchored at another line.
// Used by the position translator: columns survive translation untouched.
func (s Span) WithLine(line uint32) Span {
	s.Line = line
	return s
}

// LineSpan covers the whole of line n (columns collapse to the line start).
func LineSpan(file FileID, line uint32) Span {
	return Span{File: file, Line: line}
}

// ColSpan builds a span for columns [start, end) of line n.
func ColSpan(file FileID, line uint32, start, end int) Span {
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	return Span{File: file, Line: line, Start: uint32(start), End: uint32(end)}
}
