// Package nesting provides the opener/closer stack shared by every check that
// tracks balanced constructs: control blocks in the macro cataloguer, the
// delimiter balance check and the control-block balance check. The stack is
// parameterized by a closer table, so each check instantiates it with its own
// symbol alphabet.
package nesting

// Frame is one open construct awaiting its closer.
type Frame struct {
	Sym  string
	Line uint32
	Col  uint32
}

// Table maps a closing symbol to the opening symbols it is allowed to close.
type Table map[string][]string

// CloseResult describes the outcome of Stack.Close.
type CloseResult uint8

const (
	// Matched: the top frame was closed and popped.
	Matched CloseResult = iota
	// NoOpener: the stack is empty, or the top frame cannot be closed by the
	// symbol. The stack is left untouched so that the genuine opener is still
	// reported as unclosed at end of document.
	NoOpener
)

// Stack tracks open constructs.
type Stack struct {
	table  Table
	frames []Frame
}

func New(table Table) *Stack {
	return &Stack{table: table}
}

// Open pushes a new frame.
func (s *Stack) Open(sym string, line, col uint32) {
	s.frames = append(s.frames, Frame{Sym: sym, Line: line, Col: col})
}

// Close tries to close the top frame with the given symbol. On success the
// frame is popped and returned. Если верх стека не подходит — кадр не
// снимается: "#loop" после "#if" не должен съедать "#if".
func (s *Stack) Close(sym string) (Frame, CloseResult) {
	if len(s.frames) == 0 {
		return Frame{}, NoOpener
	}
	top := s.frames[len(s.frames)-1]
	for _, opener := range s.table[sym] {
		if top.Sym == opener {
			s.frames = s.frames[:len(s.frames)-1]
			return top, Matched
		}
	}
	return top, NoOpener
}

// Depth returns the number of currently open frames.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Unclosed returns the frames still open, oldest first.
func (s *Stack) Unclosed() []Frame {
	return s.frames
}

// ControlTable is the closer table for the language's control blocks:
// "#end if" closes "#if", "#end def" closes "#def", and "#loop" closes any of
// the three loop openers.
func ControlTable() Table {
	return Table{
		"end if":  {"if"},
		"end def": {"def"},
		"loop":    {"repeat", "for", "while"},
	}
}

// DelimiterTable is the closer table for paired delimiters.
func DelimiterTable() Table {
	return Table{
		")": {"("},
		"]": {"["},
		"}": {"{"},
	}
}
