package scan

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind classifies one token of a code segment.
type TokenKind uint8

const (
	Unknown TokenKind = iota
	// Ident is a plain identifier (variable, function or unit name).
	Ident
	// MacroName is an identifier carrying the terminal marker '$'.
	MacroName
	Number
	Operator
	// Assign is a top-level '=' (comparison operators are Operator).
	Assign
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	// Separator is an argument separator (';' or ',').
	Separator
	// Directive is a '#keyword' token; for '#end' the following word is folded
	// in, so the text is e.g. "end if".
	Directive
)

// Token is one lexical token of a line. Start/End are byte offsets within the
// full line (not the segment).
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
}

// twoByteOps are the multi-character operators recognized before single ones.
var twoByteOps = []string{"==", "!=", "<=", ">=", "&&", "||"}

const singleOps = "+-*/^%<>!&|"

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokens scans the code segments of a line into typed tokens. Quoted strings
// and comments never produce tokens.
func Tokens(line string) []Token {
	var out []Token
	for _, seg := range Segments(line) {
		if seg.Kind != Code {
			continue
		}
		out = append(out, scanSegment(seg.Text, seg.Start)...)
	}
	return out
}

func scanSegment(text string, base int) []Token {
	var out []Token
	i := 0
	emit := func(kind TokenKind, start, end int) {
		out = append(out, Token{Kind: kind, Text: text[start:end], Start: base + start, End: base + end})
	}
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size

		case r == '#':
			start := i
			i += size
			wstart := i
			for i < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[i:])
				if !isIdentPart(r2) {
					break
				}
				i += s2
			}
			word := text[wstart:i]
			// "#end if" / "#end def" / "#else if" — составные директивы
			if word == "end" || word == "else" {
				j := i
				for j < len(text) && text[j] == ' ' {
					j++
				}
				k := j
				for k < len(text) {
					r2, s2 := utf8.DecodeRuneInString(text[k:])
					if !isIdentPart(r2) {
						break
					}
					k += s2
				}
				if k > j {
					out = append(out, Token{
						Kind:  Directive,
						Text:  word + " " + text[j:k],
						Start: base + start,
						End:   base + k,
					})
					i = k
					continue
				}
			}
			out = append(out, Token{Kind: Directive, Text: word, Start: base + start, End: base + i})

		case isIdentStart(r):
			start := i
			for i < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[i:])
				if !isIdentPart(r2) {
					break
				}
				i += s2
			}
			if i < len(text) && text[i] == '$' {
				i++
				emit(MacroName, start, i)
			} else {
				emit(Ident, start, i)
			}

		case unicode.IsDigit(r):
			start := i
			seenDot := false
			for i < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[i:])
				if r2 == '.' && !seenDot {
					seenDot = true
					i += s2
					continue
				}
				if !unicode.IsDigit(r2) {
					break
				}
				i += s2
			}
			emit(Number, start, i)

		case r == '(':
			emit(LParen, i, i+1)
			i++
		case r == ')':
			emit(RParen, i, i+1)
			i++
		case r == '[':
			emit(LBracket, i, i+1)
			i++
		case r == ']':
			emit(RBracket, i, i+1)
			i++
		case r == '{':
			emit(LBrace, i, i+1)
			i++
		case r == '}':
			emit(RBrace, i, i+1)
			i++
		case r == ';' || r == ',':
			emit(Separator, i, i+1)
			i++

		default:
			if op, n := matchOperator(text[i:]); n > 0 {
				if op == "=" {
					emit(Assign, i, i+n)
				} else {
					emit(Operator, i, i+n)
				}
				i += n
				continue
			}
			emit(Unknown, i, i+size)
			i += size
		}
	}
	return out
}

// matchOperator recognizes multi-character operators before single ones.
func matchOperator(s string) (string, int) {
	for _, op := range twoByteOps {
		if strings.HasPrefix(s, op) {
			return op, len(op)
		}
	}
	if len(s) > 0 {
		if s[0] == '=' {
			return "=", 1
		}
		if strings.IndexByte(singleOps, s[0]) >= 0 {
			return string(s[0]), 1
		}
	}
	// юникодные операторы Calc-нотации
	r, size := utf8.DecodeRuneInString(s)
	switch r {
	case '≡', '≠', '≤', '≥', '÷', '·', '×':
		return string(r), size
	}
	return "", 0
}
