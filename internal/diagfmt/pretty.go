package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"cpdlint/internal/diag"
	"cpdlint/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeDiagnostic(w, d, fs, opts)
	}
}

func writeDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		location(d.Primary, fs, opts),
		severityLabel(d.Severity, opts.Color),
		codeLabel(d.Code, opts.Color),
		d.Message)

	if opts.ShowSource {
		writeSourceLine(w, d.Primary, fs, opts)
	}
	if opts.ShowNotes {
		for _, note := range d.Notes {
			fmt.Fprintf(w, "  note: %s: %s\n", location(note.Span, fs, opts), note.Msg)
			if opts.ShowSource {
				writeSourceLine(w, note.Span, fs, opts)
			}
		}
	}
}

func location(span source.Span, fs *source.FileSet, opts PrettyOpts) string {
	path := "<unknown>"
	if f := fs.Get(span.File); f != nil {
		path = f.FormatPath(opts.PathMode.formatMode(), fs.BaseDir())
	}
	return fmt.Sprintf("%s:%d:%d", path, span.Line+1, span.Start+1)
}

func severityLabel(s diag.Severity, colored bool) string {
	if !colored {
		return s.String()
	}
	switch s {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold).Sprint(s.String())
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold).Sprint(s.String())
	default:
		return color.New(color.FgCyan).Sprint(s.String())
	}
}

func codeLabel(c diag.Code, colored bool) string {
	if !colored {
		return c.ID()
	}
	return color.New(color.Bold).Sprint(c.ID())
}

// writeSourceLine prints the offending line with a ^~~~ underline aligned by
// display width, so wide runes (×, ÷, CJK) do not skew the caret.
func writeSourceLine(w io.Writer, span source.Span, fs *source.FileSet, opts PrettyOpts) {
	f := fs.Get(span.File)
	if f == nil || int(span.Line) >= f.LineCount() {
		return
	}
	line := strings.ReplaceAll(f.Line(span.Line), "\t", " ")
	fmt.Fprintf(w, "    %s\n", line)

	start := int(span.Start)
	end := int(span.End)
	if start > len(line) {
		start = len(line)
	}
	if end < start {
		end = start
	}
	if end > len(line) {
		end = len(line)
	}
	pad := runewidth.StringWidth(line[:start])
	width := runewidth.StringWidth(line[start:end])
	if width < 1 {
		width = 1
	}
	underline := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		underline = color.New(color.FgGreen, color.Bold).Sprint(underline)
	}
	fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", pad), underline)
}
