package include

import (
	"fmt"
	"path"
	"strings"

	"cpdlint/internal/diag"
	"cpdlint/internal/source"
	"cpdlint/internal/stage"
)

// Result is the Stage-1 snapshot: resolved text, provenance back to the
// original document, and the per-line source tag ("" for local lines, the
// included filename otherwise).
type Result struct {
	Content    stage.Content
	SourceFile []string
}

type resolver struct {
	provider FileProvider
	rep      diag.Reporter
	fileID   source.FileID

	lines  []string
	origin []uint32
	src    []string
}

// Resolve expands every well-formed #include directive of the document,
// recursively, producing the Stage-1 text. Every injected line maps provenance
// to the directive's original line; non-directive lines pass through with
// identity provenance. Malformed directives are left in place for the Stage-1
// structural check. Cycles and missing targets are reported here, anchored at
// the directive line, and the directive passes through as literal text.
func Resolve(doc *source.File, provider FileProvider, rep diag.Reporter) Result {
	r := &resolver{provider: provider, rep: rep, fileID: doc.ID}
	// директивы ссылаются на голые имена; путь документа приводим к тому же
	// виду, иначе обратная ссылка на корень не распознаётся как цикл
	chain := map[string]bool{docKey(path.Base(doc.Path)): true}
	for i, line := range doc.Lines {
		r.resolveLine(line, uint32(i), "", chain)
	}
	return Result{
		Content:    stage.Content{Lines: r.lines, Origin: r.origin},
		SourceFile: r.src,
	}
}

func docKey(name string) string {
	return strings.ToLower(name)
}

func (r *resolver) emit(line string, origin uint32, src string) {
	r.lines = append(r.lines, line)
	r.origin = append(r.origin, origin)
	r.src = append(r.src, src)
}

// resolveLine appends the expansion of one line. origin is the original
// document line every emitted line is attributed to; src is the file the line
// came from.
func (r *resolver) resolveLine(line string, origin uint32, src string, chain map[string]bool) {
	if !IsDirective(line) {
		r.emit(line, origin, src)
		return
	}

	name, bad := Classify(line)
	if bad != 0 {
		// строка проходит насквозь; её пометит структурная проверка
		r.emit(line, origin, src)
		return
	}

	key := docKey(name)
	if chain[key] {
		// цикл: повторную ссылку не разворачиваем, оставляем литералом
		at := uint32(len(r.lines))
		r.emit(line, origin, src)
		r.rep.Report(diag.PipeIncludeCycle, diag.SevError,
			source.LineSpan(r.fileID, at),
			fmt.Sprintf("circular reference to %q is not expanded", name), nil)
		return
	}

	content, err := r.provider.ReadFile(name)
	if err != nil {
		at := uint32(len(r.lines))
		r.emit(line, origin, src)
		code := diag.StructIncludeNotFound
		if err != ErrNotFound {
			code = diag.PipeLoadFileError
		}
		r.rep.Report(code, diag.SevError,
			source.LineSpan(r.fileID, at),
			fmt.Sprintf("cannot resolve %q: %v", name, err), nil)
		return
	}

	chain[key] = true
	for _, inner := range splitContent(content) {
		// все строки вложенного файла наследуют строку директивы
		r.resolveLine(inner, origin, name, chain)
	}
	delete(chain, key)
}

func splitContent(content []byte) []string {
	s := strings.ReplaceAll(string(content), "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
