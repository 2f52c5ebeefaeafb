package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSet_AddVirtual(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("doc.cpd", []byte("a = 1\nb = 2"))
	f := fs.Get(id)
	if f.LineCount() != 2 {
		t.Errorf("LineCount = %d, want 2", f.LineCount())
	}
	if f.Line(0) != "a = 1" || f.Line(1) != "b = 2" {
		t.Errorf("lines = %q", f.Lines)
	}
	if f.Line(2) != "" {
		t.Errorf("out-of-range line = %q, want empty", f.Line(2))
	}
	if f.Flags&FileVirtual == 0 {
		t.Error("virtual flag not set")
	}
}

func TestFileSet_EmptyDocumentHasOneLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("empty.cpd", nil))
	if f.LineCount() != 1 || f.Line(0) != "" {
		t.Errorf("empty document lines = %q", f.Lines)
	}
}

func TestFileSet_SamePathNewID(t *testing.T) {
	fs := NewFileSet()
	first := fs.AddVirtual("doc.cpd", []byte("v1"))
	second := fs.AddVirtual("doc.cpd", []byte("v2"))
	if first == second {
		t.Fatal("re-adding a path must mint a new FileID")
	}
	// индекс указывает на последнюю версию
	f, ok := fs.GetByPath("doc.cpd")
	if !ok || string(f.Content) != "v2" {
		t.Errorf("GetByPath returned %+v", f)
	}
}

func TestFileSet_HashIdentity(t *testing.T) {
	fs := NewFileSet()
	a := fs.Get(fs.AddVirtual("a.cpd", []byte("same")))
	b := fs.Get(fs.AddVirtual("b.cpd", []byte("same")))
	c := fs.Get(fs.AddVirtual("c.cpd", []byte("other")))
	if a.Hash != b.Hash {
		t.Error("identical content must hash equal")
	}
	if a.Hash == c.Hash {
		t.Error("different content must hash differently")
	}
}

func TestFileSet_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.cpd")
	// BOM + CRLF нормализуются при загрузке
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a = 1\r\nb = 2\r\n")...)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b", f.Flags)
	}
	if f.LineCount() != 2 || f.Line(0) != "a = 1" {
		t.Errorf("lines = %q", f.Lines)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		input     []byte
		want      string
		wantFlags FileFlags
	}{
		{name: "plain", input: []byte("a\nb"), want: "a\nb"},
		{name: "crlf", input: []byte("a\r\nb"), want: "a\nb", wantFlags: FileNormalizedCRLF},
		{name: "bom", input: []byte("\xEF\xBB\xBFa"), want: "a", wantFlags: FileHadBOM},
		{name: "lone cr kept", input: []byte("a\rb"), want: "a\rb"},
		{name: "short input", input: []byte("\xEF"), want: "\xEF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, flags := Normalize(tt.input)
			if string(got) != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
			if flags != tt.wantFlags {
				t.Errorf("flags = %b, want %b", flags, tt.wantFlags)
			}
		})
	}
}

func TestFormatPath(t *testing.T) {
	f := &File{Path: "/project/sub/doc.cpd"}
	if got := f.FormatPath("basename", ""); got != "doc.cpd" {
		t.Errorf("basename = %q", got)
	}
	if got := f.FormatPath("relative", "/project"); got != "sub/doc.cpd" {
		t.Errorf("relative = %q", got)
	}
	if got := f.FormatPath("absolute", ""); got != "/project/sub/doc.cpd" {
		t.Errorf("absolute = %q", got)
	}
	// auto: короткий путь остаётся как есть
	short := &File{Path: "doc.cpd"}
	if got := short.FormatPath("auto", ""); got != "doc.cpd" {
		t.Errorf("auto = %q", got)
	}
}

func TestSpan(t *testing.T) {
	sp := ColSpan(0, 3, 2, 7)
	if sp.Len() != 5 || sp.Empty() {
		t.Errorf("span = %+v", sp)
	}
	if sp.String() != "0:3:2-7" {
		t.Errorf("String = %q", sp.String())
	}
	moved := sp.WithLine(9)
	if moved.Line != 9 || moved.Start != 2 || moved.End != 7 {
		t.Errorf("WithLine = %+v", moved)
	}
	// отрицательные и перевёрнутые границы зажимаются
	clamped := ColSpan(0, 0, -4, -8)
	if clamped.Start != 0 || clamped.End != 0 || !clamped.Empty() {
		t.Errorf("clamped = %+v", clamped)
	}
	if ls := LineSpan(1, 5); ls.File != 1 || ls.Line != 5 || !ls.Empty() {
		t.Errorf("LineSpan = %+v", ls)
	}
}
