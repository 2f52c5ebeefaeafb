package stage

import (
	"testing"

	"cpdlint/internal/diag"
	"cpdlint/internal/source"
)

func TestContent_OriginOf(t *testing.T) {
	c := Content{Lines: []string{"a", "b", "c"}, Origin: []uint32{0, 0, 1}}
	tests := []struct {
		line uint32
		want uint32
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{9, 9}, // identity fallback за пределами карты
	}
	for _, tt := range tests {
		if got := c.OriginOf(tt.line); got != tt.want {
			t.Errorf("OriginOf(%d) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestNewIdentity(t *testing.T) {
	c := NewIdentity([]string{"x", "y"})
	for i := range c.Lines {
		if c.Origin[i] != uint32(i) {
			t.Errorf("Origin[%d] = %d, want %d", i, c.Origin[i], i)
		}
	}
}

// pipelineFixture mimics one include expansion followed by one macro
// expansion: original 3 lines, include on line 1 injects two lines, macro on
// the last line produces two lines.
func pipelineFixture() *Translator {
	resolved := Content{
		Lines:  []string{"a", "inc1", "inc2", "c"},
		Origin: []uint32{0, 1, 1, 2},
	}
	catalogued := NewIdentity(resolved.Lines)
	expanded := Content{
		Lines:  []string{"a", "inc1", "inc2", "m1", "m2"},
		Origin: []uint32{0, 1, 2, 3, 3},
	}
	return NewTranslator(resolved, catalogued, expanded)
}

func TestTranslator_ToOriginal(t *testing.T) {
	tr := pipelineFixture()
	tests := []struct {
		from Index
		line uint32
		want uint32
	}{
		{Expanded, 0, 0},
		{Expanded, 1, 1}, // inc1 -> директива include
		{Expanded, 2, 1}, // inc2 -> та же директива
		{Expanded, 3, 2}, // m1 -> строка вызова -> оригинальная строка 2
		{Expanded, 4, 2},
		{Catalogued, 3, 2},
		{Resolved, 2, 1},
		{Original, 5, 5}, // уже оригинальные координаты
	}
	for _, tt := range tests {
		if got := tr.ToOriginal(tt.from, tt.line); got != tt.want {
			t.Errorf("ToOriginal(%v, %d) = %d, want %d", tt.from, tt.line, got, tt.want)
		}
	}
}

func TestTranslator_To_IntermediateStage(t *testing.T) {
	tr := pipelineFixture()
	if got := tr.To(Expanded, Resolved, 4); got != 3 {
		t.Errorf("To(Expanded, Resolved, 4) = %d, want 3", got)
	}
	if got := tr.To(Expanded, Catalogued, 4); got != 3 {
		t.Errorf("To(Expanded, Catalogued, 4) = %d, want 3", got)
	}
	if got := tr.To(Catalogued, Catalogued, 2); got != 2 {
		t.Errorf("same-stage translation must be identity")
	}
}

func TestTranslator_SpanKeepsColumns(t *testing.T) {
	tr := pipelineFixture()
	sp := source.ColSpan(0, 4, 3, 7)
	got := tr.Span(Expanded, sp)
	if got.Line != 2 {
		t.Errorf("line = %d, want 2", got.Line)
	}
	if got.Start != 3 || got.End != 7 {
		t.Errorf("columns changed: [%d,%d), want [3,7)", got.Start, got.End)
	}
}

func TestTranslator_BagTranslatesNotes(t *testing.T) {
	tr := pipelineFixture()
	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.SemUndefinedVariable,
		Message:  "x",
		Primary:  source.LineSpan(0, 4),
		Notes:    []diag.Note{{Span: source.LineSpan(0, 1), Msg: "here"}},
	})
	out := tr.Bag(Expanded, bag)
	if out.Len() != 1 {
		t.Fatalf("len = %d, want 1", out.Len())
	}
	d := out.Items()[0]
	if d.Primary.Line != 2 {
		t.Errorf("primary line = %d, want 2", d.Primary.Line)
	}
	if d.Notes[0].Span.Line != 1 {
		t.Errorf("note line = %d, want 1", d.Notes[0].Span.Line)
	}
}

// Round-trip property: every expanded line must land inside the original
// document, whatever the maps say.
func TestTranslator_AlwaysLandsInOriginal(t *testing.T) {
	tr := pipelineFixture()
	const originalLen = 3
	for line := uint32(0); line < 5; line++ {
		got := tr.ToOriginal(Expanded, line)
		if got >= originalLen {
			t.Errorf("line %d maps to %d, beyond the original document", line, got)
		}
	}
}
