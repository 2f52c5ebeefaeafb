package macro

import (
	"strings"
	"testing"

	"cpdlint/internal/diag"
	"cpdlint/internal/include"
	"cpdlint/internal/stage"
)

func catalogText(t *testing.T, text string) (CatalogResult, *diag.Bag) {
	t.Helper()
	lines := strings.Split(text, "\n")
	res := include.Result{
		Content:    stage.NewIdentity(lines),
		SourceFile: make([]string, len(lines)),
	}
	bag := diag.NewBag(50)
	cat := Catalog(res, 0, diag.BagReporter{Bag: bag})
	return cat, bag
}

func codesOf(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestCatalog_InlineDefinition(t *testing.T) {
	cat, bag := catalogText(t, "#def twice$(x$) = x$ * 2\na = twice$(3)")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	def, ok := cat.Table.Lookup("twice$")
	if !ok {
		t.Fatal("twice$ not catalogued")
	}
	if def.Arity() != 1 || def.Params[0] != "x$" {
		t.Errorf("params = %v, want [x$]", def.Params)
	}
	if def.Multiline || len(def.Body) != 1 || def.Body[0] != "x$ * 2" {
		t.Errorf("body = %v multiline=%v, want inline [x$ * 2]", def.Body, def.Multiline)
	}
	if !cat.InRegion(0) || cat.InRegion(1) {
		t.Errorf("regions = %+v, want line 0 only", cat.Regions)
	}
}

func TestCatalog_BlockDefinition(t *testing.T) {
	cat, bag := catalogText(t, "#def block$\nfirst = 1\nsecond = 2\n#end def\nrest")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	def, ok := cat.Table.Lookup("block$")
	if !ok {
		t.Fatal("block$ not catalogued")
	}
	if !def.Multiline || len(def.Body) != 2 {
		t.Fatalf("body = %v, want two lines", def.Body)
	}
	for i := uint32(0); i <= 3; i++ {
		if !cat.InRegion(i) {
			t.Errorf("line %d should be inside the definition region", i)
		}
	}
	if cat.InRegion(4) {
		t.Errorf("line 4 is outside the definition")
	}
}

func TestCatalog_TextPassesThroughUnchanged(t *testing.T) {
	text := "#def m$ = 1\nx = m$"
	cat, _ := catalogText(t, text)
	if strings.Join(cat.Content.Lines, "\n") != text {
		t.Errorf("stage-2 text must be identical to stage-1 text")
	}
	for i, origin := range cat.Content.Origin {
		if origin != uint32(i) {
			t.Errorf("Origin[%d] = %d, want identity", i, origin)
		}
	}
}

func TestCatalog_DuplicateKeepsFirst(t *testing.T) {
	cat, bag := catalogText(t, "#def m$ = 1\n#def m$ = 2")

	def, ok := cat.Table.Lookup("m$")
	if !ok || def.Body[0] != "1" {
		t.Fatalf("first definition must stay authoritative, got %+v", def)
	}
	dups := cat.Table.Duplicates()
	if len(dups) != 1 || dups[0].FirstLine != 0 || dups[0].DupLine != 1 {
		t.Fatalf("duplicates = %+v, want one fact 0->1", dups)
	}

	var dup *diag.Diagnostic
	for i := range bag.Items() {
		if bag.Items()[i].Code == diag.MacroDuplicate {
			dup = &bag.Items()[i]
		}
	}
	if dup == nil {
		t.Fatalf("expected %s, got %+v", diag.MacroDuplicate.ID(), bag.Items())
	}
	if len(dup.Notes) != 1 || dup.Notes[0].Span.Line != 0 {
		t.Errorf("duplicate must carry a note pointing at the first definition, got %+v", dup.Notes)
	}
}

func TestCatalog_MarkerViolations(t *testing.T) {
	tests := []struct {
		name string
		text string
		want diag.Code
	}{
		{name: "name without marker", text: "#def plain = 1", want: diag.MacroNameNoMarker},
		{name: "param without marker", text: "#def m$(p) = p", want: diag.MacroParamNoMarker},
		{name: "missing name", text: "#def", want: diag.MacroMalformedDef},
		{name: "empty inline body", text: "#def m$ =", want: diag.MacroMalformedDef},
		{name: "unclosed parameter list", text: "#def m$(a$; b$ = 1", want: diag.MacroMalformedDef},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := catalogText(t, tt.text)
			found := false
			for _, c := range codesOf(bag) {
				if c == tt.want {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %s, got %v", tt.want.ID(), codesOf(bag))
			}
		})
	}
}

func TestCatalog_NameWithoutMarkerStillResolvable(t *testing.T) {
	// имя дополняется маркером, чтобы не каскадировать undefined
	cat, _ := catalogText(t, "#def plain = 1")
	if _, ok := cat.Table.Lookup("plain$"); !ok {
		t.Errorf("repaired name plain$ should be catalogued")
	}
}

func TestCatalog_NestedDefinition(t *testing.T) {
	_, bag := catalogText(t, "#def outer$\n#def inner$ = 1\n#end def")
	found := false
	for _, c := range codesOf(bag) {
		if c == diag.MacroNestedDef {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s, got %v", diag.MacroNestedDef.ID(), codesOf(bag))
	}
}

func TestCatalog_UnterminatedDefinition(t *testing.T) {
	_, bag := catalogText(t, "x = 1\n#def open$\nbody")
	var d *diag.Diagnostic
	for i := range bag.Items() {
		if bag.Items()[i].Code == diag.MacroUnterminatedDef {
			d = &bag.Items()[i]
		}
	}
	if d == nil {
		t.Fatalf("expected %s, got %+v", diag.MacroUnterminatedDef.ID(), bag.Items())
	}
	// якорь — строка открывшего #def, не конец документа
	if d.Primary.Line != 1 {
		t.Errorf("anchored at line %d, want 1", d.Primary.Line)
	}
}

func TestCatalog_EndWithoutDef(t *testing.T) {
	_, bag := catalogText(t, "#end def")
	if bag.Len() != 1 || bag.Items()[0].Code != diag.MacroEndWithoutDef {
		t.Fatalf("expected one %s, got %+v", diag.MacroEndWithoutDef.ID(), bag.Items())
	}
}

func TestCatalog_DefInsideControlBlockWarns(t *testing.T) {
	_, bag := catalogText(t, "#if x > 0\n#def m$ = 1\n#end if")
	var d *diag.Diagnostic
	for i := range bag.Items() {
		if bag.Items()[i].Code == diag.MacroDefInControlBlock {
			d = &bag.Items()[i]
		}
	}
	if d == nil {
		t.Fatalf("expected %s, got %+v", diag.MacroDefInControlBlock.ID(), bag.Items())
	}
	if d.Severity != diag.SevWarning {
		t.Errorf("severity = %v, want warning: определение всё же каталогизируется", d.Severity)
	}
}
