package lint

import (
	"strings"
	"testing"

	"cpdlint/internal/diag"
	"cpdlint/internal/include"
	"cpdlint/internal/macro"
	"cpdlint/internal/stage"
)

// runChecks pushes a document through cataloguing and expansion, then runs
// every semantic check, collecting diagnostics in stage-local coordinates.
func runChecks(t *testing.T, text string) *diag.Bag {
	t.Helper()
	ctx := buildContext(t, text)
	bag := diag.NewBag(100)
	for _, c := range Checks() {
		c.Run(ctx, diag.BagReporter{Bag: bag})
	}
	return bag
}

func buildContext(t *testing.T, text string) *Context {
	t.Helper()
	lines := strings.Split(text, "\n")
	res := include.Result{
		Content:    stage.NewIdentity(lines),
		SourceFile: make([]string, len(lines)),
	}
	nop := diag.NopReporter{}
	cat := macro.Catalog(res, 0, nop)
	exp := macro.Expand(cat, 0, nop)
	return &Context{File: 0, Stage2: cat, Stage3: exp}
}

func runOne(t *testing.T, text string, run func(*Context, diag.Reporter)) *diag.Bag {
	t.Helper()
	bag := diag.NewBag(100)
	run(buildContext(t, text), diag.BagReporter{Bag: bag})
	return bag
}

func countCode(bag *diag.Bag, code diag.Code) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func firstOf(t *testing.T, bag *diag.Bag, code diag.Code) diag.Diagnostic {
	t.Helper()
	for _, d := range bag.Items() {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("no %s in %+v", code.ID(), bag.Items())
	return diag.Diagnostic{}
}

func TestChecks_CleanDocument(t *testing.T) {
	text := strings.Join([]string{
		"#def area$(w$; h$) = w$ * h$",
		"width = 2",
		"height = 3",
		"a = area$(width; height)",
		"#if a > 5",
		"b = a + 1",
		"#end if",
	}, "\n")
	bag := runChecks(t, text)
	if bag.Len() != 0 {
		t.Errorf("clean document produced %+v", bag.Items())
	}
}

func TestCheckDelimiters(t *testing.T) {
	tests := []struct {
		name string
		text string
		want diag.Code
		line uint32
	}{
		{name: "unclosed paren", text: "x = (1 + 2", want: diag.SemUnclosedDelimiter},
		{name: "closer without opener", text: "x = 1 + 2)", want: diag.SemCloserWithoutOpener},
		{name: "unclosed bracket", text: "x = [1; 2", want: diag.SemUnclosedDelimiter},
		{name: "cross-line balance is legal", text: "x = (1 +\n2)", want: 0},
		{name: "delimiters in comments ignored", text: "x = 1 ' oops (", want: 0},
		{name: "delimiters in strings ignored", text: `show "(((" `, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := runOne(t, tt.text, checkDelimiters)
			if tt.want == 0 {
				if bag.Len() != 0 {
					t.Errorf("expected clean, got %+v", bag.Items())
				}
				return
			}
			if countCode(bag, tt.want) != 1 {
				t.Errorf("expected one %s, got %+v", tt.want.ID(), bag.Items())
			}
		})
	}
}

func TestCheckDelimiters_NoCascadeAfterOrphanCloser(t *testing.T) {
	// после ранней ошибки класс скобок замолкает — без каскада
	bag := runOne(t, "x = 1)\ny = 2)", checkDelimiters)
	if countCode(bag, diag.SemCloserWithoutOpener) != 1 {
		t.Errorf("expected a single report, got %+v", bag.Items())
	}
}

func TestCheckDelimiters_Idempotent(t *testing.T) {
	ctx := buildContext(t, "x = (1\ny = 2)")
	first := diag.NewBag(100)
	checkDelimiters(ctx, diag.BagReporter{Bag: first})
	second := diag.NewBag(100)
	checkDelimiters(ctx, diag.BagReporter{Bag: second})
	if first.Len() != second.Len() {
		t.Fatalf("re-run changed the result: %d vs %d", first.Len(), second.Len())
	}
	for i := range first.Items() {
		a, b := first.Items()[i], second.Items()[i]
		if a.Code != b.Code || a.Primary != b.Primary {
			t.Errorf("diagnostic %d differs between runs", i)
		}
	}
}

func TestCheckControlBlocks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want diag.Code
	}{
		{name: "unclosed if", text: "#if x > 0\ny = 1", want: diag.SemUnclosedControlBlock},
		{name: "end if without if", text: "#end if", want: diag.SemLoopWithoutOpener},
		{name: "loop without loop opener", text: "x = 1\n#loop", want: diag.SemLoopWithoutOpener},
		{name: "matched repeat", text: "#repeat 3\nx = 1\n#loop", want: 0},
		{name: "matched while", text: "#while x < 3\nx = x + 1\n#loop", want: 0},
		{name: "nested blocks", text: "#if a > 0\n#for i\nx = 1\n#loop\n#end if", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := runOne(t, tt.text, checkControlBlocks)
			if tt.want == 0 {
				if bag.Len() != 0 {
					t.Errorf("expected clean, got %+v", bag.Items())
				}
				return
			}
			if countCode(bag, tt.want) != 1 {
				t.Errorf("expected one %s, got %+v", tt.want.ID(), bag.Items())
			}
		})
	}
}

func TestCheckControlBlocks_LoopAfterIf(t *testing.T) {
	// "#repeat / #if / #loop": терминатор не закрывает #if и не снимает его
	text := strings.Join([]string{
		"#repeat 3", // 0
		"#if x > 0", // 1
		"#loop",     // 2
	}, "\n")
	bag := runOne(t, text, checkControlBlocks)

	mismatched := firstOf(t, bag, diag.SemMismatchedCloser)
	if mismatched.Primary.Line != 2 {
		t.Errorf("mismatched closer at line %d, want 2", mismatched.Primary.Line)
	}

	// оба открывших так и не закрыты, каждый назван по своей строке
	if countCode(bag, diag.SemUnclosedControlBlock) != 2 {
		t.Fatalf("expected two unclosed reports, got %+v", bag.Items())
	}
	var lines []uint32
	for _, d := range bag.Items() {
		if d.Code == diag.SemUnclosedControlBlock {
			lines = append(lines, d.Primary.Line)
		}
	}
	if lines[0] != 0 || lines[1] != 1 {
		t.Errorf("unclosed anchored at %v, want [0 1]", lines)
	}
}

func TestCheckOperators(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "repeated operator", text: "x = 1 * * 2", want: 1},
		{name: "three in a row", text: "x = 1 * / + 2", want: 1},
		{name: "unary minus after binary", text: "x = 1 * -2", want: 0},
		{name: "unary plus after comparison", text: "x = a < +b", want: 0},
		{name: "double equals is comparison", text: "#if a == b", want: 0},
		{name: "slash after star", text: "x = 1 * / 2", want: 1},
		{name: "operators in string ignored", text: `show "** fine **"`, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := runOne(t, tt.text, checkOperators)
			if got := countCode(bag, diag.SemOperatorSequence); got != tt.want {
				t.Errorf("got %d operator diagnostics, want %d: %+v", got, tt.want, bag.Items())
			}
		})
	}
}

func TestCheckAssignments(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "leading equals", text: "= 5", want: 1},
		{name: "double assignment", text: "a = b = 5", want: 1},
		{name: "single assignment", text: "a = 5", want: 0},
		{name: "comparison not counted", text: "a = b == c", want: 0},
		{name: "directive line skipped", text: "#if x = 1", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := runOne(t, tt.text, checkAssignments)
			if got := countCode(bag, diag.SemMalformedAssignment); got != tt.want {
				t.Errorf("got %d assignment diagnostics, want %d: %+v", got, tt.want, bag.Items())
			}
		})
	}
}

func TestCheckKeywords(t *testing.T) {
	bag := runOne(t, "#reapet 3\nx = 1\n#loop", checkKeywords)
	d := firstOf(t, bag, diag.SemUnknownKeyword)
	if !strings.Contains(d.Message, "#reapet") {
		t.Errorf("message %q should name the keyword", d.Message)
	}
	if !strings.Contains(d.Message, `"repeat"`) {
		t.Errorf("message %q should suggest repeat", d.Message)
	}
}

func TestCheckKeywords_KnownDirectivesClean(t *testing.T) {
	text := strings.Join([]string{
		"#rad", "#deg", "#show", "#hide", "#round 2", "#format 8",
		"#if x", "#else if y", "#else", "#end if",
	}, "\n")
	bag := runOne(t, text, checkKeywords)
	if bag.Len() != 0 {
		t.Errorf("reserved keywords flagged: %+v", bag.Items())
	}
}

func TestCheckControlBlocks_EndDefOwnedByCataloguer(t *testing.T) {
	// непарный '#end def' отмечает каталогизатор; без этого одна и та же
	// строка получала бы и CPD2008, и CPD3004
	bag := runOne(t, "x = 1\n#end def", checkControlBlocks)
	if bag.Len() != 0 {
		t.Errorf("stage-3 check re-reported a cataloguer finding: %+v", bag.Items())
	}
}

func TestCheckKeywords_TemplateLinesSkipped(t *testing.T) {
	// опечатка в директиве внутри тела блочного макроса должна всплыть один
	// раз — в точке развёртывания, не в определении и не дважды
	text := strings.Join([]string{
		"#def m$",
		"#reapet 3",
		"#loop",
		"#end def",
		"m$",
	}, "\n")
	bag := runOne(t, text, checkKeywords)
	if got := countCode(bag, diag.SemUnknownKeyword); got != 1 {
		t.Errorf("got %d unknown-keyword diagnostics, want 1: %+v", got, bag.Items())
	}
}

func TestCheckMacroUsage_Arity(t *testing.T) {
	text := strings.Join([]string{
		"#def pair$(a$; b$) = a$ + b$",
		"x = pair$(1)",
		"y = pair$(1; 2)",
		"z = pair$",
	}, "\n")
	bag := runOne(t, text, checkMacroUsage)
	if got := countCode(bag, diag.SemMacroArity); got != 2 {
		t.Fatalf("got %d arity diagnostics, want 2: %+v", got, bag.Items())
	}
	d := firstOf(t, bag, diag.SemMacroArity)
	if d.Message != `macro "pair$" expects 2 argument(s), got 1` {
		t.Errorf("message = %q", d.Message)
	}
	if d.Primary.Line != 1 {
		t.Errorf("anchored at stage-2 line %d, want 1", d.Primary.Line)
	}
}

func TestCheckMacroUsage_DefinitionBodySkipped(t *testing.T) {
	// внутри области определения вызовы не проверяются
	text := strings.Join([]string{
		"#def one$(a$) = a$",
		"#def caller$",
		"v = one$",
		"#end def",
	}, "\n")
	bag := runOne(t, text, checkMacroUsage)
	if bag.Len() != 0 {
		t.Errorf("region lines must be skipped, got %+v", bag.Items())
	}
}

func TestIncludeSyntax(t *testing.T) {
	tests := []struct {
		name string
		line string
		want diag.Code
	}{
		{name: "missing filename", line: "#include", want: diag.StructMissingFilename},
		{name: "unclosed quote", line: `#include "lib`, want: diag.StructMalformedInclude},
		{name: "unquoted spaces", line: "#include two words", want: diag.StructInvalidPath},
		{name: "well-formed leftover is not a syntax error", line: "#include lib", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := diag.NewBag(10)
			IncludeSyntax(stage.NewIdentity([]string{tt.line}), 0, diag.BagReporter{Bag: bag})
			if tt.want == 0 {
				if bag.Len() != 0 {
					t.Errorf("expected clean, got %+v", bag.Items())
				}
				return
			}
			if countCode(bag, tt.want) != 1 {
				t.Errorf("expected one %s, got %+v", tt.want.ID(), bag.Items())
			}
		})
	}
}
