package lint

import (
	"fmt"
	"sort"
	"strings"

	"cpdlint/internal/diag"
	"cpdlint/internal/scan"
	"cpdlint/internal/source"
)

// symbols is the pool of names defined anywhere in the expanded text plus the
// builtins. Built in one collection pass, then consumed read-only by the
// reference pass.
type symbols struct {
	vars   map[string]bool
	funcs  map[string]int // arity, -1 variadic
	units  map[string]bool
	macros map[string]bool // resolvable macro names and their formals
}

// checkIdentifiers classifies every identifier reference in the expanded text
// and reports undefined variables, functions and macros with nearest-match
// suggestions, plus function arity mismatches. Definition template lines are
// skipped: macro bodies are checked where they are expanded, at the
// invocation sites the user edited.
func checkIdentifiers(ctx *Context, rep diag.Reporter) {
	syms := collectSymbols(ctx)
	for i, line := range ctx.Stage3.Content.Lines {
		if ctx.template(i) {
			continue
		}
		checkLineIdents(ctx, syms, uint32(i), line, rep)
	}
}

func collectSymbols(ctx *Context) *symbols {
	syms := &symbols{
		vars:   make(map[string]bool),
		funcs:  make(map[string]int),
		units:  make(map[string]bool),
		macros: make(map[string]bool),
	}
	for _, def := range ctx.Stage2.Table.Definitions() {
		syms.macros[def.Name] = true
		for _, p := range def.Params {
			// остатки частичной подстановки не каскадируют в undefined
			syms.macros[p] = true
		}
	}
	for i, line := range ctx.Stage3.Content.Lines {
		if ctx.template(i) {
			continue
		}
		toks := scan.Tokens(line)
		if name, arity, ok := functionDef(toks); ok {
			syms.funcs[name] = arity
			continue
		}
		if name, ok := variableDef(toks); ok {
			syms.vars[name] = true
			continue
		}
		if name, ok := unitDef(line, toks); ok {
			syms.units[name] = true
		}
	}
	return syms
}

// functionDef matches "name(p1; p2) = ..." and returns the declared arity.
func functionDef(toks []scan.Token) (string, int, bool) {
	if len(toks) < 4 || toks[0].Kind != scan.Ident || toks[1].Kind != scan.LParen {
		return "", 0, false
	}
	arity := 0
	i := 2
	for ; i < len(toks) && toks[i].Kind != scan.RParen; i++ {
		if toks[i].Kind == scan.Ident && (arity == 0 || toks[i-1].Kind == scan.Separator) {
			arity++
		}
	}
	if i+1 >= len(toks) || toks[i].Kind != scan.RParen || toks[i+1].Kind != scan.Assign {
		return "", 0, false
	}
	return toks[0].Text, arity, true
}

// variableDef matches "name = ...".
func variableDef(toks []scan.Token) (string, bool) {
	if len(toks) >= 2 && toks[0].Kind == scan.Ident && toks[1].Kind == scan.Assign {
		return toks[0].Text, true
	}
	return "", false
}

// unitDef matches ".name = ..." — a custom unit definition.
func unitDef(line string, toks []scan.Token) (string, bool) {
	if !strings.HasPrefix(strings.TrimLeft(line, " \t"), ".") {
		return "", false
	}
	if len(toks) >= 3 && toks[1].Kind == scan.Ident && toks[2].Kind == scan.Assign {
		return toks[1].Text, true
	}
	return "", false
}

// expressionTails are the directive keywords whose remainder is a live
// expression worth checking.
var expressionTails = map[string]bool{
	"if": true, "else if": true, "while": true, "repeat": true,
}

func checkLineIdents(ctx *Context, syms *symbols, n uint32, line string, rep diag.Reporter) {
	toks := scan.Tokens(line)
	if len(toks) == 0 {
		return
	}

	start := 0
	localParams := map[string]bool{}
	switch {
	case toks[0].Kind == scan.Directive:
		if !expressionTails[toks[0].Text] {
			return
		}
		start = 1
	default:
		if _, _, ok := functionDef(toks); ok {
			// параметры определения локальны для его тела
			i := 2
			for ; i < len(toks) && toks[i].Kind != scan.RParen; i++ {
				if toks[i].Kind == scan.Ident {
					localParams[toks[i].Text] = true
				}
			}
			start = i + 2 // за RParen и '='
		} else if _, ok := variableDef(toks); ok {
			start = 2
		} else if _, ok := unitDef(line, toks); ok {
			return
		}
	}

	for j := start; j < len(toks); j++ {
		tok := toks[j]
		switch tok.Kind {
		case scan.MacroName:
			if syms.macros[tok.Text] {
				continue
			}
			msg := fmt.Sprintf("macro %q is not defined", tok.Text)
			rep.Report(diag.SemUndefinedMacro, diag.SevError,
				source.ColSpan(ctx.File, n, tok.Start, tok.End),
				withSuggestions(msg, tok.Text, ctx.Stage2.Table.Names()), nil)

		case scan.Ident:
			if j > start && toks[j-1].Kind == scan.Number {
				// позиция единицы измерения после числа, вне лексической проверки
				continue
			}
			if j+1 < len(toks) && toks[j+1].Kind == scan.LParen {
				checkFunctionRef(ctx, syms, n, toks, j, rep)
				continue
			}
			if localParams[tok.Text] || syms.vars[tok.Text] || syms.units[tok.Text] ||
				builtinConstants[tok.Text] {
				continue
			}
			msg := fmt.Sprintf("variable %q is not defined", tok.Text)
			rep.Report(diag.SemUndefinedVariable, diag.SevError,
				source.ColSpan(ctx.File, n, tok.Start, tok.End),
				withSuggestions(msg, tok.Text, variablePool(syms)), nil)
		}
	}
}

func checkFunctionRef(ctx *Context, syms *symbols, n uint32, toks []scan.Token, j int, rep diag.Reporter) {
	tok := toks[j]
	declared, userDefined := syms.funcs[tok.Text]
	if !userDefined {
		var builtin bool
		declared, builtin = builtinFunctions[tok.Text]
		if !builtin {
			msg := fmt.Sprintf("function %q is not defined", tok.Text)
			rep.Report(diag.SemUndefinedFunction, diag.SevError,
				source.ColSpan(ctx.File, n, tok.Start, tok.End),
				withSuggestions(msg, tok.Text, functionPool(syms)), nil)
			return
		}
	}
	if declared < 0 {
		return
	}
	argc, ok := countArgs(toks, j+1)
	if !ok {
		// незакрытый список аргументов ловит проверка баланса
		return
	}
	if argc != declared {
		rep.Report(diag.SemFunctionArity, diag.SevError,
			source.ColSpan(ctx.File, n, tok.Start, tok.End),
			fmt.Sprintf("function %q expects %d argument(s), got %d",
				tok.Text, declared, argc), nil)
	}
}

// countArgs counts top-level arguments of the call whose LParen is at index
// open in the token stream.
func countArgs(toks []scan.Token, open int) (int, bool) {
	depth := 0
	argc := 0
	sawToken := false
	for i := open; i < len(toks); i++ {
		switch toks[i].Kind {
		case scan.LParen:
			depth++
		case scan.RParen:
			depth--
			if depth == 0 {
				if sawToken || argc > 0 {
					argc++
				}
				return argc, true
			}
		case scan.Separator:
			if depth == 1 {
				argc++
				sawToken = false
			}
		default:
			if depth >= 1 {
				sawToken = true
			}
		}
	}
	return 0, false
}

func variablePool(syms *symbols) []string {
	pool := make([]string, 0, len(syms.vars)+len(syms.units)+len(builtinConstants))
	for name := range syms.vars {
		pool = append(pool, name)
	}
	for name := range syms.units {
		pool = append(pool, name)
	}
	for name := range builtinConstants {
		pool = append(pool, name)
	}
	sort.Strings(pool)
	return pool
}

func functionPool(syms *symbols) []string {
	pool := make([]string, 0, len(syms.funcs)+len(builtinFunctionPool))
	for name := range syms.funcs {
		pool = append(pool, name)
	}
	pool = append(pool, builtinFunctionPool...)
	sort.Strings(pool)
	return pool
}
