package diag

import (
	"fmt"
)

// Code is a stable diagnostic identifier. The numeric space is grouped by
// pipeline stage: 1xxx structural, 2xxx macro, 3xxx semantic, 4xxx pipeline.
// Коды наружу видны как строки ("CPD2004") и никогда не переиспользуются
// под другое значение.
type Code uint16

const (
	UnknownCode Code = 0

	// Структурные (Stage 1: include-директивы)
	StructInfo             Code = 1000
	StructMalformedInclude Code = 1001
	StructMissingFilename  Code = 1002
	StructInvalidPath      Code = 1003
	StructIncludeNotFound  Code = 1004

	// Макросы (Stage 2: каталогизация определений)
	MacroInfo              Code = 2000
	MacroMalformedDef      Code = 2001
	MacroNameNoMarker      Code = 2002
	MacroParamNoMarker     Code = 2003
	MacroDuplicate         Code = 2004
	MacroNestedDef         Code = 2005
	MacroUnterminatedDef   Code = 2006
	MacroDefInControlBlock Code = 2007
	MacroEndWithoutDef     Code = 2008

	// Семантические (Stage 3: развёрнутый текст)
	SemInfo                 Code = 3000
	SemUnclosedDelimiter    Code = 3001
	SemCloserWithoutOpener  Code = 3002
	SemUnclosedControlBlock Code = 3003
	SemLoopWithoutOpener    Code = 3004
	SemMismatchedCloser     Code = 3005
	SemUndefinedVariable    Code = 3006
	SemUndefinedFunction    Code = 3007
	SemUndefinedMacro       Code = 3008
	SemMacroArity           Code = 3009
	SemFunctionArity        Code = 3010
	SemOperatorSequence     Code = 3011
	SemMalformedAssignment  Code = 3012
	SemUnknownKeyword       Code = 3013

	// Фатальные для конструкции (не для всего прохода)
	PipeRecursionLimit Code = 4001
	PipeIncludeCycle   Code = 4002
	PipeLoadFileError  Code = 4003
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	StructInfo:              "Structural information",
	StructMalformedInclude:  "Malformed #include statement",
	StructMissingFilename:   "Missing include filename",
	StructInvalidPath:       "Invalid include path",
	StructIncludeNotFound:   "Include target not found",
	MacroInfo:               "Macro information",
	MacroMalformedDef:       "Malformed macro definition",
	MacroNameNoMarker:       "Macro name must end with '$'",
	MacroParamNoMarker:      "Macro parameter must end with '$'",
	MacroDuplicate:          "Duplicate macro definition",
	MacroNestedDef:          "Nested macro definition",
	MacroUnterminatedDef:    "Unterminated macro definition",
	MacroDefInControlBlock:  "Macro definition inside control block has no effect",
	MacroEndWithoutDef:      "'#end def' without matching '#def'",
	SemInfo:                 "Semantic information",
	SemUnclosedDelimiter:    "Unclosed delimiter",
	SemCloserWithoutOpener:  "Closing delimiter without opener",
	SemUnclosedControlBlock: "Control block is not closed",
	SemLoopWithoutOpener:    "Block terminator without matching opener",
	SemMismatchedCloser:     "Mismatched control block terminator",
	SemUndefinedVariable:    "Undefined variable",
	SemUndefinedFunction:    "Undefined function",
	SemUndefinedMacro:       "Undefined macro",
	SemMacroArity:           "Macro argument count mismatch",
	SemFunctionArity:        "Function argument count mismatch",
	SemOperatorSequence:     "Invalid operator sequence",
	SemMalformedAssignment:  "Malformed assignment",
	SemUnknownKeyword:       "Unknown directive keyword",
	PipeRecursionLimit:      "Macro recursion limit exceeded",
	PipeIncludeCycle:        "Circular include reference",
	PipeLoadFileError:       "Failed to load file",
}

// ID renders the stable external identifier, e.g. "CPD2004".
func (c Code) ID() string {
	return fmt.Sprintf("CPD%04d", uint16(c))
}

// Title returns a short human-readable description of the code.
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Stage returns the pipeline stage a code belongs to (1..4), 0 if unknown.
func (c Code) Stage() int {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return 1
	case ic >= 2000 && ic < 3000:
		return 2
	case ic >= 3000 && ic < 4000:
		return 3
	case ic >= 4000 && ic < 5000:
		return 4
	}
	return 0
}
