package include

import (
	"strings"

	"cpdlint/internal/diag"
)

const keyword = "#include"

// IsDirective reports whether the line is an #include directive at all.
func IsDirective(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, keyword) {
		return false
	}
	rest := trimmed[len(keyword):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

// Classify parses an include directive and either extracts the target name or
// reports why it cannot be resolved. The same classification is used by the
// resolver (ok -> expand) and by the Stage-1 structural check (bad -> flag);
// одна грамматика, два потребителя.
func Classify(line string) (name string, code diag.Code) {
	trimmed := strings.TrimLeft(line, " \t")
	rest := strings.TrimSpace(trimmed[len(keyword):])
	if rest == "" {
		return "", diag.StructMissingFilename
	}

	if rest[0] == '"' {
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return "", diag.StructMalformedInclude
		}
		name = rest[1 : 1+end]
		tail := strings.TrimSpace(rest[2+end:])
		if tail != "" {
			return "", diag.StructMalformedInclude
		}
		if name == "" {
			return "", diag.StructMissingFilename
		}
	} else {
		if strings.ContainsAny(rest, " \t") {
			// неэкранированный путь с пробелами
			return "", diag.StructInvalidPath
		}
		name = rest
	}

	if !validPath(name) {
		return "", diag.StructInvalidPath
	}
	return name, 0
}

// validPath admits only simple relative filenames: no traversal, no absolute
// paths, no wildcards.
func validPath(name string) bool {
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return false
	}
	if strings.Contains(name, "..") || strings.Contains(name, ":") {
		return false
	}
	if strings.ContainsAny(name, "*?") {
		return false
	}
	return true
}
