// Package include implements the first pipeline stage: recursive expansion of
// #include directives into inlined content, with a line-provenance map back to
// the document the user edits.
package include

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by a FileProvider when the target does not exist.
var ErrNotFound = errors.New("include target not found")

// FileProvider resolves a simple relative filename into content bytes.
// The resolver's directive grammar already rejects absolute paths and
// traversal sequences, so providers only ever see plain names.
type FileProvider interface {
	ReadFile(name string) ([]byte, error)
}

// DirProvider reads include targets from a single directory.
type DirProvider struct {
	Dir string
}

func (p DirProvider) ReadFile(name string) ([]byte, error) {
	content, err := os.ReadFile(filepath.Join(p.Dir, name)) // #nosec G304 -- name is grammar-restricted
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return content, err
}

// MapProvider serves includes from memory; used by tests and virtual sessions.
type MapProvider map[string]string

func (p MapProvider) ReadFile(name string) ([]byte, error) {
	content, ok := p[name]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(content), nil
}

// NopProvider fails every lookup; include lines then pass through and are
// flagged instead of producing an empty result.
type NopProvider struct{}

func (NopProvider) ReadFile(string) ([]byte, error) {
	return nil, ErrNotFound
}
