package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// Digest is the content identity of a document (sha256).
// Passes, caches and stale-result suppression are keyed by it.
type Digest [32]byte

// File captures metadata and content for a single source document.
// Lines хранится отдельно: весь пайплайн построчный.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Lines   []string
	Hash    Digest
	Flags   FileFlags
}

// LineCount returns the number of lines in the document.
func (f *File) LineCount() int {
	return len(f.Lines)
}

// Line returns the line with the given zero-based number,
// or an empty string if it does not exist.
func (f *File) Line(n uint32) string {
	if int(n) >= len(f.Lines) {
		return ""
	}
	return f.Lines[n]
}
