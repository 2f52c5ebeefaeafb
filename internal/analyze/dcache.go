package analyze

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"cpdlint/internal/catalogue"
	"cpdlint/internal/diag"
	"cpdlint/internal/source"
)

// Current schema version - increment when diskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores finished pass results keyed by content digest, so a lint
// over an unchanged document skips the whole pipeline.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

type cachedNote struct {
	Line  uint32
	Start uint32
	End   uint32
	Msg   string
}

type cachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Line     uint32
	Start    uint32
	End      uint32
	Notes    []cachedNote
}

// diskPayload is the serialized form of a Result. Stage snapshots are not
// cached: they are only needed by the expand/debug surfaces, which always run
// a fresh pass.
type diskPayload struct {
	Schema      uint16
	Path        string
	Hash        source.Digest
	Diagnostics []cachedDiagnostic
	Catalogue   *catalogue.Index
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key source.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог "docs" — для удобства читаемости/очистки
	return filepath.Join(c.dir, "docs", hexKey+".mp")
}

// Put serializes and writes a pass result to the disk cache.
func (c *DiskCache) Put(key source.Digest, res *Result) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(resultToPayload(res)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a cached result for the given content digest. The second return
// is false on a clean miss; schema mismatches count as misses too.
func (c *DiskCache) Get(key source.Digest) (*Result, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload diskPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != diskCacheSchemaVersion {
		return nil, false, nil
	}
	return payloadToResult(&payload), true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

func resultToPayload(res *Result) *diskPayload {
	payload := &diskPayload{
		Schema:    diskCacheSchemaVersion,
		Path:      res.Path,
		Hash:      res.Hash,
		Catalogue: res.Catalogue,
	}
	for _, d := range res.Diagnostics.Items() {
		cd := cachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Line:     d.Primary.Line,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, cachedNote{
				Line:  n.Span.Line,
				Start: n.Span.Start,
				End:   n.Span.End,
				Msg:   n.Msg,
			})
		}
		payload.Diagnostics = append(payload.Diagnostics, cd)
	}
	return payload
}

func payloadToResult(payload *diskPayload) *Result {
	bag := diag.NewBag(len(payload.Diagnostics))
	for _, cd := range payload.Diagnostics {
		d := diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Primary:  source.Span{Line: cd.Line, Start: cd.Start, End: cd.End},
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{
				Span: source.Span{Line: n.Line, Start: n.Start, End: n.End},
				Msg:  n.Msg,
			})
		}
		bag.Add(d)
	}
	return &Result{
		Path:        payload.Path,
		Hash:        payload.Hash,
		Diagnostics: bag,
		Catalogue:   payload.Catalogue,
	}
}
