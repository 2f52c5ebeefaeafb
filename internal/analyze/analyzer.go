// Package analyze orchestrates one full pipeline pass per document: include
// resolution, macro cataloguing, macro expansion, the staged checks and the
// final translation of every diagnostic into original coordinates.
package analyze

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"cpdlint/internal/catalogue"
	"cpdlint/internal/diag"
	"cpdlint/internal/include"
	"cpdlint/internal/lint"
	"cpdlint/internal/macro"
	"cpdlint/internal/source"
	"cpdlint/internal/stage"
)

// Options configures an Analyzer.
type Options struct {
	// MaxDiagnostics caps the size of the final bag (0 = default).
	MaxDiagnostics int
	// Sequential disables the concurrent fan-out of semantic checks.
	Sequential bool
}

const defaultMaxDiagnostics = 100

// Analyzer runs analysis passes and keeps the latest published result per
// document. Passes for different documents may run concurrently; each pass
// builds its own tables and snapshots, so no locking is needed inside a pass.
// A newly requested pass for the same document supersedes an in-flight one:
// the older pass still runs to completion, but its result is marked stale and
// never published.
type Analyzer struct {
	provider include.FileProvider
	opts     Options

	mu     sync.Mutex
	gen    map[string]uint64
	latest map[string]*Result
}

// New creates an Analyzer resolving includes through the given provider.
func New(provider include.FileProvider, opts Options) *Analyzer {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = defaultMaxDiagnostics
	}
	if provider == nil {
		provider = include.NopProvider{}
	}
	return &Analyzer{
		provider: provider,
		opts:     opts,
		gen:      make(map[string]uint64),
		latest:   make(map[string]*Result),
	}
}

// Latest returns the most recently published result for a document, if any.
func (a *Analyzer) Latest(path string) (*Result, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.latest[path]
	return r, ok
}

// Analyze runs one synchronous pass over an immutable content snapshot.
// Результат публикуется только если к моменту завершения не был запрошен
// более новый проход для того же документа.
func (a *Analyzer) Analyze(ctx context.Context, path string, content []byte) (*Result, error) {
	a.mu.Lock()
	a.gen[path]++
	myGen := a.gen[path]
	a.mu.Unlock()

	result, err := a.run(ctx, path, content)
	if err != nil {
		// провалившийся проход не трогает опубликованный каталог
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen[path] != myGen {
		result.Stale = true
		return result, nil
	}
	a.latest[path] = result
	return result, nil
}

func (a *Analyzer) run(ctx context.Context, path string, content []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs := source.NewFileSet()
	fileID := fs.AddVirtual(path, content)
	file := fs.Get(fileID)

	// Stage 1: include expansion + structural checks
	bag1 := diag.NewBag(a.opts.MaxDiagnostics)
	res1 := include.Resolve(file, a.provider, diag.BagReporter{Bag: bag1})
	lint.IncludeSyntax(res1.Content, fileID, diag.BagReporter{Bag: bag1})

	// Stage 2: macro catalogue + definition checks
	bag2 := diag.NewBag(a.opts.MaxDiagnostics)
	cat := macro.Catalog(res1, fileID, diag.BagReporter{Bag: bag2})

	// Stage 3: expansion (diagnostics are anchored at Stage-2 invocation lines)
	exp := macro.Expand(cat, fileID, diag.BagReporter{Bag: bag2})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Semantic checks: independent, read-only fan-out over the snapshots.
	checks := lint.Checks()
	checkBags := make([]*diag.Bag, len(checks))
	lctx := &lint.Context{File: fileID, Stage2: cat, Stage3: exp}
	if a.opts.Sequential {
		for i, c := range checks {
			checkBags[i] = diag.NewBag(a.opts.MaxDiagnostics)
			c.Run(lctx, diag.BagReporter{Bag: checkBags[i]})
		}
	} else {
		var g errgroup.Group
		for i, c := range checks {
			i, c := i, c
			g.Go(func() error {
				checkBags[i] = diag.NewBag(a.opts.MaxDiagnostics)
				c.Run(lctx, diag.BagReporter{Bag: checkBags[i]})
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	// Translate everything into original coordinates, exactly once.
	tr := stage.NewTranslator(res1.Content, cat.Content, exp.Content)
	final := diag.NewBag(a.opts.MaxDiagnostics)
	final.Merge(tr.Bag(stage.Resolved, bag1))
	final.Merge(tr.Bag(stage.Catalogued, bag2))
	for i, c := range checks {
		final.Merge(tr.Bag(c.Stage, checkBags[i]))
	}
	final.Sort()
	final.Dedup()

	return &Result{
		Path:        path,
		Hash:        file.Hash,
		Diagnostics: final,
		Catalogue:   catalogue.Build(cat, exp, res1.SourceFile, tr),
		Stage1:      res1.Content,
		Stage2:      cat.Content,
		Stage3:      exp.Content,
	}, nil
}
