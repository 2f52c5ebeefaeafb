package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"cpdlint/internal/analyze"
	"cpdlint/internal/diag"
	"cpdlint/internal/include"
	"cpdlint/internal/source"
	"cpdlint/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <directory>",
	Short: "Re-lint .cpd documents on every edit",
	Long:  `Watch a directory and re-run the full analysis pipeline whenever a .cpd document changes, rendering per-file status in the terminal`,
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

const watchDebounce = 150 * time.Millisecond

func init() {
	watchCmd.Flags().Bool("disk-cache", false, "reuse cached results for unchanged documents")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	enableDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	manifest, _, err := loadProjectManifest(dir)
	if err != nil {
		return err
	}

	var cache *analyze.DiskCache
	if enableDiskCache {
		cache, err = analyze.OpenDiskCache("cpdlint")
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
	}

	files, err := collectTargets(dir)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	root := dir
	if manifest != nil && manifest.Config.Lint.IncludeDir != "" {
		root = filepath.Join(manifest.Root, filepath.FromSlash(manifest.Config.Lint.IncludeDir))
	}

	events := make(chan ui.Event, 64)
	w := &watchSession{
		analyzer: analyze.New(
			include.DirProvider{Dir: root},
			analyze.Options{MaxDiagnostics: maxDiagnostics},
		),
		cache:  cache,
		events: events,
	}
	go w.loop(ctx, watcher, files)

	model := ui.NewWatchModel(fmt.Sprintf("watching %s", dir), files, events)
	_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
	return err
}

type watchSession struct {
	analyzer *analyze.Analyzer
	cache    *analyze.DiskCache
	events   chan<- ui.Event
}

// loop drives the session: initial pass over every known document, then
// debounced re-lints on filesystem writes.
func (w *watchSession) loop(ctx context.Context, watcher *fsnotify.Watcher, files []string) {
	defer close(w.events)

	for _, path := range files {
		w.lint(ctx, path)
	}

	// дебаунс: таймер на файл, сериализуем пуски через канал
	pending := make(map[string]*time.Timer)
	fire := make(chan string, 64)

	for {
		select {
		case <-ctx.Done():
			return
		case path := <-fire:
			delete(pending, path)
			w.lint(ctx, path)
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(ev.Name, ".cpd") {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			path := ev.Name
			if t, ok := pending[path]; ok {
				t.Reset(watchDebounce)
				continue
			}
			pending[path] = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- path:
				case <-ctx.Done():
				}
			})
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
			// ошибка наблюдателя не валит сессию
		}
	}
}

func (w *watchSession) lint(ctx context.Context, path string) {
	w.send(ctx, ui.Event{File: path, Status: ui.StatusLinting})

	raw, err := os.ReadFile(path)
	if err != nil {
		w.send(ctx, ui.Event{File: path, Status: ui.StatusErrors, Errors: 1})
		return
	}
	content, _ := source.Normalize(raw)

	res, err := w.analyzer.Analyze(ctx, path, content)
	if err != nil {
		if ctx.Err() == nil {
			w.send(ctx, ui.Event{File: path, Status: ui.StatusErrors, Errors: 1})
		}
		return
	}
	if res.Stale {
		// более новый проход уже в пути, его событие и покажем
		return
	}
	if w.cache != nil {
		_ = w.cache.Put(res.Hash, res)
	}

	errors, warnings := 0, 0
	for _, d := range res.Diagnostics.Items() {
		switch {
		case d.Severity >= diag.SevError:
			errors++
		case d.Severity == diag.SevWarning:
			warnings++
		}
	}
	switch {
	case errors > 0:
		w.send(ctx, ui.Event{File: path, Status: ui.StatusErrors, Errors: errors, Warnings: warnings})
	case warnings > 0:
		w.send(ctx, ui.Event{File: path, Status: ui.StatusWarnings, Warnings: warnings})
	default:
		w.send(ctx, ui.Event{File: path, Status: ui.StatusClean})
	}
}

func (w *watchSession) send(ctx context.Context, ev ui.Event) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}
