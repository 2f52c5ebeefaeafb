package main

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cpdlint/internal/analyze"
	"cpdlint/internal/diag"
	"cpdlint/internal/diagfmt"
	"cpdlint/internal/include"
	"cpdlint/internal/source"
)

var lintCmd = &cobra.Command{
	Use:   "lint [flags] <file.cpd|directory>",
	Short: "Run the staged analysis pipeline over .cpd documents",
	Long:  `Run include resolution, macro expansion and all lint checks over a .cpd document or every *.cpd file within a directory; findings are reported at original-document lines`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLint,
}

func init() {
	lintCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	lintCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	lintCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	lintCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	lintCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	lintCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	lintCmd.Flags().Bool("disk-cache", false, "reuse cached results for unchanged documents")
}

type lintedFile struct {
	path    string
	content []byte
	result  *analyze.Result
	err     error
}

func runLint(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	enableDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	switch format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	manifest, _, err := loadProjectManifest(filepath.Dir(targetPath))
	if err != nil {
		return err
	}
	if manifest != nil {
		if !cmd.Root().PersistentFlags().Changed("max-diagnostics") &&
			manifest.Config.Lint.MaxDiagnostics > 0 {
			maxDiagnostics = manifest.Config.Lint.MaxDiagnostics
		}
		if !cmd.Flags().Changed("warnings-as-errors") {
			warningsAsErrors = manifest.Config.Lint.WarningsAsErrors
		}
	}

	files, err := collectTargets(targetPath)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .cpd files found under %s", targetPath)
	}

	var cache *analyze.DiskCache
	if enableDiskCache {
		cache, err = analyze.OpenDiskCache("cpdlint")
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
	}

	linted, err := lintFiles(cmd, files, manifest, cache, maxDiagnostics, jobs)
	if err != nil {
		return err
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	out := cmd.OutOrStdout()
	hasErrors := false
	hasWarnings := false
	for _, lf := range linted {
		if lf.err != nil {
			return fmt.Errorf("%s: %w", lf.path, lf.err)
		}
		bag := lf.result.Diagnostics
		if noWarnings {
			bag = dropWarnings(bag)
		}
		if bag.HasErrors() {
			hasErrors = true
		}
		if bag.HasWarnings() {
			hasWarnings = true
		}

		// FileSet только для отображения: id 0 == сам документ
		displayFS := source.NewFileSet()
		displayFS.AddVirtual(lf.path, lf.content)

		switch format {
		case "json":
			if err := diagfmt.JSON(out, bag, displayFS, diagfmt.JSONOpts{
				PathMode:     pathMode,
				Max:          maxDiagnostics,
				IncludeNotes: withNotes,
			}); err != nil {
				return err
			}
		default:
			diagfmt.Pretty(out, bag, displayFS, diagfmt.PrettyOpts{
				Color:      useColor(colorMode, os.Stdout),
				PathMode:   pathMode,
				ShowNotes:  withNotes,
				ShowSource: true,
			})
		}
	}

	if format == "pretty" && !quiet {
		total := 0
		for _, lf := range linted {
			total += lf.result.Diagnostics.Len()
		}
		fmt.Fprintf(out, "%d file(s), %d finding(s)\n", len(linted), total)
	}

	if hasErrors || (warningsAsErrors && hasWarnings) {
		// диагностика уже напечатана, это только код выхода
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		os.Exit(1)
	}
	return nil
}

// lintFiles runs the pipeline over every target, bounded by --jobs.
func lintFiles(cmd *cobra.Command, files []string, manifest *projectManifest, cache *analyze.DiskCache, maxDiagnostics, jobs int) ([]lintedFile, error) {
	linted := make([]lintedFile, len(files))
	var mu sync.Mutex

	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			lf := lintOne(cmd, path, manifest, cache, maxDiagnostics)
			mu.Lock()
			linted[i] = lf
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return linted, nil
}

func lintOne(cmd *cobra.Command, path string, manifest *projectManifest, cache *analyze.DiskCache, maxDiagnostics int) lintedFile {
	raw, err := os.ReadFile(path)
	if err != nil {
		return lintedFile{path: path, err: err}
	}
	content, _ := source.Normalize(raw)

	if cache != nil {
		if res, ok, err := cache.Get(sha256.Sum256(content)); err == nil && ok {
			return lintedFile{path: path, content: content, result: res}
		}
	}

	analyzer := analyze.New(
		include.DirProvider{Dir: includeRoot(manifest, path)},
		analyze.Options{MaxDiagnostics: maxDiagnostics},
	)
	res, err := analyzer.Analyze(cmd.Context(), path, content)
	if err != nil {
		return lintedFile{path: path, err: err}
	}
	if cache != nil {
		// промах кэша не фатален, результат уже есть
		_ = cache.Put(res.Hash, res)
	}
	return lintedFile{path: path, content: content, result: res}
}

func collectTargets(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !strings.HasSuffix(path, ".cpd") {
			return nil, fmt.Errorf("%s is not a .cpd file", path)
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".cpd") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func dropWarnings(bag *diag.Bag) *diag.Bag {
	out := diag.NewBag(bag.Len())
	for _, d := range bag.Items() {
		if d.Severity == diag.SevWarning {
			continue
		}
		out.Add(d)
	}
	return out
}
