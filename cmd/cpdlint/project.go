package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package packageConfig `toml:"package"`
	Lint    lintConfig    `toml:"lint"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type lintConfig struct {
	// IncludeDir is the directory searched for #include targets,
	// relative to the manifest root. Defaults to the manifest root.
	IncludeDir string `toml:"include_dir"`
	// MaxDiagnostics caps the final output (flag overrides).
	MaxDiagnostics int `toml:"max_diagnostics"`
	// WarningsAsErrors makes the process exit non-zero on warnings.
	WarningsAsErrors bool `toml:"warnings_as_errors"`
}

func findCpdToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "cpd.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest walks up from startDir looking for cpd.toml. Absence is
// not an error: every [lint] setting has a usable default.
func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findCpdToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg projectConfig
	if _, err := toml.DecodeFile(manifestPath, &cfg); err != nil {
		return nil, true, fmt.Errorf("%s: failed to parse TOML: %w", manifestPath, err)
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// includeRoot resolves the directory that #include names are read from for a
// document at docPath.
func includeRoot(manifest *projectManifest, docPath string) string {
	if manifest != nil && manifest.Config.Lint.IncludeDir != "" {
		return filepath.Join(manifest.Root, filepath.FromSlash(manifest.Config.Lint.IncludeDir))
	}
	return filepath.Dir(docPath)
}
