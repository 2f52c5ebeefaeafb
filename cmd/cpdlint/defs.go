package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cpdlint/internal/analyze"
	"cpdlint/internal/catalogue"
	"cpdlint/internal/include"
	"cpdlint/internal/source"
)

var defsCmd = &cobra.Command{
	Use:   "defs [flags] <file.cpd>",
	Short: "Print the definition catalogue of a document",
	Long:  `Print every macro, function, variable and custom unit defined by a document (including its includes), each with the original line it was defined at`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDefs,
}

func init() {
	defsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runDefs(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	res, err := analyzeDocument(cmd, path)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res.Catalogue)
	}
	renderCatalogue(cmd.OutOrStdout(), res.Catalogue)
	return nil
}

// analyzeDocument runs one pass the way lint does, without output filtering.
func analyzeDocument(cmd *cobra.Command, path string) (*analyze.Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content, _ := source.Normalize(raw)

	manifest, _, err := loadProjectManifest(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	analyzer := analyze.New(
		include.DirProvider{Dir: includeRoot(manifest, path)},
		analyze.Options{MaxDiagnostics: maxDiagnostics},
	)
	return analyzer.Analyze(cmd.Context(), path, content)
}

func renderCatalogue(out io.Writer, idx *catalogue.Index) {
	section := func(title string, entries []catalogue.Entry) {
		if len(entries) == 0 {
			return
		}
		fmt.Fprintf(out, "%s:\n", title)
		for _, e := range entries {
			origin := ""
			if e.SourceFile != "" {
				origin = fmt.Sprintf(" (from %s)", e.SourceFile)
			}
			if e.Expression != "" {
				fmt.Fprintf(out, "  %4d  %s = %s%s\n", e.Line+1, e.Name, e.Expression, origin)
			} else {
				fmt.Fprintf(out, "  %4d  %s%s\n", e.Line+1, e.Name, origin)
			}
		}
	}

	if len(idx.Macros) > 0 {
		fmt.Fprintln(out, "macros:")
		for _, m := range idx.Macros {
			shape := "inline"
			if m.Multiline {
				shape = "block"
			}
			origin := ""
			if m.SourceFile != "" {
				origin = fmt.Sprintf(" (from %s)", m.SourceFile)
			}
			fmt.Fprintf(out, "  %4d  %s(%d param(s), %s)%s\n",
				m.Line+1, m.Name, len(m.Params), shape, origin)
		}
	}
	for _, dup := range idx.Duplicates {
		fmt.Fprintf(out, "  duplicate: %s at line %d (first at line %d)\n",
			dup.Name, dup.DupLine+1, dup.FirstLine+1)
	}
	section("functions", idx.Functions)
	section("variables", idx.Variables)
	section("units", idx.Units)
}
