package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cpdlint/internal/stage"
)

var expandCmd = &cobra.Command{
	Use:   "expand [flags] <file.cpd>",
	Short: "Dump the staged texts of a document",
	Long:  `Dump the include-resolved, catalogued and macro-expanded texts of a document, each line annotated with the original line it traces back to`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExpand,
}

func init() {
	expandCmd.Flags().String("stage", "all", "which stage to dump (resolved|catalogued|expanded|all)")
	expandCmd.Flags().Bool("origins", true, "annotate each line with its original line number")
}

func runExpand(cmd *cobra.Command, args []string) error {
	stageName, err := cmd.Flags().GetString("stage")
	if err != nil {
		return fmt.Errorf("failed to get stage flag: %w", err)
	}
	showOrigins, err := cmd.Flags().GetBool("origins")
	if err != nil {
		return fmt.Errorf("failed to get origins flag: %w", err)
	}

	res, err := analyzeDocument(cmd, args[0])
	if err != nil {
		return err
	}

	tr := stage.NewTranslator(res.Stage1, res.Stage2, res.Stage3)
	out := cmd.OutOrStdout()

	dump := func(label string, idx stage.Index, content stage.Content) {
		fmt.Fprintf(out, "== %s (%d line(s)) ==\n", label, len(content.Lines))
		for i, line := range content.Lines {
			if showOrigins {
				fmt.Fprintf(out, "%4d <- %4d | %s\n",
					i+1, tr.ToOriginal(idx, uint32(i))+1, line)
			} else {
				fmt.Fprintf(out, "%4d | %s\n", i+1, line)
			}
		}
	}

	switch stageName {
	case "resolved":
		dump("resolved", stage.Resolved, res.Stage1)
	case "catalogued":
		dump("catalogued", stage.Catalogued, res.Stage2)
	case "expanded":
		dump("expanded", stage.Expanded, res.Stage3)
	case "all":
		dump("resolved", stage.Resolved, res.Stage1)
		fmt.Fprintln(out)
		dump("catalogued", stage.Catalogued, res.Stage2)
		fmt.Fprintln(out)
		dump("expanded", stage.Expanded, res.Stage3)
	default:
		return fmt.Errorf("unsupported stage %q (must be resolved, catalogued, expanded or all)", stageName)
	}
	return nil
}
