package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"scriptc/internal/diag"
	"scriptc/internal/diagfmt"
	"scriptc/internal/source"
)

func addDiagnosticFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "diagnostics format (pretty|json)")
	cmd.Flags().Bool("absolute-paths", false, "print absolute file paths")
	cmd.Flags().Int("context", 0, "source lines shown around each diagnostic")
}

// printDiagnostics renders bag to out in the format chosen on cmd.
func printDiagnostics(cmd *cobra.Command, out io.Writer, bag *diag.Bag, fs *source.FileSet, baseDir string) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	absolute, err := cmd.Flags().GetBool("absolute-paths")
	if err != nil {
		return err
	}
	contextLines, err := cmd.Flags().GetInt("context")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	pathMode := diagfmt.PathModeAuto
	if absolute {
		pathMode = diagfmt.PathModeAbsolute
	}

	bag.Sort()
	switch format {
	case "pretty":
		diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:     !color.NoColor,
			Context:   int8(min(max(contextLines, 0), 9)),
			PathMode:  pathMode,
			BaseDir:   baseDir,
			ShowNotes: true,
		})
		return nil
	case "json":
		return diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			BaseDir:          baseDir,
			Max:              maxDiagnostics,
			IncludeNotes:     true,
		})
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}
