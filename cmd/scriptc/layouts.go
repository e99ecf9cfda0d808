package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"scriptc/internal/driver"
	"scriptc/internal/layout"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts [flags] file.ts",
	Short: "Print the object layouts a file uses",
	Long: `Lower a file and print every layout descriptor it created: object types,
scope objects and the closure layout, with slots, offsets and field
representations.`,
	Args: cobra.ExactArgs(1),
	RunE: layoutsExecution,
}

func init() {
	layoutsCmd.Flags().Bool("json", false, "print descriptors as JSON")
	layoutsCmd.Flags().Bool("functions", false, "also list generated functions and whether they are pure")
	addCodegenFlags(layoutsCmd)
	addDiagnosticFlags(layoutsCmd)
}

type layoutField struct {
	Name   string `json:"name"`
	Slot   int    `json:"slot"`
	Offset int    `json:"offset"`
	Repr   string `json:"repr"`
}

type layoutEntry struct {
	Kind   string        `json:"kind"`
	Name   string        `json:"name"`
	Tag    int32         `json:"tag"`
	Size   int           `json:"size"`
	Align  int           `json:"align"`
	Fields []layoutField `json:"fields"`
}

func layoutsExecution(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	withFuncs, err := cmd.Flags().GetBool("functions")
	if err != nil {
		return err
	}
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyCodegenFlags(cmd, &cfg); err != nil {
		return err
	}
	opts := driver.OptionsFromConfig(cfg)
	opts.Backend = driver.BackendVM
	opts.Stage = driver.StageLower

	unit, err := driver.CompileFile(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}
	if err := printDiagnostics(cmd, cmd.ErrOrStderr(), unit.Bag, unit.FileSet, ""); err != nil {
		return err
	}
	if unit.Failed() {
		return fmt.Errorf("%s: compilation failed", args[0])
	}

	descs := unit.Lowered.Registry.Descriptors()
	out := cmd.OutOrStdout()
	if asJSON {
		entries := make([]layoutEntry, 0, len(descs))
		for _, d := range descs {
			entries = append(entries, toLayoutEntry(d))
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	for _, d := range descs {
		fmt.Fprint(out, d.String())
	}
	if withFuncs {
		fmt.Fprintln(out, "functions:")
		for _, f := range unit.Lowered.Functions {
			kind := "closure"
			if f.Pure {
				kind = "pure"
			}
			fmt.Fprintf(out, "  %-24s %s\n", f.Name, kind)
		}
	}
	return nil
}

func toLayoutEntry(d *layout.Descriptor) layoutEntry {
	e := layoutEntry{Kind: d.Kind.String(), Name: d.Name, Tag: d.Tag, Size: d.Size, Align: d.Align}
	for _, f := range d.Fields {
		e.Fields = append(e.Fields, layoutField{Name: f.Name, Slot: f.Slot, Offset: f.Offset, Repr: f.Repr.String()})
	}
	return e
}
