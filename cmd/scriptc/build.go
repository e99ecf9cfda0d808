package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scriptc/internal/buildpipeline"
	"scriptc/internal/project"
	runtimeembed "scriptc/runtime"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [files or directories...]",
	Short: "Compile sources to LLVM IR",
	Long: `Compile each source file to a .ll module. Without arguments every .ts
file below the directory holding scriptc.toml is built.`,
	RunE: buildExecution,
}

func init() {
	buildCmd.Flags().StringP("output", "o", "", "output directory (default: [build].output)")
	buildCmd.Flags().IntP("jobs", "j", 0, "units compiled in parallel (default: [build].jobs or GOMAXPROCS)")
	buildCmd.Flags().Bool("no-cache", false, "ignore and do not update the build cache")
	buildCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
	buildCmd.Flags().Bool("emit-runtime", false, "also write a C host runtime defining the hooks and main")
	addCodegenFlags(buildCmd)
	addDiagnosticFlags(buildCmd)
}

func buildExecution(cmd *cobra.Command, args []string) error {
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	cfg, manifest, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyCodegenFlags(cmd, &cfg); err != nil {
		return err
	}

	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = "."
	}
	outputDir := cfg.Build.Output
	if manifest != nil {
		baseDir = manifest.Root
		outputDir = manifest.OutputDir()
	}
	if cmd.Flags().Changed("output") {
		if outputDir, err = cmd.Flags().GetString("output"); err != nil {
			return err
		}
	}
	jobs := cfg.Build.Jobs
	if cmd.Flags().Changed("jobs") {
		if jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return err
		}
	}

	inputs := args
	if len(inputs) == 0 {
		if manifest == nil {
			return errors.New("no scriptc.toml found\nplease name the files to build, e.g.:\n  scriptc build main.ts")
		}
		inputs = []string{manifest.Root}
	}
	files, err := expandInputs(inputs, outputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .ts files found in %v", inputs)
	}

	var cache *buildpipeline.DiskCache
	if cfg.Build.Cache && !noCache {
		if cache, err = buildpipeline.OpenDiskCache("scriptc"); err != nil && !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: build cache disabled: %v\n", err)
		}
	}

	req := &buildpipeline.BuildRequest{
		Files:          files,
		BaseDir:        baseDir,
		OutputDir:      outputDir,
		Config:         cfg,
		Jobs:           jobs,
		Cache:          cache,
		MaxDiagnostics: maxDiagnostics,
	}
	title := "building"
	if cfg.Package.Name != "" {
		title = "building " + cfg.Package.Name
	}

	var res buildpipeline.BuildResult
	if shouldUseTUI(uiModeValue) && !quiet {
		res, err = runBuildWithUI(cmd.Context(), title, req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), req)
	}

	for _, u := range res.Units {
		if u.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", u.Display, u.Err)
		}
		if u.Unit != nil {
			if perr := printDiagnostics(cmd, cmd.ErrOrStderr(), u.Unit.Bag, u.Unit.FileSet, baseDir); perr != nil {
				return perr
			}
		}
	}
	if showTimings {
		printStageTimings(cmd.OutOrStdout(), res.Timings)
	}
	if err != nil {
		return err
	}
	emitRuntime, err := cmd.Flags().GetBool("emit-runtime")
	if err != nil {
		return err
	}
	if emitRuntime {
		if err := writeHostRuntime(outputDir, cfg); err != nil {
			return err
		}
	}
	if !quiet {
		cached := 0
		for _, u := range res.Units {
			if u.Cached {
				cached++
			}
		}
		rel, relErr := filepath.Rel(baseDir, outputDir)
		if relErr != nil || strings.HasPrefix(rel, "..") {
			rel = outputDir
		}
		fmt.Fprintf(cmd.OutOrStdout(), "built %d unit(s) into %s (%d cached)\n", len(res.Units), rel, cached)
	}
	return nil
}

// writeHostRuntime writes the C host runtime for cfg's entry and hooks.
func writeHostRuntime(outputDir string, cfg project.Config) error {
	src, err := runtimeembed.RenderHost(runtimeembed.HostOptions{
		Entry:       cfg.Build.Entry,
		Allocate:    cfg.Runtime.Allocate,
		Release:     cfg.Runtime.Release,
		ReportLeaks: true,
	})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outputDir, runtimeembed.HostFileName), src, 0o600)
}
