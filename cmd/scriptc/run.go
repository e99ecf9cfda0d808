package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scriptc/internal/driver"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] file.ts",
	Short: "Compile and execute a file with the interpreter",
	Long: `Lower a file for the interpreter backend and execute its entry routine.
Every declared function returning void prints its arguments to stdout. The
run fails if any object is leaked or released twice.`,
	Args: cobra.ExactArgs(1),
	RunE: runExecution,
}

func init() {
	runCmd.Flags().Int("max-steps", 10_000_000, "abort after this many instructions (0 = unlimited)")
	runCmd.Flags().Bool("vm-trace", false, "print every executed instruction to stderr")
	runCmd.Flags().Bool("stats", false, "print heap statistics after the run")
	addCodegenFlags(runCmd)
	addDiagnosticFlags(runCmd)
}

func runExecution(cmd *cobra.Command, args []string) error {
	maxSteps, err := cmd.Flags().GetInt("max-steps")
	if err != nil {
		return err
	}
	vmTrace, err := cmd.Flags().GetBool("vm-trace")
	if err != nil {
		return err
	}
	stats, err := cmd.Flags().GetBool("stats")
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

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyCodegenFlags(cmd, &cfg); err != nil {
		return err
	}
	opts := driver.OptionsFromConfig(cfg)
	opts.Backend = driver.BackendVM
	opts.MaxDiagnostics = maxDiagnostics
	opts.EnableTimings = showTimings

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

	runOpts := driver.RunOptions{Stdout: cmd.OutOrStdout(), MaxSteps: maxSteps}
	if vmTrace {
		runOpts.Trace = os.Stderr
	}
	res, runErr := driver.Run(cmd.Context(), unit, runOpts)
	if showTimings {
		fmt.Fprint(cmd.ErrOrStderr(), unit.Timer.Summary())
	}
	if stats && res != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "steps=%d allocs=%d releases=%d\n", res.Steps, res.Allocs, res.Releases)
	}
	return runErr
}
