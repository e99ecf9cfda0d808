// Package main implements the scriptc CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"scriptc/internal/prof"
	"scriptc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "scriptc",
	Short:         "Compile a TypeScript subset to LLVM IR",
	Long:          `scriptc lowers a statically typed TypeScript subset to LLVM IR with reference counted objects and closures.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyColorFlag(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return startProfiling(cmd)
	},
	PersistentPostRunE: func(*cobra.Command, []string) error {
		return finish()
	},
}

var (
	traceCleanup func()
	profSession  *prof.Session
)

// finish flushes the tracer and profiles. It is safe to call twice.
func finish() error {
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
	err := profSession.Stop()
	profSession = nil
	return err
}

// main registers the subcommands and persistent flags and runs the root
// command, exiting with status 1 on error.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(layoutsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("config", "", "path to scriptc.toml (default: search upwards from the working directory)")
	addTraceFlags(rootCmd)
	addProfileFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		_ = finish()
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
