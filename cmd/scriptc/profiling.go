package main

import (
	"github.com/spf13/cobra"

	"scriptc/internal/prof"
)

func addProfileFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to file")
	cmd.PersistentFlags().String("memprofile", "", "write a heap profile to file on exit")
	cmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")
}

func startProfiling(cmd *cobra.Command) error {
	var opts prof.Options
	var err error
	if opts.CPU, err = cmd.Flags().GetString("cpuprofile"); err != nil {
		return err
	}
	if opts.Mem, err = cmd.Flags().GetString("memprofile"); err != nil {
		return err
	}
	if opts.Trace, err = cmd.Flags().GetString("runtime-trace"); err != nil {
		return err
	}
	if !opts.Enabled() {
		return nil
	}
	profSession, err = prof.Start(opts)
	return err
}
