package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scriptc/internal/trace"
)

func addTraceFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("trace", "", "write trace events to a file (- for stderr)")
	flags.String("trace-level", "", "trace depth (off|unit|phase|func); default from scriptc.toml")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson|chrome)")
	flags.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
}

// setupTracing reads the trace flags, attaches a tracer to the command
// context and returns the cleanup that closes it. Giving --trace without
// a level traces phases.
func setupTracing(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	output, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	every, err := flags.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	if levelStr == "" {
		cfg, _, cfgErr := loadConfig(cmd)
		if cfgErr != nil {
			return nil, cfgErr
		}
		levelStr = cfg.Trace.Level
	}
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	if level == trace.LevelOff {
		if output == "" {
			cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
			return func() {}, nil
		}
		level = trace.LevelPhase
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{
		Level:     level,
		Format:    format,
		Path:      output,
		Heartbeat: every,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	return func() {
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
