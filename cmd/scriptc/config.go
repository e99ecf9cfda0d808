package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"scriptc/internal/project"
)

// loadConfig returns the configuration in effect: the file named by
// --config, else the nearest scriptc.toml, else the defaults.
func loadConfig(cmd *cobra.Command) (project.Config, *project.Manifest, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return project.Config{}, nil, err
	}
	if path != "" {
		cfg, err := project.LoadFile(path)
		if err != nil {
			return project.Config{}, nil, err
		}
		return cfg, &project.Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
	}
	manifest, ok, err := project.Discover(".")
	if err != nil {
		return project.Config{}, nil, err
	}
	if !ok {
		return project.DefaultConfig(), nil, nil
	}
	return manifest.Config, manifest, nil
}

func addCodegenFlags(cmd *cobra.Command) {
	cmd.Flags().String("entry", "", "name of the generated entry routine")
	cmd.Flags().String("triple", "", "target triple")
	cmd.Flags().String("allocate-hook", "", "name of the allocator hook")
	cmd.Flags().String("release-hook", "", "name of the release hook")
}

// applyCodegenFlags overrides cfg with the codegen flags set on cmd.
func applyCodegenFlags(cmd *cobra.Command, cfg *project.Config) error {
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"entry", &cfg.Build.Entry},
		{"triple", &cfg.Build.Triple},
		{"allocate-hook", &cfg.Runtime.Allocate},
		{"release-hook", &cfg.Runtime.Release},
	} {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		v, err := cmd.Flags().GetString(f.name)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyColorFlag(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}
