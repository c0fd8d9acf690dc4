package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/spectrum-sim/spectrum-sim/sim"
)

// resolveConfig loads the config file (or the defaults) and applies any CLI
// flag the user set explicitly. Flags left at their default never override
// values from the file.
func resolveConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		loaded, err := sim.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("mode") {
		if !sim.IsValidMode(mode) {
			return cfg, fmt.Errorf("unknown --mode %q; valid: dynamic, static", mode)
		}
		cfg.Mode = sim.Mode(mode)
	}
	if flags.Changed("years") {
		cfg.Years = years
	}
	if flags.Changed("days") {
		cfg.Days = days
	}
	if flags.Changed("static-split") {
		cfg.StaticHotspotShare = staticSplit
	}

	if flags.Changed("static-split") && flags.Lookup("mode") != nil && cfg.Mode != sim.ModeStatic {
		logrus.Warnf("--static-split has no effect in %s mode", cfg.Mode)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
