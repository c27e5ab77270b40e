package main

import (
	"codeberg.org/mutker/droidmon/internal/bridge"
	"codeberg.org/mutker/droidmon/internal/config"
	"codeberg.org/mutker/droidmon/internal/logger"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "droidmon",
	Short: "Poll device metrics over the Android debug bridge",
	Long: `droidmon polls CPU frequencies, thermal zones, battery, memory, storage,
display and build properties from an attached device through the bridge
executable (adb by default) and prints every value as it changes.

Configuration is read from droidmon.toml in $HOME/.config/droidmon or /etc,
from DROIDMON_* environment variables, and from flags, in that order.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(monitorCmd, probeCmd, devicesCmd, setCmd)
}

// setup loads the configuration and initializes logging before any
// subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(config.WithFlags(cmd.Flags()))
	if err != nil {
		return err
	}
	cfg = loaded

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	if !cfg.Debug && !cfg.Verbose {
		if level, ok := logger.ParseLevel(cfg.LogLevel); ok {
			logger.SetLogLevel(level)
		}
	}
	logger.Debug().Str("file", cfg.ConfigFile).Str("bridge", cfg.Bridge).Msg("Config loaded")

	return nil
}

func executor() *bridge.Executor {
	return cfg.Executor(bridge.WithLogger(logger.Default().WithComponent("bridge")))
}
