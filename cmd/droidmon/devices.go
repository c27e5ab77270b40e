package main

import (
	"fmt"

	"codeberg.org/mutker/droidmon/internal/bridge"
	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/parsers"
	"codeberg.org/mutker/droidmon/internal/sink"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices known to the bridge",
	Args:  cobra.NoArgs,
	RunE:  runDevices,
}

func runDevices(cmd *cobra.Command, _ []string) error {
	out, err := executor().Run(cmd.Context(), bridge.Devices().WithTimeout(cfg.Timeout))
	if err != nil {
		return errors.New().Wrap(errors.ErrOperationFailed, err)
	}

	devices := parsers.ParseDevices(out)
	if len(devices) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No devices attached")
		return nil
	}

	names := make([]string, 0, len(devices))
	states := make(map[string]string, len(devices))
	for _, d := range devices {
		names = append(names, d.Serial)
		states[d.Serial] = d.State
	}
	fmt.Fprintln(cmd.OutOrStdout(), sink.NewConsole(cmd.OutOrStdout()).Table(names, states))

	return nil
}
