package main

import (
	"fmt"
	"strconv"
	"strings"

	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/session"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change a device setting",
}

var setBrightnessCmd = &cobra.Command{
	Use:   "brightness <0-255>",
	Short: "Set the screen brightness",
	Long: `Write the system screen brightness through the settings provider.

Examples:
  droidmon set brightness 128`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.New().WithData(errors.ErrInvalidArgument, args[0])
		}
		if err := session.SetBrightness(cmd.Context(), executor(), value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Brightness set to %d\n", value)
		return nil
	},
}

var setPowerHALCmd = &cobra.Command{
	Use:       "powerhal <on|off>",
	Short:     "Enable or disable the vendor power HAL",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := parseSwitch(args[0])
		if err != nil {
			return err
		}
		if err := session.SetPowerHAL(cmd.Context(), executor(), enabled); err != nil {
			return err
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Power HAL %s\n", state)
		return nil
	},
}

func init() {
	setCmd.AddCommand(setBrightnessCmd, setPowerHALCmd)
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "enable", "enabled", "1", "true":
		return true, nil
	case "off", "disable", "disabled", "0", "false":
		return false, nil
	}
	return false, errors.New().WithData(errors.ErrInvalidArgument, s)
}
