package session

import (
	"context"
	"strconv"
	"strings"

	"codeberg.org/mutker/droidmon/internal/bridge"
	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/parsers"
)

// Brightness bounds accepted by the settings provider.
const (
	MinBrightness = 0
	MaxBrightness = 255
)

// PowerHALProperty toggles the vendor power HAL.
const PowerHALProperty = "persist.vendor.powerhal.enable"

// SetBrightness writes the system screen brightness.
func SetBrightness(ctx context.Context, runner bridge.Runner, value int) error {
	if value < MinBrightness || value > MaxBrightness {
		return errors.New().WithData(errors.ErrInvalidArgument, "brightness "+strconv.Itoa(value)+" outside 0-255")
	}
	return write(ctx, runner, bridge.SettingsPut("system", "screen_brightness", strconv.Itoa(value)))
}

// SetPowerHAL enables or disables the vendor power HAL.
func SetPowerHAL(ctx context.Context, runner bridge.Runner, enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	return write(ctx, runner, bridge.SetProp(PowerHALProperty, value))
}

// write runs a settings or property write on an attached device. Both
// tools report refusal on stdout with a zero exit status.
func write(ctx context.Context, runner bridge.Runner, cmd bridge.Command) error {
	errFactory := errors.New()

	devices, err := runner.Run(ctx, bridge.Devices())
	if err != nil || !parsers.DeviceAttached(devices) {
		return errFactory.New(ErrNotConnected)
	}

	out, err := runner.Run(ctx, cmd)
	if err != nil {
		return errFactory.Wrap(errors.ErrOperationFailed, err).WithData(cmd.String())
	}
	if !parsers.WriteSucceeded(out) {
		return errFactory.WithData(ErrWriteRejected, strings.TrimSpace(out))
	}

	return nil
}
