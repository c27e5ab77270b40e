package session_test

import (
	"context"
	"testing"

	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBrightness(t *testing.T) {
	tests := []struct {
		name     string
		attached bool
		value    int
		output   string
		code     errors.ErrorCode
	}{
		{name: "ok", attached: true, value: 128},
		{name: "out of range", attached: true, value: 300, code: errors.ErrInvalidArgument},
		{name: "negative", attached: true, value: -1, code: errors.ErrInvalidArgument},
		{name: "not connected", attached: false, value: 10, code: session.ErrNotConnected},
		{name: "refused", attached: true, value: 10, output: "java.lang.SecurityException: Permission Denial", code: session.ErrWriteRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeDevice(tt.attached)
			dev.respond("screen_brightness", tt.output)

			err := session.SetBrightness(context.Background(), dev, tt.value)
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, 1, dev.count("settings put system screen_brightness 128"))
				return
			}
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestSetPowerHAL(t *testing.T) {
	dev := newFakeDevice(true)

	require.NoError(t, session.SetPowerHAL(context.Background(), dev, true))
	require.NoError(t, session.SetPowerHAL(context.Background(), dev, false))

	assert.Equal(t, 1, dev.count("setprop persist.vendor.powerhal.enable 1"))
	assert.Equal(t, 1, dev.count("setprop persist.vendor.powerhal.enable 0"))

	dev.respond("setprop", "setprop: failed to set property: error")
	err := session.SetPowerHAL(context.Background(), dev, true)
	assert.True(t, errors.HasCode(err, session.ErrWriteRejected))
}
