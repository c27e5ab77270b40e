package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommandString(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{
			name: "devices",
			cmd:  Devices(),
			want: "devices",
		},
		{
			name: "getprop",
			cmd:  GetProp("ro.build.type"),
			want: "shell getprop ro.build.type",
		},
		{
			name: "shell script is quoted",
			cmd:  Shell("cat /sys/devices/system/cpu/cpu*/cpufreq/scaling_cur_freq"),
			want: `shell "cat /sys/devices/system/cpu/cpu*/cpufreq/scaling_cur_freq"`,
		},
		{
			name: "settings write",
			cmd:  SettingsPut("system", "screen_brightness", "128"),
			want: "shell settings put system screen_brightness 128",
		},
		{
			name: "dumpsys with args",
			cmd:  Dumpsys("activity", "top"),
			want: "shell dumpsys activity top",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}

func TestCommandTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, Devices().timeout())

	short := Devices().WithTimeout(750 * time.Millisecond)
	assert.Equal(t, 750*time.Millisecond, short.timeout())
	assert.Equal(t, []string{"devices"}, short.Args)
}
