package parsers_test

import (
	"testing"

	"codeberg.org/mutker/droidmon/internal/parsers"
	"github.com/stretchr/testify/assert"
)

func TestDeviceAttached(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"attached", "List of devices attached\nR58M123ABC\tdevice\n\n", true},
		{"header only", "List of devices attached\n\n", false},
		{"unauthorized", "List of devices attached\nR58M123ABC\tunauthorized\n", false},
		{"offline", "List of devices attached\nR58M123ABC\toffline\n", false},
		{"daemon banner", "* daemon not running; starting now at tcp:5037\n* daemon started successfully\nList of devices attached\nemulator-5554\tdevice\n", true},
		{"space separated is not a match", "List of devices attached\nR58M123ABC device\n", false},
		{"crlf", "List of devices attached\r\nR58M123ABC\tdevice\r\n", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parsers.DeviceAttached(tt.raw))
		})
	}
}

func TestParseDevices(t *testing.T) {
	got := parsers.ParseDevices("List of devices attached\nA1\tdevice\nB2\toffline\n")
	assert.Equal(t, []parsers.Device{
		{Serial: "A1", State: "device"},
		{Serial: "B2", State: "offline"},
	}, got)
}

func TestMapBuildType(t *testing.T) {
	tests := map[string]string{
		"userdebug":  "UD",
		"userroot":   "ROOT",
		"user":       "USER",
		"user\n":     "USER",
		"release":    "",
		"":           "",
		"eng":        "",
		"userdebug2": "",
	}
	for raw, want := range tests {
		assert.Equal(t, want, parsers.MapBuildType(raw), "raw %q", raw)
	}
}

func TestParseProperty(t *testing.T) {
	assert.Equal(t, "Pixel 7", parsers.ParseProperty("model", "Pixel 7\n", parsers.Unknown).Text)
	assert.Equal(t, parsers.Unknown, parsers.ParseProperty("model", "  \n", parsers.Unknown).Text)
	assert.Equal(t, "", parsers.ParseProperty("build_type", "", "").Text)
}

func TestParseAndroidVersion(t *testing.T) {
	assert.Equal(t, "Android 14", parsers.ParseAndroidVersion("14\n").Text)
	assert.Equal(t, parsers.Unknown, parsers.ParseAndroidVersion("").Text)
}

func TestWriteSucceeded(t *testing.T) {
	assert.True(t, parsers.WriteSucceeded(""))
	assert.False(t, parsers.WriteSucceeded("java.lang.SecurityException: Permission denial"))
	assert.False(t, parsers.WriteSucceeded("setprop: failed to set property: error"))
}
