package parsers_test

import (
	"testing"

	"codeberg.org/mutker/droidmon/internal/parsers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatteryFields(t *testing.T) {
	raw := `capacity=87
voltage_now=4123456
current_now=-512345
temp=253
status=Discharging
`
	got := parsers.ParseBatteryFields(raw)
	require.Len(t, got, len(parsers.BatteryNames()))
	assert.Equal(t, map[string]string{
		"battery_level":   "87",
		"battery_voltage": "4.12",
		"battery_current": "-512",
		"battery_temp":    "25.3",
		"battery_status":  "Discharging",
	}, texts(got))
}

func TestParseBatteryFieldsPartial(t *testing.T) {
	got := parsers.ParseBatteryFields("capacity=50\nvoltage_now=garbage\n")
	assert.Equal(t, map[string]string{
		"battery_level":   "50",
		"battery_voltage": parsers.Unknown,
		"battery_current": parsers.Unknown,
		"battery_temp":    parsers.Unknown,
		"battery_status":  parsers.Unknown,
	}, texts(got))
}

func TestBatteryNamesOrder(t *testing.T) {
	got := parsers.ParseBatteryFields("")
	names := make([]string, len(got))
	for i, s := range got {
		names[i] = s.Name
	}
	assert.Equal(t, parsers.BatteryNames(), names)
}
