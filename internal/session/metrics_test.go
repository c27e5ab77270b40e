package session_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/droidmon/internal/session"
	"github.com/stretchr/testify/assert"
)

func TestDefaultMetricsUniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range session.DefaultMetrics(nil) {
		assert.False(t, seen[m.Name], "duplicate metric %s", m.Name)
		seen[m.Name] = true
		assert.Positive(t, m.Interval, m.Name)
		assert.NotEmpty(t, m.Fallback, m.Name)
		assert.NotNil(t, m.Parse, m.Name)
	}
	for _, z := range session.DefaultThermalZones {
		assert.True(t, seen["thermal."+z.Name], z.Name)
	}
}

func TestDefaultMetricsIntervals(t *testing.T) {
	metrics := session.DefaultMetrics(map[string]time.Duration{
		session.IntervalThermal: 3 * time.Second,
		session.IntervalFPS:     0,
	})

	for _, m := range metrics {
		switch {
		case m.Name == "fps":
			assert.Equal(t, time.Second, m.Interval, "non-positive override keeps the default")
		case m.Name == "frequency":
			assert.Equal(t, 300*time.Millisecond, m.Interval)
		case len(m.Name) > len("thermal.") && m.Name[:len("thermal.")] == "thermal.":
			assert.Equal(t, 3*time.Second, m.Interval, m.Name)
		}
	}
}

func TestBatteryMetricCommand(t *testing.T) {
	for _, m := range session.DefaultMetrics(nil) {
		if m.Name != "battery" {
			continue
		}
		assert.True(t, m.NeedsBattery)
		cmd := m.Command("/sys/class/power_supply/bms")
		assert.Contains(t, cmd.String(), "/sys/class/power_supply/bms/$f")
		return
	}
	t.Fatal("battery metric missing")
}
