package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/droidmon/internal/bridge"
	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/parsers"
	"codeberg.org/mutker/droidmon/internal/session"
	"codeberg.org/mutker/droidmon/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func fastConfig() session.Config {
	cfg := session.DefaultConfig()
	cfg.ConnectionInterval = 10 * time.Millisecond
	cfg.ShutdownGrace = 200 * time.Millisecond
	cfg.Intervals[session.IntervalUptime] = 10 * time.Millisecond
	return cfg
}

func frequencyMetric() session.Metric {
	return session.Metric{
		Name:     "frequency",
		Interval: 10 * time.Millisecond,
		Command: func(string) bridge.Command {
			return bridge.Shell("cat /sys/devices/system/cpu/cpu*/cpufreq/scaling_cur_freq")
		},
		Parse:    parsers.ParseFrequencies,
		Fallback: []string{"cpu"},
	}
}

func batteryMetric() session.Metric {
	m := session.DefaultMetrics(nil)
	for _, metric := range m {
		if metric.Name == "battery" {
			metric.Interval = 10 * time.Millisecond
			return metric
		}
	}
	panic("battery metric missing")
}

func hasValue(l *sink.Latest, name, want string) func() bool {
	return func() bool {
		v, ok := l.Get(name)
		return ok && v == want
	}
}

func startSession(t *testing.T, dev *fakeDevice, metrics ...session.Metric) (*session.Session, *sink.Latest) {
	t.Helper()

	latest := sink.NewLatest()
	dispatcher := sink.NewSerialDispatcher()
	s := session.New(dev, latest, fastConfig(),
		session.WithMetrics(metrics),
		session.WithDispatch(dispatcher.Dispatch),
	)
	require.NoError(t, s.Start())
	t.Cleanup(func() {
		s.Stop()
		dispatcher.Close()
	})

	return s, latest
}

func TestSessionDeliversMetrics(t *testing.T) {
	dev := newFakeDevice(true)
	dev.respond("scaling_cur_freq", "300000\n1804800\n")

	s, latest := startSession(t, dev, frequencyMetric())

	assert.NotEmpty(t, s.ID())
	assert.Eventually(t, hasValue(latest, "connection", "true"), waitFor, tick)
	assert.Eventually(t, hasValue(latest, "cpu0", "300.0 MHz"), waitFor, tick)
	assert.Eventually(t, hasValue(latest, "cpu1", "1804.8 MHz"), waitFor, tick)
}

func TestSessionDisconnectedPlaceholder(t *testing.T) {
	dev := newFakeDevice(false)
	dev.respond("scaling_cur_freq", "300000\n")

	_, latest := startSession(t, dev, frequencyMetric())

	assert.Eventually(t, hasValue(latest, "cpu", session.DisconnectedText), waitFor, tick)
	v, _ := latest.Get("connection")
	assert.Equal(t, "false", v)
	assert.Equal(t, 0, dev.count("scaling_cur_freq"), "no device commands while detached")
}

func TestSessionDisconnectResets(t *testing.T) {
	dev := newFakeDevice(true)
	dev.respond("scaling_cur_freq", "300000\n")

	_, latest := startSession(t, dev, frequencyMetric())
	require.Eventually(t, hasValue(latest, "cpu0", "300.0 MHz"), waitFor, tick)

	dev.setAttached(false)

	assert.Eventually(t, hasValue(latest, "connection", "false"), waitFor, tick)
	assert.Eventually(t, hasValue(latest, "connected_for", "00:00:00"), waitFor, tick)
	assert.Eventually(t, hasValue(latest, "cpu0", session.DisconnectedText), waitFor, tick)
}

func TestSessionFailedCommandDeliversFallback(t *testing.T) {
	dev := newFakeDevice(true)
	dev.fail("scaling_cur_freq", errors.New().New(bridge.ErrTimeout))

	_, latest := startSession(t, dev, frequencyMetric())

	assert.Eventually(t, hasValue(latest, "cpu", session.FailedText), waitFor, tick)

	// the schedule keeps running after failures
	dev.fail("scaling_cur_freq", nil)
	dev.respond("scaling_cur_freq", "576000\n")
	assert.Eventually(t, hasValue(latest, "cpu0", "576.0 MHz"), waitFor, tick)
}

func TestSessionBatteryUsesPathCache(t *testing.T) {
	dev := newFakeDevice(true)
	dev.respond("[ -d /sys/class/power_supply/bms ]", "found\n")
	dev.respond("for f in", "capacity=87\nvoltage_now=4123456\ncurrent_now=-512345\ntemp=253\nstatus=Charging\n")

	_, latest := startSession(t, dev, batteryMetric())

	assert.Eventually(t, hasValue(latest, "battery_level", "87 %"), waitFor, tick)
	assert.Eventually(t, hasValue(latest, "battery_status", "Charging"), waitFor, tick)

	// let several ticks pass; the path is probed once per connection
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, dev.count("[ -d /sys/class/power_supply/bms ]"))
	assert.Positive(t, dev.count("/sys/class/power_supply/bms/$f"))
}

func TestSessionBatteryFailureReresolves(t *testing.T) {
	dev := newFakeDevice(true)
	dev.respond("[ -d /sys/class/power_supply/battery ]", "found\n")
	dev.respond("for f in", "capacity=50\n")

	_, latest := startSession(t, dev, batteryMetric())
	require.Eventually(t, hasValue(latest, "battery_level", "50 %"), waitFor, tick)
	probes := dev.count("[ -d /sys/class/power_supply/battery ]")

	dev.fail("for f in", errors.New().New(bridge.ErrNonZeroExit))
	assert.Eventually(t, hasValue(latest, "battery_level", session.FailedText), waitFor, tick)

	dev.fail("for f in", nil)
	assert.Eventually(t, hasValue(latest, "battery_level", "50 %"), waitFor, tick)
	assert.Greater(t, dev.count("[ -d /sys/class/power_supply/battery ]"), probes)
}

func TestSessionLifecycle(t *testing.T) {
	dev := newFakeDevice(false)
	s := session.New(dev, sink.NewLatest(), fastConfig(), session.WithMetrics(nil))

	require.NoError(t, s.Start())
	err := s.Start()
	assert.True(t, errors.HasCode(err, errors.ErrAlreadyRunning))

	assert.True(t, s.Stop())
	assert.True(t, s.Stop(), "second stop is a no-op")

	err = s.Start()
	assert.True(t, errors.HasCode(err, errors.ErrInitFailed))
}

func TestRunOnce(t *testing.T) {
	dev := newFakeDevice(true)
	dev.respond("ro.product.model", "Pixel 7\n")
	dev.respond("ro.build.type", "userdebug\n")
	dev.respond("ro.build.version.release", "14\n")
	dev.respond("ro.build.version.incremental", "10754064\n")
	dev.respond("thermal_zone0/temp", "36500\n")
	dev.respond("wm size", "Physical size: 1080x2400\n")

	latest := sink.NewLatest()
	s := session.New(dev, latest, session.DefaultConfig())

	require.NoError(t, s.RunOnce(context.Background()))

	want := map[string]string{
		"connection":      "true",
		"model":           "Pixel 7",
		"build_type":      "UD",
		"android_version": "Android 14",
		"build_version":   "10754064",
		"soc":             "36.50 °C",
		"display_size":    "1080x2400",
		"fps":             parsers.Unavailable,
		"ram_total":       parsers.Unknown,
	}
	for name, value := range want {
		got, ok := latest.Get(name)
		assert.True(t, ok, name)
		assert.Equal(t, value, got, name)
	}
}

func TestRunOnceNotConnected(t *testing.T) {
	dev := newFakeDevice(false)
	latest := sink.NewLatest()
	s := session.New(dev, latest, session.DefaultConfig())

	err := s.RunOnce(context.Background())
	assert.True(t, errors.HasCode(err, session.ErrNotConnected))
	assert.True(t, hasValue(latest, "connection", "false")())
	assert.Equal(t, 1, len(dev.calls))
}

func TestSessionID(t *testing.T) {
	dev := newFakeDevice(false)

	a := session.New(dev, sink.NewLatest(), session.DefaultConfig())
	b := session.New(dev, sink.NewLatest(), session.DefaultConfig())
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())

	c := session.New(dev, sink.NewLatest(), session.DefaultConfig(), session.WithID("fixed"))
	assert.Equal(t, "fixed", c.ID())

	d := session.New(dev, sink.NewLatest(), session.DefaultConfig(), session.WithID(""))
	assert.NotEmpty(t, d.ID())
}

func TestRunOnceDisconnectDuringDelivery(t *testing.T) {
	dev := newFakeDevice(true)
	dev.respond("scaling_cur_freq", "576000\n1804800\n")

	latest := sink.NewLatest()
	var (
		s       *session.Session
		once    sync.Once
		checked = make(chan struct{})
	)
	out := sink.Multi{latest, sink.Func(func(name, _ string) {
		if name != "cpu0" {
			return
		}
		// the device leaves while the first core is being delivered
		once.Do(func() {
			dev.setAttached(false)
			go func() {
				defer close(checked)
				s.Monitor().Check(context.Background())
			}()
			time.Sleep(30 * time.Millisecond)
		})
	})}
	s = session.New(dev, out, session.DefaultConfig(), session.WithMetrics([]session.Metric{frequencyMetric()}))

	require.NoError(t, s.RunOnce(context.Background()))
	<-checked

	for _, name := range []string{"cpu0", "cpu1"} {
		got, _ := latest.Get(name)
		assert.Equal(t, session.DisconnectedText, got, "%s delivered after the disconnect placeholder", name)
	}
	got, _ := latest.Get(session.ConnectionMetric)
	assert.Equal(t, "false", got)
}
