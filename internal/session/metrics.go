package session

import (
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/droidmon/internal/bridge"
	"codeberg.org/mutker/droidmon/internal/parsers"
)

// Interval keys. Several metrics may share one key.
const (
	IntervalFrequency          = "frequency"
	IntervalFPS                = "fps"
	IntervalActivity           = "activity"
	IntervalThermal            = "thermal"
	IntervalBattery            = "battery"
	IntervalBatteryTemperature = "battery_temperature"
	IntervalDisplay            = "display"
	IntervalMemory             = "memory"
	IntervalStorage            = "storage"
	IntervalProperties         = "properties"
	IntervalUptime             = "uptime"
)

// DefaultIntervals returns the polling period for every interval key.
func DefaultIntervals() map[string]time.Duration {
	return map[string]time.Duration{
		IntervalFrequency:          300 * time.Millisecond,
		IntervalFPS:                time.Second,
		IntervalActivity:           2 * time.Second,
		IntervalThermal:            10 * time.Second,
		IntervalBattery:            20 * time.Second,
		IntervalBatteryTemperature: 20 * time.Second,
		IntervalDisplay:            10 * time.Second,
		IntervalMemory:             5 * time.Second,
		IntervalStorage:            30 * time.Second,
		IntervalProperties:         10 * time.Second,
		IntervalUptime:             time.Second,
	}
}

// ThermalZone maps a display name onto a thermal zone index.
type ThermalZone struct {
	Name string
	Zone int
}

// DefaultThermalZones is the zone layout of the reference hardware.
var DefaultThermalZones = []ThermalZone{
	{Name: "soc", Zone: 0},
	{Name: "small_core", Zone: 1},
	{Name: "big_core", Zone: 5},
	{Name: "gpu", Zone: 10},
	{Name: "modem", Zone: 13},
	{Name: "pmic", Zone: 16},
	{Name: "camera", Zone: 21},
}

// Metric is one poller: what to run, how often, and how to read the
// result.
type Metric struct {
	// Name identifies the poller. It must be unique within a session.
	Name     string
	Interval time.Duration
	// Command builds the bridge command. path is the resolved battery
	// directory for metrics that need it and empty otherwise.
	Command func(path string) bridge.Command
	Parse   func(raw string) []parsers.Sample
	// Fallback lists the sample names that receive a placeholder when
	// the poller has not produced samples yet.
	Fallback     []string
	NeedsBattery bool
}

func fixed(cmd bridge.Command) func(string) bridge.Command {
	return func(string) bridge.Command { return cmd }
}

func one(parse func(string) parsers.Sample) func(string) []parsers.Sample {
	return func(raw string) []parsers.Sample {
		return []parsers.Sample{parse(raw)}
	}
}

func batteryScript(dir string) bridge.Command {
	var b strings.Builder
	b.WriteString("for f in")
	for _, f := range parsers.BatteryFiles {
		b.WriteString(" " + f)
	}
	b.WriteString("; do echo \"$f=$(cat " + dir + "/$f 2>/dev/null)\"; done")
	return bridge.Shell(b.String())
}

// CPURoot holds one cpuN directory per core.
const CPURoot = "/sys/devices/system/cpu"

// frequencyScript prints one line per core in numeric order, 0 for a core
// whose frequency cannot be read, so line i always belongs to cpu i.
func frequencyScript(root string) string {
	return "n=0; for d in " + root + "/cpu[0-9]*; do [ -d \"$d\" ] && n=$((n+1)); done; " +
		"i=0; while [ $i -lt $n ]; do " +
		"f=$(cat " + root + "/cpu$i/cpufreq/scaling_cur_freq 2>/dev/null); echo \"${f:-0}\"; " +
		"i=$((i+1)); done"
}

func property(name, prop string, interval time.Duration) Metric {
	return Metric{
		Name:     name,
		Interval: interval,
		Command:  fixed(bridge.GetProp(prop)),
		Parse: one(func(raw string) parsers.Sample {
			return parsers.ParseProperty(name, raw, parsers.Unknown)
		}),
		Fallback: []string{name},
	}
}

// DefaultMetrics builds the metric table from per-key intervals. Missing
// keys fall back to DefaultIntervals.
func DefaultMetrics(intervals map[string]time.Duration) []Metric {
	defaults := DefaultIntervals()
	every := func(key string) time.Duration {
		if d, ok := intervals[key]; ok && d > 0 {
			return d
		}
		return defaults[key]
	}

	metrics := []Metric{
		{
			Name:     "frequency",
			Interval: every(IntervalFrequency),
			Command:  fixed(bridge.Shell(frequencyScript(CPURoot))),
			Parse:    parsers.ParseFrequencies,
			Fallback: []string{"cpu"},
		},
		{
			Name:     "fps",
			Interval: every(IntervalFPS),
			Command:  fixed(bridge.Cat("/sys/kernel/fpsgo/fstb/fpsgo_status")),
			Parse:    one(parsers.ParseFrameRate),
			Fallback: []string{"fps"},
		},
		{
			Name:     "activity",
			Interval: every(IntervalActivity),
			Command:  fixed(bridge.Dumpsys("activity", "top")),
			Parse:    one(parsers.ParseActivity),
			Fallback: []string{"activity"},
		},
		{
			Name:         "battery",
			Interval:     every(IntervalBattery),
			Command:      batteryScript,
			Parse:        parsers.ParseBatteryFields,
			Fallback:     parsers.BatteryNames(),
			NeedsBattery: true,
		},
		{
			Name:     "battery_temperature",
			Interval: every(IntervalBatteryTemperature),
			Command:  fixed(bridge.Dumpsys("battery")),
			Parse: one(func(raw string) parsers.Sample {
				return parsers.ParseBatteryTemperature("battery_temperature", raw)
			}),
			Fallback: []string{"battery_temperature"},
		},
		{
			Name:     "display_size",
			Interval: every(IntervalDisplay),
			Command:  fixed(bridge.Shell("wm size")),
			Parse:    one(parsers.ParseDisplaySize),
			Fallback: []string{"display_size"},
		},
		{
			Name:     "density",
			Interval: every(IntervalDisplay),
			Command:  fixed(bridge.Shell("wm density")),
			Parse:    one(parsers.ParseDensity),
			Fallback: []string{"density"},
		},
		{
			Name:     "memory",
			Interval: every(IntervalMemory),
			Command:  fixed(bridge.Cat("/proc/meminfo")),
			Parse:    parsers.ParseMemory,
			Fallback: []string{"ram_total", "ram_available"},
		},
		{
			Name:     "storage",
			Interval: every(IntervalStorage),
			Command:  fixed(bridge.Shell("df /data")),
			Parse:    parsers.ParseStorage,
			Fallback: []string{"rom_total", "rom_used", "rom_free"},
		},
		property("model", "ro.product.model", every(IntervalProperties)),
		property("software_version", "ro.build.display.id", every(IntervalProperties)),
		property("build_version", "ro.build.version.incremental", every(IntervalProperties)),
		{
			Name:     "android_version",
			Interval: every(IntervalProperties),
			Command:  fixed(bridge.GetProp("ro.build.version.release")),
			Parse:    one(parsers.ParseAndroidVersion),
			Fallback: []string{"android_version"},
		},
		{
			Name:     "build_type",
			Interval: every(IntervalProperties),
			Command:  fixed(bridge.GetProp("ro.build.type")),
			Parse: one(func(raw string) parsers.Sample {
				return parsers.ParseProperty("build_type", parsers.MapBuildType(raw), "")
			}),
			Fallback: []string{"build_type"},
		},
	}

	for _, z := range DefaultThermalZones {
		name := z.Name
		metrics = append(metrics, Metric{
			Name:     "thermal." + name,
			Interval: every(IntervalThermal),
			Command:  fixed(bridge.Cat("/sys/class/thermal/thermal_zone" + strconv.Itoa(z.Zone) + "/temp")),
			Parse: one(func(raw string) parsers.Sample {
				return parsers.ParseThermalZone(name, raw)
			}),
			Fallback: []string{name},
		})
	}

	return metrics
}
