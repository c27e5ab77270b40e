package parsers

import (
	"strconv"
	"strings"
)

// BatteryFiles are the files read from the resolved battery directory, in
// the order ParseBatteryFields reports them.
var BatteryFiles = []string{"capacity", "voltage_now", "current_now", "temp", "status"}

// BatteryProbeFile must exist for a candidate directory to be accepted.
const BatteryProbeFile = "capacity"

type batteryField struct {
	file  string
	name  string
	scale float64
	unit  string
	prec  int
}

var batteryFields = []batteryField{
	{file: "capacity", name: "battery_level", scale: 1, unit: "%", prec: 0},
	{file: "voltage_now", name: "battery_voltage", scale: 1e-6, unit: "V", prec: 2},
	{file: "current_now", name: "battery_current", scale: 1e-3, unit: "mA", prec: 0},
	{file: "temp", name: "battery_temp", scale: 0.1, unit: "°C", prec: 1},
}

// ParseBatteryFields reads key=value lines (one per battery file) and
// returns one sample per known field in a fixed order.
func ParseBatteryFields(raw string) []Sample {
	values := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		values[key] = strings.TrimSpace(value)
	}

	samples := make([]Sample, 0, len(batteryFields)+1)
	for _, f := range batteryFields {
		v, err := strconv.ParseFloat(values[f.file], 64)
		if err != nil {
			samples = append(samples, text(f.name, Unknown))
			continue
		}
		samples = append(samples, numeric(f.name, v*f.scale, f.unit, f.prec))
	}

	status := values["status"]
	if status == "" {
		status = Unknown
	}
	samples = append(samples, text("battery_status", status))

	return samples
}

// BatteryNames lists the sample names ParseBatteryFields produces.
func BatteryNames() []string {
	names := make([]string, 0, len(batteryFields)+1)
	for _, f := range batteryFields {
		names = append(names, f.name)
	}
	return append(names, "battery_status")
}
