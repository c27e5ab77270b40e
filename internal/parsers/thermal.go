package parsers

import (
	"regexp"
	"strconv"
	"strings"
)

var batteryTemperature = regexp.MustCompile(`temperature:\s*(\d+)`)

// ParseBatteryTemperature extracts the deci-Celsius battery temperature from
// a battery service dump.
func ParseBatteryTemperature(name, raw string) Sample {
	m := batteryTemperature.FindStringSubmatch(raw)
	if m == nil {
		return text(name, Unknown)
	}
	deci, err := strconv.Atoi(m[1])
	if err != nil {
		return text(name, Unknown)
	}
	return numeric(name, float64(deci)/10.0, "°C", 1)
}

// ParseThermalZone converts the milli-Celsius content of a thermal zone
// temp file.
func ParseThermalZone(name, raw string) Sample {
	milli, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return text(name, Unknown)
	}
	return numeric(name, float64(milli)/1000.0, "°C", 2)
}
