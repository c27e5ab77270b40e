package parsers

import "strings"

// DeviceListHeader is the first line the bridge prints for a device listing.
const DeviceListHeader = "List of devices attached"

// Device is one entry of a device listing.
type Device struct {
	Serial string
	State  string
}

// ParseDevices returns the entries of a device listing. The header, daemon
// banner lines and anything without a tab-separated state are skipped.
func ParseDevices(raw string) []Device {
	var devices []Device
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, DeviceListHeader) || strings.HasPrefix(trimmed, "*") {
			continue
		}
		serial, state, found := strings.Cut(line, "\t")
		if !found {
			continue
		}
		devices = append(devices, Device{
			Serial: strings.TrimSpace(serial),
			State:  strings.TrimSpace(state),
		})
	}
	return devices
}

// DeviceAttached reports whether the listing has at least one entry whose
// state token is exactly "device". Offline and unauthorized entries do not
// count, and neither does the header line.
func DeviceAttached(raw string) bool {
	for _, d := range ParseDevices(raw) {
		if d.State == "device" {
			return true
		}
	}
	return false
}

// MapBuildType normalizes ro.build.type for display. Unknown values map to
// the empty string rather than passing through.
func MapBuildType(raw string) string {
	switch strings.TrimSpace(raw) {
	case "userdebug":
		return "UD"
	case "userroot":
		return "ROOT"
	case "user":
		return "USER"
	default:
		return ""
	}
}

// ParseProperty returns the trimmed property value, or fallback when empty.
func ParseProperty(name, raw, fallback string) Sample {
	v := strings.TrimSpace(raw)
	if v == "" {
		return text(name, fallback)
	}
	return text(name, v)
}

// ParseAndroidVersion formats ro.build.version.release.
func ParseAndroidVersion(raw string) Sample {
	v := strings.TrimSpace(raw)
	if v == "" {
		return text("android_version", Unknown)
	}
	return text("android_version", "Android "+v)
}

// WriteSucceeded interprets the output of a settings or property write.
// The tools exit 0 even when the write is refused, so the text decides.
func WriteSucceeded(output string) bool {
	return !strings.Contains(output, "Exception") && !strings.Contains(output, "error")
}
