package parsers

import (
	"bufio"
	"regexp"
	"strings"
)

var (
	displaySize     = regexp.MustCompile(`(\d+)x(\d+)`)
	physicalDensity = regexp.MustCompile(`Physical density: (\d+)`)
	fpsRow          = regexp.MustCompile(`^\s*\d+\s+\S+\s+\S+\s+(-?\d+)\b`)
	activityName    = regexp.MustCompile(`ACTIVITY\s+(\S+)`)
)

// ParseDisplaySize returns the first WIDTHxHEIGHT pair verbatim.
func ParseDisplaySize(raw string) Sample {
	if m := displaySize.FindString(raw); m != "" {
		return text("display_size", m)
	}
	return text("display_size", Unknown)
}

// ParseDensity returns the physical density in dpi.
func ParseDensity(raw string) Sample {
	m := physicalDensity.FindStringSubmatch(raw)
	if m == nil {
		return text("density", Unknown)
	}
	return text("density", m[1])
}

// ParseFrameRate scans a frame-pacing status table. The first line is a
// header; the first data row whose fps column is neither -1 nor 0 wins.
func ParseFrameRate(raw string) Sample {
	scanner := bufio.NewScanner(strings.NewReader(raw))
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		m := fpsRow.FindStringSubmatch(line)
		if m == nil || m[1] == "-1" || m[1] == "0" {
			continue
		}
		s := text("fps", m[1])
		s.Unit = "FPS"
		return s
	}
	return text("fps", Unavailable)
}

// ParseActivity returns the component name of the last ACTIVITY record in
// an activity dump.
func ParseActivity(raw string) Sample {
	var last string
	for _, line := range strings.Split(raw, "\n") {
		if strings.Contains(line, "ACTIVITY") {
			last = line
		}
	}
	if m := activityName.FindStringSubmatch(last); m != nil {
		return text("activity", m[1])
	}
	return text("activity", Unknown)
}
