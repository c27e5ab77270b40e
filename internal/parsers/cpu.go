package parsers

import (
	"regexp"
	"strconv"
)

var digitRun = regexp.MustCompile(`\d+`)

// ParseFrequencies reads every run of digits as one core's current
// frequency in kHz, in encounter order, and reports it in MHz. The result
// is never empty: no digits yields a single N/A sample.
func ParseFrequencies(raw string) []Sample {
	matches := digitRun.FindAllString(raw, -1)
	if len(matches) == 0 {
		return []Sample{text("cpu", NotAvail)}
	}

	samples := make([]Sample, 0, len(matches))
	for i, m := range matches {
		khz, err := strconv.ParseFloat(m, 64)
		if err != nil {
			// only reachable for absurdly long digit runs
			samples = append(samples, text(coreName(i), NotAvail))
			continue
		}
		samples = append(samples, numeric(coreName(i), khz/1000.0, "MHz", 1))
	}
	return samples
}

func coreName(ordinal int) string {
	return "cpu" + strconv.Itoa(ordinal)
}
