// Package parsers turns raw bridge output into display-ready samples.
//
// Every parser is a pure function. A parser never returns an error: when the
// text does not have the expected shape it returns a sample whose Text is a
// fixed fallback and whose Valid flag is false.
package parsers

import "strconv"

// Fallback texts used when output does not match.
const (
	Unknown     = "Unknown"
	NotAvail    = "N/A"
	Unavailable = "unavailable"
)

// Sample is one parsed metric value.
type Sample struct {
	Name  string
	Value float64
	Valid bool
	Unit  string
	Text  string
}

func numeric(name string, value float64, unit string, prec int) Sample {
	return Sample{
		Name:  name,
		Value: value,
		Valid: true,
		Unit:  unit,
		Text:  strconv.FormatFloat(value, 'f', prec, 64),
	}
}

func text(name, value string) Sample {
	return Sample{Name: name, Text: value}
}

// Fallback returns a sample carrying only a placeholder text.
func Fallback(name, placeholder string) Sample {
	return text(name, placeholder)
}

// Display renders the sample for presentation: the text followed by the
// unit when there is one.
func (s Sample) Display() string {
	if s.Unit == "" {
		return s.Text
	}
	return s.Text + " " + s.Unit
}
