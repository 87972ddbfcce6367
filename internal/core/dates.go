package core

import (
	"strings"
	"time"
)

const (
	// NoDateDisplay is shown for an empty date.
	NoDateDisplay = "No date"
	// InvalidDateDisplay is shown for a date that cannot be parsed.
	InvalidDateDisplay = "Invalid Date"

	displayDateLayout = "Jan 2, 2006"
)

var dateInputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	DateLayout,
	"2006-01",
}

// FormatDate renders a date or timestamp as "Jan 15, 2024" in UTC.
// Zoned timestamps are converted to UTC first; the rest are read as UTC.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoDateDisplay
	}
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(displayDateLayout)
		}
	}
	return InvalidDateDisplay
}
