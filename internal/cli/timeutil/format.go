// Package timeutil formats timestamps for CLI output.
package timeutil

import (
	"fmt"
	"time"
)

// LocalTimeFormat is used for absolute times in tables.
const LocalTimeFormat = "2006-01-02 15:04:05"

// FormatLocal renders t in the local zone, or "-" for the zero time.
func FormatLocal(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(LocalTimeFormat)
}

// FormatAge renders how long ago t was relative to now, at the two largest
// units: "45s", "3m12s", "2h5m", "4d3h".
func FormatAge(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)

	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	minutes := int(d/time.Minute) % 60
	seconds := int(d/time.Second) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd%dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
