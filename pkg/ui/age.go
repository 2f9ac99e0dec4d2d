// Package ui renders the aggregated pull request view, either as a one-shot
// textual report or as an interactive picker.
package ui

import (
	"fmt"
	"time"
)

// Age formats the time elapsed since updated as a relative-age string:
// minutes under an hour, hours under a day, days otherwise. Input timestamps
// are UTC; the computation is pure duration arithmetic, so it is robust to
// the local timezone.
func Age(updated, now time.Time) string {
	secs := int(now.Sub(updated).Seconds())
	if secs < 0 {
		secs = 0
	}

	switch {
	case secs < 3600:
		return plural(secs/60, "minute")
	case secs < 86400:
		return plural(secs/3600, "hour")
	default:
		return plural(secs/86400, "day")
	}
}

// AgeCompact formats the same buckets with abbreviated units for the picker.
func AgeCompact(updated, now time.Time) string {
	secs := int(now.Sub(updated).Seconds())
	if secs < 0 {
		secs = 0
	}

	switch {
	case secs < 3600:
		return fmt.Sprintf("%dm", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh", secs/3600)
	default:
		return fmt.Sprintf("%dd", secs/86400)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
