package game

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatCount renders a click balance the way the overlay shows it:
// floored below a thousand, then two decimals with a k/M/B/T suffix.
func FormatCount(n float64) string {
	if math.IsNaN(n) || n < 0 {
		n = 0
	}
	if math.IsInf(n, 1) {
		return "∞"
	}
	if n < 1e3 {
		return strconv.FormatFloat(math.Floor(n), 'f', 0, 64)
	}
	if n >= 1e15 {
		return fmt.Sprintf("%.2fT", n/1e12)
	}
	value, prefix := humanize.ComputeSI(n)
	if prefix == "G" {
		prefix = "B"
	}
	return fmt.Sprintf("%.2f%s", value, prefix)
}

// FormatElapsed renders how long ago the save was started.
func FormatElapsed(start, now time.Time) string {
	return humanize.RelTime(start, now, "ago", "from now")
}

// FormatLevel renders a level as an ordinal ("5th").
func FormatLevel(level uint32) string {
	return humanize.Ordinal(int(level))
}
