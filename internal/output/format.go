package output

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatThousands groups the digits of n, e.g. 1234567 -> "1,234,567".
func FormatThousands(n int64) string {
	return humanize.Comma(n)
}

// FormatNumber abbreviates large numbers: 999 -> "999", 12345 -> "12.3k",
// 2500000 -> "2.50m".
func FormatNumber(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return fmt.Sprintf("%.2fm", v/1e6)
	case abs >= 1e4:
		return fmt.Sprintf("%.1fk", v/1e3)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// FormatPercentage renders a fraction with two decimals, e.g. 0.8234 -> "82.34%".
func FormatPercentage(fraction float64) string {
	return fmt.Sprintf("%.2f%%", fraction*100)
}

// FormatDuration renders milliseconds as m:ss.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
