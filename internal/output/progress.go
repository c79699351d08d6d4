package output

import (
	"fmt"
	"strings"
)

// EfficiencyBar renders a cast-efficiency bar colored against the
// recommended efficiency. Example: "████████░░ 80%"
func EfficiencyBar(ratio, recommended float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	var style func(string) string
	switch {
	case ratio >= recommended:
		style = func(s string) string { return StyleSuccess.Render(s) }
	case ratio >= recommended-0.15:
		style = func(s string) string { return StyleWarning.Render(s) }
	default:
		style = func(s string) string { return StyleError.Render(s) }
	}

	return fmt.Sprintf("%s %s", style(bar), StyleMuted.Render(fmt.Sprintf("%3.0f%%", ratio*100)))
}

// TrendArrowPercent returns a styled indicator for a relative change in
// percent. higherIsBetter picks which direction is colored as improvement.
func TrendArrowPercent(delta float64, higherIsBetter bool) string {
	if delta == 0 {
		return StyleMuted.Render("─")
	}

	isPositive := delta > 0
	isImproved := isPositive == higherIsBetter

	var arrow string
	if isPositive {
		arrow = fmt.Sprintf("▲ +%.1f%%", delta)
	} else {
		arrow = fmt.Sprintf("▼ %.1f%%", delta)
	}

	if isImproved {
		return StyleSuccess.Render(arrow)
	}
	return StyleError.Render(arrow)
}

// Section returns a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
