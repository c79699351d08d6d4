// Package output provides styled terminal rendering helpers for combatlens.
package output

import (
	"os"

	"github.com/blackwell-systems/combatlens/internal/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorSuccess is used for abilities and uptimes on target.
	ColorSuccess = lipgloss.Color("#66bb6a")

	// ColorError is used for major issues.
	ColorError = lipgloss.Color("#ef5350")

	// ColorWarning is used for regular issues.
	ColorWarning = lipgloss.Color("#fff59d")

	// ColorMuted is used for secondary text, borders and minor issues.
	ColorMuted = lipgloss.Color("#888888")
)

// Styles provides reusable lipgloss styles.
var (
	StyleHeader  lipgloss.Style
	StyleSuccess lipgloss.Style
	StyleError   lipgloss.Style
	StyleWarning lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleBold    lipgloss.Style

	// StyleLabel is used for statistic labels.
	StyleLabel lipgloss.Style

	// StyleValue is used for statistic values.
	StyleValue lipgloss.Style
)

func init() {
	applyStyles(false)
}

// noColor tracks whether color output is disabled.
var noColor bool

// SetNoColor disables or enables color output globally.
func SetNoColor(disabled bool) {
	noColor = disabled
	applyStyles(disabled)
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// AutoColor disables color when f is not a terminal or when the config or
// --no-color flag turned it off.
func AutoColor(f *os.File, enabled bool) {
	tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	SetNoColor(!enabled || !tty)
}

func applyStyles(plain bool) {
	if plain {
		p := lipgloss.NewStyle()
		StyleHeader = p
		StyleSuccess = p
		StyleError = p
		StyleWarning = p
		StyleMuted = p
		StyleBold = p
		StyleLabel = p.Width(32)
		StyleValue = p.Width(14)
		return
	}
	StyleHeader = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleMuted = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleBold = lipgloss.NewStyle().Bold(true)
	StyleLabel = lipgloss.NewStyle().Width(32)
	StyleValue = lipgloss.NewStyle().Bold(true).Width(14)
}

// SeverityStyle returns the style used to render an issue of severity s.
func SeverityStyle(s suggest.Severity) lipgloss.Style {
	switch s {
	case suggest.SeverityMajor:
		return StyleError
	case suggest.SeverityRegular:
		return StyleWarning
	default:
		return StyleMuted
	}
}

// SeverityLabel renders a bracketed, styled severity tag such as "[MAJOR]".
func SeverityLabel(s suggest.Severity) string {
	var label string
	switch s {
	case suggest.SeverityMajor:
		label = "[MAJOR]"
	case suggest.SeverityRegular:
		label = "[REGULAR]"
	default:
		label = "[MINOR]"
	}
	return SeverityStyle(s).Render(label)
}
