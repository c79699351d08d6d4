// Package logging builds the structured logger used across combatlens.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to w at the given level. Text output to a
// terminal is colored by level.
func New(level, format string, w io.Writer) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return attr
		},
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		if isTerminal(w) {
			w = &levelColorWriter{dst: w}
		}
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a level name into an slog.Level.
func ParseLevel(value string) (slog.Level, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported level %q", value)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var levelStyles = map[string]lipgloss.Style{
	"level=DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	"level=INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	"level=WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	"level=ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
}

// levelColorWriter colors each rendered text line by its level.
type levelColorWriter struct {
	dst io.Writer
}

func (w *levelColorWriter) Write(payload []byte) (int, error) {
	line := strings.TrimSuffix(string(payload), "\n")
	for marker, style := range levelStyles {
		if strings.Contains(line, marker) {
			if _, err := io.WriteString(w.dst, style.Render(line)+"\n"); err != nil {
				return 0, err
			}
			return len(payload), nil
		}
	}
	return w.dst.Write(payload)
}
