// Package logging builds the leveled logger every command writes to.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Color selects when log headers are colored.
type Color string

const (
	Auto   Color = "auto"
	Always Color = "always"
	Never  Color = "never"
)

// ParseColor validates a --color value.
func ParseColor(s string) (Color, error) {
	switch c := Color(s); c {
	case Auto, Always, Never:
		return c, nil
	}
	return "", fmt.Errorf("invalid color choice %q (expected auto, always or never)", s)
}

// Enabled reports whether output to w should be colored.
func (c Color) Enabled(w io.Writer) bool {
	switch c {
	case Always:
		return true
	case Never:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) && os.Getenv("TERM") != "dumb"
}

// New returns a logger writing "info: message" style lines to w.
func New(w io.Writer, color Color) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Level: log.InfoLevel,
	})

	profile := termenv.Ascii
	if color.Enabled(w) {
		profile = termenv.ANSI
	}
	logger.SetColorProfile(profile)
	logger.SetStyles(styles())
	return logger
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	header := func(text, color string) lipgloss.Style {
		return lipgloss.NewStyle().SetString(text).Bold(true).Foreground(lipgloss.Color(color))
	}
	s.Levels[log.DebugLevel] = header("debug:", "4")
	s.Levels[log.InfoLevel] = header("info:", "6")
	s.Levels[log.WarnLevel] = header("warn:", "3")
	s.Levels[log.ErrorLevel] = header("error:", "1")
	s.Levels[log.FatalLevel] = header("fatal:", "1")
	return s
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
