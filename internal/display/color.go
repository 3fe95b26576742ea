// Package display renders prayer tables and mosque boards for terminals.
//
// Styling uses raw ANSI escapes. It is off when NO_COLOR is set
// (https://no-color.org/) or stdout is not a terminal, and forced on by
// FORCE_COLOR.
package display

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	magenta = "\033[35m"
	cyan    = "\033[36m"
	fgGray  = "\033[90m"

	clearScreen = "\033[H\033[2J"
)

var enabled = shouldEnable()

func shouldEnable() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Stdout returns a writer that understands ANSI escapes on every platform.
func Stdout() io.Writer {
	return colorable.NewColorableStdout()
}

// SetEnabled overrides the detected color state, e.g. for --json.
func SetEnabled(b bool) {
	enabled = b
}

func wrap(code, text string) string {
	if !enabled {
		return text
	}
	return code + text + reset
}

// Bold returns text in bold.
func Bold(text string) string { return wrap(bold, text) }

// Dim returns text dimmed.
func Dim(text string) string { return wrap(dim, text) }

// Green returns text in green.
func Green(text string) string { return wrap(green, text) }

// Yellow returns text in yellow.
func Yellow(text string) string { return wrap(yellow, text) }

// Red returns text in red.
func Red(text string) string { return wrap(red, text) }

// Gray returns text in gray.
func Gray(text string) string { return wrap(fgGray, text) }

// Accent highlights the next prayer.
func Accent(text string) string { return wrap(bold+cyan, text) }

// ForState styles a banner for a screen state.
func ForState(s prayer.ScreenState) func(string) string {
	switch s {
	case prayer.PrayerInProgress:
		return func(t string) string { return wrap(bold+red, t) }
	case prayer.PostPrayerDhikr:
		return func(t string) string { return wrap(bold+magenta, t) }
	default:
		return Green
	}
}

// TimeLayout maps a "12h"/"24h" setting to a time layout.
func TimeLayout(format string) string {
	if format == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}
