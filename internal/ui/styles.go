package ui

import (
	"fmt"

	"github.com/gridstat/diversity/internal/model"
)

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorMuted  = 245 // medium gray
	colorOK     = 114 // green
	colorErr    = 167 // red
)

var noColor bool

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// RenderStatus returns a run status colored by outcome: green for done,
// red for failed, gray for everything in flight.
func RenderStatus(status model.RunStatus) string {
	s := string(status)
	if noColor {
		return s
	}
	switch status {
	case model.StatusDone:
		return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorOK, s)
	case model.StatusFailed:
		return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorErr, s)
	default:
		return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
	}
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
