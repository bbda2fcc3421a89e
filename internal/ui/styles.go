package ui

import "fmt"

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent  = 74  // blue
	colorMuted   = 245 // medium gray
	colorSuccess = 114 // green
	colorFailure = 203 // red
)

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderSuccess returns s in the success (green) color.
func RenderSuccess(s string) string { return paint(colorSuccess, s) }

// RenderFailure returns s in the failure (red) color.
func RenderFailure(s string) string { return paint(colorFailure, s) }

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
