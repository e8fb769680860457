// Package ui holds the terminal color helpers for the relay CLI.
package ui

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI256 color codes.
const (
	colorAccent = 74  // blue, section headers
	colorCmd    = 250 // light gray, command names
	colorMuted  = 245 // medium gray, annotations and defaults
)

var noColor bool

// ForceNoColor disables color output globally, regardless of environment
// and TTY state.
func ForceNoColor() {
	noColor = true
}

// ShouldUseColor reports whether ANSI colors should be used on stdout.
// It honors ForceNoColor, NO_COLOR, CLICOLOR_FORCE, CLICOLOR, and TTY
// detection, in that order.
func ShouldUseColor() bool {
	if noColor {
		return false
	}
	// https://no-color.org — any non-empty value disables color.
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func render(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return render(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return render(colorCmd, s) }
