// Package output provides console logging and text styling for actions-runner-manager.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// ConfigureColor disables styling when stdout is not a terminal or NO_COLOR is set
func ConfigureColor() {
	fd := os.Stdout.Fd()
	if os.Getenv("NO_COLOR") != "" || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// EnvNonInteractive disables prompts when set to any value
const EnvNonInteractive = "ARM_NON_INTERACTIVE"

// IsInteractive reports whether both stdin and stdout are terminals
func IsInteractive() bool {
	if os.Getenv(EnvNonInteractive) != "" {
		return false
	}
	in, out := os.Stdin.Fd(), os.Stdout.Fd()
	return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
		(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
}

// Header renders a section header
func Header(text string) string {
	return headerStyle.Render(text)
}

// Muted renders secondary text
func Muted(text string) string {
	return mutedStyle.Render(text)
}

// WarnPrefix is prepended to warning messages
func WarnPrefix() string {
	return warnStyle.Render("⚠️  ")
}

// ErrorPrefix is prepended to error messages
func ErrorPrefix() string {
	return errorStyle.Render("❌ ")
}
