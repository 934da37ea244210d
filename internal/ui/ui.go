package ui

// Basic ANSI color codes used by the logging package.
// Terminal output elsewhere goes through the lipgloss styles in styles.go.
const (
	Reset = "\033[0m"
	// LegacyBold is the raw ANSI code for bold text
	LegacyBold = "\033[1m"
	FgCyan     = "\033[36m"
	FgGreen    = "\033[32m"
	FgMagenta  = "\033[35m"
	FgYellow   = "\033[33m"
	FgRed      = "\033[31m"
)

var colorEnabled = true

// Init applies the --no-color flag. While colors are off every style in this
// package renders plain text.
func Init(noColor bool) {
	colorEnabled = !noColor
}

// ColorEnabled reports whether styled output is on.
func ColorEnabled() bool { return colorEnabled }

// Color wraps a string with the given ANSI code.
func Color(s string, code string) string {
	if !colorEnabled {
		return s
	}
	return code + s + Reset
}
