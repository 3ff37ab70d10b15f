package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to text.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...interface{}) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.render(fmt.Sprintf(format, a...))
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// EnsureNewline ensures the string ends with a newline character.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// Bullets renders lines as an indented list, one per line.
func Bullets(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString("    • ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// Mask hides all but the last four characters of a key.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

// noColor returns true if color output should be disabled.
func noColor() bool {
	// https://no-color.org/
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

// Semantic formatters for CLI output.
var (
	// Code formats runnable commands. Yellow, or `backticks` without color.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path formats artifact and key file paths.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Flag formats CLI flags like --max-attempts.
	Flag = Formatter{color.New(color.FgYellow), "", ""}

	// Success formats success indicators and messages.
	Success = Formatter{color.New(color.FgGreen), "", ""}

	// Error formats error indicators and messages.
	Error = Formatter{color.New(color.FgRed), "", ""}

	// Warning formats warnings, such as remaining attempts running low.
	Warning = Formatter{color.New(color.FgYellow), "", ""}

	// Info formats hints and directional arrows.
	Info = Formatter{color.New(color.FgCyan), "", ""}

	// Highlight formats user values such as cipher names and key ids.
	// Cyan, or 'single quotes' without color.
	Highlight = Formatter{color.New(color.FgCyan), "'", "'"}

	// Muted formats secondary text. Gray, or (parentheses) without color.
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}

	// Decoy marks output that came from decoy content. Magenta, or
	// [brackets] without color.
	Decoy = Formatter{color.New(color.FgMagenta), "[", "]"}
)
