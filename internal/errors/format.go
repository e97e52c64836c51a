package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	errorLabel  = color.New(color.FgRed, color.Bold)
	errorMsg    = color.New(color.FgRed)
	detailText  = color.New(color.Faint)
	fixLabel    = color.New(color.FgGreen, color.Bold)
	usageLabel  = color.New(color.FgCyan, color.Bold)
	usageText   = color.New(color.FgCyan)
	bullet      = color.New(color.FgGreen)
	categoryFmt = color.New(color.FgYellow)
)

// FormatError renders a CLIError for the terminal. Colors follow
// color.NoColor, so redirected output stays plain.
func FormatError(err *CLIError) string {
	return render(err, true)
}

// FormatErrorPlain renders a CLIError without colors.
func FormatErrorPlain(err *CLIError) string {
	return render(err, false)
}

// FprintError writes the rendered error to w.
func FprintError(w io.Writer, err *CLIError) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}

// render lays out the headline, the indented details (for instance the
// commits that failed classification), the usage line and the fix steps.
func render(err *CLIError, useColors bool) string {
	if err == nil {
		return ""
	}

	paint := func(c *color.Color, s string) string {
		if !useColors {
			return s
		}
		return c.Sprint(s)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]: %s\n",
		paint(errorLabel, "Error"), paint(categoryFmt, err.Category.String()), paint(errorMsg, err.Message))

	if details := trimBlank(err.Details); len(details) > 0 {
		sb.WriteString("\n")
		for _, line := range details {
			if strings.TrimSpace(line) == "" {
				sb.WriteString("\n")
				continue
			}
			fmt.Fprintf(&sb, "    %s\n", paint(detailText, line))
		}
	}

	if err.Usage != "" {
		fmt.Fprintf(&sb, "\n%s%s\n", paint(usageLabel, "Usage: "), paint(usageText, err.Usage))
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", paint(fixLabel, "To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %s %s\n", paint(bullet, "•"), step)
		}
	}

	return sb.String()
}

// trimBlank drops leading and trailing blank lines.
func trimBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
