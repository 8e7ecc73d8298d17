package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm displays a warning box and asks the user to answer "yes".
// Returns true only for an explicit yes; EOF or any other answer declines.
func Confirm(in io.Reader, out io.Writer, title string, warnings []string) bool {
	width := GetTerminalWidth()

	titleLine := WarningTitleStyle.Render(fmt.Sprintf("   ⚠  %s", title))

	lines := []string{"", titleLine, ""}
	for _, warning := range warnings {
		lines = append(lines, ResultValueStyle.Render("   • "+warning))
	}
	lines = append(lines, "")

	box := ResultBoxStyle(WarningColor, width).Render(strings.Join(lines, "\n"))

	_, _ = fmt.Fprintln(out, box)
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprint(out, WarningTitleStyle.Render("Continue? [y/N]: "))

	input, err := bufio.NewReader(in).ReadString('\n')
	_, _ = fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}

	_, _ = fmt.Fprintln(out, StepPendingStyle.Render("  Operation cancelled."))
	return false
}
