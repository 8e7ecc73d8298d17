package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // headers, borders, progress
	SuccessColor = lipgloss.Color("#43BF6D")
	ErrorColor   = lipgloss.Color("#FF5555")
	WarningColor = lipgloss.Color("#FFA500") // warnings, running steps, confirmations
	MutedColor   = lipgloss.Color("#626262")
	TextColor    = lipgloss.Color("#FFFFFF")
)

// Rendering is clamped to this width range
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

// Command header
var (
	HeaderTitleStyle      = lipgloss.NewStyle().Foreground(TextColor).Bold(true).PaddingLeft(2)
	HeaderCommandStyle    = lipgloss.NewStyle().Foreground(MutedColor).PaddingLeft(2)
	HeaderParamKeyStyle   = lipgloss.NewStyle().Foreground(MutedColor).PaddingLeft(2)
	HeaderParamValueStyle = lipgloss.NewStyle().Foreground(TextColor)
)

// Step list and transfer progress
var (
	StepCompleteStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	StepRunningStyle  = lipgloss.NewStyle().Foreground(WarningColor)
	StepPendingStyle  = lipgloss.NewStyle().Foreground(MutedColor)
	StepNoteStyle     = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)

	// ProgressLabelStyle is for the byte and frame counters next to the bar
	ProgressLabelStyle = lipgloss.NewStyle().Foreground(MutedColor)
)

// Result boxes
var (
	SuccessTitleStyle         = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	WarningTitleStyle         = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	ErrorTitleStyle           = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
	ErrorMessageStyle         = lipgloss.NewStyle().Foreground(ErrorColor)
	ResultKeyStyle            = lipgloss.NewStyle().Foreground(MutedColor).Width(15)
	ResultValueStyle          = lipgloss.NewStyle().Foreground(TextColor)
	TroubleshootingTitleStyle = lipgloss.NewStyle().Foreground(MutedColor).Bold(true)
	TroubleshootingItemStyle  = lipgloss.NewStyle().Foreground(MutedColor)
)

// Live views (temperature monitor, prompts)
var (
	ReadingLabelStyle = lipgloss.NewStyle().Foreground(MutedColor).Width(14).PaddingLeft(2)
	ReadingValueStyle = lipgloss.NewStyle().Foreground(TextColor).Bold(true)
	HelpStyle         = lipgloss.NewStyle().PaddingLeft(2)
)

// Status markers
const (
	StepMarkerComplete = "✓"
	StepMarkerRunning  = "●"
	StepMarkerPending  = "·"
	SuccessMarker      = "✓"
	FailureMarker      = "✗"
)

// GetTerminalWidth returns the stdout terminal width clamped to
// [MinTerminalWidth, MaxContentWidth]. Pipes and files get MinTerminalWidth.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth
	}
	return min(max(width, MinTerminalWidth), MaxContentWidth)
}

// IsInteractive reports whether stdin and stdout are both terminals, so
// full-screen prompts can be shown
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// HeaderBorderStyle returns the border style for command headers
func HeaderBorderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2)
}

// ResultBoxStyle returns the double border box used for success, warning,
// failure and confirmation output, in the given accent color.
func ResultBoxStyle(accent lipgloss.Color, width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(accent).
		Width(width-2).
		Padding(0, 2)
}

// TroubleshootingBoxStyle returns the inner box listing hints inside a
// failure box of the given width
func TroubleshootingBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(max(width-12, 40)).
		Padding(0, 1).
		MarginLeft(3)
}

// Divider renders a horizontal rule of the given width
func Divider(width int) string {
	return lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Render(strings.Repeat("─", width))
}
