package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StepStatus represents the current state of a step
type StepStatus int

const (
	StepPending  StepStatus = iota // Not yet started
	StepRunning                    // Currently executing
	StepComplete                   // Successfully completed
	StepFailed                     // Failed
	StepSkipped                    // Skipped
)

// Step represents a single step in a multi-step operation
type Step struct {
	Number  int        // Step number (1-based)
	Name    string     // Step description
	Status  StepStatus // Current status
	Message string     // Optional status message (e.g., "3 frames", "12.0 KiB")
}

// Steps tracks the state of a fixed list of steps.
type Steps struct {
	Steps []Step
}

// NewSteps creates a tracker with one pending step per name
func NewSteps(names ...string) *Steps {
	steps := make([]Step, len(names))
	for i, name := range names {
		steps[i] = Step{Number: i + 1, Name: name}
	}
	return &Steps{Steps: steps}
}

// Total returns the number of steps
func (s *Steps) Total() int {
	return len(s.Steps)
}

// Update sets a step's status and message. Out of range steps are ignored.
func (s *Steps) Update(number int, status StepStatus, message string) (Step, bool) {
	if number < 1 || number > len(s.Steps) {
		return Step{}, false
	}
	step := &s.Steps[number-1]
	step.Status = status
	step.Message = message
	return *step, true
}

// Completed returns the number of complete or skipped steps
func (s *Steps) Completed() int {
	n := 0
	for _, step := range s.Steps {
		if step.Status == StepComplete || step.Status == StepSkipped {
			n++
		}
	}
	return n
}

// RenderLine renders a single step line: "  [2/3] Name      ✓  (message)"
func (s *Steps) RenderLine(step Step) string {
	var marker string
	var style lipgloss.Style

	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, ErrorTitleStyle
	case StepSkipped:
		marker, style = "⊘", StepPendingStyle
	default:
		marker, style = StepMarkerPending, StepPendingStyle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  [%d/%d] ", step.Number, s.Total())
	b.WriteString(style.Render(step.Name))

	// Markers line up in one column
	const nameColumn = 45
	b.WriteString(strings.Repeat(" ", max(nameColumn-lipgloss.Width(step.Name), 1)))
	b.WriteString(style.Render(marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}

	return b.String()
}

// StepCallback is the function signature for step progress updates.
// Commands call this to report progress.
type StepCallback func(stepNumber int, status StepStatus, message string)
