package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig holds configuration for a printer command execution
type RunnerConfig struct {
	Title     string   // Command title (e.g., "File Upload")
	Command   string   // Full command (e.g., "printlink upload")
	Params    []Field  // Parameters to display in header
	StepNames []string // Names for each step
	Output    io.Writer

	// Troubleshoot returns hints for a failed operation. May be nil.
	Troubleshoot func(error) []string
}

// Runner orchestrates the header → steps → result flow of a command.
type Runner struct {
	config RunnerConfig
	header *Header
	steps  *Steps
	output io.Writer
	width  int
}

// NewRunner creates a new runner for a printer command
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	width := GetTerminalWidth()

	return &Runner{
		config: config,
		header: NewHeader(config.Title, config.Command, config.Params...).SetWidth(width),
		steps:  NewSteps(config.StepNames...),
		output: config.Output,
		width:  width,
	}
}

// Width returns the terminal width used for rendering
func (r *Runner) Width() int {
	return r.width
}

// Output returns the writer the runner prints to
func (r *Runner) Output() io.Writer {
	return r.output
}

// Operation is the work a command performs. It reports progress through
// onStep and returns the details to show on success.
type Operation func(ctx context.Context, onStep StepCallback) ([]Field, error)

// Run prints the header, executes the operation and prints the result box.
// The operation's error is returned unchanged.
func (r *Runner) Run(ctx context.Context, operation Operation) error {
	start := time.Now()

	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := operation(ctx, r.onStep)
	duration := time.Since(start).Round(time.Millisecond)

	_, _ = fmt.Fprintln(r.output)
	if err != nil {
		var hints []string
		if r.config.Troubleshoot != nil {
			hints = r.config.Troubleshoot(err)
		}
		result := NewFailureResult(r.config.Title+" failed", err, hints).SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, result.Render())
		return err
	}

	details = append(details, Field{Key: "Duration", Value: duration.String()})
	result := NewSuccessResult(r.config.Title+" complete", details...).SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
	return nil
}

// onStep prints a step line. Running steps are overwritten in place when
// they finish.
func (r *Runner) onStep(number int, status StepStatus, message string) {
	step, ok := r.steps.Update(number, status, message)
	if !ok {
		return
	}

	line := r.steps.RenderLine(step)
	if status == StepRunning {
		_, _ = fmt.Fprint(r.output, line+"\r")
		return
	}
	_, _ = fmt.Fprintln(r.output, line)
}
