package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/muurk/printlink/internal/protocol"
)

// TransferBar draws a single-line upload progress bar that is redrawn in
// place after every frame.
type TransferBar struct {
	out    io.Writer
	bar    progress.Model
	frames int
	last   float64
}

// NewTransferBar creates a bar sized to the terminal width
func NewTransferBar(out io.Writer, width int) *TransferBar {
	barWidth := min(max(width-40, 20), 50)
	return &TransferBar{
		out: out,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
		),
		last: -1,
	}
}

// OnFrame is a protocol.FrameCallback that redraws the bar
func (t *TransferBar) OnFrame(frame protocol.Frame, sent, total int) {
	t.frames++

	percent := 1.0
	if total > 0 {
		percent = float64(sent) / float64(total)
	}
	// Large files produce thousands of frames; only redraw on visible change
	if percent-t.last < 0.005 && sent != total {
		return
	}
	t.last = percent

	counters := fmt.Sprintf("%3.0f%%  %s / %s  [frame %d]",
		percent*100, FormatBytes(sent), FormatBytes(total), frame.Sequence+1)
	_, _ = fmt.Fprintf(t.out, "\r  %s  %s", t.bar.ViewAs(percent), ProgressLabelStyle.Render(counters))
}

// Frames returns the number of frames reported so far
func (t *TransferBar) Frames() int {
	return t.frames
}

// Finish ends the bar line
func (t *TransferBar) Finish() {
	if t.frames > 0 {
		_, _ = fmt.Fprintln(t.out)
	}
}

// FormatBytes renders a byte count using binary units
func FormatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := int64(n) / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
