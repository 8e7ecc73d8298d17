// Package ui provides terminal UI components for the printlink CLI.
//
// Output is built with Lipgloss styles and follows a "run once and exit"
// pattern: a command prints a header, reports its steps as they complete,
// and finishes with a success or failure box. The interactive views (the
// temperature monitor, the printer picker and the address prompt) are small
// Bubble Tea programs.
//
// # Components
//
//   - Header: Command banner showing operation name and parameters
//   - Steps: Step list with per-step status markers
//   - Result: Success/failure/warning boxes with ordered details
//   - TransferBar: Upload progress bar driven by the frame callback
//   - MonitorModel: Live temperature view with periodic polling
//   - PickerModel: Filterable list of saved printers
//   - PromptModel: Validated single-line text input
//
// Commands usually go through a Runner:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:        "File Upload",
//	    Command:      "printlink upload",
//	    Params:       []ui.Field{{Key: "Printer", Value: addr}},
//	    StepNames:    []string{"Connect", "Transfer", "Verify"},
//	    Troubleshoot: printer.TroubleshootingHint,
//	})
//
//	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Field, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, ui.StepComplete, "")
//	    return nil, nil
//	})
//
// # Logging Integration
//
// zap logging is silent unless PRINTLINK_LOG_LEVEL is set, so the styled
// output is not interleaved with log lines. Logs go to stderr.
package ui
