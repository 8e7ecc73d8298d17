package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/printlink/internal/printer"
	"github.com/muurk/printlink/internal/protocol"
	"github.com/muurk/printlink/internal/ui"
)

// Command flags
var (
	watchTemps    bool
	watchInterval time.Duration
	printAfter    bool
	assumeYes     bool
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tempCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(printCmd)

	tempCmd.Flags().BoolVarP(&watchTemps, "watch", "w", false, "Keep polling and show live temperatures")
	tempCmd.Flags().DurationVar(&watchInterval, "interval", 2*time.Second, "Polling interval for --watch")

	uploadCmd.Flags().BoolVar(&printAfter, "print", false, "Start printing the file after the upload")
	uploadCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	printCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

// statusCmd shows machine status and endstops
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show printer status",
	Long: `Query the printer's machine status, move mode and endstop states (M119).

Fields the printer did not report are shown as "unknown" (null in JSON).`,
	Example: `  # Status of the default printer
  printlink status

  # Status of a specific printer, for scripting
  printlink status --printer 192.168.1.50 --format json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(t *target, s *printer.Session) error {
		status, err := s.QueryStatus(cmd.Context())
		if err != nil {
			return report(t, "Status query", err)
		}

		if outputFormat == formatJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"printer": t.address,
				"status":  status,
			})
		}
		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintSuccess("Status: "+t.Label(), ui.StatusFields(status)...)
		return nil
	})
}

// tempCmd shows extruder and build plate temperatures
var tempCmd = &cobra.Command{
	Use:     "temp",
	Aliases: []string{"temperature"},
	Short:   "Show printer temperatures",
	Long: `Query the extruder and build plate temperatures (M105).

With --watch the temperatures are polled until you press q.`,
	Example: `  printlink temp
  printlink temp --watch --interval 5s`,
	Args: cobra.NoArgs,
	RunE: runTemp,
}

func runTemp(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(t *target, s *printer.Session) error {
		if watchTemps {
			if watchInterval < 500*time.Millisecond {
				return fmt.Errorf("--interval must be at least 500ms")
			}
			if err := ui.RunMonitor(cmd.Context(), "Temperatures: "+t.Label(), watchInterval, s.QueryTemperature); err != nil {
				return report(t, "Temperature query", err)
			}
			return nil
		}

		temp, err := s.QueryTemperature(cmd.Context())
		if err != nil {
			return report(t, "Temperature query", err)
		}

		if outputFormat == formatJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"printer":     t.address,
				"temperature": temp,
			})
		}
		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintSuccess("Temperatures: "+t.Label(), ui.TemperatureFields(temp)...)
		return nil
	})
}

// infoCmd shows model, firmware and build volume
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show printer model and firmware",
	Long: `Query the printer's machine type, firmware version, serial number and
build volume (M115). For saved printers the firmware and model are recorded
in the configuration file.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(t *target, s *printer.Session) error {
		info, err := s.QueryMachineInfo(cmd.Context())
		if err != nil {
			return report(t, "Machine info query", err)
		}
		t.seen(info.Firmware.Or(""), info.MachineType.Or(""))

		if outputFormat == formatJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"printer": t.address,
				"info":    info,
			})
		}
		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintSuccess("Machine info: "+t.Label(), ui.MachineInfoFields(info)...)
		return nil
	})
}

// uploadCmd stores a local file on the printer
var uploadCmd = &cobra.Command{
	Use:   "upload <file> [remote-name]",
	Short: "Upload a file to the printer's storage",
	Long: `Upload a local G-code file into the printer's storage (0:/user/).

The remote name defaults to the local file name and must not contain
whitespace. The transfer is not resumable: if it fails, run it again.`,
	Example: `  # Upload and keep the name
  printlink upload benchy.gx

  # Upload under another name and start printing
  printlink upload ./out/benchy_0.2mm.gx benchy.gx --print`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	localPath := args[0]
	remoteName := filepath.Base(localPath)
	if len(args) > 1 {
		remoteName = args[1]
	}
	if err := printer.ValidateRemoteName(remoteName); err != nil {
		return err
	}

	// Fail on unreadable files before touching the network
	fi, err := os.Stat(localPath)
	if err != nil {
		return &printer.FileError{Path: localPath, Err: err}
	}

	t, err := resolveTarget()
	if err != nil {
		return err
	}

	if printAfter && !confirmPrint(cmd, t, remoteName) {
		return nil
	}

	if outputFormat == formatJSON {
		return uploadJSON(cmd, t, localPath, remoteName)
	}

	steps := []string{"Connect", "Transfer " + remoteName}
	if printAfter {
		steps = append(steps, "Start print")
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "File Upload",
		Command: "printlink " + cmd.Name(),
		Params: []ui.Field{
			{Key: "Printer", Value: t.Label()},
			{Key: "File", Value: localPath},
			{Key: "Remote", Value: protocol.StoragePath(remoteName)},
			{Key: "Size", Value: ui.FormatBytes(int(fi.Size()))},
		},
		StepNames:    steps,
		Output:       cmd.OutOrStdout(),
		Troubleshoot: printer.TroubleshootingHint,
	})

	err = runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Field, error) {
		onStep(1, ui.StepRunning, "")
		session, err := t.connect(ctx)
		if err != nil {
			onStep(1, ui.StepFailed, "")
			return nil, err
		}
		defer session.Close()
		onStep(1, ui.StepComplete, session.Address())

		bar := ui.NewTransferBar(runner.Output(), runner.Width())
		err = session.StoreFile(ctx, localPath, remoteName, printer.WithProgress(bar.OnFrame))
		bar.Finish()
		if err != nil {
			onStep(2, ui.StepFailed, "")
			return nil, err
		}
		onStep(2, ui.StepComplete, strconv.Itoa(bar.Frames())+" frames")

		details := []ui.Field{
			{Key: "Remote", Value: protocol.StoragePath(remoteName)},
			{Key: "Bytes", Value: strconv.FormatInt(fi.Size(), 10)},
		}

		if printAfter {
			onStep(3, ui.StepRunning, "")
			if err := session.PrintFile(ctx, remoteName); err != nil {
				onStep(3, ui.StepFailed, "")
				return details, err
			}
			onStep(3, ui.StepComplete, "")
			details = append(details, ui.Field{Key: "Printing", Value: "yes"})
		}
		return details, nil
	})
	if err != nil {
		return &reportedError{err: err}
	}
	return nil
}

func uploadJSON(cmd *cobra.Command, t *target, localPath, remoteName string) error {
	ctx := cmd.Context()
	session, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	var frames, sent int
	onFrame := func(frame protocol.Frame, n, total int) {
		frames++
		sent = n
	}
	if err := session.StoreFile(ctx, localPath, remoteName, printer.WithProgress(onFrame)); err != nil {
		return err
	}
	if printAfter {
		if err := session.PrintFile(ctx, remoteName); err != nil {
			return err
		}
	}

	return writeJSON(cmd.OutOrStdout(), map[string]any{
		"printer":  t.address,
		"file":     localPath,
		"remote":   protocol.StoragePath(remoteName),
		"bytes":    sent,
		"frames":   frames,
		"printing": printAfter,
	})
}

// printCmd starts printing a stored file
var printCmd = &cobra.Command{
	Use:   "print <remote-name>",
	Short: "Print a file already stored on the printer",
	Long: `Start printing a file from the printer's storage (M23).

The printer heats up and starts moving immediately, so you are asked to
confirm unless --yes is given or the output format is json.`,
	Example: `  printlink print benchy.gx
  printlink print benchy.gx --printer workshop --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runPrint,
}

func runPrint(cmd *cobra.Command, args []string) error {
	remoteName := args[0]
	if err := printer.ValidateRemoteName(remoteName); err != nil {
		return err
	}

	t, err := resolveTarget()
	if err != nil {
		return err
	}
	if !confirmPrint(cmd, t, remoteName) {
		return nil
	}

	session, err := t.connect(cmd.Context())
	if err != nil {
		return report(t, "Connection", err)
	}
	defer session.Close()

	if err := session.PrintFile(cmd.Context(), remoteName); err != nil {
		return report(t, "Print", err)
	}

	if outputFormat == formatJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"printer":  t.address,
			"remote":   protocol.StoragePath(remoteName),
			"printing": true,
		})
	}
	ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Print started",
		ui.Field{Key: "Printer", Value: t.Label()},
		ui.Field{Key: "File", Value: protocol.StoragePath(remoteName)},
	)
	return nil
}

// confirmPrint asks before a print starts. JSON output and --yes skip it.
func confirmPrint(cmd *cobra.Command, t *target, remoteName string) bool {
	if assumeYes || outputFormat == formatJSON {
		return true
	}
	return ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Start print on "+t.Label(), []string{
		"The printer will print " + remoteName + " immediately",
		"Make sure the build plate is clear",
		"The nozzle and bed will heat up",
	})
}
