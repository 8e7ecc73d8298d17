// Printlink is a command line client for networked 3D printers.
//
// It talks to the printer's control port (8899 by default) to read status
// and temperatures, upload G-code files into the printer's storage, and
// start prints. Printers can be saved under a nickname with
// 'printlink printers add'.
//
// Usage:
//
//	printlink [command] [flags]
//
// See 'printlink --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/muurk/printlink/internal/config"
	"github.com/muurk/printlink/internal/logging"
	"github.com/muurk/printlink/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	logging.Sync()

	if err != nil {
		// Errors already shown in a result box are not repeated
		var shown *reportedError
		if !errors.As(err, &shown) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// Global flags
var (
	printerRef   string
	printerPort  int
	dialTimeout  int
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "printlink",
	Short: "Network 3D printer client",
	Long: `A command line client for 3D printers that expose a TCP control port.

Reads printer status and temperatures, uploads files into the printer's
storage and starts prints. The printer is chosen with --printer (a saved
nickname or an address), $PRINTLINK_PRINTER, or the default saved printer.

Environment variables may also be set in a .env file in the working
directory.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(); err != nil {
			return err
		}
		if err := logging.Initialize(logLevel); err != nil {
			return err
		}
		switch outputFormat {
		case formatDetailed, formatJSON:
			return nil
		default:
			return fmt.Errorf("invalid --format %q (want %s or %s)", outputFormat, formatDetailed, formatJSON)
		}
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&printerRef, "printer", "p", "", "Printer nickname or address (host[:port])")
	flags.IntVar(&printerPort, "port", 0, "Printer control port (default 8899)")
	flags.IntVar(&dialTimeout, "timeout", 0, "Connect timeout in seconds (default from config, 5)")
	flags.StringVar(&outputFormat, "format", formatDetailed, "Output format (detailed, json)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); logs go to stderr")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat == formatJSON {
			return writeJSON(cmd.OutOrStdout(), version.Get())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "printlink %s\n", version.Full())
		return nil
	},
}
