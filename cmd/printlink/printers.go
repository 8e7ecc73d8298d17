package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/muurk/printlink/internal/config"
	"github.com/muurk/printlink/internal/ui"
)

func init() {
	rootCmd.AddCommand(printersCmd)

	printersCmd.AddCommand(printersListCmd)
	printersCmd.AddCommand(printersAddCmd)
	printersCmd.AddCommand(printersRemoveCmd)
	printersCmd.AddCommand(printersDefaultCmd)
}

// printersCmd manages saved printers
var printersCmd = &cobra.Command{
	Use:   "printers",
	Short: "Manage saved printers",
	Long: `Save printers under a nickname so they can be selected with --printer.

The first printer added becomes the default. Printers are stored in the
printlink configuration file.`,
}

var printersListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved printers",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}

		if outputFormat == formatJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"default":  registry.Preferences.DefaultPrinter,
				"printers": registry.Printers,
			})
		}

		p := ui.NewPrinter(cmd.OutOrStdout())
		if len(registry.Printers) == 0 {
			p.PrintWarning("No saved printers",
				ui.Field{Key: "Add one", Value: "printlink printers add <nickname> <address>"},
			)
			return nil
		}

		p.Println(renderPrinterTable(registry))
		if path, err := config.GetConfigPath(); err == nil {
			p.Println(ui.StepPendingStyle.Render("  " + path))
		}
		return nil
	},
}

func renderPrinterTable(registry *config.Registry) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ui.PrimaryColor)).
		Headers("", "NICKNAME", "ADDRESS", "MODEL", "FIRMWARE", "LAST SEEN")

	for _, name := range registry.Nicknames() {
		pr := registry.GetPrinter(name)

		marker := ""
		if name == registry.Preferences.DefaultPrinter {
			marker = "*"
		}
		address := pr.Address
		if pr.Port != 0 {
			address += ":" + strconv.Itoa(pr.Port)
		}
		lastSeen := "never"
		if !pr.LastSeen.IsZero() {
			lastSeen = pr.LastSeen.Format("2006-01-02 15:04")
		}

		t.Row(marker, name, address, pr.MachineType, pr.Firmware, lastSeen)
	}

	return t.Render()
}

var printersAddCmd = &cobra.Command{
	Use:   "add <nickname> [address]",
	Short: "Save a printer",
	Long: `Save a printer under a nickname. When the address is omitted in a
terminal you are prompted for it.`,
	Example: `  printlink printers add workshop 192.168.1.50
  printlink printers add office printer.lan --port 9000`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}

		nickname := args[0]
		var address string
		if len(args) > 1 {
			address = args[1]
		} else {
			if !ui.IsInteractive() {
				return fmt.Errorf("address is required when not running in a terminal")
			}
			address, err = ui.RunPrompt(cmd.Context(), "Address of "+nickname, "192.168.1.50 or printer.lan", validateAddress)
			if err != nil {
				return err
			}
			if address == "" {
				return nil
			}
		}

		if err := registry.AddPrinter(nickname, address, printerPort); err != nil {
			return err
		}
		if err := registry.Save(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Saved printer %q (%s)\n", nickname, address)
		return nil
	},
}

// validateAddress rejects input that cannot be a host or host:port
func validateAddress(address string) error {
	if strings.ContainsAny(address, " \t/") {
		return fmt.Errorf("not a host name or IP address")
	}
	if _, port, err := net.SplitHostPort(address); err == nil {
		if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("invalid port %q", port)
		}
	}
	return nil
}

var printersRemoveCmd = &cobra.Command{
	Use:     "remove <nickname>",
	Aliases: []string{"rm"},
	Short:   "Remove a saved printer",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if !registry.RemovePrinter(args[0]) {
			return fmt.Errorf("%w: %s", config.ErrUnknownPrinter, args[0])
		}
		if err := registry.Save(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed printer %q\n", args[0])
		return nil
	},
}

var printersDefaultCmd = &cobra.Command{
	Use:   "default [nickname]",
	Short: "Set the default printer",
	Long: `Set the printer used when --printer is not given. Without a nickname
a list of saved printers is shown to choose from.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}

		var nickname string
		if len(args) == 1 {
			nickname = args[0]
		} else {
			if !ui.IsInteractive() {
				return fmt.Errorf("nickname is required when not running in a terminal")
			}
			if len(registry.Printers) == 0 {
				return fmt.Errorf("%w: add one with 'printlink printers add'", config.ErrNoPrinter)
			}
			nickname, err = ui.RunPicker(cmd.Context(), "Default printer", printerChoices(registry))
			if err != nil {
				return err
			}
			if nickname == "" {
				return nil
			}
		}

		if err := registry.SetDefault(nickname); err != nil {
			return err
		}
		if err := registry.Save(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Default printer is now %q\n", nickname)
		return nil
	},
}

func printerChoices(registry *config.Registry) []ui.PrinterChoice {
	var choices []ui.PrinterChoice
	for _, name := range registry.Nicknames() {
		pr := registry.GetPrinter(name)
		address := pr.Address
		if pr.Port != 0 {
			address = net.JoinHostPort(pr.Address, strconv.Itoa(pr.Port))
		}
		choices = append(choices, ui.PrinterChoice{
			Nickname: name,
			Address:  address,
			Model:    pr.MachineType,
			Default:  name == registry.Preferences.DefaultPrinter,
		})
	}
	return choices
}
