package protocol

import (
	"fmt"
	"strings"
)

// Command is one of the fixed set of commands the printer understands.
type Command int

const (
	QueryEndstop Command = iota
	QueryTemperature
	BeginStore
	EndStore
	PrintFromStorage
	QueryFirmwareVersion
)

// Command codes as they appear on the wire
const (
	CodeQueryEndstop         = "M119"
	CodeQueryTemperature     = "M105"
	CodeBeginStore           = "M28"
	CodeEndStore             = "M29"
	CodePrintFromStorage     = "M23"
	CodeQueryFirmwareVersion = "M115"
)

const (
	// CommandPrefix starts every command line sent to the printer
	CommandPrefix = "~"

	// LineTerminator ends every command line sent to the printer
	LineTerminator = "\r\n"

	// StoragePrefix is the printer's internal path for user files
	StoragePrefix = "0:/user/"
)

var commandCodes = map[Command]string{
	QueryEndstop:         CodeQueryEndstop,
	QueryTemperature:     CodeQueryTemperature,
	BeginStore:           CodeBeginStore,
	EndStore:             CodeEndStore,
	PrintFromStorage:     CodePrintFromStorage,
	QueryFirmwareVersion: CodeQueryFirmwareVersion,
}

var commandNames = map[Command]string{
	QueryEndstop:         "query-endstop",
	QueryTemperature:     "query-temperature",
	BeginStore:           "begin-store",
	EndStore:             "end-store",
	PrintFromStorage:     "print-from-storage",
	QueryFirmwareVersion: "query-firmware-version",
}

// Code returns the wire code for the command (e.g. "M119").
func (c Command) Code() string {
	if code, ok := commandCodes[c]; ok {
		return code
	}
	return ""
}

// String returns a human-readable command name
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// CommandForCode looks up the command with the given wire code.
func CommandForCode(code string) (Command, bool) {
	for cmd, c := range commandCodes {
		if c == code {
			return cmd, true
		}
	}
	return 0, false
}

// BuildCommand renders a command line ready to be written to the socket.
// Arguments are joined with single spaces.
func BuildCommand(cmd Command, args ...string) []byte {
	var b strings.Builder
	b.WriteString(CommandPrefix)
	b.WriteString(cmd.Code())
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	b.WriteString(LineTerminator)
	return []byte(b.String())
}

// StoragePath returns the printer-side path for a file name.
func StoragePath(name string) string {
	return StoragePrefix + name
}

// BuildBeginStore builds the command that announces a file transfer of size
// bytes to be stored under name.
func BuildBeginStore(size int, name string) []byte {
	return BuildCommand(BeginStore, fmt.Sprintf("%d", size), StoragePath(name))
}

// BuildEndStore builds the command that closes a file transfer.
func BuildEndStore() []byte {
	return BuildCommand(EndStore)
}

// BuildPrintFromStorage builds the command that starts printing a stored file.
func BuildPrintFromStorage(name string) []byte {
	return BuildCommand(PrintFromStorage, StoragePath(name))
}
