package protocol

import (
	"errors"
	"fmt"
)

// ProtocolError is returned when the printer answers a command with an
// error line. Code is the device's error token and may be empty when the
// line did not have the expected "<code> error." shape.
type ProtocolError struct {
	Code string // Device error code (e.g. "E1"), possibly empty
	Line string // Raw error line as received
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("printer reported an error: %q", e.Line)
	}
	return fmt.Sprintf("printer reported error %s", e.Code)
}

// UnknownCommandError is returned when a response completes for a command
// code that has no registered decoder. It means the client and the printer
// disagree about the exchange and the session should not be trusted further.
type UnknownCommandError struct {
	Code string
}

// Error implements the error interface
func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("response for unknown command %q", e.Code)
}

// IsProtocolError checks if an error is a device-reported protocol error
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// IsUnknownCommand checks if an error is an unknown command error
func IsUnknownCommand(err error) bool {
	var uc *UnknownCommandError
	return errors.As(err, &uc)
}

// ErrorCode returns the device error code carried by err, if any.
func ErrorCode(err error) (string, bool) {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return "", false
}
