package printer

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/muurk/printlink/internal/protocol"
)

var (
	// ErrNotReady is returned when an operation is invoked on a session that
	// is not connected. No I/O is attempted.
	ErrNotReady = errors.New("printer session is not ready")

	// ErrUnexpectedResponse is returned when a query is answered with the
	// payload of a different command.
	ErrUnexpectedResponse = errors.New("unexpected response payload")
)

// ConnectErrorKind classifies why a connection attempt failed
type ConnectErrorKind int

const (
	ConnectErrorGeneral ConnectErrorKind = iota
	ConnectErrorTimeout
	ConnectErrorRefused
	ConnectErrorDNS
	ConnectErrorHostUnreachable
	ConnectErrorNetworkUnreachable
)

// String returns a human-readable name for the error kind
func (k ConnectErrorKind) String() string {
	switch k {
	case ConnectErrorGeneral:
		return "Network Error"
	case ConnectErrorTimeout:
		return "Timeout"
	case ConnectErrorRefused:
		return "Connection Refused"
	case ConnectErrorDNS:
		return "DNS Error"
	case ConnectErrorHostUnreachable:
		return "Host Unreachable"
	case ConnectErrorNetworkUnreachable:
		return "Network Unreachable"
	default:
		return fmt.Sprintf("ConnectErrorKind(%d)", int(k))
	}
}

// ConnectError is returned when the TCP connection to the printer cannot be
// established, or when the mandatory warm-up exchange fails.
type ConnectError struct {
	Address string           // Printer address as dialed
	Kind    ConnectErrorKind // Classified cause
	Err     error            // Underlying error
}

// Error implements the error interface
func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s: cannot connect to printer at %s: %v", e.Kind, e.Address, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConnectError) Unwrap() error {
	return e.Err
}

// FileError is returned when the local file for a transfer cannot be read.
// It is always returned before any network traffic for that call.
type FileError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *FileError) Unwrap() error {
	return e.Err
}

// classifyConnectError wraps a dial error with its classified cause
func classifyConnectError(address string, err error) *ConnectError {
	ce := &ConnectError{Address: address, Kind: ConnectErrorGeneral, Err: err}

	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		ce.Kind = ConnectErrorTimeout
		return ce
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		ce.Kind = ConnectErrorDNS
		return ce
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		ce.Kind = ConnectErrorRefused
	case errors.Is(err, syscall.EHOSTUNREACH):
		ce.Kind = ConnectErrorHostUnreachable
	case errors.Is(err, syscall.ENETUNREACH):
		ce.Kind = ConnectErrorNetworkUnreachable
	}

	return ce
}

// IsConnectError checks if an error is a connection failure
func IsConnectError(err error) bool {
	var ce *ConnectError
	return errors.As(err, &ce)
}

// IsFileError checks if an error is a local file read failure
func IsFileError(err error) bool {
	var fe *FileError
	return errors.As(err, &fe)
}

// IsNotReady checks if an error was caused by using a closed session
func IsNotReady(err error) bool {
	return errors.Is(err, ErrNotReady)
}

// TroubleshootingHint returns user-friendly troubleshooting advice for an error
func TroubleshootingHint(err error) []string {
	var ce *ConnectError
	if errors.As(err, &ce) {
		switch ce.Kind {
		case ConnectErrorTimeout:
			return []string{
				"The printer did not answer in time.",
				"Check that the printer is powered on and on the network",
				"Try increasing --timeout",
			}
		case ConnectErrorRefused:
			return []string{
				"The printer refused the connection.",
				"Verify the port number (default is 8899)",
				"Enable network printing in the printer's settings menu",
				"Close other slicers or tools connected to the printer",
			}
		case ConnectErrorDNS:
			return []string{
				"Could not resolve the printer hostname.",
				"Use the IP address shown on the printer's network screen",
			}
		case ConnectErrorHostUnreachable, ConnectErrorNetworkUnreachable:
			return []string{
				"The printer is not reachable on the network.",
				"Verify the printer IP address is correct",
				"Check that you're on the same network as the printer",
				"Try pinging the printer: ping " + hostOf(ce.Address),
			}
		default:
			return []string{
				"Network communication failed.",
				"Check your network connection",
				"Verify the printer is powered on",
			}
		}
	}

	var fe *FileError
	if errors.As(err, &fe) {
		return []string{
			"The local file could not be read.",
			"Check the path and file permissions",
		}
	}

	if code, ok := protocol.ErrorCode(err); ok {
		hint := []string{"The printer rejected the command."}
		if code != "" {
			hint = append(hint, "Printer error code: "+code)
		}
		return append(hint,
			"Check the printer's display for details",
			"Make sure no print job is running",
		)
	}

	if protocol.IsUnknownCommand(err) || errors.Is(err, ErrUnexpectedResponse) {
		return []string{
			"The printer answered with a response this tool does not understand.",
			"This may indicate a firmware incompatibility",
			"Reconnect and try again",
		}
	}

	if IsNotReady(err) {
		return []string{"The connection to the printer was closed. Reconnect and retry."}
	}

	return nil
}

func hostOf(address string) string {
	if host, _, err := net.SplitHostPort(address); err == nil {
		return host
	}
	return strings.TrimSpace(address)
}
