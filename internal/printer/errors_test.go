package printer

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/muurk/printlink/internal/protocol"
)

// timeoutError mimics a net.Error reporting a timeout
type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

func dialError(inner error) error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: inner}
}

func TestClassifyConnectError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ConnectErrorKind
	}{
		{"timeout", dialError(&timeoutError{}), ConnectErrorTimeout},
		{"refused", dialError(&os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED}), ConnectErrorRefused},
		{"dns", &net.DNSError{Err: "no such host", Name: "printer.invalid", IsNotFound: true}, ConnectErrorDNS},
		{"host unreachable", dialError(syscall.EHOSTUNREACH), ConnectErrorHostUnreachable},
		{"network unreachable", dialError(syscall.ENETUNREACH), ConnectErrorNetworkUnreachable},
		{"general", errors.New("something else"), ConnectErrorGeneral},
		{"wrapped protocol error", fmt.Errorf("warm-up: %w", &protocol.ProtocolError{Code: "E1", Line: "E1 error."}), ConnectErrorGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := classifyConnectError("192.168.1.50:8899", tt.err)

			if ce.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", ce.Kind, tt.want)
			}
			if !errors.Is(ce, tt.err) {
				t.Error("ConnectError should unwrap to the original error")
			}
			if !strings.Contains(ce.Error(), "192.168.1.50:8899") {
				t.Errorf("Error() = %q, want address included", ce.Error())
			}
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	connErr := fmt.Errorf("status: %w", &ConnectError{Address: "a:1", Err: errors.New("x")})
	fileErr := fmt.Errorf("upload: %w", &FileError{Path: "/tmp/x.gx", Err: os.ErrNotExist})
	notReady := fmt.Errorf("M105: %w", ErrNotReady)

	if !IsConnectError(connErr) || IsConnectError(fileErr) {
		t.Error("IsConnectError() mismatch")
	}
	if !IsFileError(fileErr) || IsFileError(notReady) {
		t.Error("IsFileError() mismatch")
	}
	if !IsNotReady(notReady) || IsNotReady(connErr) {
		t.Error("IsNotReady() mismatch")
	}
}

func TestTroubleshootingHint(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"timeout", &ConnectError{Address: "p:8899", Kind: ConnectErrorTimeout}, "--timeout"},
		{"refused", &ConnectError{Address: "p:8899", Kind: ConnectErrorRefused}, "8899"},
		{"unreachable", &ConnectError{Address: "10.0.0.9:8899", Kind: ConnectErrorHostUnreachable}, "ping 10.0.0.9"},
		{"file", &FileError{Path: "x", Err: os.ErrPermission}, "permissions"},
		{"protocol", &protocol.ProtocolError{Code: "E3", Line: "E3 error."}, "E3"},
		{"unknown command", &protocol.UnknownCommandError{Code: "M601"}, "firmware"},
		{"not ready", ErrNotReady, "Reconnect"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := strings.Join(TroubleshootingHint(tt.err), "\n")
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("hint = %q, want it to contain %q", hint, tt.contains)
			}
		})
	}

	if hint := TroubleshootingHint(errors.New("plain")); hint != nil {
		t.Errorf("TroubleshootingHint(plain) = %v, want nil", hint)
	}
}
