package printer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/printlink/internal/logging"
	"github.com/muurk/printlink/internal/protocol"
)

const (
	// DefaultPort is the printer's control port
	DefaultPort = 8899

	// DefaultDialTimeout bounds the TCP connect (not the exchanges)
	DefaultDialTimeout = 5 * time.Second
)

// ErrInvalidName is returned for remote file names the protocol cannot carry
var ErrInvalidName = errors.New("invalid remote file name")

// State is the connection state of a Session
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Dialer opens the TCP connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Option configures a Session
type Option func(*Session)

// WithDialTimeout sets the TCP connect timeout. Zero disables it.
func WithDialTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.dialTimeout = d
	}
}

// WithDialer replaces the dialer used by Connect
func WithDialer(d Dialer) Option {
	return func(s *Session) {
		s.dialer = d
	}
}

// Session is a control connection to one printer.
type Session struct {
	address     string
	dialer      Dialer
	dialTimeout time.Duration

	// mu is held for a full exchange; it serializes all commands
	mu     sync.Mutex
	state  State
	conn   net.Conn
	writer *bufio.Writer
	parser *protocol.ResponseParser
}

// NewSession creates a disconnected session for the printer at address.
// If address has no port, DefaultPort is used.
func NewSession(address string, opts ...Option) *Session {
	s := &Session{
		address:     NormalizeAddress(address),
		dialer:      &net.Dialer{},
		dialTimeout: DefaultDialTimeout,
		state:       StateDisconnected,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial creates a session and connects it.
func Dial(ctx context.Context, address string, opts ...Option) (*Session, error) {
	s := NewSession(address, opts...)
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NormalizeAddress appends DefaultPort to addresses without a port.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	return net.JoinHostPort(strings.Trim(address, "[]"), strconv.Itoa(DefaultPort))
}

// Address returns the printer address including port
func (s *Session) Address() string {
	return s.address
}

// State returns the current connection state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect opens the TCP connection and performs the warm-up status query.
// On any failure the connection is closed and the session stays
// Disconnected. Calling Connect on a Ready session is a no-op.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateReady {
		return nil
	}
	s.state = StateConnecting

	dialCtx := ctx
	if s.dialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, s.dialTimeout)
		defer cancel()
	}

	conn, err := s.dialer.DialContext(dialCtx, "tcp", s.address)
	if err != nil {
		s.state = StateDisconnected
		logging.Warn("Failed to connect to printer",
			zap.String("remote_addr", s.address),
			zap.Error(err),
		)
		return classifyConnectError(s.address, err)
	}

	s.conn = conn
	s.writer = bufio.NewWriter(conn)
	s.parser = protocol.NewResponseParser(bufio.NewReader(conn))
	logging.LogConnection(s.address, "connected")

	// The firmware ignores other commands until it has been polled once
	result, err := s.exchange(ctx, protocol.QueryEndstop, protocol.BuildCommand(protocol.QueryEndstop))
	if err != nil {
		s.teardown()
		return classifyConnectError(s.address, fmt.Errorf("warm-up status query failed: %w", err))
	}

	s.state = StateReady
	logging.Info("Printer session ready",
		zap.String("remote_addr", s.address),
		zap.Any("status", result),
	)
	return nil
}

// Close closes the connection. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		s.state = StateDisconnected
		return nil
	}
	return s.teardown()
}

// teardown releases the connection. Caller holds mu.
func (s *Session) teardown() error {
	var err error
	if s.conn != nil {
		err = s.conn.Close()
		logging.LogConnection(s.address, "closed")
	}
	s.conn = nil
	s.writer = nil
	s.parser = nil
	s.state = StateDisconnected
	return err
}

// watch closes the connection when ctx is cancelled. The returned function
// detaches the watcher and reports whether the connection is still intact.
func (s *Session) watch(ctx context.Context) func() bool {
	conn := s.conn
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	return stop
}

// exchange writes one command line and reads its response. Caller holds mu
// and has checked the session state.
func (s *Session) exchange(ctx context.Context, cmd protocol.Command, line []byte) (any, error) {
	intact := s.watch(ctx)

	result, err := s.roundTrip(cmd, line)

	if !intact() {
		s.teardown()
		return nil, fmt.Errorf("%s aborted: %w", cmd, context.Cause(ctx))
	}
	if err != nil {
		s.failed(cmd, err)
		return nil, err
	}
	return result, nil
}

func (s *Session) roundTrip(cmd protocol.Command, line []byte) (any, error) {
	if err := s.send(cmd, line); err != nil {
		return nil, err
	}

	result, err := s.parser.ReadResponse()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd, err)
	}
	return result, nil
}

func (s *Session) send(cmd protocol.Command, line []byte) error {
	logging.LogCommand(s.address, "sent", cmd.Code(), line)

	if _, err := s.writer.Write(line); err != nil {
		return fmt.Errorf("failed to send %s: %w", cmd, err)
	}
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to send %s: %w", cmd, err)
	}
	return nil
}

// failed handles an exchange error. Device error lines leave the stream in
// sync; anything else means the connection can no longer be trusted.
func (s *Session) failed(cmd protocol.Command, err error) {
	if protocol.IsProtocolError(err) {
		logging.Warn("Printer rejected command",
			zap.String("remote_addr", s.address),
			zap.String("command", cmd.String()),
			zap.Error(err),
		)
		return
	}

	logging.Error("Printer exchange failed",
		zap.String("remote_addr", s.address),
		zap.String("command", cmd.String()),
		zap.Error(err),
	)
	s.teardown()
}

// do runs one command exchange on a Ready session.
func (s *Session) do(ctx context.Context, cmd protocol.Command, line []byte) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return nil, fmt.Errorf("%s: %w (state %s)", cmd, ErrNotReady, s.state)
	}
	return s.exchange(ctx, cmd, line)
}

// query runs cmd and checks that the decoded payload has type T. An
// acknowledgment without payload decodes to empty(), where every field is
// unknown.
func query[T any](ctx context.Context, s *Session, cmd protocol.Command, empty func() T) (T, error) {
	var zero T

	result, err := s.do(ctx, cmd, protocol.BuildCommand(cmd))
	if err != nil {
		return zero, err
	}
	if result == nil {
		return empty(), nil
	}

	v, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s answered with %T", ErrUnexpectedResponse, cmd, result)
	}
	return v, nil
}

// QueryStatus asks the printer for its machine status, move mode and
// endstop states (M119).
func (s *Session) QueryStatus(ctx context.Context) (*protocol.PrinterStatus, error) {
	return query(ctx, s, protocol.QueryEndstop, func() *protocol.PrinterStatus {
		return protocol.DecodeStatus(nil)
	})
}

// QueryTemperature asks the printer for extruder and build plate
// temperatures (M105).
func (s *Session) QueryTemperature(ctx context.Context) (*protocol.PrinterTemperature, error) {
	return query(ctx, s, protocol.QueryTemperature, func() *protocol.PrinterTemperature {
		return protocol.DecodeTemperature(nil)
	})
}

// QueryMachineInfo asks the printer for its model, firmware and build
// volume (M115).
func (s *Session) QueryMachineInfo(ctx context.Context) (*protocol.MachineInfo, error) {
	return query(ctx, s, protocol.QueryFirmwareVersion, func() *protocol.MachineInfo {
		return protocol.DecodeMachineInfo(nil)
	})
}

// PrintFile starts printing a file previously stored on the printer (M23).
func (s *Session) PrintFile(ctx context.Context, remoteName string) error {
	if err := ValidateRemoteName(remoteName); err != nil {
		return err
	}

	result, err := s.do(ctx, protocol.PrintFromStorage, protocol.BuildPrintFromStorage(remoteName))
	if err != nil {
		return err
	}
	if result != nil {
		return fmt.Errorf("%w: %s answered with %T", ErrUnexpectedResponse, protocol.PrintFromStorage, result)
	}

	logging.Info("Print started",
		zap.String("remote_addr", s.address),
		zap.String("name", remoteName),
	)
	return nil
}

// StoreOption configures a file transfer
type StoreOption func(*storeConfig)

type storeConfig struct {
	onFrame protocol.FrameCallback
}

// WithProgress registers a callback invoked after each frame is written
func WithProgress(cb protocol.FrameCallback) StoreOption {
	return func(c *storeConfig) {
		c.onFrame = cb
	}
}

// StoreFile uploads the local file to the printer's storage. If remoteName
// is empty the local file's base name is used. The file is read completely
// before any network traffic; a read failure is returned as *FileError.
func (s *Session) StoreFile(ctx context.Context, localPath, remoteName string, opts ...StoreOption) error {
	if remoteName == "" {
		remoteName = filepath.Base(localPath)
	}
	if err := ValidateRemoteName(remoteName); err != nil {
		return err
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return &FileError{Path: localPath, Err: err}
	}

	return s.StoreBytes(ctx, data, remoteName, opts...)
}

// StoreBytes uploads data to the printer's storage under remoteName.
//
// The transfer is announced with M28 carrying the byte count, streamed as
// protocol frames, and closed with M29. Either acknowledgment failing aborts
// the transfer; there is no retry or resume. The session lock is held for
// the whole transfer.
func (s *Session) StoreBytes(ctx context.Context, data []byte, remoteName string, opts ...StoreOption) error {
	if err := ValidateRemoteName(remoteName); err != nil {
		return err
	}

	cfg := &storeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return fmt.Errorf("%s: %w (state %s)", protocol.BeginStore, ErrNotReady, s.state)
	}

	start := time.Now()
	logging.Info("Transfer started",
		zap.String("remote_addr", s.address),
		zap.String("name", remoteName),
		zap.Int("bytes", len(data)),
		zap.Int("frames", protocol.FrameCount(len(data))),
	)

	if _, err := s.exchange(ctx, protocol.BeginStore, protocol.BuildBeginStore(len(data), remoteName)); err != nil {
		return fmt.Errorf("printer refused transfer: %w", err)
	}

	if err := s.streamFrames(ctx, data, cfg.onFrame); err != nil {
		return err
	}

	if _, err := s.exchange(ctx, protocol.EndStore, protocol.BuildEndStore()); err != nil {
		return fmt.Errorf("printer did not confirm transfer: %w", err)
	}

	logging.Info("Transfer complete",
		zap.String("remote_addr", s.address),
		zap.String("name", remoteName),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// streamFrames writes the raw frames. Caller holds mu.
func (s *Session) streamFrames(ctx context.Context, data []byte, onFrame protocol.FrameCallback) error {
	intact := s.watch(ctx)

	_, err := protocol.WriteFrames(s.writer, data, onFrame)

	if !intact() {
		s.teardown()
		return fmt.Errorf("transfer aborted: %w", context.Cause(ctx))
	}
	if err != nil {
		s.teardown()
		return fmt.Errorf("transfer failed: %w", err)
	}
	return nil
}

// ValidateRemoteName checks that name can be carried in a command line.
func ValidateRemoteName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidName, name)
	}
	return nil
}
