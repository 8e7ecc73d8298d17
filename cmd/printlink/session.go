package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/printlink/internal/config"
	"github.com/muurk/printlink/internal/logging"
	"github.com/muurk/printlink/internal/printer"
	"github.com/muurk/printlink/internal/ui"
)

const (
	formatDetailed = "detailed"
	formatJSON     = "json"
)

// reportedError marks an error that was already displayed to the user
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// target is a resolved printer with the registry it came from
type target struct {
	registry *config.Registry
	nickname string
	address  string
	timeout  time.Duration
}

// Label returns "nickname (address)" or just the address
func (t *target) Label() string {
	if t.nickname == "" {
		return t.address
	}
	return fmt.Sprintf("%s (%s)", t.nickname, t.address)
}

// resolveTarget applies --printer, --port and --timeout on top of the saved
// configuration.
func resolveTarget() (*target, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, err
	}

	resolved, err := registry.Resolve(printerRef)
	if err != nil {
		return nil, fmt.Errorf("%w: use --printer or 'printlink printers add'", err)
	}

	address := resolved.Address
	if printerPort > 0 {
		host := address
		if h, _, err := net.SplitHostPort(address); err == nil {
			host = h
		}
		address = net.JoinHostPort(host, strconv.Itoa(printerPort))
	}

	timeout := registry.DialTimeout()
	if dialTimeout > 0 {
		timeout = time.Duration(dialTimeout) * time.Second
	}

	return &target{
		registry: registry,
		nickname: resolved.Nickname,
		address:  printer.NormalizeAddress(address),
		timeout:  timeout,
	}, nil
}

// connect dials the target and records the connection for saved printers.
func (t *target) connect(ctx context.Context) (*printer.Session, error) {
	session, err := printer.Dial(ctx, t.address, printer.WithDialTimeout(t.timeout))
	if err != nil {
		return nil, err
	}
	t.seen("", "")
	return session, nil
}

// seen updates the saved printer entry. Failing to save is not fatal.
func (t *target) seen(firmware, machineType string) {
	if t.nickname == "" {
		return
	}
	t.registry.UpdatePrinterSeen(t.nickname, firmware, machineType)
	if err := t.registry.Save(); err != nil {
		logging.Warn("Failed to save printer registry", zap.Error(err))
	}
}

// withSession resolves the target, connects, runs fn and closes the session.
func withSession(ctx context.Context, fn func(*target, *printer.Session) error) error {
	t, err := resolveTarget()
	if err != nil {
		return err
	}

	session, err := t.connect(ctx)
	if err != nil {
		return report(t, "Connection", err)
	}
	defer session.Close()

	return fn(t, session)
}

// report shows err in the selected output format and marks it as shown.
func report(t *target, title string, err error) error {
	if outputFormat == formatJSON {
		return err
	}

	p := ui.NewPrinter(nil)
	p.PrintError(fmt.Sprintf("%s failed: %s", title, t.Label()), err, printer.TroubleshootingHint(err))
	return &reportedError{err: err}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
