package config

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	registryVersion = 1

	defaultDialTimeout = 5 // seconds
)

var (
	// ErrNoPrinter is returned by Resolve when no printer was named and no
	// default is configured.
	ErrNoPrinter = errors.New("no printer specified")

	// ErrUnknownPrinter is returned when a nickname is not in the registry.
	ErrUnknownPrinter = errors.New("unknown printer")

	// ErrInvalidNickname is returned for nicknames that are empty or contain
	// whitespace.
	ErrInvalidNickname = errors.New("invalid printer nickname")
)

// Registry represents the entire user configuration file.
// This stores saved printers and application preferences.
type Registry struct {
	Version     int                 `yaml:"version"`
	Printers    map[string]*Printer `yaml:"printers,omitempty"` // Keyed by nickname
	Preferences *Preferences        `yaml:"preferences,omitempty"`
}

// Printer is a saved printer entry.
type Printer struct {
	Address     string    `yaml:"address"`                // Hostname or IP address
	Port        int       `yaml:"port,omitempty"`         // Control port, 0 means the preference default
	LastSeen    time.Time `yaml:"last_seen,omitempty"`    // Last successful connection
	Firmware    string    `yaml:"firmware,omitempty"`     // Firmware reported at last connection
	MachineType string    `yaml:"machine_type,omitempty"` // Model reported at last connection
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultPrinter string `yaml:"default_printer,omitempty"` // Nickname used when --printer is not given
	DialTimeout    int    `yaml:"dial_timeout"`              // TCP connect timeout in seconds
	Port           int    `yaml:"port,omitempty"`            // Control port for printers without one
}

// Target is a resolved connection target.
type Target struct {
	Nickname string // Empty when the reference was a raw address
	Address  string // host or host:port
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     registryVersion,
		Printers:    make(map[string]*Printer),
		Preferences: defaultPreferences(),
	}
}

func defaultPreferences() *Preferences {
	return &Preferences{
		DialTimeout: defaultDialTimeout,
	}
}

// GetPrinter retrieves a saved printer by nickname.
// Returns nil if the printer doesn't exist in the registry.
func (r *Registry) GetPrinter(nickname string) *Printer {
	return r.Printers[nickname]
}

// AddPrinter saves or replaces a printer entry. The first printer added
// becomes the default.
func (r *Registry) AddPrinter(nickname, address string, port int) error {
	if err := validateNickname(nickname); err != nil {
		return err
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("printer %q: address is required", nickname)
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("printer %q: invalid port %d", nickname, port)
	}

	if r.Printers == nil {
		r.Printers = make(map[string]*Printer)
	}
	r.Printers[nickname] = &Printer{
		Address: address,
		Port:    port,
	}

	prefs := r.prefs()
	if prefs.DefaultPrinter == "" {
		prefs.DefaultPrinter = nickname
	}
	return nil
}

// RemovePrinter deletes a printer entry. If it was the default, the default
// is cleared. Returns false if the nickname was not found.
func (r *Registry) RemovePrinter(nickname string) bool {
	if _, ok := r.Printers[nickname]; !ok {
		return false
	}
	delete(r.Printers, nickname)

	if prefs := r.prefs(); prefs.DefaultPrinter == nickname {
		prefs.DefaultPrinter = ""
	}
	return true
}

// SetDefault makes nickname the default printer.
func (r *Registry) SetDefault(nickname string) error {
	if _, ok := r.Printers[nickname]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPrinter, nickname)
	}
	r.prefs().DefaultPrinter = nickname
	return nil
}

// UpdatePrinterSeen records a successful connection and what the printer
// reported about itself. Unknown nicknames are ignored.
func (r *Registry) UpdatePrinterSeen(nickname, firmware, machineType string) {
	p := r.Printers[nickname]
	if p == nil {
		return
	}
	p.LastSeen = time.Now()
	if firmware != "" {
		p.Firmware = firmware
	}
	if machineType != "" {
		p.MachineType = machineType
	}
}

// Nicknames returns the saved nicknames in sorted order.
func (r *Registry) Nicknames() []string {
	names := make([]string, 0, len(r.Printers))
	for name := range r.Printers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DialTimeout returns the connect timeout. $PRINTLINK_TIMEOUT overrides
// the saved preference.
func (r *Registry) DialTimeout() time.Duration {
	secs := r.prefs().DialTimeout
	if secs <= 0 {
		secs = defaultDialTimeout
	}
	secs = TimeoutFromEnv(secs)
	return time.Duration(secs) * time.Second
}

// Resolve turns a printer reference into a connection target.
//
// The reference is looked up as a nickname first and otherwise used as a
// raw host[:port]. An empty reference falls back to $PRINTLINK_PRINTER and
// then to the default printer.
func (r *Registry) Resolve(ref string) (*Target, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = getEnv(EnvPrinter, "")
	}
	if ref == "" {
		ref = r.prefs().DefaultPrinter
	}
	if ref == "" {
		return nil, ErrNoPrinter
	}

	if p := r.Printers[ref]; p != nil {
		return &Target{
			Nickname: ref,
			Address:  r.withPort(p.Address, p.Port),
		}, nil
	}

	return &Target{Address: r.withPort(ref, 0)}, nil
}

// withPort adds the entry port, or the preferred port, to hosts that have
// none. With neither set the host is returned unchanged.
func (r *Registry) withPort(host string, port int) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	if port == 0 {
		port = r.prefs().Port
	}
	if port == 0 {
		return host
	}
	return net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(port))
}

func (r *Registry) prefs() *Preferences {
	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	}
	return r.Preferences
}

func validateNickname(nickname string) error {
	if nickname == "" {
		return fmt.Errorf("%w: empty", ErrInvalidNickname)
	}
	if strings.ContainsAny(nickname, " \t\r\n:") {
		return fmt.Errorf("%w: %q", ErrInvalidNickname, nickname)
	}
	return nil
}
