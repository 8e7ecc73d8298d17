package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME is only honoured on Linux")
	}

	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if want := filepath.Join(base, "printlink"); configDir != want {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Printers == nil {
		t.Error("NewRegistry().Printers should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.DialTimeout != 5 {
		t.Errorf("DialTimeout = %v, want 5", reg.Preferences.DialTimeout)
	}
}

func TestRegistryAddPrinter(t *testing.T) {
	reg := NewRegistry()

	if err := reg.AddPrinter("workshop", "192.168.1.50", 0); err != nil {
		t.Fatalf("AddPrinter() error = %v", err)
	}
	if err := reg.AddPrinter("office", "printer.lan", 8899); err != nil {
		t.Fatalf("AddPrinter() error = %v", err)
	}

	if p := reg.GetPrinter("workshop"); p == nil || p.Address != "192.168.1.50" {
		t.Errorf("GetPrinter(workshop) = %+v", p)
	}

	// First printer added becomes the default
	if got := reg.Preferences.DefaultPrinter; got != "workshop" {
		t.Errorf("DefaultPrinter = %q, want workshop", got)
	}

	if got := reg.Nicknames(); strings.Join(got, ",") != "office,workshop" {
		t.Errorf("Nicknames() = %v", got)
	}
}

func TestRegistryAddPrinter_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		nickname string
		address  string
		port     int
	}{
		{"empty nickname", "", "10.0.0.2", 0},
		{"nickname with space", "my printer", "10.0.0.2", 0},
		{"nickname with colon", "a:b", "10.0.0.2", 0},
		{"empty address", "p", " ", 0},
		{"bad port", "p", "10.0.0.2", 70000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			if err := reg.AddPrinter(tt.nickname, tt.address, tt.port); err == nil {
				t.Error("AddPrinter() expected error")
			}
			if len(reg.Printers) != 0 {
				t.Error("invalid printer should not be saved")
			}
		})
	}
}

func TestRegistryRemovePrinter(t *testing.T) {
	reg := NewRegistry()
	_ = reg.AddPrinter("workshop", "192.168.1.50", 0)

	if !reg.RemovePrinter("workshop") {
		t.Error("RemovePrinter() = false, want true")
	}
	if reg.RemovePrinter("workshop") {
		t.Error("second RemovePrinter() = true, want false")
	}
	if reg.Preferences.DefaultPrinter != "" {
		t.Errorf("DefaultPrinter = %q, want cleared", reg.Preferences.DefaultPrinter)
	}
}

func TestRegistrySetDefault(t *testing.T) {
	reg := NewRegistry()
	_ = reg.AddPrinter("workshop", "192.168.1.50", 0)
	_ = reg.AddPrinter("office", "192.168.1.51", 0)

	if err := reg.SetDefault("office"); err != nil {
		t.Fatalf("SetDefault() error = %v", err)
	}
	if reg.Preferences.DefaultPrinter != "office" {
		t.Errorf("DefaultPrinter = %q, want office", reg.Preferences.DefaultPrinter)
	}

	if err := reg.SetDefault("garage"); !errors.Is(err, ErrUnknownPrinter) {
		t.Errorf("SetDefault(garage) error = %v, want ErrUnknownPrinter", err)
	}
}

func TestRegistryUpdatePrinterSeen(t *testing.T) {
	reg := NewRegistry()
	_ = reg.AddPrinter("workshop", "192.168.1.50", 0)

	before := time.Now()
	reg.UpdatePrinterSeen("workshop", "v2.4.5", "")
	reg.UpdatePrinterSeen("missing", "v1", "x")

	p := reg.GetPrinter("workshop")
	if p.Firmware != "v2.4.5" {
		t.Errorf("Firmware = %q, want v2.4.5", p.Firmware)
	}
	if p.LastSeen.Before(before) {
		t.Errorf("LastSeen = %v, should be after %v", p.LastSeen, before)
	}
	if reg.GetPrinter("missing") != nil {
		t.Error("UpdatePrinterSeen() should not create entries")
	}
}

func TestRegistryResolve(t *testing.T) {
	t.Setenv(EnvPrinter, "")

	reg := NewRegistry()
	_ = reg.AddPrinter("workshop", "192.168.1.50", 0)
	_ = reg.AddPrinter("office", "192.168.1.51", 9000)

	tests := []struct {
		name         string
		ref          string
		wantNickname string
		wantAddress  string
	}{
		{"default printer", "", "workshop", "192.168.1.50"},
		{"nickname", "office", "office", "192.168.1.51:9000"},
		{"raw address", "10.0.0.7", "", "10.0.0.7"},
		{"raw address with port", "10.0.0.7:8899", "", "10.0.0.7:8899"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := reg.Resolve(tt.ref)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.ref, err)
			}
			if target.Nickname != tt.wantNickname {
				t.Errorf("Nickname = %q, want %q", target.Nickname, tt.wantNickname)
			}
			if target.Address != tt.wantAddress {
				t.Errorf("Address = %q, want %q", target.Address, tt.wantAddress)
			}
		})
	}
}

func TestRegistryResolve_PreferredPort(t *testing.T) {
	t.Setenv(EnvPrinter, "")

	reg := NewRegistry()
	reg.Preferences.Port = 9100

	target, err := reg.Resolve("10.0.0.7")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if target.Address != "10.0.0.7:9100" {
		t.Errorf("Address = %q, want 10.0.0.7:9100", target.Address)
	}
}

func TestRegistryResolve_Env(t *testing.T) {
	t.Setenv(EnvPrinter, "office")

	reg := NewRegistry()
	_ = reg.AddPrinter("workshop", "192.168.1.50", 0)
	_ = reg.AddPrinter("office", "192.168.1.51", 0)

	target, err := reg.Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if target.Nickname != "office" {
		t.Errorf("Nickname = %q, want office", target.Nickname)
	}
}

func TestRegistryResolve_NoPrinter(t *testing.T) {
	t.Setenv(EnvPrinter, "")

	if _, err := NewRegistry().Resolve(""); !errors.Is(err, ErrNoPrinter) {
		t.Errorf("Resolve() error = %v, want ErrNoPrinter", err)
	}
}

func TestRegistryDialTimeout(t *testing.T) {
	t.Setenv(EnvTimeout, "")

	reg := NewRegistry()
	if got := reg.DialTimeout(); got != 5*time.Second {
		t.Errorf("DialTimeout() = %v, want 5s", got)
	}

	reg.Preferences.DialTimeout = 12
	if got := reg.DialTimeout(); got != 12*time.Second {
		t.Errorf("DialTimeout() = %v, want 12s", got)
	}

	t.Setenv(EnvTimeout, "3")
	if got := reg.DialTimeout(); got != 3*time.Second {
		t.Errorf("DialTimeout() with env = %v, want 3s", got)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	_ = reg.AddPrinter("workshop", "192.168.1.50", 8899)
	reg.UpdatePrinterSeen("workshop", "v2.4.5", "Adventurer 3")

	if err := reg.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# printlink configuration file") {
		t.Error("saved config should start with the header comment")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be renamed away")
	}

	loaded, err := LoadRegistryFile(path)
	if err != nil {
		t.Fatalf("LoadRegistryFile() error = %v", err)
	}

	p := loaded.GetPrinter("workshop")
	if p == nil {
		t.Fatal("printer should exist in loaded registry")
	}
	if p.Address != "192.168.1.50" || p.Port != 8899 {
		t.Errorf("loaded printer = %+v", p)
	}
	if p.MachineType != "Adventurer 3" {
		t.Errorf("MachineType = %q, want Adventurer 3", p.MachineType)
	}
	if loaded.Preferences.DefaultPrinter != "workshop" {
		t.Errorf("DefaultPrinter = %q, want workshop", loaded.Preferences.DefaultPrinter)
	}
}

func TestLoadRegistryFile_Missing(t *testing.T) {
	reg, err := LoadRegistryFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistryFile() error = %v", err)
	}
	if len(reg.Printers) != 0 {
		t.Error("missing file should give an empty registry")
	}
}

func TestLoadRegistryFile_BadVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 7\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRegistryFile(path); err == nil {
		t.Error("LoadRegistryFile() expected version error")
	}
}

func TestLoadRegistryFile_FillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistryFile(path)
	if err != nil {
		t.Fatalf("LoadRegistryFile() error = %v", err)
	}
	if reg.Printers == nil || reg.Preferences == nil {
		t.Error("missing sections should be initialized")
	}
}

func BenchmarkResolve(b *testing.B) {
	reg := NewRegistry()
	_ = reg.AddPrinter("workshop", "192.168.1.50", 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reg.Resolve("workshop")
	}
}

func TestLoadRegistry_SharedInstance(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	const callers = 8
	results := make([]*Registry, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = LoadRegistry()
		}()
	}
	wg.Wait()

	for i := range callers {
		if errs[i] != nil {
			t.Fatalf("LoadRegistry() error = %v", errs[i])
		}
		if results[i] != results[0] {
			t.Errorf("caller %d got a different registry instance", i)
		}
	}
}
