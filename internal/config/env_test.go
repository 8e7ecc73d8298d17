package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "PRINTLINK_PRINTER=workshop\nPRINTLINK_TIMEOUT=9\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	// Registered with t.Setenv so the values are restored afterwards, then
	// unset so the file can supply them.
	t.Setenv(EnvPrinter, "")
	t.Setenv(EnvTimeout, "")
	os.Unsetenv(EnvPrinter)
	os.Unsetenv(EnvTimeout)

	if err := LoadEnv(envFile); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if got := os.Getenv(EnvPrinter); got != "workshop" {
		t.Errorf("%s = %q, want workshop", EnvPrinter, got)
	}
	if got := TimeoutFromEnv(5); got != 9 {
		t.Errorf("TimeoutFromEnv() = %d, want 9", got)
	}
}

func TestLoadEnv_DoesNotOverride(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("PRINTLINK_PRINTER=fromfile\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPrinter, "fromenv")

	if err := LoadEnv(envFile); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv(EnvPrinter); got != "fromenv" {
		t.Errorf("%s = %q, want fromenv", EnvPrinter, got)
	}
}

func TestLoadEnv_MissingFile(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("LoadEnv() with missing file error = %v, want nil", err)
	}
}

func TestTimeoutFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"", 5},
		{"12", 12},
		{"0", 5},
		{"-3", 5},
		{"abc", 5},
	}

	for _, tt := range tests {
		t.Setenv(EnvTimeout, tt.value)
		if got := TimeoutFromEnv(5); got != tt.want {
			t.Errorf("TimeoutFromEnv() with %q = %d, want %d", tt.value, got, tt.want)
		}
	}
}
