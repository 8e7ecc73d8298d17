package protocol

import "testing"

func TestCommandCodes(t *testing.T) {
	tests := []struct {
		cmd  Command
		code string
	}{
		{QueryEndstop, "M119"},
		{QueryTemperature, "M105"},
		{BeginStore, "M28"},
		{EndStore, "M29"},
		{PrintFromStorage, "M23"},
		{QueryFirmwareVersion, "M115"},
	}

	for _, tt := range tests {
		if got := tt.cmd.Code(); got != tt.code {
			t.Errorf("%s.Code() = %q, want %q", tt.cmd, got, tt.code)
		}
		cmd, ok := CommandForCode(tt.code)
		if !ok || cmd != tt.cmd {
			t.Errorf("CommandForCode(%q) = %v, %v; want %v", tt.code, cmd, ok, tt.cmd)
		}
	}

	if _, ok := CommandForCode("M999"); ok {
		t.Error("CommandForCode(M999) should not resolve")
	}
	if got := Command(42).String(); got != "Command(42)" {
		t.Errorf("String() = %q, want Command(42)", got)
	}
}

func TestBuildCommands(t *testing.T) {
	tests := []struct {
		name string
		got  []byte
		want string
	}{
		{"status", BuildCommand(QueryEndstop), "~M119\r\n"},
		{"temperature", BuildCommand(QueryTemperature), "~M105\r\n"},
		{"begin store", BuildBeginStore(12345, "cube.gx"), "~M28 12345 0:/user/cube.gx\r\n"},
		{"end store", BuildEndStore(), "~M29\r\n"},
		{"print", BuildPrintFromStorage("cube.gx"), "~M23 0:/user/cube.gx\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.got) != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestHasPayload(t *testing.T) {
	for _, cmd := range []Command{QueryEndstop, QueryTemperature, QueryFirmwareVersion} {
		if !HasPayload(cmd) {
			t.Errorf("HasPayload(%s) = false, want true", cmd)
		}
	}
	for _, cmd := range []Command{BeginStore, EndStore, PrintFromStorage} {
		if HasPayload(cmd) {
			t.Errorf("HasPayload(%s) = true, want false", cmd)
		}
	}
}
