// Package config provides user configuration management for printlink.
//
// The configuration is a YAML registry of saved printers, keyed by a
// user-chosen nickname, plus application preferences such as the default
// printer and the dial timeout. Environment variables, optionally loaded from
// a .env file in the working directory, override the saved preferences.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/printlink/config.yaml or $HOME/.config/printlink/config.yaml
//   - macOS: $HOME/.config/printlink/config.yaml
//   - Windows: %LOCALAPPDATA%\printlink\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := registry.AddPrinter("workshop", "192.168.1.50", 0); err != nil {
//	    log.Fatal(err)
//	}
//
//	target, err := registry.Resolve("workshop")
//	// target.Address == "192.168.1.50"
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment
//
//   - PRINTLINK_PRINTER: printer nickname or address used when none is given
//   - PRINTLINK_TIMEOUT: dial timeout in seconds
//   - PRINTLINK_LOG_LEVEL: see package logging
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
