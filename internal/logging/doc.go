// Package logging provides structured logging for printlink.
//
// This package wraps a zap logger with convenience functions for the
// patterns used by the printer session and protocol engine.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Wire detail (command lines, response lines, frame headers, hex dumps)
//   - Info: Session lifecycle (connect, warm-up, transfer start/end, close)
//   - Warn: Recoverable oddities (repeated response markers, close errors)
//   - Error: Failed exchanges
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Info("Transfer started",
//	    zap.String("remote_addr", "192.168.1.50:8899"),
//	    zap.String("name", "benchy.gx"),
//	    zap.Int("bytes", 1048576),
//	)
//
// # Specialized Logging
//
// Connection Logging:
//
//	logging.LogConnection(remoteAddr, "connected")
//	logging.LogConnection(remoteAddr, "closed")
//
// Command Logging:
//
//	logging.LogCommand(remoteAddr, "sent", "M119", line)
//
// Frame Logging (debug level only):
//
//	logging.LogFrame(seq, length, crc)
//
// # Configuration
//
// CLI commands are silent by default so styled output stays clean. Set
// PRINTLINK_LOG_LEVEL (or pass --log-level) to enable logging:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
