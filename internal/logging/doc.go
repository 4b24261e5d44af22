// Package logging provides structured logging for the PLM driver.
//
// This package wraps a zap logger with convenience functions for the
// logging patterns used throughout the driver: device status transitions
// and raw frame traces.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: frame/response hex traces for every serial exchange
//   - Info: normal operations (device recoveries, bridge events)
//   - Warn: devices entering error state, no-ops on unconfigured addresses
//   - Error: fatal issues (serial port open failures, broker failures)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is given, the PLMCTL_LOG_LEVEL environment variable is
// consulted; if that is also unset, logging is silent. This keeps CLI
// command output clean unless tracing is asked for.
//
// # Frame Tracing
//
// LogExchange records one full command/response pair as hex:
//
//	logging.LogExchange("std command", frame, echo, ack, nil)
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
