// Package logging provides the structured logging used across the chatcheck
// harness, built on Go's standard slog package.
//
// Every log entry carries a subsystem identifier so that output from the
// token provider, the request gateway and the individual probes can be told
// apart when a suite run is triaged:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("TokenProvider", "acquired token for %s", clientID)
//	logging.Error("Gateway", err, "request to %s failed", path)
//
// Levels below the configured filter level are suppressed. Initialization is
// optional; an uninitialized package logs to stderr at Info level.
package logging
