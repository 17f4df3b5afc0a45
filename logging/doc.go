// Package logging provides a minimal logging interface and adapters.
//
// The Logger interface defines the standard leveled methods (Debug, Info,
// Warn, Error) with slog-style key/value arguments. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", os.Stderr)
//	a := agent.New(m, reg, func(o *agent.Options) { o.Logger = logger })
package logging
