// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and both console and JSON encodings.
//
// # Pass Correlation
//
// Every reconciliation pass gets a pass ID. WithPass attaches it, together with
// the library ID, so all entries emitted by one pass can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json or console. When unset, console is used if stderr is a terminal.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Catalog opened")
//
//	l := logger.WithPass(log, passID, library.ID)
//	l.Warn("Entity skipped", zap.Error(err))
package logger
