// Package database handles database connections, error classification and
// schema inspection for the catalog.
//
// It provides a wrapper around GORM to configure SQLite (embedded, the default)
// or MySQL connections from the application's configuration.
//
// # Connect
//
// Connect opens the configured driver with error translation enabled, applies
// pool settings and verifies the connection with a bounded ping. SQLite databases
// are opened with foreign keys, WAL and immediate write transactions.
//
// # Errors
//
// Translate maps gorm and driver errors onto three sentinels that the rest of the
// catalog reasons about: ErrDuplicateKey, ErrNotFound and ErrStoreUnavailable.
// Callers classify with errors.Is; the driver error stays in the chain.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read the live table definitions so the catalog
// can verify its schema before a reconciliation pass.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "series", []string{"url", "name"})
package database
