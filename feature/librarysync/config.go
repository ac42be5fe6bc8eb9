package librarysync

import "time"

// Config holds configuration for reconciliation passes.
type Config struct {
	// LockDir holds one lock file per library so passes from separate
	// processes never overlap. Empty disables cross-process locking.
	LockDir string `mapstructure:"lock_dir" default:""`
	// Parallelism bounds how many libraries ReconcileAll scans at once.
	Parallelism int `mapstructure:"parallelism" default:"2"`
	// AllowEmptyScan lets a pass delete every series of a library when the scan finds nothing.
	AllowEmptyScan bool `mapstructure:"allow_empty_scan" default:"false"`
	// ScanInterval is the delay between scheduled passes of the start command.
	ScanInterval time.Duration `mapstructure:"scan_interval" default:"1h"`
}
