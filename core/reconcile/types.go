package reconcile

import (
	"errors"
	"fmt"
)

// ErrEmptyTruth reports a scan that found nothing while the catalog still
// holds rows in scope. Deleting everything on a transient scan failure is
// refused unless Options.AllowEmptyTruth is set.
var ErrEmptyTruth = errors.New("scan returned no entries")

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionInsert creates a row for a scanned entity that is not persisted.
	ActionInsert ActionType = "insert"
	// ActionUpdate rewrites a persisted row whose attributes drifted.
	ActionUpdate ActionType = "update"
	// ActionDelete removes persisted rows that are no longer scanned.
	ActionDelete ActionType = "delete"
	// ActionFind is the lookup that precedes insert or update.
	ActionFind ActionType = "find"
)

// Action represents a performed or, in dry-run mode, planned mutation.
type Action struct {
	// Type specifies the action.
	Type ActionType `json:"type"`

	// Key is the identity key of the entity. Empty for bulk deletes.
	Key string `json:"key,omitempty"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`

	// Count is the number of rows affected by a bulk delete.
	Count int `json:"count,omitempty"`
}

// Summary provides aggregate counts for one level of a pass.
type Summary struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`

	// Skipped counts rows that vanished between lookup and update.
	Skipped int `json:"skipped"`

	// Failed counts entities whose lookup, insert or update failed.
	Failed int `json:"failed"`
}

// Add accumulates other into s.
func (s *Summary) Add(other Summary) {
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.Deleted += other.Deleted
	s.Unchanged += other.Unchanged
	s.Skipped += other.Skipped
	s.Failed += other.Failed
}

// Changes is the number of rows the level wrote (or would write).
func (s Summary) Changes() int {
	return s.Inserted + s.Updated + s.Deleted
}

// EntityFailure records a single entity that could not be reconciled.
// The pass continues past it.
type EntityFailure struct {
	Level string     `json:"level"`
	Key   string     `json:"key"`
	Op    ActionType `json:"op"`
	Err   error      `json:"-"`
}

func (f EntityFailure) Error() string {
	return fmt.Sprintf("%s %s %s: %v", f.Op, f.Level, f.Key, f.Err)
}

func (f EntityFailure) Unwrap() error {
	return f.Err
}

// Options controls a reconcile level.
type Options struct {
	// DryRun plans actions without writing anything.
	DryRun bool

	// AllowEmptyTruth permits deleting every row in scope when the scan is empty.
	AllowEmptyTruth bool
}

// Outcome is the result of reconciling one level.
type Outcome[T any] struct {
	// Level names the reconciled entity type.
	Level string `json:"level"`

	// Summary provides aggregate counts.
	Summary Summary `json:"summary"`

	// Actions lists performed (or planned) mutations.
	Actions []Action `json:"actions"`

	// Failures lists entities that were skipped because of an error.
	Failures []EntityFailure `json:"failures"`

	// Persisted maps every scanned key that has a persisted row after the
	// level ran to that row. Child levels are scoped by these rows.
	Persisted map[string]T `json:"-"`
}
