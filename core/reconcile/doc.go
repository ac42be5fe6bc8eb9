// Package reconcile provides the generic set-difference engine that keeps a
// persisted catalog level in sync with a freshly scanned set of entities.
//
// # Algorithm
//
// For one level (all series of a library, or all books of a series) Apply:
//
//  1. counts persisted rows whose key is not in the scanned set,
//  2. deletes them with one set statement when the count is non-zero,
//  3. looks every scanned key up and inserts, updates or leaves the row alone.
//
// Unchanged rows are never written, so identities and creation dates survive
// and a second pass over the same scan performs no writes at all.
//
// # Failure Semantics
//
// A failure on a single entity (lookup, insert or update) is recorded as an
// EntityFailure and the level continues. A failed delete, an unavailable
// store or a cancelled context aborts the level; the caller rolls back the
// surrounding unit of work. Rows that disappear between lookup and update
// are counted as skipped.
//
// An empty scan against a non-empty scope is refused with ErrEmptyTruth unless
// Options.AllowEmptyTruth is set.
//
// # Levels
//
// Entity specific behaviour lives behind the Level interface. See
// feature/librarysync for the series and book levels.
//
//	outcome, err := reconcile.Apply(ctx, seriesLevel, scanned, reconcile.Options{})
//	if err != nil {
//	    return err // roll back
//	}
//	for key, series := range outcome.Persisted {
//	    ...
//	}
package reconcile
