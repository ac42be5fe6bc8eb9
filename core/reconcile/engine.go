package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"media-catalog/core/database"
)

// Apply brings the persisted rows of one level in line with truth.
//
// Stale rows are counted first and, when there are any, removed with a single
// set delete. Every scanned entity is then looked up by key and inserted,
// updated or left alone. Entities that fail are recorded in the outcome and
// skipped. A failed delete, an unreachable store or a cancelled context aborts
// the level and is returned as an error; the caller owns the transaction and
// is expected to roll it back.
func Apply[T any](ctx context.Context, level Level[T], truth []T, opts Options) (*Outcome[T], error) {
	name := level.Name()
	out := &Outcome[T]{
		Level:     name,
		Actions:   []Action{},
		Failures:  []EntityFailure{},
		Persisted: make(map[string]T, len(truth)),
	}

	items, keys := uniqueByKey(level, truth)

	stale, err := level.CountNotIn(ctx, keys)
	if err != nil {
		return out, fmt.Errorf("failed to count stale %s: %w", name, err)
	}

	if len(keys) == 0 && stale > 0 && !opts.AllowEmptyTruth {
		return out, fmt.Errorf("%w: refusing to delete %d %s", ErrEmptyTruth, stale, name)
	}

	// Deletion runs before inserts so a path freed by a stale row can be reused
	if stale > 0 {
		deleted := stale
		if !opts.DryRun {
			deleted, err = level.DeleteNotIn(ctx, keys)
			if err != nil {
				return out, fmt.Errorf("failed to delete stale %s: %w", name, err)
			}
		}
		out.Summary.Deleted = int(deleted)
		out.Actions = append(out.Actions, Action{
			Type:   ActionDelete,
			Reason: "missing from scan",
			Count:  int(deleted),
		})
	}

	for i, want := range items {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		key := keys[i]

		existing, err := level.Find(ctx, key)
		if err != nil {
			if isFatal(err) {
				return out, fmt.Errorf("failed to find %s %s: %w", name, key, err)
			}
			out.fail(key, ActionFind, err)
			continue
		}

		if existing == nil {
			out.Actions = append(out.Actions, Action{Type: ActionInsert, Key: key, Reason: "new in scan"})
			if opts.DryRun {
				out.Summary.Inserted++
				continue
			}
			persisted, err := level.Insert(ctx, want)
			if err != nil {
				if isFatal(err) {
					return out, fmt.Errorf("failed to insert %s %s: %w", name, key, err)
				}
				out.dropLastAction()
				out.fail(key, ActionInsert, err)
				continue
			}
			out.Summary.Inserted++
			out.Persisted[key] = persisted
			continue
		}

		mismatch := level.CompareFields(*existing, want)
		if len(mismatch) == 0 {
			out.Summary.Unchanged++
			out.Persisted[key] = *existing
			continue
		}

		out.Actions = append(out.Actions, Action{
			Type:   ActionUpdate,
			Key:    key,
			Reason: "mismatch: " + strings.Join(mismatch, ", "),
		})
		if opts.DryRun {
			out.Summary.Updated++
			out.Persisted[key] = *existing
			continue
		}
		updated, err := level.Update(ctx, *existing, want)
		switch {
		case err == nil:
			out.Summary.Updated++
			out.Persisted[key] = updated
		case errors.Is(err, database.ErrNotFound):
			// Removed concurrently since the lookup; nothing left to sync.
			out.dropLastAction()
			out.Summary.Skipped++
		case isFatal(err):
			return out, fmt.Errorf("failed to update %s %s: %w", name, key, err)
		default:
			out.dropLastAction()
			out.fail(key, ActionUpdate, err)
		}
	}

	return out, nil
}

// uniqueByKey returns the scanned items and their keys in scan order,
// keeping the first occurrence of a duplicated key.
func uniqueByKey[T any](level Level[T], truth []T) ([]T, []string) {
	seen := make(map[string]struct{}, len(truth))
	items := make([]T, 0, len(truth))
	keys := make([]string, 0, len(truth))
	for _, item := range truth {
		key := level.Key(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		items = append(items, item)
		keys = append(keys, key)
	}
	return items, keys
}

// isFatal reports errors that make the rest of the pass pointless.
func isFatal(err error) bool {
	return errors.Is(err, database.ErrStoreUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (o *Outcome[T]) fail(key string, op ActionType, err error) {
	o.Summary.Failed++
	o.Failures = append(o.Failures, EntityFailure{Level: o.Level, Key: key, Op: op, Err: err})
}

func (o *Outcome[T]) dropLastAction() {
	o.Actions = o.Actions[:len(o.Actions)-1]
}
