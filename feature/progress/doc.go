// Package progress tracks per-user reading progress on catalog books.
//
// A user has at most one progress record per book. Save writes it with a single
// INSERT ... ON CONFLICT statement keyed on (book_id, user_id), so concurrent
// saves for the same pair converge on one row and the last writer wins.
//
//	tracker := progress.NewTracker(db, progress.WithLogger(log))
//	p, err := tracker.Save(ctx, models.ReadProgress{BookID: 12, UserID: 3, Page: 40})
//
// Progress is removed together with its book by the catalog store; the Delete
// helpers here serve explicit clears.
package progress
