// Package catalog persists libraries, series, books and read progress.
//
// Repositories are obtained from a Store, either directly or bound to a
// UnitOfWork so a whole reconciliation pass commits or rolls back together:
//
//	err := store.WithinTransaction(ctx, func(uow *catalog.UnitOfWork) error {
//	    s, err := uow.Series().Insert(ctx, series)
//	    ...
//	})
//
// Every single-entity write runs in a nested transaction. Inside a unit of
// work that becomes a savepoint, so a rejected insert leaves the rest of the
// pass intact.
//
// Errors are classified with the core/database sentinels: a unique URL or root
// collision is database.ErrDuplicateKey, updating or deleting a missing row is
// database.ErrNotFound and losing the connection is database.ErrStoreUnavailable.
//
// Deletes cascade explicitly: removing a library, series or book also removes
// everything below it, including the read progress recorded on its books.
//
// Timestamps are stored in UTC at microsecond precision.
package catalog
