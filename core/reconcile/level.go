package reconcile

import "context"

// Level defines how one entity type is diffed and written.
// Each implementation is scoped to a parent (series to a library, books to a
// series) so set queries only ever see that parent's rows.
type Level[T any] interface {
	// Name returns the entity type name (e.g., "series", "book").
	Name() string

	// Key returns the identity key of an entity.
	Key(item T) string

	// CountNotIn counts persisted rows in scope whose key is absent from keys.
	CountNotIn(ctx context.Context, keys []string) (int64, error)

	// DeleteNotIn removes persisted rows in scope whose key is absent from keys,
	// cascading to owned children. It returns the number of rows removed.
	DeleteNotIn(ctx context.Context, keys []string) (int64, error)

	// Find looks up the persisted row for key. It returns nil, nil when absent.
	Find(ctx context.Context, key string) (*T, error)

	// Insert persists a scanned entity and returns the stored form.
	Insert(ctx context.Context, want T) (T, error)

	// Update rewrites existing with the attributes of want and returns the stored form.
	Update(ctx context.Context, existing, want T) (T, error)

	// CompareFields describes every attribute where existing differs from want,
	// e.g. "name: db=Old scan=New". An empty result means the row is up to date.
	CompareFields(existing, want T) []string
}
