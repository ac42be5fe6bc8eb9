package librarysync

import (
	"context"
	"fmt"

	"media-catalog/core/database"
	"media-catalog/core/identity"
	"media-catalog/core/reconcile"
	"media-catalog/feature/catalog"
	"media-catalog/feature/catalog/models"
)

// seriesLevel reconciles the series of one library.
type seriesLevel struct {
	repo    *catalog.SeriesRepository
	library models.Library
}

var _ reconcile.Level[models.Series] = (*seriesLevel)(nil)

func (l *seriesLevel) Name() string { return "series" }

func (l *seriesLevel) Key(s models.Series) string { return string(s.URL) }

func (l *seriesLevel) CountNotIn(ctx context.Context, keys []string) (int64, error) {
	return l.repo.CountNotIn(ctx, l.library.ID, toKeys(keys))
}

func (l *seriesLevel) DeleteNotIn(ctx context.Context, keys []string) (int64, error) {
	return l.repo.DeleteAllNotIn(ctx, l.library.ID, toKeys(keys))
}

// Find treats a series owned by another library as a conflict rather than a match.
func (l *seriesLevel) Find(ctx context.Context, key string) (*models.Series, error) {
	s, err := l.repo.FindByURL(ctx, identity.Key(key))
	if err != nil || s == nil {
		return s, err
	}
	if s.LibraryID != l.library.ID {
		return nil, fmt.Errorf("%w: series %s belongs to library %d", database.ErrDuplicateKey, key, s.LibraryID)
	}
	return s, nil
}

func (l *seriesLevel) Insert(ctx context.Context, want models.Series) (models.Series, error) {
	return l.repo.Insert(ctx, want)
}

func (l *seriesLevel) Update(ctx context.Context, existing, want models.Series) (models.Series, error) {
	existing.Name = want.Name
	existing.FileLastModified = want.FileLastModified
	return l.repo.Update(ctx, existing)
}

func (l *seriesLevel) CompareFields(existing, want models.Series) []string {
	var diffs []string
	if existing.Name != want.Name {
		diffs = append(diffs, fmt.Sprintf("name: db=%s scan=%s", existing.Name, want.Name))
	}
	if !existing.FileLastModified.Equal(want.FileLastModified) {
		diffs = append(diffs, fmt.Sprintf("file_last_modified: db=%s scan=%s",
			existing.FileLastModified.Format(timeLayout), want.FileLastModified.Format(timeLayout)))
	}
	return diffs
}

// bookLevel reconciles the books of one series.
type bookLevel struct {
	repo   *catalog.BookRepository
	series models.Series
}

var _ reconcile.Level[models.Book] = (*bookLevel)(nil)

func (l *bookLevel) Name() string { return "book" }

func (l *bookLevel) Key(b models.Book) string { return string(b.URL) }

func (l *bookLevel) CountNotIn(ctx context.Context, keys []string) (int64, error) {
	return l.repo.CountNotIn(ctx, l.series.ID, toKeys(keys))
}

func (l *bookLevel) DeleteNotIn(ctx context.Context, keys []string) (int64, error) {
	return l.repo.DeleteAllNotIn(ctx, l.series.ID, toKeys(keys))
}

func (l *bookLevel) Find(ctx context.Context, key string) (*models.Book, error) {
	b, err := l.repo.FindByURL(ctx, identity.Key(key))
	if err != nil || b == nil {
		return b, err
	}
	if b.SeriesID != l.series.ID {
		return nil, fmt.Errorf("%w: book %s belongs to series %d", database.ErrDuplicateKey, key, b.SeriesID)
	}
	return b, nil
}

func (l *bookLevel) Insert(ctx context.Context, want models.Book) (models.Book, error) {
	return l.repo.Insert(ctx, want)
}

func (l *bookLevel) Update(ctx context.Context, existing, want models.Book) (models.Book, error) {
	existing.Title = want.Title
	existing.FileLastModified = want.FileLastModified
	existing.FileSize = want.FileSize
	existing.MediaType = want.MediaType
	existing.LibraryID = want.LibraryID
	return l.repo.Update(ctx, existing)
}

func (l *bookLevel) CompareFields(existing, want models.Book) []string {
	var diffs []string
	if existing.Title != want.Title {
		diffs = append(diffs, fmt.Sprintf("title: db=%s scan=%s", existing.Title, want.Title))
	}
	if !existing.FileLastModified.Equal(want.FileLastModified) {
		diffs = append(diffs, fmt.Sprintf("file_last_modified: db=%s scan=%s",
			existing.FileLastModified.Format(timeLayout), want.FileLastModified.Format(timeLayout)))
	}
	if existing.FileSize != want.FileSize {
		diffs = append(diffs, fmt.Sprintf("file_size: db=%d scan=%d", existing.FileSize, want.FileSize))
	}
	if existing.MediaType != want.MediaType {
		diffs = append(diffs, fmt.Sprintf("media_type: db=%s scan=%s", existing.MediaType, want.MediaType))
	}
	if existing.LibraryID != want.LibraryID {
		diffs = append(diffs, fmt.Sprintf("library_id: db=%d scan=%d", existing.LibraryID, want.LibraryID))
	}
	return diffs
}

const timeLayout = "2006-01-02T15:04:05.999999Z07:00"

func toKeys(raw []string) []identity.Key {
	keys := make([]identity.Key, len(raw))
	for i, k := range raw {
		keys[i] = identity.Key(k)
	}
	return keys
}
