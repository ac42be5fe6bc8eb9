package catalog

import (
	"context"
	"errors"
	"fmt"

	"media-catalog/core/database"
	"media-catalog/core/identity"
	"media-catalog/feature/catalog/models"

	"gorm.io/gorm"
)

// SeriesRepository persists series. Set queries are scoped to one library.
type SeriesRepository struct {
	repo
}

// FindByURL returns the series stored under url, or nil when there is none.
// URLs are unique across libraries.
func (r *SeriesRepository) FindByURL(ctx context.Context, url identity.Key) (*models.Series, error) {
	var s models.Series
	err := r.db.WithContext(ctx).Take(&s, "url = ?", url).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Translate(fmt.Errorf("failed to find series %s: %w", url, err))
	}
	return &s, nil
}

// FindByID returns the series or database.ErrNotFound.
func (r *SeriesRepository) FindByID(ctx context.Context, id uint) (*models.Series, error) {
	var s models.Series
	if err := r.db.WithContext(ctx).Take(&s, "id = ?", id).Error; err != nil {
		return nil, database.Translate(fmt.Errorf("failed to find series %d: %w", id, err))
	}
	return &s, nil
}

// ListByLibrary returns the series of a library ordered by name.
func (r *SeriesRepository) ListByLibrary(ctx context.Context, libraryID uint) ([]models.Series, error) {
	var series []models.Series
	err := r.db.WithContext(ctx).Where("library_id = ?", libraryID).Order("name, id").Find(&series).Error
	if err != nil {
		return nil, database.Translate(fmt.Errorf("failed to list series of library %d: %w", libraryID, err))
	}
	return series, nil
}

// CountNotIn counts the series of a library whose URL is not in urls.
// An empty urls counts every series of the library.
func (r *SeriesRepository) CountNotIn(ctx context.Context, libraryID uint, urls []identity.Key) (int64, error) {
	db := r.db.WithContext(ctx)
	var n int64
	var err error
	if len(urls) > inlineKeyLimit {
		var ids []uint
		ids, err = staleIDs(db.Model(&models.Series{}).Where("library_id = ?", libraryID), urls)
		n = int64(len(ids))
	} else {
		err = r.scopeNotIn(db.Model(&models.Series{}), libraryID, urls).Count(&n).Error
	}
	if err != nil {
		return 0, database.Translate(fmt.Errorf("failed to count stale series of library %d: %w", libraryID, err))
	}
	return n, nil
}

// CountBooksNotIn counts the books held by the series that DeleteAllNotIn
// would remove for the same arguments.
func (r *SeriesRepository) CountBooksNotIn(ctx context.Context, libraryID uint, urls []identity.Key) (int64, error) {
	db := r.db.WithContext(ctx)
	var n int64
	var err error
	if len(urls) > inlineKeyLimit {
		var ids []uint
		if ids, err = staleIDs(db.Model(&models.Series{}).Where("library_id = ?", libraryID), urls); err == nil {
			n, err = countBooksIn(db, ids)
		}
	} else {
		stale := r.scopeNotIn(db.Model(&models.Series{}).Select("id"), libraryID, urls)
		err = db.Model(&models.Book{}).Where("series_id IN (?)", stale).Count(&n).Error
	}
	if err != nil {
		return 0, database.Translate(fmt.Errorf("failed to count books of stale series of library %d: %w", libraryID, err))
	}
	return n, nil
}

// DeleteAllNotIn removes the series of a library whose URL is not in urls,
// together with their books and the read progress of those books.
// An empty urls removes every series of the library.
func (r *SeriesRepository) DeleteAllNotIn(ctx context.Context, libraryID uint, urls []identity.Key) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(urls) > inlineKeyLimit {
			ids, err := staleIDs(tx.Model(&models.Series{}).Where("library_id = ?", libraryID), urls)
			if err != nil {
				return err
			}
			for _, chunk := range chunkIDs(ids, idChunkSize) {
				n, err := r.deleteCascade(tx, chunk)
				if err != nil {
					return err
				}
				deleted += n
			}
			return nil
		}

		stale := r.scopeNotIn(tx.Model(&models.Series{}).Select("id"), libraryID, urls)
		books := tx.Model(&models.Book{}).Select("id").Where("series_id IN (?)", stale)

		if err := tx.Where("book_id IN (?)", books).Delete(&models.ReadProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("series_id IN (?)", stale).Delete(&models.Book{}).Error; err != nil {
			return err
		}

		result := r.scopeNotIn(tx, libraryID, urls).Delete(&models.Series{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, database.Translate(fmt.Errorf("failed to delete stale series of library %d: %w", libraryID, err))
	}
	return deleted, nil
}

// countBooksIn counts the books of the given series.
func countBooksIn(db *gorm.DB, seriesIDs []uint) (int64, error) {
	var total int64
	for _, chunk := range chunkIDs(seriesIDs, idChunkSize) {
		var n int64
		if err := db.Model(&models.Book{}).Where("series_id IN ?", chunk).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// deleteCascade removes the series with the given IDs, their books and the
// read progress of those books.
func (r *SeriesRepository) deleteCascade(tx *gorm.DB, ids []uint) (int64, error) {
	books := tx.Model(&models.Book{}).Select("id").Where("series_id IN ?", ids)
	if err := tx.Where("book_id IN (?)", books).Delete(&models.ReadProgress{}).Error; err != nil {
		return 0, err
	}
	if err := tx.Where("series_id IN ?", ids).Delete(&models.Book{}).Error; err != nil {
		return 0, err
	}
	result := tx.Where("id IN ?", ids).Delete(&models.Series{})
	return result.RowsAffected, result.Error
}

// Insert persists a new series. It fails with database.ErrDuplicateKey when the URL exists.
func (r *SeriesRepository) Insert(ctx context.Context, s models.Series) (models.Series, error) {
	now := r.timestamp()
	s.ID = 0
	s.CreatedDate = now
	s.LastModifiedDate = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&s).Error
	})
	if err != nil {
		return models.Series{}, database.Translate(fmt.Errorf("failed to insert series %s: %w", s.URL, err))
	}
	return s, nil
}

// Update rewrites the series with the given ID and returns the stored row.
// CreatedDate is never changed and LastModifiedDate never moves backwards.
// It fails with database.ErrNotFound when the row is gone.
func (r *SeriesRepository) Update(ctx context.Context, s models.Series) (models.Series, error) {
	var stored models.Series
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Series{}).Where("id = ?", s.ID).Updates(map[string]any{
			"name":               s.Name,
			"url":                s.URL,
			"library_id":         s.LibraryID,
			"file_last_modified": s.FileLastModified,
			"last_modified_date": database.Latest(tx, "last_modified_date", r.timestamp()),
		})
		if result.Error != nil {
			return result.Error
		}
		return tx.Take(&stored, "id = ?", s.ID).Error
	})
	if err != nil {
		return models.Series{}, database.Translate(fmt.Errorf("failed to update series %d: %w", s.ID, err))
	}
	return stored, nil
}

func (r *SeriesRepository) scopeNotIn(q *gorm.DB, libraryID uint, urls []identity.Key) *gorm.DB {
	q = q.Where("library_id = ?", libraryID)
	if len(urls) > 0 {
		q = q.Where("url NOT IN ?", urls)
	}
	return q
}
