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

// BookRepository persists books. Set queries are scoped to one series.
type BookRepository struct {
	repo
}

// FindByURL returns the book stored under url, or nil when there is none.
func (r *BookRepository) FindByURL(ctx context.Context, url identity.Key) (*models.Book, error) {
	var b models.Book
	err := r.db.WithContext(ctx).Take(&b, "url = ?", url).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Translate(fmt.Errorf("failed to find book %s: %w", url, err))
	}
	return &b, nil
}

// FindByID returns the book or database.ErrNotFound.
func (r *BookRepository) FindByID(ctx context.Context, id uint) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).Take(&b, "id = ?", id).Error; err != nil {
		return nil, database.Translate(fmt.Errorf("failed to find book %d: %w", id, err))
	}
	return &b, nil
}

// ListBySeries returns the books of a series ordered by title.
func (r *BookRepository) ListBySeries(ctx context.Context, seriesID uint) ([]models.Book, error) {
	var books []models.Book
	err := r.db.WithContext(ctx).Where("series_id = ?", seriesID).Order("title, id").Find(&books).Error
	if err != nil {
		return nil, database.Translate(fmt.Errorf("failed to list books of series %d: %w", seriesID, err))
	}
	return books, nil
}

// CountNotIn counts the books of a series whose URL is not in urls.
func (r *BookRepository) CountNotIn(ctx context.Context, seriesID uint, urls []identity.Key) (int64, error) {
	db := r.db.WithContext(ctx)
	var n int64
	var err error
	if len(urls) > inlineKeyLimit {
		var ids []uint
		ids, err = staleIDs(db.Model(&models.Book{}).Where("series_id = ?", seriesID), urls)
		n = int64(len(ids))
	} else {
		err = r.scopeNotIn(db.Model(&models.Book{}), seriesID, urls).Count(&n).Error
	}
	if err != nil {
		return 0, database.Translate(fmt.Errorf("failed to count stale books of series %d: %w", seriesID, err))
	}
	return n, nil
}

// DeleteAllNotIn removes the books of a series whose URL is not in urls,
// together with their read progress.
func (r *BookRepository) DeleteAllNotIn(ctx context.Context, seriesID uint, urls []identity.Key) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(urls) > inlineKeyLimit {
			ids, err := staleIDs(tx.Model(&models.Book{}).Where("series_id = ?", seriesID), urls)
			if err != nil {
				return err
			}
			for _, chunk := range chunkIDs(ids, idChunkSize) {
				if err := tx.Where("book_id IN ?", chunk).Delete(&models.ReadProgress{}).Error; err != nil {
					return err
				}
				result := tx.Where("id IN ?", chunk).Delete(&models.Book{})
				if result.Error != nil {
					return result.Error
				}
				deleted += result.RowsAffected
			}
			return nil
		}

		stale := r.scopeNotIn(tx.Model(&models.Book{}).Select("id"), seriesID, urls)
		if err := tx.Where("book_id IN (?)", stale).Delete(&models.ReadProgress{}).Error; err != nil {
			return err
		}

		result := r.scopeNotIn(tx, seriesID, urls).Delete(&models.Book{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, database.Translate(fmt.Errorf("failed to delete stale books of series %d: %w", seriesID, err))
	}
	return deleted, nil
}

// Insert persists a new book. It fails with database.ErrDuplicateKey when the URL exists.
func (r *BookRepository) Insert(ctx context.Context, b models.Book) (models.Book, error) {
	now := r.timestamp()
	b.ID = 0
	b.CreatedDate = now
	b.LastModifiedDate = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&b).Error
	})
	if err != nil {
		return models.Book{}, database.Translate(fmt.Errorf("failed to insert book %s: %w", b.URL, err))
	}
	return b, nil
}

// Update rewrites the book with the given ID and returns the stored row.
// CreatedDate is never changed and LastModifiedDate never moves backwards.
func (r *BookRepository) Update(ctx context.Context, b models.Book) (models.Book, error) {
	var stored models.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Book{}).Where("id = ?", b.ID).Updates(map[string]any{
			"title":              b.Title,
			"url":                b.URL,
			"library_id":         b.LibraryID,
			"series_id":          b.SeriesID,
			"file_last_modified": b.FileLastModified,
			"file_size":          b.FileSize,
			"media_type":         b.MediaType,
			"last_modified_date": database.Latest(tx, "last_modified_date", r.timestamp()),
		})
		if result.Error != nil {
			return result.Error
		}
		return tx.Take(&stored, "id = ?", b.ID).Error
	})
	if err != nil {
		return models.Book{}, database.Translate(fmt.Errorf("failed to update book %d: %w", b.ID, err))
	}
	return stored, nil
}

// Delete removes a book and every read progress recorded on it.
func (r *BookRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&models.ReadProgress{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Book{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return database.Translate(fmt.Errorf("failed to delete book %d: %w", id, err))
	}
	return nil
}

func (r *BookRepository) scopeNotIn(q *gorm.DB, seriesID uint, urls []identity.Key) *gorm.DB {
	q = q.Where("series_id = ?", seriesID)
	if len(urls) > 0 {
		q = q.Where("url NOT IN ?", urls)
	}
	return q
}
