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

// LibraryRepository persists libraries.
type LibraryRepository struct {
	repo
}

// Insert persists a new library. It fails with database.ErrDuplicateKey when
// another library already uses the same root.
func (r *LibraryRepository) Insert(ctx context.Context, lib models.Library) (models.Library, error) {
	now := r.timestamp()
	lib.ID = 0
	lib.CreatedDate = now
	lib.LastModifiedDate = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&lib).Error
	})
	if err != nil {
		return models.Library{}, database.Translate(fmt.Errorf("failed to insert library %s: %w", lib.Root, err))
	}
	return lib, nil
}

// FindByID returns the library or database.ErrNotFound.
func (r *LibraryRepository) FindByID(ctx context.Context, id uint) (*models.Library, error) {
	var lib models.Library
	if err := r.db.WithContext(ctx).Take(&lib, "id = ?", id).Error; err != nil {
		return nil, database.Translate(fmt.Errorf("failed to find library %d: %w", id, err))
	}
	return &lib, nil
}

// FindByRoot returns the library rooted at root, or nil when there is none.
func (r *LibraryRepository) FindByRoot(ctx context.Context, root identity.Key) (*models.Library, error) {
	var lib models.Library
	err := r.db.WithContext(ctx).Take(&lib, "root = ?", root).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Translate(fmt.Errorf("failed to find library %s: %w", root, err))
	}
	return &lib, nil
}

// List returns every library ordered by name.
func (r *LibraryRepository) List(ctx context.Context) ([]models.Library, error) {
	var libs []models.Library
	if err := r.db.WithContext(ctx).Order("name, id").Find(&libs).Error; err != nil {
		return nil, database.Translate(fmt.Errorf("failed to list libraries: %w", err))
	}
	return libs, nil
}

// Update persists an explicit edit of a library and returns the stored row.
// CreatedDate is left untouched and LastModifiedDate never moves backwards.
func (r *LibraryRepository) Update(ctx context.Context, lib models.Library) (models.Library, error) {
	var stored models.Library
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Library{}).Where("id = ?", lib.ID).Updates(map[string]any{
			"name":                        lib.Name,
			"root":                        lib.Root,
			"import_comicinfo_book":       lib.ImportComicInfoBook,
			"import_comicinfo_series":     lib.ImportComicInfoSeries,
			"import_comicinfo_collection": lib.ImportComicInfoCollection,
			"import_epub_book":            lib.ImportEpubBook,
			"import_epub_series":          lib.ImportEpubSeries,
			"last_modified_date":          database.Latest(tx, "last_modified_date", r.timestamp()),
		})
		if result.Error != nil {
			return result.Error
		}
		return tx.Take(&stored, "id = ?", lib.ID).Error
	})
	if err != nil {
		return models.Library{}, database.Translate(fmt.Errorf("failed to update library %d: %w", lib.ID, err))
	}
	return stored, nil
}

// Delete removes a library together with its series, books and their read progress.
func (r *LibraryRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := tx.Model(&models.Book{}).Select("id").Where("library_id = ?", id)
		if err := tx.Where("book_id IN (?)", books).Delete(&models.ReadProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("library_id = ?", id).Delete(&models.Book{}).Error; err != nil {
			return err
		}
		if err := tx.Where("library_id = ?", id).Delete(&models.Series{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Library{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return database.Translate(fmt.Errorf("failed to delete library %d: %w", id, err))
	}
	return nil
}

// LibraryStats summarizes what a library currently holds.
type LibraryStats struct {
	LibraryID uint
	Series    int64
	Books     int64
	Bytes     int64
}

// Stats returns the content summary of every library that has series, keyed by library ID.
func (r *LibraryRepository) Stats(ctx context.Context) (map[uint]LibraryStats, error) {
	var seriesRows []struct {
		LibraryID uint
		Total     int64
	}
	err := r.db.WithContext(ctx).Model(&models.Series{}).
		Select("library_id, COUNT(*) AS total").Group("library_id").Scan(&seriesRows).Error
	if err != nil {
		return nil, database.Translate(fmt.Errorf("failed to count series: %w", err))
	}

	var bookRows []struct {
		LibraryID uint
		Total     int64
		Bytes     int64
	}
	err = r.db.WithContext(ctx).Model(&models.Book{}).
		Select("library_id, COUNT(*) AS total, COALESCE(SUM(file_size), 0) AS bytes").Group("library_id").Scan(&bookRows).Error
	if err != nil {
		return nil, database.Translate(fmt.Errorf("failed to count books: %w", err))
	}

	stats := make(map[uint]LibraryStats, len(seriesRows))
	for _, row := range seriesRows {
		stats[row.LibraryID] = LibraryStats{LibraryID: row.LibraryID, Series: row.Total}
	}
	for _, row := range bookRows {
		s := stats[row.LibraryID]
		s.LibraryID = row.LibraryID
		s.Books = row.Total
		s.Bytes = row.Bytes
		stats[row.LibraryID] = s
	}
	return stats, nil
}
