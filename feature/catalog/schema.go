package catalog

import (
	"fmt"
	"strings"

	"media-catalog/core/database"
	"media-catalog/feature/catalog/models"

	"gorm.io/gorm"
)

// Migrate creates or upgrades every catalog table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Library{},
		&models.Series{},
		&models.Book{},
		&models.ReadProgress{},
	)
	if err != nil {
		return database.Translate(fmt.Errorf("failed to migrate catalog schema: %w", err))
	}
	return nil
}

// requiredColumns lists the columns every catalog operation depends on.
var requiredColumns = map[string][]string{
	"libraries":     {"id", "name", "root", "created_date", "last_modified_date"},
	"series":        {"id", "name", "url", "library_id", "file_last_modified", "created_date", "last_modified_date"},
	"books":         {"id", "title", "url", "library_id", "series_id", "file_last_modified", "file_size", "media_type", "created_date", "last_modified_date"},
	"read_progress": {"book_id", "user_id", "page", "completed", "created_date", "last_modified_date"},
}

// SchemaError lists the columns missing per table.
type SchemaError struct {
	Missing map[string][]string
}

func (e *SchemaError) Error() string {
	var parts []string
	for _, table := range []string{"libraries", "series", "books", "read_progress"} {
		if cols, ok := e.Missing[table]; ok {
			parts = append(parts, fmt.Sprintf("%s(%s)", table, strings.Join(cols, ", ")))
		}
	}
	return "catalog schema is out of date, missing " + strings.Join(parts, "; ")
}

// VerifySchema checks that every table carries the columns the catalog needs.
// It returns a *SchemaError when something is missing.
func VerifySchema(db *gorm.DB) error {
	missing := make(map[string][]string)
	for table, cols := range requiredColumns {
		gaps, err := database.MissingColumns(db, table, cols)
		if err != nil {
			return err
		}
		if len(gaps) > 0 {
			missing[table] = gaps
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}
