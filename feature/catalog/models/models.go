package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"media-catalog/core/identity"
)

// Audit holds the creation and modification timestamps shared by every entity.
// The catalog store sets both on insert and only LastModifiedDate on update.
type Audit struct {
	CreatedDate      time.Time `gorm:"column:created_date;precision:6;not null" json:"created_date"`
	LastModifiedDate time.Time `gorm:"column:last_modified_date;precision:6;not null" json:"last_modified_date"`
}

// Library is a root location plus its metadata import policy.
type Library struct {
	ID                        uint         `gorm:"column:id;primaryKey" json:"id"`
	Name                      string       `gorm:"column:name;size:255;not null" json:"name"`
	Root                      identity.Key `gorm:"column:root;size:768;not null;uniqueIndex" json:"root"`
	ImportComicInfoBook       bool         `gorm:"column:import_comicinfo_book;not null" json:"import_comicinfo_book"`
	ImportComicInfoSeries     bool         `gorm:"column:import_comicinfo_series;not null" json:"import_comicinfo_series"`
	ImportComicInfoCollection bool         `gorm:"column:import_comicinfo_collection;not null" json:"import_comicinfo_collection"`
	ImportEpubBook            bool         `gorm:"column:import_epub_book;not null" json:"import_epub_book"`
	ImportEpubSeries          bool         `gorm:"column:import_epub_series;not null" json:"import_epub_series"`
	Audit                     `gorm:"embedded"`
}

// TableName overrides the table name for libraries.
func (Library) TableName() string {
	return "libraries"
}

// NewLibrary returns a library rooted at root with every import flag enabled.
func NewLibrary(name string, root identity.Key) Library {
	return Library{
		Name:                      name,
		Root:                      root,
		ImportComicInfoBook:       true,
		ImportComicInfoSeries:     true,
		ImportComicInfoCollection: true,
		ImportEpubBook:            true,
		ImportEpubSeries:          true,
	}
}

// Path returns the filesystem path of a file:// library root.
func (l Library) Path() (string, error) {
	return l.Root.Path()
}

// ImportsBookMetadata reports whether embedded book metadata of the given media type is honored.
func (l Library) ImportsBookMetadata(media MediaType) bool {
	switch media {
	case MediaComic:
		return l.ImportComicInfoBook
	case MediaEpub:
		return l.ImportEpubBook
	default:
		return false
	}
}

// ImportsSeriesMetadata reports whether embedded series metadata of the given media type is honored.
func (l Library) ImportsSeriesMetadata(media MediaType) bool {
	switch media {
	case MediaComic:
		return l.ImportComicInfoSeries
	case MediaEpub:
		return l.ImportEpubSeries
	default:
		return false
	}
}

// Series groups the books found in one directory of a library.
type Series struct {
	ID               uint         `gorm:"column:id;primaryKey" json:"id"`
	Name             string       `gorm:"column:name;size:512;not null" json:"name"`
	URL              identity.Key `gorm:"column:url;size:768;not null;uniqueIndex" json:"url"`
	LibraryID        uint         `gorm:"column:library_id;not null;index" json:"library_id"`
	FileLastModified time.Time    `gorm:"column:file_last_modified;precision:6;not null" json:"file_last_modified"`
	Audit            `gorm:"embedded"`
}

// TableName overrides the table name for series.
func (Series) TableName() string {
	return "series"
}

// Book is a single readable file of a series.
type Book struct {
	ID               uint         `gorm:"column:id;primaryKey" json:"id"`
	Title            string       `gorm:"column:title;size:512;not null" json:"title"`
	URL              identity.Key `gorm:"column:url;size:768;not null;uniqueIndex" json:"url"`
	LibraryID        uint         `gorm:"column:library_id;not null;index" json:"library_id"`
	SeriesID         uint         `gorm:"column:series_id;not null;index" json:"series_id"`
	FileLastModified time.Time    `gorm:"column:file_last_modified;precision:6;not null" json:"file_last_modified"`
	FileSize         int64        `gorm:"column:file_size;not null" json:"file_size"`
	MediaType        MediaType    `gorm:"column:media_type;size:16;not null" json:"media_type"`
	Audit            `gorm:"embedded"`
}

// TableName overrides the table name for books.
func (Book) TableName() string {
	return "books"
}

// ReadProgress is one user's position in one book.
// (BookID, UserID) is the natural key; neither side is owned.
type ReadProgress struct {
	BookID    uint `gorm:"column:book_id;primaryKey;autoIncrement:false" json:"book_id"`
	UserID    uint `gorm:"column:user_id;primaryKey;autoIncrement:false;index" json:"user_id"`
	Page      int  `gorm:"column:page;not null" json:"page"`
	Completed bool `gorm:"column:completed;not null" json:"completed"`
	Audit     `gorm:"embedded"`
}

// TableName overrides the table name for read progress.
func (ReadProgress) TableName() string {
	return "read_progress"
}

// MediaType is the family of archive a book is stored in.
type MediaType string

const (
	MediaComic   MediaType = "comic"
	MediaEpub    MediaType = "epub"
	MediaUnknown MediaType = ""
)

var mediaByExtension = map[string]MediaType{
	".cbz":  MediaComic,
	".cbr":  MediaComic,
	".cb7":  MediaComic,
	".cbt":  MediaComic,
	".zip":  MediaComic,
	".rar":  MediaComic,
	".7z":   MediaComic,
	".pdf":  MediaComic,
	".epub": MediaEpub,
}

// MediaTypeOf classifies a file name by its extension.
func MediaTypeOf(name string) MediaType {
	return mediaByExtension[strings.ToLower(filepath.Ext(name))]
}

// TitleFromFile strips the directory and extension from a book file name.
func TitleFromFile(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (m MediaType) String() string {
	if m == MediaUnknown {
		return "unknown"
	}
	return string(m)
}

// Validate checks the invariants a caller can break on a progress record.
func (p ReadProgress) Validate() error {
	if p.Page < 0 {
		return fmt.Errorf("page must not be negative, got %d", p.Page)
	}
	if p.BookID == 0 || p.UserID == 0 {
		return fmt.Errorf("book and user are required")
	}
	return nil
}
