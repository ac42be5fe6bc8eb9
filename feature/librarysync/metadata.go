package librarysync

import (
	"context"

	"media-catalog/feature/scanner"
)

// MetadataImporter reads names embedded in book files. It is only consulted
// when the library's import flags allow it for the media type.
type MetadataImporter interface {
	// SeriesName returns the embedded series name, if any.
	SeriesName(ctx context.Context, series scanner.ScannedSeries) (string, bool)
	// BookTitle returns the embedded book title, if any.
	BookTitle(ctx context.Context, book scanner.ScannedBook) (string, bool)
}

// NoMetadata never finds embedded metadata; names come from the file system.
type NoMetadata struct{}

// SeriesName implements MetadataImporter.
func (NoMetadata) SeriesName(context.Context, scanner.ScannedSeries) (string, bool) {
	return "", false
}

// BookTitle implements MetadataImporter.
func (NoMetadata) BookTitle(context.Context, scanner.ScannedBook) (string, bool) {
	return "", false
}
