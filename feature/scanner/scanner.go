package scanner

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"media-catalog/core/identity"
	"media-catalog/feature/catalog/models"
)

var (
	// ErrRootNotFound is returned when a library root does not exist.
	ErrRootNotFound = errors.New("library root not found")
	// ErrUnsupportedRoot is returned when no scanner handles the root scheme.
	ErrUnsupportedRoot = errors.New("unsupported library root")
)

// ScannedBook is a book file as found on storage.
type ScannedBook struct {
	Key              identity.Key
	Name             string
	FileLastModified time.Time
	FileSize         int64
	MediaType        models.MediaType
}

// ScannedSeries is a folder that directly contains at least one book.
type ScannedSeries struct {
	Key              identity.Key
	Name             string
	FileLastModified time.Time
	Books            []ScannedBook
}

// Scanner produces the complete current set of series and books under a root.
// A successful scan is exhaustive; anything it cannot read fails the scan.
type Scanner interface {
	Scan(ctx context.Context, root identity.Key) ([]ScannedSeries, error)
}

// Multi dispatches to a scanner by the scheme of the root key.
type Multi map[string]Scanner

// Scan implements Scanner.
func (m Multi) Scan(ctx context.Context, root identity.Key) ([]ScannedSeries, error) {
	s, ok := m[root.Scheme()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRoot, root)
	}
	return s.Scan(ctx, root)
}

// IsBookFile reports whether name has a supported book extension.
func IsBookFile(name string) bool {
	return models.MediaTypeOf(name) != models.MediaUnknown
}

// isHidden reports whether any segment of a slash separated name starts with a dot.
func isHidden(name string) bool {
	for _, segment := range strings.Split(name, "/") {
		if strings.HasPrefix(segment, ".") && segment != "." && segment != ".." {
			return true
		}
	}
	return false
}

// sortSeries orders series and their books by key for deterministic output.
func sortSeries(series []ScannedSeries) {
	sort.Slice(series, func(i, j int) bool { return series[i].Key < series[j].Key })
	for i := range series {
		books := series[i].Books
		sort.Slice(books, func(a, b int) bool { return books[a].Key < books[b].Key })
	}
}

func seriesName(dir, fallback string) string {
	name := path.Base(dir)
	if name == "." || name == "/" || name == "" {
		return fallback
	}
	return name
}
