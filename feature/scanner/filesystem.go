package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"media-catalog/core/identity"
	"media-catalog/feature/catalog/models"

	"go.uber.org/zap"
)

// Filesystem scans file:// library roots.
type Filesystem struct {
	logger *zap.Logger
}

// NewFilesystem creates a filesystem scanner.
func NewFilesystem(logger *zap.Logger) *Filesystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filesystem{logger: logger}
}

// Scan walks the root and returns every directory that directly holds book files.
func (f *Filesystem) Scan(ctx context.Context, root identity.Key) ([]ScannedSeries, error) {
	rootPath, err := root.Path()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(rootPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, rootPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat library root %s: %w", rootPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library root %s is not a directory", rootPath)
	}

	byDir := make(map[string]*ScannedSeries)
	var order []string

	err = filepath.WalkDir(rootPath, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			// Entries removed while walking are simply not part of this scan.
			if errors.Is(walkErr, fs.ErrNotExist) && p != rootPath {
				return nil
			}
			return walkErr
		}
		if p != rootPath && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !IsBookFile(d.Name()) {
			return nil
		}

		fileInfo, err := d.Info()
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		bookKey, err := identity.FromPath(p)
		if err != nil {
			return err
		}

		dir := filepath.Dir(p)
		series, ok := byDir[dir]
		if !ok {
			series, err = f.newSeries(dir)
			if err != nil {
				return err
			}
			byDir[dir] = series
			order = append(order, dir)
		}
		series.Books = append(series.Books, ScannedBook{
			Key:              bookKey,
			Name:             d.Name(),
			FileLastModified: fileInfo.ModTime().UTC(),
			FileSize:         fileInfo.Size(),
			MediaType:        models.MediaTypeOf(d.Name()),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", rootPath, err)
	}

	result := make([]ScannedSeries, 0, len(order))
	for _, dir := range order {
		result = append(result, *byDir[dir])
	}
	sortSeries(result)

	f.logger.Debug("Scanned filesystem library",
		zap.String("root", rootPath),
		zap.Int("series", len(result)))
	return result, nil
}

func (f *Filesystem) newSeries(dir string) (*ScannedSeries, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	key, err := identity.FromPath(dir)
	if err != nil {
		return nil, err
	}
	return &ScannedSeries{
		Key:              key,
		Name:             filepath.Base(dir),
		FileLastModified: info.ModTime().UTC(),
	}, nil
}
