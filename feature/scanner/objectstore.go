package scanner

import (
	"context"
	"fmt"
	"path"
	"strings"

	"media-catalog/core/identity"
	"media-catalog/core/storage"
	"media-catalog/feature/catalog/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ObjectStore scans s3:// library roots. Objects are grouped into series by
// their parent prefix.
type ObjectStore struct {
	client storage.Client
	logger *zap.Logger
}

// NewObjectStore creates a bucket scanner.
func NewObjectStore(client storage.Client, logger *zap.Logger) *ObjectStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectStore{client: client, logger: logger}
}

// Scan lists every object below the root prefix.
func (o *ObjectStore) Scan(ctx context.Context, root identity.Key) ([]ScannedSeries, error) {
	bucket, prefix, err := root.Bucket()
	if err != nil {
		return nil, err
	}

	exists, err := o.client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: bucket %s", ErrRootNotFound, bucket)
	}

	prefix = strings.Trim(prefix, "/")
	listPrefix := ""
	if prefix != "" {
		listPrefix = prefix + "/"
	}

	byDir := make(map[string]*ScannedSeries)
	var order []string

	for obj := range o.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: listPrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", root, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") || !IsBookFile(obj.Key) {
			continue
		}
		if isHidden(strings.TrimPrefix(obj.Key, listPrefix)) {
			continue
		}

		dir := path.Dir(obj.Key)
		series, ok := byDir[dir]
		if !ok {
			series = &ScannedSeries{
				Key:  identity.FromObject(bucket, dir),
				Name: seriesName(dir, bucket),
			}
			byDir[dir] = series
			order = append(order, dir)
		}

		modified := obj.LastModified.UTC()
		if modified.After(series.FileLastModified) {
			series.FileLastModified = modified
		}
		series.Books = append(series.Books, ScannedBook{
			Key:              identity.FromObject(bucket, obj.Key),
			Name:             path.Base(obj.Key),
			FileLastModified: modified,
			FileSize:         obj.Size,
			MediaType:        models.MediaTypeOf(obj.Key),
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]ScannedSeries, 0, len(order))
	for _, dir := range order {
		result = append(result, *byDir[dir])
	}
	sortSeries(result)

	o.logger.Debug("Scanned bucket library",
		zap.String("bucket", bucket),
		zap.String("prefix", prefix),
		zap.Int("series", len(result)))
	return result, nil
}
