// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so libraries whose root is an s3:// URL can be
// scanned the same way as filesystem libraries. Both AWS S3 and self-hosted
// MinIO instances are supported.
//
// # Client Interface
//
// The Client interface only exposes the read operations the scanner needs,
// making it easy to mock storage interactions for unit testing (see mocks/).
//
// # Operations
//
//   - BucketExists: Verifies access to the library bucket before listing.
//   - ListObjects: Lists objects under a prefix (recursive listing).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "comics")
package storage
