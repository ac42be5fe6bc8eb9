package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"media-catalog/core/identity"
	"media-catalog/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func objects(infos ...minio.ObjectInfo) func(context.Context, string, minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return func(context.Context, string, minio.ListObjectsOptions) <-chan minio.ObjectInfo {
		ch := make(chan minio.ObjectInfo, len(infos))
		for _, info := range infos {
			ch <- info
		}
		close(ch)
		return ch
	}
}

func TestObjectStore_Scan(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "media").Return(true, nil)
	client.On("ListObjects", mock.Anything, "media", minio.ListObjectsOptions{Prefix: "comics/", Recursive: true}).
		Return(objects(
			minio.ObjectInfo{Key: "comics/Saga/Saga 01.cbz", Size: 10, LastModified: older},
			minio.ObjectInfo{Key: "comics/Saga/Saga 02.cbz", Size: 20, LastModified: newer},
			minio.ObjectInfo{Key: "comics/Saga/cover.jpg", Size: 1, LastModified: newer},
			minio.ObjectInfo{Key: "comics/Saga/", Size: 0},
			minio.ObjectInfo{Key: "comics/.trash/Old.cbz", Size: 1},
			minio.ObjectInfo{Key: "comics/Dune/Dune.epub", Size: 30, LastModified: older},
		))

	series, err := NewObjectStore(client, nil).Scan(context.Background(), "s3://media/comics")
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, identity.Key("s3://media/comics/Dune"), series[0].Key)
	assert.Equal(t, "Dune", series[0].Name)

	saga := series[1]
	assert.Equal(t, identity.Key("s3://media/comics/Saga"), saga.Key)
	assert.True(t, saga.FileLastModified.Equal(newer))
	require.Len(t, saga.Books, 2)
	assert.Equal(t, identity.Key("s3://media/comics/Saga/Saga%2001.cbz"), saga.Books[0].Key)
	assert.Equal(t, "Saga 01.cbz", saga.Books[0].Name)
	assert.Equal(t, int64(20), saga.Books[1].FileSize)

	client.AssertExpectations(t)
}

func TestObjectStore_Errors(t *testing.T) {
	t.Run("Missing Bucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "media").Return(false, nil)

		_, err := NewObjectStore(client, nil).Scan(context.Background(), "s3://media")
		assert.ErrorIs(t, err, ErrRootNotFound)
	})

	t.Run("Bucket Check Fails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "media").Return(false, errors.New("connection refused"))

		_, err := NewObjectStore(client, nil).Scan(context.Background(), "s3://media")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrRootNotFound)
	})

	t.Run("Listing Fails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "media").Return(true, nil)
		client.On("ListObjects", mock.Anything, "media", minio.ListObjectsOptions{Recursive: true}).
			Return(objects(
				minio.ObjectInfo{Key: "A/1.cbz"},
				minio.ObjectInfo{Err: errors.New("access denied")},
			))

		_, err := NewObjectStore(client, nil).Scan(context.Background(), "s3://media")
		assert.ErrorContains(t, err, "access denied")
	})
}
