package models_test

import (
	"testing"

	"media-catalog/feature/catalog/models"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "libraries", models.Library{}.TableName())
	assert.Equal(t, "series", models.Series{}.TableName())
	assert.Equal(t, "books", models.Book{}.TableName())
	assert.Equal(t, "read_progress", models.ReadProgress{}.TableName())
}

func TestNewLibrary(t *testing.T) {
	lib := models.NewLibrary("Comics", "file:///comics")

	assert.True(t, lib.ImportsBookMetadata(models.MediaComic))
	assert.True(t, lib.ImportsSeriesMetadata(models.MediaEpub))
	assert.False(t, lib.ImportsBookMetadata(models.MediaUnknown))

	lib.ImportComicInfoSeries = false
	assert.False(t, lib.ImportsSeriesMetadata(models.MediaComic))
	assert.True(t, lib.ImportsSeriesMetadata(models.MediaEpub))

	path, err := lib.Path()
	assert.NoError(t, err)
	assert.Equal(t, "/comics", path)
}

func TestMediaTypeOf(t *testing.T) {
	tests := []struct {
		name string
		want models.MediaType
	}{
		{"Saga 01.cbz", models.MediaComic},
		{"Saga 01.CBR", models.MediaComic},
		{"scan.pdf", models.MediaComic},
		{"Dune.epub", models.MediaEpub},
		{"cover.jpg", models.MediaUnknown},
		{"README", models.MediaUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.MediaTypeOf(tt.name))
		})
	}
	assert.Equal(t, "unknown", models.MediaUnknown.String())
	assert.Equal(t, "epub", models.MediaEpub.String())
}

func TestTitleFromFile(t *testing.T) {
	assert.Equal(t, "Saga 01", models.TitleFromFile("/comics/Saga/Saga 01.cbz"))
	assert.Equal(t, "archive.tar", models.TitleFromFile("archive.tar.cbt"))
	assert.Equal(t, "noext", models.TitleFromFile("noext"))
}

func TestReadProgressValidate(t *testing.T) {
	assert.NoError(t, models.ReadProgress{BookID: 1, UserID: 1, Page: 0}.Validate())
	assert.Error(t, models.ReadProgress{BookID: 1, UserID: 1, Page: -1}.Validate())
	assert.Error(t, models.ReadProgress{BookID: 0, UserID: 1}.Validate())
	assert.Error(t, models.ReadProgress{BookID: 1, UserID: 0}.Validate())
}
