package progress

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"media-catalog/core/database"
	"media-catalog/feature/catalog"
	"media-catalog/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// steppingClock advances one second on every read.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		Name:   filepath.Join(t.TempDir(), "progress.db"),
	})
	require.NoError(t, err)
	require.NoError(t, catalog.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupTracker(t *testing.T) (*Tracker, *gorm.DB) {
	db := setupTestDB(t)
	clock := &steppingClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	return NewTracker(db, WithClock(clock.Now)), db
}

func TestTracker_SaveUpserts(t *testing.T) {
	tracker, db := setupTracker(t)
	ctx := context.Background()

	first, err := tracker.Save(ctx, models.ReadProgress{BookID: 1, UserID: 1, Page: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, first.Page)
	assert.False(t, first.Completed)

	second, err := tracker.Save(ctx, models.ReadProgress{BookID: 1, UserID: 1, Page: 10, Completed: true})
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&models.ReadProgress{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	assert.Equal(t, 10, second.Page)
	assert.True(t, second.Completed)
	assert.True(t, second.CreatedDate.Equal(first.CreatedDate), "created date must not change")
	assert.True(t, second.LastModifiedDate.After(first.LastModifiedDate), "last modified date must advance")

	found, err := tracker.Find(ctx, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 10, found.Page)
}

func TestTracker_SaveRejectsInvalid(t *testing.T) {
	tracker, db := setupTracker(t)
	ctx := context.Background()

	_, err := tracker.Save(ctx, models.ReadProgress{BookID: 1, UserID: 1, Page: -1})
	assert.Error(t, err)

	_, err = tracker.Save(ctx, models.ReadProgress{BookID: 0, UserID: 1, Page: 1})
	assert.Error(t, err)

	var n int64
	require.NoError(t, db.Model(&models.ReadProgress{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestTracker_ConcurrentSavesKeepOneRow(t *testing.T) {
	db := setupTestDB(t)
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	tracker := NewTracker(db, WithClock((&steppingClock{now: start}).Now))
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	results := make(chan models.ReadProgress, writers)
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			saved, err := tracker.Save(ctx, models.ReadProgress{BookID: 7, UserID: 3, Page: page, Completed: page%2 == 0})
			errs <- err
			results <- saved
		}(i + 1)
	}
	wg.Wait()
	close(errs)
	close(results)

	for err := range errs {
		require.NoError(t, err)
	}

	first := start.Add(time.Second)
	last := start.Add(writers * time.Second)
	var lastSaved models.ReadProgress
	for saved := range results {
		if saved.LastModifiedDate.Equal(last) {
			lastSaved = saved
		}
	}
	require.NotZero(t, lastSaved.Page, "no save observed the latest stamp")

	var rows []models.ReadProgress
	require.NoError(t, db.Where("book_id = ? AND user_id = ?", 7, 3).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].CreatedDate.Equal(first), "created %s, want %s", rows[0].CreatedDate, first)
	assert.True(t, rows[0].LastModifiedDate.Equal(last), "last modified %s, want %s", rows[0].LastModifiedDate, last)
	assert.Equal(t, lastSaved.Page, rows[0].Page)
	assert.Equal(t, lastSaved.Completed, rows[0].Completed)
}

func TestTracker_SaveWithClockBehind(t *testing.T) {
	db := setupTestDB(t)
	stamps := []time.Time{
		time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	calls := 0
	tracker := NewTracker(db, WithClock(func() time.Time {
		stamp := stamps[calls]
		calls++
		return stamp
	}))
	ctx := context.Background()

	first, err := tracker.Save(ctx, models.ReadProgress{BookID: 1, UserID: 1, Page: 5})
	require.NoError(t, err)
	second, err := tracker.Save(ctx, models.ReadProgress{BookID: 1, UserID: 1, Page: 10})
	require.NoError(t, err)

	assert.Equal(t, 10, second.Page)
	assert.True(t, second.CreatedDate.Equal(first.CreatedDate))
	assert.False(t, second.LastModifiedDate.Before(first.LastModifiedDate),
		"last modified went from %s to %s", first.LastModifiedDate, second.LastModifiedDate)
	assert.False(t, second.LastModifiedDate.Before(second.CreatedDate))
}

func TestTracker_Queries(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()

	for _, p := range []models.ReadProgress{
		{BookID: 1, UserID: 1, Page: 1},
		{BookID: 2, UserID: 1, Page: 2},
		{BookID: 1, UserID: 2, Page: 3},
	} {
		_, err := tracker.Save(ctx, p)
		require.NoError(t, err)
	}

	t.Run("By User Most Recent First", func(t *testing.T) {
		rows, err := tracker.FindByUserID(ctx, 1)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, uint(2), rows[0].BookID)
		assert.Equal(t, uint(1), rows[1].BookID)
	})

	t.Run("By Book", func(t *testing.T) {
		rows, err := tracker.FindByBookID(ctx, 1)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, uint(1), rows[0].UserID)
		assert.Equal(t, uint(2), rows[1].UserID)
	})

	t.Run("Find Missing", func(t *testing.T) {
		p, err := tracker.Find(ctx, 9, 9)
		assert.NoError(t, err)
		assert.Nil(t, p)
	})
}

func TestTracker_Deletes(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) *Tracker {
		tracker, _ := setupTracker(t)
		for _, p := range []models.ReadProgress{
			{BookID: 1, UserID: 1, Page: 1},
			{BookID: 2, UserID: 1, Page: 1},
			{BookID: 2, UserID: 2, Page: 1},
			{BookID: 3, UserID: 2, Page: 1},
		} {
			_, err := tracker.Save(ctx, p)
			require.NoError(t, err)
		}
		return tracker
	}

	t.Run("Delete All", func(t *testing.T) {
		tracker := seed(t)
		n, err := tracker.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("Delete By Book IDs", func(t *testing.T) {
		tracker := seed(t)
		n, err := tracker.DeleteByBookIDs(ctx, []uint{2, 3})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		n, err = tracker.DeleteByBookIDs(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Delete By User", func(t *testing.T) {
		tracker := seed(t)
		n, err := tracker.DeleteByUserID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		rows, err := tracker.FindByBookID(ctx, 2)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, uint(1), rows[0].UserID)
	})

	t.Run("Delete One", func(t *testing.T) {
		tracker := seed(t)
		require.NoError(t, tracker.Delete(ctx, 1, 1))
		assert.ErrorIs(t, tracker.Delete(ctx, 1, 1), database.ErrNotFound)
	})
}

func TestTracker_BookDeletionCascades(t *testing.T) {
	tracker, db := setupTracker(t)
	ctx := context.Background()
	store := catalog.NewStore(db)

	lib, err := store.Libraries().Insert(ctx, models.NewLibrary("Comics", "file:///comics"))
	require.NoError(t, err)
	series, err := store.Series().Insert(ctx, models.Series{Name: "A", URL: "file:///comics/A", LibraryID: lib.ID})
	require.NoError(t, err)
	book, err := store.Books().Insert(ctx, models.Book{Title: "1", URL: "file:///comics/A/1.cbz", LibraryID: lib.ID, SeriesID: series.ID})
	require.NoError(t, err)

	for _, user := range []uint{1, 2, 3} {
		_, err := tracker.Save(ctx, models.ReadProgress{BookID: book.ID, UserID: user, Page: 4})
		require.NoError(t, err)
	}

	require.NoError(t, store.Books().Delete(ctx, book.ID))

	rows, err := tracker.FindByBookID(ctx, book.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
