package progress

import (
	"context"
	"testing"
	"time"

	"media-catalog/feature/catalog/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestTracker_SaveMySQLUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tracker := NewTracker(gormDB, WithClock(func() time.Time { return now }))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `read_progress` .* ON DUPLICATE KEY UPDATE .*`last_modified_date`=GREATEST\\(last_modified_date, VALUES\\(last_modified_date\\)\\)").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("SELECT \\* FROM `read_progress` WHERE book_id = \\? AND user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "user_id", "page", "completed", "created_date", "last_modified_date"}).
			AddRow(1, 2, 10, false, now.Add(-time.Hour), now))
	mock.ExpectCommit()

	saved, err := tracker.Save(context.Background(), models.ReadProgress{BookID: 1, UserID: 2, Page: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, saved.Page)
	assert.True(t, saved.CreatedDate.Equal(now.Add(-time.Hour)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
