package progress

import (
	"context"
	"fmt"
	"time"

	"media-catalog/core/database"
	"media-catalog/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tracker records how far each user got in each book.
type Tracker struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces the wall clock used for audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithLogger sets the logger used for write diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// NewTracker creates a tracker over the catalog database.
func NewTracker(db *gorm.DB, opts ...Option) *Tracker {
	t := &Tracker{db: db, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Save creates or replaces the progress of p.UserID in p.BookID with one
// conditional upsert and returns the stored row. CreatedDate is only set
// when the row is new and LastModifiedDate never moves backwards.
func (t *Tracker) Save(ctx context.Context, p models.ReadProgress) (models.ReadProgress, error) {
	if err := p.Validate(); err != nil {
		return models.ReadProgress{}, err
	}

	var saved models.ReadProgress
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Read the clock once the write transaction is open so stamps follow commit order.
		now := t.now().UTC().Truncate(time.Microsecond)
		p.CreatedDate = now
		p.LastModifiedDate = now

		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "book_id"}, {Name: "user_id"}},
			DoUpdates: append(
				clause.AssignmentColumns([]string{"page", "completed"}),
				database.LatestOnConflict(tx, p.TableName(), "last_modified_date"),
			),
		}).Create(&p).Error
		if err != nil {
			return err
		}
		return tx.Take(&saved, "book_id = ? AND user_id = ?", p.BookID, p.UserID).Error
	})
	if err != nil {
		return models.ReadProgress{}, database.Translate(fmt.Errorf("failed to save progress of user %d in book %d: %w", p.UserID, p.BookID, err))
	}

	t.logger.Debug("Saved read progress",
		zap.Uint("book_id", saved.BookID),
		zap.Uint("user_id", saved.UserID),
		zap.Int("page", saved.Page),
		zap.Bool("completed", saved.Completed))
	return saved, nil
}

// Find returns the progress of a user in a book, or nil when there is none.
func (t *Tracker) Find(ctx context.Context, bookID, userID uint) (*models.ReadProgress, error) {
	var rows []models.ReadProgress
	err := t.db.WithContext(ctx).Where("book_id = ? AND user_id = ?", bookID, userID).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, database.Translate(fmt.Errorf("failed to find progress of user %d in book %d: %w", userID, bookID, err))
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// FindByUserID returns every progress of a user, most recently changed first.
func (t *Tracker) FindByUserID(ctx context.Context, userID uint) ([]models.ReadProgress, error) {
	var rows []models.ReadProgress
	err := t.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("last_modified_date DESC, book_id").Find(&rows).Error
	if err != nil {
		return nil, database.Translate(fmt.Errorf("failed to list progress of user %d: %w", userID, err))
	}
	return rows, nil
}

// FindByBookID returns the progress every user recorded in a book.
func (t *Tracker) FindByBookID(ctx context.Context, bookID uint) ([]models.ReadProgress, error) {
	var rows []models.ReadProgress
	err := t.db.WithContext(ctx).Where("book_id = ?", bookID).Order("user_id").Find(&rows).Error
	if err != nil {
		return nil, database.Translate(fmt.Errorf("failed to list progress of book %d: %w", bookID, err))
	}
	return rows, nil
}

// DeleteAll removes every progress record.
func (t *Tracker) DeleteAll(ctx context.Context) (int64, error) {
	result := t.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ReadProgress{})
	if result.Error != nil {
		return 0, database.Translate(fmt.Errorf("failed to delete all progress: %w", result.Error))
	}
	return result.RowsAffected, nil
}

// DeleteByBookIDs removes the progress recorded in any of the given books.
func (t *Tracker) DeleteByBookIDs(ctx context.Context, bookIDs []uint) (int64, error) {
	if len(bookIDs) == 0 {
		return 0, nil
	}
	result := t.db.WithContext(ctx).Where("book_id IN ?", bookIDs).Delete(&models.ReadProgress{})
	if result.Error != nil {
		return 0, database.Translate(fmt.Errorf("failed to delete progress of %d books: %w", len(bookIDs), result.Error))
	}
	return result.RowsAffected, nil
}

// DeleteByUserID removes every progress of a user.
func (t *Tracker) DeleteByUserID(ctx context.Context, userID uint) (int64, error) {
	result := t.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.ReadProgress{})
	if result.Error != nil {
		return 0, database.Translate(fmt.Errorf("failed to delete progress of user %d: %w", userID, result.Error))
	}
	return result.RowsAffected, nil
}

// Delete clears the progress of one user in one book. It fails with
// database.ErrNotFound when nothing was recorded.
func (t *Tracker) Delete(ctx context.Context, bookID, userID uint) error {
	result := t.db.WithContext(ctx).Where("book_id = ? AND user_id = ?", bookID, userID).Delete(&models.ReadProgress{})
	if result.Error != nil {
		return database.Translate(fmt.Errorf("failed to delete progress of user %d in book %d: %w", userID, bookID, result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete progress of user %d in book %d: %w", userID, bookID, database.ErrNotFound)
	}
	return nil
}
