package catalog

import (
	"context"
	"fmt"
	"time"

	"media-catalog/core/database"

	"gorm.io/gorm"
)

// Store is the entry point to the persisted catalog.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore wraps a gorm connection.
func NewStore(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Libraries returns a repository outside of any unit of work.
func (s *Store) Libraries() *LibraryRepository {
	return &LibraryRepository{repo{db: s.db, now: s.now}}
}

// Series returns a repository outside of any unit of work.
func (s *Store) Series() *SeriesRepository {
	return &SeriesRepository{repo{db: s.db, now: s.now}}
}

// Books returns a repository outside of any unit of work.
func (s *Store) Books() *BookRepository {
	return &BookRepository{repo{db: s.db, now: s.now}}
}

// Begin opens a unit of work. The caller must Commit or Rollback it.
func (s *Store) Begin(ctx context.Context) (*UnitOfWork, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, database.Translate(fmt.Errorf("failed to begin transaction: %w", tx.Error))
	}
	return &UnitOfWork{tx: tx, now: s.now}, nil
}

// WithinTransaction runs fn in a unit of work, committing when fn returns nil
// and rolling back otherwise.
func (s *Store) WithinTransaction(ctx context.Context, fn func(uow *UnitOfWork) error) error {
	uow, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback() //nolint:errcheck // no-op after Commit

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}

// UnitOfWork groups catalog writes into one transaction.
type UnitOfWork struct {
	tx   *gorm.DB
	now  func() time.Time
	done bool
}

// Libraries returns a repository bound to the unit of work.
func (u *UnitOfWork) Libraries() *LibraryRepository {
	return &LibraryRepository{repo{db: u.tx, now: u.now}}
}

// Series returns a repository bound to the unit of work.
func (u *UnitOfWork) Series() *SeriesRepository {
	return &SeriesRepository{repo{db: u.tx, now: u.now}}
}

// Books returns a repository bound to the unit of work.
func (u *UnitOfWork) Books() *BookRepository {
	return &BookRepository{repo{db: u.tx, now: u.now}}
}

// Commit makes every write of the unit of work visible.
func (u *UnitOfWork) Commit() error {
	if u.done {
		return fmt.Errorf("unit of work already finished")
	}
	u.done = true
	if err := u.tx.Commit().Error; err != nil {
		return database.Translate(fmt.Errorf("failed to commit: %w", err))
	}
	return nil
}

// Rollback discards every write of the unit of work. It is a no-op once the
// unit of work has been committed or rolled back.
func (u *UnitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback().Error; err != nil {
		return database.Translate(fmt.Errorf("failed to roll back: %w", err))
	}
	return nil
}

// repo carries the handle and clock shared by every repository.
type repo struct {
	db  *gorm.DB
	now func() time.Time
}

// timestamp returns the current time at the precision both drivers store.
func (r repo) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}
