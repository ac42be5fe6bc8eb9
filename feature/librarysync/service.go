package librarysync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"media-catalog/core/database"
	"media-catalog/core/identity"
	"media-catalog/core/logger"
	"media-catalog/core/reconcile"
	"media-catalog/feature/catalog"
	"media-catalog/feature/catalog/models"
	"media-catalog/feature/scanner"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrLibraryNotFound is returned when the library to reconcile does not exist.
	ErrLibraryNotFound = errors.New("library not found")
	// ErrEmptyScan is returned when a scan finds nothing under a library that
	// still has series. It matches reconcile.ErrEmptyTruth.
	ErrEmptyScan = reconcile.ErrEmptyTruth
)

// PassResult reports one reconciliation pass of a library.
type PassResult struct {
	PassID        string                    `json:"pass_id"`
	LibraryID     uint                      `json:"library_id"`
	DryRun        bool                      `json:"dry_run"`
	Series        reconcile.Summary         `json:"series"`
	Books         reconcile.Summary         `json:"books"`
	SeriesActions []reconcile.Action        `json:"series_actions"`
	BookActions   []reconcile.Action        `json:"book_actions"`
	Failures      []reconcile.EntityFailure `json:"failures"`
	Duration      time.Duration             `json:"duration"`
}

// PassOption adjusts a single pass.
type PassOption func(*reconcile.Options)

// DryRun plans the pass without writing anything.
func DryRun() PassOption {
	return func(o *reconcile.Options) {
		o.DryRun = true
	}
}

// AllowEmpty lets the pass delete every series when the scan is empty.
func AllowEmpty() PassOption {
	return func(o *reconcile.Options) {
		o.AllowEmptyTruth = true
	}
}

// Service keeps the catalog in sync with what the scanners report.
type Service struct {
	store    *catalog.Store
	scanner  scanner.Scanner
	metadata MetadataImporter
	locker   *Locker
	config   Config
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetadataImporter sets the source of embedded series and book names.
func WithMetadataImporter(m MetadataImporter) Option {
	return func(s *Service) {
		s.metadata = m
	}
}

// NewService creates a new reconciliation service.
func NewService(store *catalog.Store, sc scanner.Scanner, cfg Config, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:    store,
		scanner:  sc,
		metadata: NoMetadata{},
		locker:   NewLocker(cfg.LockDir),
		config:   cfg,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reconcile scans a library and brings its series and books in line with the
// scan inside one unit of work. Entity failures are reported in the result
// while the rest of the pass commits; any other error rolls the pass back.
func (s *Service) Reconcile(ctx context.Context, libraryID uint, opts ...PassOption) (*PassResult, error) {
	options := reconcile.Options{AllowEmptyTruth: s.config.AllowEmptyScan}
	for _, opt := range opts {
		opt(&options)
	}

	start := time.Now()
	result := &PassResult{
		PassID:        uuid.NewString(),
		LibraryID:     libraryID,
		DryRun:        options.DryRun,
		SeriesActions: []reconcile.Action{},
		BookActions:   []reconcile.Action{},
		Failures:      []reconcile.EntityFailure{},
	}
	log := logger.WithPass(s.logger, result.PassID, libraryID)

	unlock, err := s.locker.Lock(ctx, libraryID)
	if err != nil {
		return result, err
	}
	defer unlock()

	lib, err := s.store.Libraries().FindByID(ctx, libraryID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return result, fmt.Errorf("%w: %d", ErrLibraryNotFound, libraryID)
		}
		return result, err
	}

	log.Info("Scanning library", zap.String("root", lib.Root.String()), zap.Bool("dry_run", options.DryRun))
	scanned, err := s.scanner.Scan(ctx, lib.Root)
	if err != nil {
		log.Error("Scan failed", zap.Error(err))
		return result, fmt.Errorf("failed to scan library %d: %w", libraryID, err)
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return result, err
	}
	defer uow.Rollback() //nolint:errcheck // no-op after Commit

	if err := s.apply(ctx, uow, *lib, scanned, options, result); err != nil {
		result.Duration = time.Since(start)
		log.Error("Pass rolled back", zap.Error(err), zap.Duration("duration", result.Duration))
		return result, err
	}

	if options.DryRun {
		if err := uow.Rollback(); err != nil {
			return result, err
		}
	} else if err := uow.Commit(); err != nil {
		return result, err
	}

	result.Duration = time.Since(start)
	for _, f := range result.Failures {
		log.Warn("Entity skipped", zap.String("level", f.Level), zap.String("key", f.Key),
			zap.String("op", string(f.Op)), zap.Error(f.Err))
	}
	log.Info("Pass complete",
		zap.Bool("dry_run", options.DryRun),
		zap.Int("series_inserted", result.Series.Inserted),
		zap.Int("series_updated", result.Series.Updated),
		zap.Int("series_deleted", result.Series.Deleted),
		zap.Int("books_inserted", result.Books.Inserted),
		zap.Int("books_updated", result.Books.Updated),
		zap.Int("books_deleted", result.Books.Deleted),
		zap.Int("failures", len(result.Failures)),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// apply runs the series level and then the book level of every series that
// has a row after it.
func (s *Service) apply(ctx context.Context, uow *catalog.UnitOfWork, lib models.Library, scanned []scanner.ScannedSeries, options reconcile.Options, result *PassResult) error {
	truth := make([]models.Series, len(scanned))
	keys := make([]identity.Key, len(scanned))
	for i, sc := range scanned {
		truth[i] = s.seriesFromScan(ctx, lib, sc)
		keys[i] = sc.Key
	}

	// Books of removed series go with them and never reach the book level.
	cascaded, err := uow.Series().CountBooksNotIn(ctx, lib.ID, keys)
	if err != nil {
		return err
	}

	seriesOut, err := reconcile.Apply(ctx, &seriesLevel{repo: uow.Series(), library: lib}, truth, options)
	if seriesOut != nil {
		result.Series = seriesOut.Summary
		result.SeriesActions = append(result.SeriesActions, seriesOut.Actions...)
		result.Failures = append(result.Failures, seriesOut.Failures...)
	}
	if err != nil {
		return err
	}
	if seriesOut.Summary.Deleted > 0 {
		result.Books.Deleted += int(cascaded)
	}

	failed := make(map[string]struct{}, len(seriesOut.Failures))
	for _, f := range seriesOut.Failures {
		failed[f.Key] = struct{}{}
	}

	// Every scanned series has at least one book, so the book level never sees an empty scan.
	bookOptions := options
	bookOptions.AllowEmptyTruth = true

	for _, sc := range scanned {
		key := string(sc.Key)
		series, ok := seriesOut.Persisted[key]
		if !ok {
			if _, isFailed := failed[key]; !isFailed && options.DryRun {
				// Planned insert: every book of the series would be new.
				for _, b := range sc.Books {
					result.Books.Inserted++
					result.BookActions = append(result.BookActions, reconcile.Action{
						Type: reconcile.ActionInsert, Key: string(b.Key), Reason: "new series",
					})
				}
			}
			continue
		}

		books := make([]models.Book, len(sc.Books))
		for i, b := range sc.Books {
			books[i] = s.bookFromScan(ctx, lib, series, b)
		}

		bookOut, err := reconcile.Apply(ctx, &bookLevel{repo: uow.Books(), series: series}, books, bookOptions)
		if bookOut != nil {
			result.Books.Add(bookOut.Summary)
			result.BookActions = append(result.BookActions, bookOut.Actions...)
			result.Failures = append(result.Failures, bookOut.Failures...)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) seriesFromScan(ctx context.Context, lib models.Library, sc scanner.ScannedSeries) models.Series {
	name := sc.Name
	if len(sc.Books) > 0 && lib.ImportsSeriesMetadata(sc.Books[0].MediaType) {
		if embedded, ok := s.metadata.SeriesName(ctx, sc); ok && embedded != "" {
			name = embedded
		}
	}
	return models.Series{
		Name:             name,
		URL:              sc.Key,
		LibraryID:        lib.ID,
		FileLastModified: storedTime(sc.FileLastModified),
	}
}

func (s *Service) bookFromScan(ctx context.Context, lib models.Library, series models.Series, b scanner.ScannedBook) models.Book {
	title := models.TitleFromFile(b.Name)
	if lib.ImportsBookMetadata(b.MediaType) {
		if embedded, ok := s.metadata.BookTitle(ctx, b); ok && embedded != "" {
			title = embedded
		}
	}
	return models.Book{
		Title:            title,
		URL:              b.Key,
		LibraryID:        lib.ID,
		SeriesID:         series.ID,
		FileLastModified: storedTime(b.FileLastModified),
		FileSize:         b.FileSize,
		MediaType:        b.MediaType,
	}
}

// ReconcileAll reconciles every library, at most Parallelism at a time.
// A failing library does not stop the others; their errors are joined.
func (s *Service) ReconcileAll(ctx context.Context, opts ...PassOption) ([]*PassResult, error) {
	libs, err := s.store.Libraries().List(ctx)
	if err != nil {
		return nil, err
	}

	limit := s.config.Parallelism
	if limit <= 0 {
		limit = 1
	}

	results := make([]*PassResult, len(libs))
	errs := make([]error, len(libs))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, lib := range libs {
		g.Go(func() error {
			results[i], errs[i] = s.Reconcile(ctx, lib.ID, opts...)
			if errs[i] != nil {
				errs[i] = fmt.Errorf("library %s: %w", lib.Name, errs[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

// storedTime matches the precision the catalog persists so unchanged files compare equal.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
