// Package store persists place records in an embedded SQLite database.
//
// Usage Example:
//
//	s, err := store.Open(store.Options{Path: "data/places.db"})
//	if err != nil {
//	  return err
//	}
//	defer s.Close()
//
//	// Must complete before any other operation
//	if err := s.InitializeSchema(ctx); err != nil {
//	  return err
//	}
//
//	rec, _ := place.New("Eiffel Tower", "file:///a.jpg", place.Location{Lat: 48.8584, Lng: 2.2945, Address: "Paris, France"})
//	id, _ := s.Insert(ctx, rec)
//	got, err := s.FetchByID(ctx, id)
//	if errors.Is(err, store.ErrNotFound) {
//	  // deleted meanwhile
//	}
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"placebook/internal/logging"
	"placebook/internal/place"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tableName = "places"

// AUTOINCREMENT keeps ids of deleted rows from being handed out again.
const placesTable = `
	CREATE TABLE IF NOT EXISTS places (
		id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
		title TEXT NOT NULL,
		imageUri TEXT NOT NULL,
		address TEXT NOT NULL,
		lat REAL NOT NULL,
		lng REAL NOT NULL
	)`

// Operation names used for errors, spans, logs and metrics.
const (
	OpInitializeSchema = "initialize_schema"
	OpInsert           = "insert"
	OpFetchAll         = "fetch_all"
	OpFetchByID        = "fetch_by_id"
	OpDelete           = "delete"
)

// slowOperation is the threshold above which an operation is logged as a warning.
const slowOperation = 250 * time.Millisecond

var journalModes = map[string]bool{
	"DELETE": true, "TRUNCATE": true, "PERSIST": true,
	"MEMORY": true, "WAL": true, "OFF": true,
}

// Options configures the engine behind a PlaceStore.
type Options struct {
	// Path of the database file, or ":memory:".
	Path string

	// Driver is the database/sql driver name: "sqlite" (default) or "sqlite3".
	Driver string

	// BusyTimeout bounds how long SQLite waits for a lock held by another
	// connection or process. Zero leaves the engine default.
	BusyTimeout time.Duration

	// JournalMode is applied with PRAGMA journal_mode when set.
	JournalMode string
}

// Option customizes a PlaceStore.
type Option func(*PlaceStore)

// WithMetrics records operation counts and latencies.
func WithMetrics(m *Metrics) Option {
	return func(s *PlaceStore) { s.metrics = m }
}

// WithTracerProvider sets the provider used for operation spans.
// The global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *PlaceStore) { s.tracer = tp.Tracer(tracerName) }
}

// PlaceStore is the sole gateway to durable place records. It owns its
// engine handle; create one at startup and pass it to every caller.
//
// Each operation runs one statement in its own transaction. The store adds
// no locking, queuing or retries of its own: overlapping calls are
// serialized by the engine.
type PlaceStore struct {
	db      *sql.DB
	opts    Options
	ready   atomic.Bool
	metrics *Metrics
	tracer  trace.Tracer
}

// Open opens the database handle. The schema is not touched until
// InitializeSchema is called.
func Open(opts Options, options ...Option) (*PlaceStore, error) {
	if opts.Path == "" {
		return nil, &InitError{Path: opts.Path, Err: errors.New("database path required")}
	}
	if opts.Driver == "" {
		opts.Driver = "sqlite"
	}

	logging.Store("Opening place store at %s (driver=%s)", opts.Path, opts.Driver)

	if !isMemory(opts.Path) {
		dir := filepath.Dir(opts.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.StoreError("Failed to create directory %s: %v", dir, err)
			return nil, &InitError{Path: opts.Path, Err: fmt.Errorf("failed to create directory: %w", err)}
		}
	}

	db, err := sql.Open(opts.Driver, opts.Path)
	if err != nil {
		logging.StoreError("Failed to open database at %s: %v", opts.Path, err)
		return nil, &InitError{Path: opts.Path, Err: fmt.Errorf("failed to open database: %w", err)}
	}
	// One connection keeps ":memory:" a single database and leaves write
	// serialization to SQLite.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &PlaceStore{
		db:     db,
		opts:   opts,
		tracer: otel.Tracer(tracerName),
	}
	for _, o := range options {
		o(s)
	}
	return s, nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

// Path returns the database file path.
func (s *PlaceStore) Path() string {
	return s.opts.Path
}

// Ready reports whether InitializeSchema has completed.
func (s *PlaceStore) Ready() bool {
	return s.ready.Load()
}

// Close closes the database connection.
func (s *PlaceStore) Close() error {
	logging.Store("Closing place store %s", s.opts.Path)
	return s.db.Close()
}

// track wraps one operation with a span, a timer, and metrics.
func (s *PlaceStore) track(ctx context.Context, op string) (context.Context, func(error)) {
	timer := logging.StartTimer(logging.CategoryStore, op)
	ctx, endSpan := startSpan(ctx, s.tracer, op)

	return ctx, func(err error) {
		elapsed := timer.StopWithThreshold(slowOperation)
		endSpan(err)

		outcome := OutcomeOK
		switch {
		case err == nil:
		case errors.Is(err, ErrNotFound):
			outcome = OutcomeNotFound
		default:
			outcome = OutcomeError
			logging.StoreError("%s failed: %v", op, err)
		}
		s.metrics.observe(op, outcome, elapsed)
	}
}

// inTx runs fn inside its own transaction, rolling back on error.
func (s *PlaceStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// InitializeSchema ensures the places table exists. It is safe to call on
// every start and never drops or alters existing rows. It must complete
// before any other operation is issued.
func (s *PlaceStore) InitializeSchema(ctx context.Context) (err error) {
	ctx, done := s.track(ctx, OpInitializeSchema)
	defer func() { done(err) }()

	if err := s.db.PingContext(ctx); err != nil {
		return &InitError{Path: s.opts.Path, Err: fmt.Errorf("failed to open database: %w", err)}
	}

	s.applyPragmas(ctx)

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, placesTable)
		return err
	})
	if err != nil {
		return &InitError{Path: s.opts.Path, Err: fmt.Errorf("failed to create table: %w", err)}
	}

	s.ready.Store(true)
	logging.Store("Place store schema ready at %s", s.opts.Path)
	return nil
}

// applyPragmas tunes the connection. Failures are logged and ignored since
// the store works with engine defaults.
func (s *PlaceStore) applyPragmas(ctx context.Context) {
	if s.opts.BusyTimeout > 0 {
		pragma := fmt.Sprintf("PRAGMA busy_timeout = %d", s.opts.BusyTimeout.Milliseconds())
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
		}
	}

	if s.opts.JournalMode != "" {
		mode := strings.ToUpper(s.opts.JournalMode)
		if !journalModes[mode] {
			logging.StoreWarn("Ignoring unknown journal mode %q", s.opts.JournalMode)
			return
		}
		if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = "+mode); err != nil {
			logging.StoreDebug("Failed to set sqlite journal_mode=%s: %v", mode, err)
		}
	}
}

// Insert persists a new record and returns the id assigned by the engine.
// The record must not carry an id and must pass validation.
func (s *PlaceStore) Insert(ctx context.Context, r place.Record) (id int64, err error) {
	ctx, done := s.track(ctx, OpInsert)
	defer func() { done(err) }()

	if !s.Ready() {
		return 0, &WriteError{Op: OpInsert, Err: ErrNotReady}
	}
	if r.HasID() {
		return 0, &WriteError{Op: OpInsert, Err: fmt.Errorf("%w: %d", ErrIDAssigned, r.ID)}
	}
	if err := r.Validate(); err != nil {
		return 0, &WriteError{Op: OpInsert, Err: err}
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO places (title, imageUri, address, lat, lng) VALUES (?, ?, ?, ?, ?)`,
			r.Title, r.ImageURI, r.Location.Address, r.Location.Lat, r.Location.Lng,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, &WriteError{Op: OpInsert, Err: err}
	}

	logging.StoreDebug("Inserted place id=%d title=%q", id, r.Title)
	return id, nil
}

// FetchAll returns every stored place. The order is unspecified. An empty
// table yields an empty slice.
func (s *PlaceStore) FetchAll(ctx context.Context) (places []place.Record, err error) {
	ctx, done := s.track(ctx, OpFetchAll)
	defer func() { done(err) }()

	if !s.Ready() {
		return nil, &ReadError{Op: OpFetchAll, Err: ErrNotReady}
	}

	places = []place.Record{}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, "SELECT "+placeColumns+" FROM places")
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanPlace(rows)
			if err != nil {
				return err
			}
			places = append(places, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, &ReadError{Op: OpFetchAll, Err: err}
	}

	logging.StoreDebug("Fetched %d places", len(places))
	return places, nil
}

// FetchByID returns the place with the given id, or ErrNotFound.
func (s *PlaceStore) FetchByID(ctx context.Context, id int64) (rec place.Record, err error) {
	ctx, done := s.track(ctx, OpFetchByID)
	defer func() { done(err) }()

	if !s.Ready() {
		return place.Record{}, &ReadError{Op: OpFetchByID, Err: ErrNotReady}
	}

	found := false
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, "SELECT "+placeColumns+" FROM places WHERE id = ?", id)
		if err != nil {
			return err
		}
		defer rows.Close()

		if rows.Next() {
			if rec, err = scanPlace(rows); err != nil {
				return err
			}
			found = true
		}
		return rows.Err()
	})
	if err != nil {
		return place.Record{}, &ReadError{Op: OpFetchByID, Err: err}
	}
	if !found {
		return place.Record{}, fmt.Errorf("place %d: %w", id, ErrNotFound)
	}
	return rec, nil
}

// Delete removes the place with the given id. Deleting an id that does not
// exist succeeds.
func (s *PlaceStore) Delete(ctx context.Context, id int64) (err error) {
	ctx, done := s.track(ctx, OpDelete)
	defer func() { done(err) }()

	if !s.Ready() {
		return &WriteError{Op: OpDelete, Err: ErrNotReady}
	}

	var affected int64
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM places WHERE id = ?", id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return &WriteError{Op: OpDelete, Err: err}
	}

	logging.StoreDebug("Deleted place id=%d (rows=%d)", id, affected)
	return nil
}
