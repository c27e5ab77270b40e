package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db     *sql.DB
	logger logger.Logger
	cfg    Config

	mu      sync.Mutex
	pending map[string]Value
	order   []string
	closed  bool

	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
}

// NewRepository opens the database at cfg.DBPath and starts the periodic
// flusher. Upserts are buffered and coalesced per metric name, so a flush
// writes at most one row per metric regardless of delivery rate.
func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}

	backupDir := ""
	if cfg.BackupOnMigrate {
		backupDir = filepath.Join(filepath.Dir(cfg.DBPath), "backups")
	}
	if err := ValidateAndUpdateSchema(db, backupDir, log); err != nil {
		db.Close()
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "schema_version",
			Error: err.Error(),
		})
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Int("batch_size", cfg.BatchSize).
		Dur("flush_interval", cfg.FlushInterval).
		Msg("Store repository initialized")

	repo := &repository{
		db:            db,
		logger:        log,
		cfg:           cfg,
		pending:       make(map[string]Value),
		flushTicker:   time.NewTicker(cfg.FlushInterval),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}
	go repo.flusher()

	return repo, nil
}

func (r *repository) Upsert(v Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errors.New().WithMessage(ErrStorageAccess, "repository closed")
	}

	if _, ok := r.pending[v.Name]; !ok {
		r.order = append(r.order, v.Name)
	}
	r.pending[v.Name] = v

	if len(r.pending) >= r.cfg.BatchSize {
		return r.flush()
	}

	return nil
}

func (r *repository) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flush()
}

func (r *repository) Latest(ctx context.Context) ([]Value, error) {
	errFactory := errors.New()

	rows, err := r.db.QueryContext(ctx, selectLatestSQL)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var values []Value
	for rows.Next() {
		var v Value
		var updated int64
		if err := rows.Scan(&v.Name, &v.Value, &v.SessionID, &updated); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		v.UpdatedAt = time.UnixMilli(updated)
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return values, nil
}

func (r *repository) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	close(r.shutdownChan)
	r.flushTicker.Stop()

	// Wait for the flusher to finish its final flush
	<-r.flushDoneChan

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "checkpoint_wal",
			Error: err.Error(),
		})
	}

	if err := r.db.Close(); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	r.logger.Info().Msg("Store repository closed gracefully")

	return nil
}

func (r *repository) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			_ = r.flush()
			r.mu.Unlock()
		case <-r.shutdownChan:
			r.mu.Lock()
			_ = r.flush()
			r.mu.Unlock()
			return
		}
	}
}

// flush writes the pending values in one transaction. Callers hold r.mu.
// On failure the pending values are kept for the next attempt.
func (r *repository) flush() error {
	if len(r.pending) == 0 {
		return nil
	}

	errFactory := errors.New()

	tx, err := r.db.Begin()
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to begin transaction")
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	stmt, err := tx.Prepare(upsertValueSQL)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to prepare statement")
		if err := tx.Rollback(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to roll back transaction")
		}
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer stmt.Close()

	for _, name := range r.order {
		v := r.pending[name]
		if _, err := stmt.Exec(v.Name, v.Value, v.SessionID, v.UpdatedAt.UnixMilli()); err != nil {
			r.logger.Error().Err(err).Str("metric", name).Msg("Failed to execute upsert")
			if err := tx.Rollback(); err != nil {
				r.logger.Error().Err(err).Msg("Failed to roll back transaction")
			}
			return errFactory.Wrap(ErrTransactionFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to commit transaction")
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	r.logger.Debug().Int("records", len(r.order)).Msg("Flushed latest values to database")
	r.pending = make(map[string]Value)
	r.order = r.order[:0]

	return nil
}
