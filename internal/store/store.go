// Package store persists the latest delivered value of every metric so a
// display can show something meaningful right after a restart. It keeps
// no history: one row per metric, overwritten in place.
package store

import (
	"context"
	"time"

	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/logger"
)

type service struct {
	repo      Repository
	sessionID string
	logger    logger.Logger
	now       func() time.Time
}

// No-op implementation
type noopStore struct{}

// NewService returns a Store recording deliveries under sessionID. When
// the store is disabled it returns a no-op Store.
func NewService(cfg Config, sessionID string, log logger.Logger) (Store, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Store disabled, using no-op store")
		return &noopStore{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create store repository")
		return nil, err
	}

	log.Debug().
		Str("db_path", cfg.DBPath).
		Str("session", sessionID).
		Msg("Store service initialized successfully")

	return &service{
		repo:      repo,
		sessionID: sessionID,
		logger:    log,
		now:       time.Now,
	}, nil
}

// Deliver buffers the value. Storage errors are logged, never returned:
// a broken database must not stall delivery to the display.
func (s *service) Deliver(name, value string) {
	err := s.repo.Upsert(Value{
		Name:      name,
		Value:     value,
		SessionID: s.sessionID,
		UpdatedAt: s.now(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("metric", name).Msg("Failed to store value")
	}
}

func (s *service) Latest(ctx context.Context) ([]Value, error) {
	return s.repo.Latest(ctx)
}

func (s *service) Flush() error {
	return s.repo.Flush()
}

func (s *service) Close() error {
	errFactory := errors.New()

	if err := s.repo.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}
	return nil
}

func (*noopStore) Deliver(_, _ string) {}

func (*noopStore) Latest(_ context.Context) ([]Value, error) {
	return nil, nil
}

func (*noopStore) Flush() error {
	return nil
}

func (*noopStore) Close() error {
	return nil
}
