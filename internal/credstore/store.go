// Package credstore persists the account registry and the session pointer
// on top of a kv.Store.
//
// Both values are stored as JSON under fixed keys. Each operation is exactly
// one round trip to the backing store. Read failures are reported as
// common.ErrStorageFailure, but payloads that cannot be decoded degrade to
// an empty registry or to no session, so a corrupt value never locks users
// out.
package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/expensetracker/internal/common"
	"github.com/dmitrijs2005/expensetracker/internal/kv"
	"github.com/dmitrijs2005/expensetracker/internal/logging"
	"github.com/dmitrijs2005/expensetracker/internal/models"
)

const (
	KeyRegistry       = "users"
	KeySessionPointer = "current_user"
)

type Store struct {
	kv      kv.Store
	log     logging.Logger
	timeout time.Duration
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithTimeout bounds every storage round trip. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

func New(store kv.Store, opts ...Option) *Store {
	s := &Store{kv: store, log: logging.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// LoadRegistry returns the persisted registry, or an empty one when nothing
// is stored or the payload is unreadable.
func (s *Store) LoadRegistry(ctx context.Context) (models.Registry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := s.kv.Get(ctx, KeyRegistry)
	if err != nil {
		return nil, fmt.Errorf("%w: load registry: %w", common.ErrStorageFailure, err)
	}
	if data == nil {
		return models.Registry{}, nil
	}

	var reg models.Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		s.log.Warn(ctx, "registry unreadable, starting empty",
			"error", fmt.Errorf("%w: %w", common.ErrDecodeFailure, err))
		return models.Registry{}, nil
	}
	if reg == nil {
		return models.Registry{}, nil
	}

	// kept so a later save writes them back; Lookup ignores them
	for _, key := range reg.Malformed() {
		s.log.Warn(ctx, "registry entry cannot be used to sign in", "key", key)
	}
	return reg, nil
}

// SaveRegistry replaces the stored registry as a whole.
func (s *Store) SaveRegistry(ctx context.Context, reg models.Registry) error {
	if reg == nil {
		reg = models.Registry{}
	}
	data, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.kv.Set(ctx, KeyRegistry, data); err != nil {
		return fmt.Errorf("%w: save registry: %w", common.ErrStorageFailure, err)
	}
	return nil
}

// LoadSessionPointer returns the account recorded as signed in, or nil when
// the pointer is unset or unreadable. The record is not checked against the
// registry here.
func (s *Store) LoadSessionPointer(ctx context.Context) (*models.UserRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := s.kv.Get(ctx, KeySessionPointer)
	if err != nil {
		return nil, fmt.Errorf("%w: load session pointer: %w", common.ErrStorageFailure, err)
	}
	if data == nil {
		return nil, nil
	}

	var u *models.UserRecord
	if err := json.Unmarshal(data, &u); err != nil {
		s.log.Warn(ctx, "session pointer unreadable, treating as signed out",
			"error", fmt.Errorf("%w: %w", common.ErrDecodeFailure, err))
		return nil, nil
	}
	if u == nil || u.ID == "" || u.Email == "" {
		return nil, nil
	}
	return u, nil
}

// SaveSessionPointer records u as signed in, or clears the pointer when u is nil.
func (s *Store) SaveSessionPointer(ctx context.Context, u *models.UserRecord) error {
	if u == nil {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()

		if err := s.kv.Delete(ctx, KeySessionPointer); err != nil {
			return fmt.Errorf("%w: clear session pointer: %w", common.ErrStorageFailure, err)
		}
		return nil
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session pointer: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.kv.Set(ctx, KeySessionPointer, data); err != nil {
		return fmt.Errorf("%w: save session pointer: %w", common.ErrStorageFailure, err)
	}
	return nil
}
