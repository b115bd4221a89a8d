package server

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/expensetracker/internal/config"
	"github.com/dmitrijs2005/expensetracker/internal/credstore"
	"github.com/dmitrijs2005/expensetracker/internal/cryptox"
	"github.com/dmitrijs2005/expensetracker/internal/kv"
	"github.com/dmitrijs2005/expensetracker/internal/logging"
	"github.com/dmitrijs2005/expensetracker/internal/session"
)

// Sessions is a session service together with the storage it owns.
type Sessions struct {
	*session.Service
	store kv.Store
}

// OpenSessions wires storage, hashing and the session service from cfg.
// Used by the daemon and by the CLI when it runs without a daemon.
func OpenSessions(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Sessions, error) {
	hasher, err := cryptox.NewHasher(cfg.PasswordScheme)
	if err != nil {
		return nil, err
	}

	store, err := kv.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}

	creds := credstore.New(store,
		credstore.WithLogger(logger.With("module", "credstore")),
		credstore.WithTimeout(cfg.StorageTimeout),
	)

	svc, err := session.NewService(ctx, creds, hasher,
		session.WithLogger(logger.With("module", "session")),
		session.WithGenericErrors(cfg.GenericAuthErrors),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	return &Sessions{Service: svc, store: store}, nil
}

// Close ends all watchers and releases the store.
func (s *Sessions) Close() error {
	s.Service.Close()
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
