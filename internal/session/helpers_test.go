package session

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/expensetracker/internal/credstore"
	"github.com/dmitrijs2005/expensetracker/internal/cryptox"
	"github.com/dmitrijs2005/expensetracker/internal/kv"
	"github.com/dmitrijs2005/expensetracker/internal/models"
	"github.com/stretchr/testify/require"
)

// hookStore wraps a real credential store and lets a test fail or stall
// individual writes.
type hookStore struct {
	CredentialStore
	onSaveRegistry func(ctx context.Context) error
	onSavePointer  func(ctx context.Context, u *models.UserRecord) error
}

func (h *hookStore) SaveRegistry(ctx context.Context, reg models.Registry) error {
	if h.onSaveRegistry != nil {
		if err := h.onSaveRegistry(ctx); err != nil {
			return err
		}
	}
	return h.CredentialStore.SaveRegistry(ctx, reg)
}

func (h *hookStore) SaveSessionPointer(ctx context.Context, u *models.UserRecord) error {
	if h.onSavePointer != nil {
		if err := h.onSavePointer(ctx, u); err != nil {
			return err
		}
	}
	return h.CredentialStore.SaveSessionPointer(ctx, u)
}

func testHasher() cryptox.Hasher {
	return cryptox.NewChain(
		cryptox.NewArgon2(cryptox.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16, SaltLen: 8}),
		cryptox.Legacy{},
	)
}

func newBacking() *credstore.Store {
	return credstore.New(kv.NewMemoryStore())
}

func newService(t *testing.T, store CredentialStore, opts ...Option) *Service {
	t.Helper()
	s, err := NewService(context.Background(), store, testHasher(), opts...)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func recv(t *testing.T, sub *Subscription) models.State {
	t.Helper()
	select {
	case st, ok := <-sub.C():
		require.True(t, ok, "subscription closed unexpectedly")
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session state")
		return models.State{}
	}
}

func requireQuiet(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case st := <-sub.C():
		t.Fatalf("unexpected session state %+v", st)
	case <-time.After(50 * time.Millisecond):
	}
}

// requireClosed drains sub until its channel closes. Values already queued
// when the subscription ended may still arrive first.
func requireClosed(t *testing.T, sub *Subscription) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.C():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription not closed")
		}
	}
}
