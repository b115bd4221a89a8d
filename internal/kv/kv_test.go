package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/expensetracker/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	v, err := s.Get(ctx, "users")
	require.NoError(t, err)
	assert.Nil(t, v, "missing key reads as nil")

	require.NoError(t, s.Set(ctx, "users", []byte(`{"a":1}`)))
	v, err = s.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), v)

	require.NoError(t, s.Set(ctx, "users", []byte(`{"b":2}`)))
	v, err = s.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"b":2}`), v, "set replaces the value")

	require.NoError(t, s.Set(ctx, "current_user", []byte(`{}`)))
	require.NoError(t, s.Delete(ctx, "current_user"))
	v, err = s.Get(ctx, "current_user")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, s.Delete(ctx, "current_user"), "deleting a missing key is fine")

	v, err = s.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"b":2}`), v, "other keys untouched")
}

func TestStores_SharedBehaviour(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		exerciseStore(t, NewMemoryStore())
	})

	t.Run("file", func(t *testing.T) {
		s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "dir"))
		require.NoError(t, err)
		exerciseStore(t, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQL(context.Background(), "sqlite", filepath.Join(t.TempDir(), "kv.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		exerciseStore(t, s)
	})

	t.Run("redis", func(t *testing.T) {
		exerciseStore(t, NewRedisStore(newFakeRedis(), "et:"))
	})

	t.Run("s3", func(t *testing.T) {
		exerciseStore(t, NewS3Store(newFakeS3(), "bucket", "credentials/"))
	})
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'X'

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)

	out[1] = 'Y'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Set(ctx, "k", nil), context.Canceled)
	assert.ErrorIs(t, s.Delete(ctx, "k"), context.Canceled)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	base := func() *config.Config {
		c := &config.Config{}
		c.LoadDefaults()
		return c
	}

	t.Run("memory", func(t *testing.T) {
		c := base()
		c.StoreBackend = "memory"
		s, err := Open(ctx, c)
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, s)
	})

	t.Run("file", func(t *testing.T) {
		c := base()
		c.StoreBackend = "file"
		c.StoreDir = t.TempDir()
		s, err := Open(ctx, c)
		require.NoError(t, err)
		assert.IsType(t, &FileStore{}, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		c := base()
		c.DatabaseDSN = filepath.Join(t.TempDir(), "et.db")
		s, err := Open(ctx, c)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		assert.IsType(t, &SQLStore{}, s)
	})

	t.Run("unknown", func(t *testing.T) {
		c := base()
		c.StoreBackend = "etcd"
		_, err := Open(ctx, c)
		assert.ErrorContains(t, err, "unknown store backend")
	})
}
