// Package kv is the byte-oriented preference storage that credentials are
// persisted in. Every backend behaves the same way: Get returns (nil, nil)
// for a key that was never set or has been deleted, Set replaces the whole
// value, and Delete of a missing key is not an error.
package kv

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/expensetracker/internal/config"
	"github.com/dmitrijs2005/expensetracker/internal/dbx"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the backend selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case "sqlite", "postgres":
		d, err := dbx.ParseDialect(cfg.StoreBackend)
		if err != nil {
			return nil, err
		}
		return OpenSQL(ctx, d, cfg.DatabaseDSN)
	case "file":
		return NewFileStore(cfg.StoreDir)
	case "memory":
		return NewMemoryStore(), nil
	case "s3":
		return OpenS3(ctx, S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Prefix:       cfg.S3Prefix,
		})
	case "redis":
		return OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
