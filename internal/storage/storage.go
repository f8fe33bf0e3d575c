package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/inbound/internal/config"
	"github.com/JonMunkholm/inbound/internal/core"
)

// Store is a core.Store that owns a connection or file handle.
type Store interface {
	core.Store
	io.Closer
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	var (
		s   Store
		err error
	)

	switch strings.ToLower(cfg.Driver) {
	case config.DriverMemory:
		s = NewMemoryStore()
	case config.DriverBadger:
		s, err = OpenBadger(cfg.BadgerDir, cfg.KeyPrefix)
	case config.DriverPostgres:
		s, err = OpenPostgres(ctx, PostgresOptions{
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.MaxConns,
			MinConns: cfg.MinConns,
			Prefix:   cfg.KeyPrefix,
		})
	case config.DriverRedis:
		s, err = OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 {
		s = WithTimeout(s, cfg.Timeout)
	}
	return s, nil
}

// WithTimeout bounds every call on s by d.
func WithTimeout(s Store, d time.Duration) Store {
	return &timeoutStore{next: s, timeout: d}
}

type timeoutStore struct {
	next    Store
	timeout time.Duration
}

func (t *timeoutStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Get(ctx, key)
}

func (t *timeoutStore) PutAll(ctx context.Context, entries map[string][]byte) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.PutAll(ctx, entries)
}

func (t *timeoutStore) Close() error {
	return t.next.Close()
}

func prefixed(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
