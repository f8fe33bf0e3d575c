package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore persists entries in an embedded badger database. It is the
// default for a single receiving station.
type BadgerStore struct {
	db     *badger.DB
	prefix string
}

// OpenBadger opens (or creates) a badger database in dir. An empty dir
// opens an in-memory database.
func OpenBadger(dir, prefix string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", dir, err)
	}
	return &BadgerStore{db: db, prefix: prefix}, nil
}

func (b *BadgerStore) key(k string) []byte {
	return []byte(prefixed(b.prefix, k))
}

// Get returns the value stored under key.
func (b *BadgerStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// PutAll writes entries in one transaction.
func (b *BadgerStore) PutAll(_ context.Context, entries map[string][]byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		for k, v := range entries {
			if err := txn.Set(b.key(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}
