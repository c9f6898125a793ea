package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/dgraph-io/badger/v4"
)

const defaultBadgerDir = "./data"

type badgerStorage struct {
	sync.RWMutex

	db *badger.DB
}

func NewBadgerStorage(dataDir string) (Storage, error) {
	if dataDir == "" {
		dataDir = defaultBadgerDir
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	opts := badger.DefaultOptions(filepath.Join(dataDir, "badger.db"))
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Join(ErrDBConnection, fmt.Errorf("failed to open Badger database: %w", err))
	}

	return &badgerStorage{
		db: db,
	}, nil
}

func (s *badgerStorage) Create(_ context.Context, key string, value []byte) error {
	if key == "" {
		return pkgerrors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		switch err := exists(txn, key); {
		case err == nil:
			return pkgerrors.ErrEntityExists
		case !errors.Is(err, pkgerrors.ErrNotFound):
			return err
		}

		if err := txn.Set([]byte(key), value); err != nil {
			return errors.Join(ErrCreate, err)
		}

		return nil
	})
}

func (s *badgerStorage) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, pkgerrors.ErrEmptyKey
	}

	s.RLock()
	defer s.RUnlock()

	var result []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return pkgerrors.ErrNotFound
			}

			return fmt.Errorf("failed to get key: %w", err)
		}

		result, err = item.ValueCopy(nil)

		return err
	})

	return result, err
}

func (s *badgerStorage) Update(_ context.Context, key string, value []byte) error {
	if key == "" {
		return pkgerrors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		if err := exists(txn, key); err != nil {
			return err
		}

		if err := txn.Set([]byte(key), value); err != nil {
			return errors.Join(ErrUpdate, err)
		}

		return nil
	})
}

func (s *badgerStorage) List(_ context.Context, offset, limit uint64) (result []Entry, total uint64, err error) {
	s.RLock()
	defer s.RUnlock()

	// Badger iterates keys in byte order, so pages are stable.
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		var idx uint64
		for it.Rewind(); it.Valid(); it.Next() {
			if idx >= offset && idx-offset < limit {
				item := it.Item()
				val, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				result = append(result, Entry{Key: string(item.KeyCopy(nil)), Value: val})
			}
			idx++
		}
		total = idx

		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list keys: %w", err)
	}

	return result, total, nil
}

func (s *badgerStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return pkgerrors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		if err := exists(txn, key); err != nil {
			return err
		}

		if err := txn.Delete([]byte(key)); err != nil {
			return errors.Join(ErrDelete, err)
		}

		return nil
	})
}

func exists(txn *badger.Txn, key string) error {
	if _, err := txn.Get([]byte(key)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return pkgerrors.ErrNotFound
		}

		return fmt.Errorf("failed to check key existence: %w", err)
	}

	return nil
}

func (s *badgerStorage) Close() error {
	s.Lock()
	defer s.Unlock()

	return s.db.Close()
}
