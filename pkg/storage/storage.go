package storage

import "context"

// Storage is a flat key-value store of encoded records.
type Storage interface {
	Create(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Update(ctx context.Context, key string, value []byte) error
	List(ctx context.Context, offset, limit uint64) ([]Entry, uint64, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

type Entry struct {
	Key   string
	Value []byte
}
