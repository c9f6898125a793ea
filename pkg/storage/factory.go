package storage

import "fmt"

const (
	TypeMemory = "memory"
	TypeBadger = "badger"
)

type Config struct {
	Type       string
	BadgerPath string
}

// New opens the storage backend named by cfg.Type.
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeBadger:
		return NewBadgerStorage(cfg.BadgerPath)
	case TypeMemory:
		return NewInMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
