package storage

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/absmach/fedlearn/pkg/errors"
)

type inMemoryStorage struct {
	sync.Mutex

	data map[string][]byte
}

func NewInMemoryStorage() Storage {
	return &inMemoryStorage{
		data: make(map[string][]byte),
	}
}

func (s *inMemoryStorage) Create(_ context.Context, key string, value []byte) error {
	if key == "" {
		return errors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.data[key]; ok {
		return errors.ErrEntityExists
	}

	s.data[key] = slices.Clone(value)

	return nil
}

func (s *inMemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	if val, ok := s.data[key]; ok {
		return slices.Clone(val), nil
	}

	return nil, errors.ErrNotFound
}

func (s *inMemoryStorage) Update(_ context.Context, key string, value []byte) error {
	if key == "" {
		return errors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.data[key]; !ok {
		return errors.ErrNotFound
	}

	s.data[key] = slices.Clone(value)

	return nil
}

func (s *inMemoryStorage) List(_ context.Context, offset, limit uint64) (result []Entry, total uint64, err error) {
	s.Lock()
	defer s.Unlock()

	keys := slices.Sorted(maps.Keys(s.data))

	total = uint64(len(keys))
	if offset >= total {
		return nil, total, nil
	}

	end := min(offset+limit, total)

	result = make([]Entry, 0, end-offset)
	for _, k := range keys[offset:end] {
		result = append(result, Entry{Key: k, Value: slices.Clone(s.data[k])})
	}

	return result, total, nil
}

func (s *inMemoryStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.data[key]; !ok {
		return errors.ErrNotFound
	}
	delete(s.data, key)

	return nil
}

func (s *inMemoryStorage) Close() error {
	return nil
}
