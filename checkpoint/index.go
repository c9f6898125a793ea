package checkpoint

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/absmach/fedlearn/pkg/storage"
	"github.com/fxamacker/cbor/v2"
)

// Index keeps checkpoint summaries in a key-value store, so the history survives
// restarts without decoding every checkpoint file. Keys start with the zero-padded
// round, so pages come back in the same round-then-name order as List.
type Index struct {
	store storage.Storage
}

func NewIndex(store storage.Storage) *Index {
	return &Index{store: store}
}

func (i *Index) Put(ctx context.Context, s Summary) error {
	data, err := encMode.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: encode summary: %w", pkgerrors.ErrIOFailure, err)
	}

	key := indexKey(s.Round, s.Name)
	err = i.store.Create(ctx, key, data)
	if errors.Is(err, pkgerrors.ErrEntityExists) {
		err = i.store.Update(ctx, key, data)
	}
	if err != nil {
		return fmt.Errorf("%w: index %s: %w", pkgerrors.ErrIOFailure, s.Name, err)
	}

	return nil
}

func (i *Index) Get(ctx context.Context, round int, name string) (Summary, error) {
	data, err := i.store.Get(ctx, indexKey(round, name))
	if err != nil {
		return Summary{}, err
	}

	return decodeSummary(data)
}

func (i *Index) List(ctx context.Context, offset, limit uint64) ([]Summary, uint64, error) {
	entries, total, err := i.store.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]Summary, 0, len(entries))
	for _, e := range entries {
		s, err := decodeSummary(e.Value)
		if err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, s)
	}

	return summaries, total, nil
}

func indexKey(round int, name string) string {
	return fmt.Sprintf("%010d/%s", round, name)
}

func decodeSummary(data []byte) (Summary, error) {
	var s Summary
	if err := cbor.Unmarshal(data, &s); err != nil {
		return Summary{}, fmt.Errorf("%w: %w", pkgerrors.ErrInvalidData, err)
	}

	return s, nil
}
