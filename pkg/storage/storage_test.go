package storage_test

import (
	"context"
	"fmt"
	"testing"

	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/absmach/fedlearn/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]storage.Storage {
	t.Helper()

	bs, err := storage.NewBadgerStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { bs.Close() })

	return map[string]storage.Storage{
		"memory": storage.NewInMemoryStorage(),
		"badger": bs,
	}
}

func TestStorageCRUD(t *testing.T) {
	t.Parallel()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			cases := []struct {
				desc string
				key  string
				err  error
			}{
				{desc: "create new key", key: "round-1", err: nil},
				{desc: "create existing key", key: "round-1", err: pkgerrors.ErrEntityExists},
				{desc: "create empty key", key: "", err: pkgerrors.ErrEmptyKey},
			}
			for _, tc := range cases {
				err := s.Create(ctx, tc.key, []byte("v1"))
				if tc.err != nil {
					assert.ErrorIs(t, err, tc.err, tc.desc)

					continue
				}
				assert.NoError(t, err, tc.desc)
			}

			got, err := s.Get(ctx, "round-1")
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), got)

			require.NoError(t, s.Update(ctx, "round-1", []byte("v2")))
			got, err = s.Get(ctx, "round-1")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), got)

			assert.ErrorIs(t, s.Update(ctx, "missing", []byte("x")), pkgerrors.ErrNotFound)

			_, err = s.Get(ctx, "missing")
			assert.ErrorIs(t, err, pkgerrors.ErrNotFound)

			require.NoError(t, s.Delete(ctx, "round-1"))
			_, err = s.Get(ctx, "round-1")
			assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
			assert.ErrorIs(t, s.Delete(ctx, "round-1"), pkgerrors.ErrNotFound)
		})
	}
}

func TestStorageList(t *testing.T) {
	t.Parallel()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := range 5 {
				require.NoError(t, s.Create(ctx, fmt.Sprintf("key-%d", i), []byte{byte(i)}))
			}

			page, total, err := s.List(ctx, 1, 2)
			require.NoError(t, err)
			assert.Equal(t, uint64(5), total)
			require.Len(t, page, 2)
			assert.Equal(t, "key-1", page[0].Key)
			assert.Equal(t, []byte{2}, page[1].Value)

			page, total, err = s.List(ctx, 10, 2)
			require.NoError(t, err)
			assert.Equal(t, uint64(5), total)
			assert.Empty(t, page)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc string
		cfg  storage.Config
		err  bool
	}{
		{desc: "memory", cfg: storage.Config{Type: storage.TypeMemory}},
		{desc: "badger", cfg: storage.Config{Type: storage.TypeBadger, BadgerPath: t.TempDir()}},
		{desc: "unknown", cfg: storage.Config{Type: "postgres"}, err: true},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			s, err := storage.New(tc.cfg)
			if tc.err {
				assert.Error(t, err)

				return
			}
			require.NoError(t, err)
			require.NoError(t, s.Create(context.Background(), "k", []byte("v")))
			assert.NoError(t, s.Close())
		})
	}
}
