package dataset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/absmach/fedlearn/pkg/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) dataset.InMemory {
	ds := make(dataset.InMemory, n)
	for i := range ds {
		ds[i] = dataset.Sample{Features: []float64{float64(i)}, Label: i % 3}
	}

	return ds
}

func TestSubset(t *testing.T) {
	t.Parallel()

	ds := seq(10)

	sub, err := dataset.Subset(ds, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, sub.Len())
	assert.Equal(t, 2.0, sub.Sample(0).Features[0])
	assert.Equal(t, 4.0, sub.Sample(2).Features[0])

	_, err = dataset.Subset(ds, 5, 2)
	assert.ErrorIs(t, err, dataset.ErrInvalidRange)

	_, err = dataset.Subset(ds, 0, 11)
	assert.ErrorIs(t, err, dataset.ErrInvalidRange)

	empty, err := dataset.Subset(ds, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestPartition(t *testing.T) {
	t.Parallel()

	ds := seq(105)

	cases := []struct {
		desc  string
		idx   int
		n     int
		first float64
		err   error
	}{
		{desc: "first partition", idx: 0, n: 10, first: 0},
		{desc: "last partition", idx: 9, n: 10, first: 90},
		{desc: "index out of range", idx: 10, n: 10, err: dataset.ErrInvalidPartition},
		{desc: "negative index", idx: -1, n: 10, err: dataset.ErrInvalidPartition},
		{desc: "zero partitions", idx: 0, n: 0, err: dataset.ErrInvalidPartition},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			p, err := dataset.Partition(ds, tc.idx, tc.n)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, 10, p.Len())
			assert.Equal(t, tc.first, p.Sample(0).Features[0])
		})
	}
}

func TestHead(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10, dataset.Head(seq(100), 10).Len())
	assert.Equal(t, 4, dataset.Head(seq(4), 10).Len())
}

func TestCSVLoaderUsageSplit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "images.csv")
	content := "label,pixels,usage\n" +
		"0,0 255 51 102,Training\n" +
		"1,255 255 0 0,Training\n" +
		"2,0 0 0 0,PublicTest\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	train, test, err := dataset.CSVLoader{TrainPath: path}.Load()
	require.NoError(t, err)
	require.Equal(t, 2, train.Len())
	require.Equal(t, 1, test.Len())

	first := train.Sample(0)
	assert.Equal(t, 0, first.Label)
	assert.InDeltaSlice(t, []float64{0, 1, 0.2, 0.4}, first.Features, 1e-9)
	assert.Equal(t, 2, test.Sample(0).Label)
}

func TestCSVLoaderSeparateFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	trainPath := filepath.Join(dir, "train.csv")
	testPath := filepath.Join(dir, "test.csv")
	require.NoError(t, os.WriteFile(trainPath, []byte("label,pixels\n1,10 20\n0,30 40\n"), 0o644))
	require.NoError(t, os.WriteFile(testPath, []byte("label,pixels\n1,50 60\n"), 0o644))

	l, err := dataset.NewLoader(dataset.FormatCSV, trainPath, testPath)
	require.NoError(t, err)

	train, test, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, train.Len())
	assert.Equal(t, 1, test.Len())
}

func TestCSVLoaderRejectsBadPixels(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("label,pixels\n1,10 300\n"), 0o644))

	_, _, err := dataset.CSVLoader{TrainPath: path}.Load()
	assert.Error(t, err)
}

func TestNewLoaderUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := dataset.NewLoader("parquet", "x", "")
	assert.ErrorIs(t, err, dataset.ErrUnknownFormat)
}

func TestFeatureCount(t *testing.T) {
	t.Parallel()

	n, err := dataset.FeatureCount(seq(3))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = dataset.FeatureCount(dataset.InMemory{})
	assert.ErrorIs(t, err, dataset.ErrEmptyDataset)

	mixed := dataset.InMemory{{Features: []float64{1}}, {Features: []float64{1, 2}}}
	_, err = dataset.FeatureCount(mixed)
	assert.ErrorIs(t, err, dataset.ErrFeatureMismatch)
}
