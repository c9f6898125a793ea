package dataset

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCIFAR(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	for label := range 2 {
		rec := make([]byte, cifarRecordSize)
		rec[0] = byte(label + 3)
		rec[1] = 255
		buf.Write(rec)
	}

	ds, err := decodeCIFAR(&buf)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, 4, ds.Sample(1).Label)
	assert.Len(t, ds.Sample(0).Features, cifarImageBytes)
	assert.Equal(t, 1.0, ds.Sample(0).Features[0])
}

func TestDecodeCIFARTruncated(t *testing.T) {
	t.Parallel()

	_, err := decodeCIFAR(bytes.NewReader(make([]byte, cifarRecordSize+10)))
	assert.Error(t, err)
}

func TestDecodeCIFARBadLabel(t *testing.T) {
	t.Parallel()

	rec := make([]byte, cifarRecordSize)
	rec[0] = 10
	_, err := decodeCIFAR(bytes.NewReader(rec))
	assert.Error(t, err)
}
