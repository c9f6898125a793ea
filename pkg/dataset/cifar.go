package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	cifarImageBytes = 32 * 32 * 3
	cifarRecordSize = 1 + cifarImageBytes
	cifarClasses    = 10
)

var (
	cifarTrainBatches = []string{"data_batch_1.bin", "data_batch_2.bin", "data_batch_3.bin", "data_batch_4.bin", "data_batch_5.bin"}
	cifarTestBatches  = []string{"test_batch.bin"}
)

// CIFAR10Loader reads the binary distribution of CIFAR-10 from Dir.
type CIFAR10Loader struct {
	Dir string
}

func (l CIFAR10Loader) Load() (train, test Dataset, err error) {
	if train, err = l.readBatches(cifarTrainBatches); err != nil {
		return nil, nil, err
	}
	if test, err = l.readBatches(cifarTestBatches); err != nil {
		return nil, nil, err
	}

	return train, test, nil
}

func (l CIFAR10Loader) readBatches(names []string) (InMemory, error) {
	var ds InMemory
	for _, name := range names {
		path := filepath.Join(l.Dir, name)
		samples, err := readCIFARBatch(path)
		if err != nil {
			return nil, err
		}
		ds = append(ds, samples...)
	}

	return ds, nil
}

func readCIFARBatch(path string) (InMemory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CIFAR-10 batch '%s': %w", path, err)
	}
	defer f.Close()

	return decodeCIFAR(bufio.NewReader(f))
}

// decodeCIFAR reads fixed-size records of one label byte followed by 3072 pixel bytes.
func decodeCIFAR(r io.Reader) (InMemory, error) {
	var ds InMemory
	buf := make([]byte, cifarRecordSize)
	for {
		_, err := io.ReadFull(r, buf)
		if errors.Is(err, io.EOF) {
			return ds, nil
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(ds), err)
		}

		label := int(buf[0])
		if label >= cifarClasses {
			return nil, fmt.Errorf("record %d: label %d outside [0, %d)", len(ds), label, cifarClasses)
		}
		features := make([]float64, cifarImageBytes)
		for i, b := range buf[1:] {
			features[i] = float64(b) / maxIntensity
		}
		ds = append(ds, Sample{Features: features, Label: label})
	}
}
