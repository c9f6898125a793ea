package dataset

import (
	"errors"
	"fmt"
)

const (
	FormatCSV     = "csv"
	FormatCIFAR10 = "cifar10"
)

var ErrUnknownFormat = errors.New("unknown dataset format")

// Loader reads a complete train and test set.
type Loader interface {
	Load() (train, test Dataset, err error)
}

// NewLoader returns the loader for the named on-disk format. For csv, path is the
// training file and testPath the optional test file; for cifar10, path is the
// directory holding the binary batches.
func NewLoader(format, path, testPath string) (Loader, error) {
	switch format {
	case FormatCSV:
		return CSVLoader{TrainPath: path, TestPath: testPath}, nil
	case FormatCIFAR10:
		return CIFAR10Loader{Dir: path}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
