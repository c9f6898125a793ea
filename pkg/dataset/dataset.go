// Package dataset provides the indexable sample collections a client trains and
// evaluates on, and the loaders that turn on-disk image sets into partitions.
package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDataset     = errors.New("dataset is empty")
	ErrInvalidPartition = errors.New("invalid partition")
	ErrInvalidRange     = errors.New("invalid subset range")
	ErrFeatureMismatch  = errors.New("samples have different feature counts")
)

// Sample is one labelled example. Features are normalized to [0, 1].
type Sample struct {
	Features []float64
	Label    int
}

// Dataset is an ordered, indexable, read-only collection of samples.
type Dataset interface {
	Len() int
	Sample(i int) Sample
}

// InMemory is a Dataset backed by a slice.
type InMemory []Sample

func (d InMemory) Len() int { return len(d) }

func (d InMemory) Sample(i int) Sample { return d[i] }

type subset struct {
	parent     Dataset
	start, end int
}

// Subset returns a view of ds over the index range [start, end).
func Subset(ds Dataset, start, end int) (Dataset, error) {
	if start < 0 || end > ds.Len() || start > end {
		return nil, fmt.Errorf("%w: [%d, %d) of %d samples", ErrInvalidRange, start, end, ds.Len())
	}

	return subset{parent: ds, start: start, end: end}, nil
}

func (s subset) Len() int { return s.end - s.start }

func (s subset) Sample(i int) Sample {
	if i < 0 || i >= s.Len() {
		panic(fmt.Sprintf("dataset: index %d out of range [0, %d)", i, s.Len()))
	}

	return s.parent.Sample(s.start + i)
}

// FeatureCount returns the number of features of the first sample and checks that
// every sample agrees.
func FeatureCount(ds Dataset) (int, error) {
	if ds.Len() == 0 {
		return 0, ErrEmptyDataset
	}
	n := len(ds.Sample(0).Features)
	for i := 1; i < ds.Len(); i++ {
		if got := len(ds.Sample(i).Features); got != n {
			return 0, fmt.Errorf("%w: sample %d has %d, expected %d", ErrFeatureMismatch, i, got, n)
		}
	}

	return n, nil
}
