package dataset

import "fmt"

const DefaultPartitions = 10

// Partition returns the idx-th of n equal contiguous shards of ds. The shard size is
// floor(len/n); trailing samples that do not fill a shard belong to no partition.
func Partition(ds Dataset, idx, n int) (Dataset, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: partition count %d", ErrInvalidPartition, n)
	}
	if idx < 0 || idx >= n {
		return nil, fmt.Errorf("%w: index %d not in [0, %d)", ErrInvalidPartition, idx, n)
	}
	size := ds.Len() / n

	return Subset(ds, idx*size, (idx+1)*size)
}

// LoadPartition loads the train and test sets with the loader and returns the
// idx-th partition of each.
func LoadPartition(l Loader, idx, n int) (train, test Dataset, err error) {
	fullTrain, fullTest, err := l.Load()
	if err != nil {
		return nil, nil, err
	}
	if train, err = Partition(fullTrain, idx, n); err != nil {
		return nil, nil, fmt.Errorf("train set: %w", err)
	}
	if test, err = Partition(fullTest, idx, n); err != nil {
		return nil, nil, fmt.Errorf("test set: %w", err)
	}

	return train, test, nil
}

// Head returns at most the first n samples of ds.
func Head(ds Dataset, n int) Dataset {
	if n > ds.Len() {
		n = ds.Len()
	}
	if n < 0 {
		n = 0
	}

	return subset{parent: ds, start: 0, end: n}
}
