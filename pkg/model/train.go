package model

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/absmach/fedlearn/pkg/dataset"
	"github.com/absmach/fedlearn/pkg/fl"
	"gonum.org/v1/gonum/mat"
)

// EvalBatchSize is the fixed batch size used when scoring a test set.
const EvalBatchSize = 16

// Score is the outcome of evaluating a model over (part of) a dataset.
type Score struct {
	Loss     float64
	Accuracy float64
	Samples  int
}

// Train runs epochs of mini-batch SGD over train, shuffling its order every epoch with
// rng, then scores the model on train and val. The datasets are never mutated.
func Train(ctx context.Context, m Model, train, val dataset.Dataset, epochs, batchSize int, opt *SGD, rng *rand.Rand) (fl.TrainResult, error) {
	for epoch := range epochs {
		perm := rng.Perm(train.Len())
		for start := 0; start < len(perm); start += batchSize {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			end := min(start+batchSize, len(perm))
			x, labels, err := batch(m, train, perm[start:end])
			if err != nil {
				return nil, fmt.Errorf("epoch %d: %w", epoch, err)
			}
			_, grads := m.Gradients(x, labels)
			opt.Step(m.Weights(), grads)
		}
	}

	trainScore, err := Test(m, train, 0, batchSize)
	if err != nil {
		return nil, err
	}
	valScore, err := Test(m, val, 0, batchSize)
	if err != nil {
		return nil, err
	}

	return fl.TrainResult{
		fl.MetricTrainLoss:     trainScore.Loss,
		fl.MetricTrainAccuracy: trainScore.Accuracy,
		fl.MetricValLoss:       valScore.Loss,
		fl.MetricValAccuracy:   valScore.Accuracy,
	}, nil
}

// Test scores m over ds in order, reading at most steps batches (0 reads all). Loss is
// the mean per-sample cross-entropy and accuracy the fraction of correct predictions
// over the samples scored. An empty dataset scores zero.
func Test(m Model, ds dataset.Dataset, steps, batchSize int) (Score, error) {
	if batchSize <= 0 {
		batchSize = EvalBatchSize
	}

	var (
		score   Score
		correct int
		total   float64
	)
	idx := make([]int, 0, batchSize)
	for start, step := 0, 0; start < ds.Len(); start, step = start+batchSize, step+1 {
		if steps > 0 && step >= steps {
			break
		}
		end := min(start+batchSize, ds.Len())
		idx = idx[:0]
		for i := start; i < end; i++ {
			idx = append(idx, i)
		}

		x, labels, err := batch(m, ds, idx)
		if err != nil {
			return Score{}, err
		}
		sum, hits := scoreBatch(m, x, labels)
		total += sum
		correct += hits
		score.Samples += len(labels)
	}

	if score.Samples > 0 {
		score.Loss = total / float64(score.Samples)
		score.Accuracy = float64(correct) / float64(score.Samples)
	}

	return score, nil
}

func scoreBatch(m Model, x *mat.Dense, labels []int) (float64, int) {
	probs := m.Probabilities(x)
	var (
		sum     float64
		correct int
	)
	for i, y := range labels {
		row := probs.RawRowView(i)
		sum += crossEntropy(row, y)
		if argmax(row) == y {
			correct++
		}
	}

	return sum, correct
}

func batch(m Model, ds dataset.Dataset, idx []int) (*mat.Dense, []int, error) {
	features := m.Features()
	x := mat.NewDense(len(idx), features, nil)
	labels := make([]int, len(idx))
	for r, i := range idx {
		s := ds.Sample(i)
		if len(s.Features) != features {
			return nil, nil, fmt.Errorf("%w: sample %d has %d features, model expects %d", ErrInvalidSample, i, len(s.Features), features)
		}
		if s.Label < 0 || s.Label >= m.Classes() {
			return nil, nil, fmt.Errorf("%w: sample %d has label %d, model has %d classes", ErrInvalidSample, i, s.Label, m.Classes())
		}
		x.SetRow(r, s.Features)
		labels[r] = s.Label
	}

	return x, labels, nil
}
