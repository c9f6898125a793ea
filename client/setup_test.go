package client_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/absmach/fedlearn/checkpoint"
	"github.com/absmach/fedlearn/client"
	"github.com/absmach/fedlearn/pkg/dataset"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/absmach/fedlearn/pkg/model"
	"github.com/stretchr/testify/require"
)

const (
	features = 2
	classes  = 2
	seed     = 42
)

var (
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
	factory = model.SoftmaxFactory(features, classes, seed)
	hp      = model.Hyperparams{LearningRate: 0.1, Momentum: 0.9, WeightDecay: 1e-4}
)

func samples(n int) dataset.InMemory {
	ds := make(dataset.InMemory, n)
	for i := range ds {
		label := i % classes
		ds[i] = dataset.Sample{
			Features: []float64{0.2 + 0.6*float64(label), float64(i%7) / 7},
			Label:    label,
		}
	}

	return ds
}

func newTracker(t *testing.T, patience int, delta float64) *checkpoint.Tracker {
	t.Helper()

	return checkpoint.NewTracker(checkpoint.Config{
		Dir:      filepath.Join(t.TempDir(), "8080_client_0_best_models"),
		Patience: patience,
		Delta:    delta,
	})
}

func newTrainer(t *testing.T, data dataset.Dataset, tracker *checkpoint.Tracker) *client.Trainer {
	t.Helper()

	tr, err := client.NewTrainer(factory, data, client.TrainerConfig{
		ValidationSplit: client.DefaultValidationSplit,
		Hyperparams:     hp,
		Seed:            seed,
	}, tracker, nil, logger)
	require.NoError(t, err)

	return tr
}

func globalParams() fl.ParameterSet {
	return factory().Parameters()
}

func roundConfig(t *testing.T, raw map[string]any) fl.RoundConfig {
	t.Helper()

	cfg, err := fl.ParseRoundConfig(raw)
	require.NoError(t, err)

	return cfg
}
