package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/absmach/fedlearn/checkpoint"
	"github.com/absmach/fedlearn/pkg/dataset"
	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/absmach/fedlearn/pkg/experiment"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/absmach/fedlearn/pkg/model"
)

const (
	DefaultValidationSplit = 0.1

	metricEarlyStop = "early_stop"
)

var errValidationSplit = errors.New("validation split must be in [0, 1)")

// Trainer runs the local part of a training round.
type Trainer struct {
	factory  model.Factory
	trainset dataset.Dataset
	split    float64
	hp       model.Hyperparams
	seed     int64
	tracker  *checkpoint.Tracker
	exp      experiment.Experiment
	logger   *slog.Logger
}

type TrainerConfig struct {
	ValidationSplit float64
	Hyperparams     model.Hyperparams
	Seed            int64
}

// NewTrainer returns a trainer over trainset. exp may be nil.
func NewTrainer(factory model.Factory, trainset dataset.Dataset, cfg TrainerConfig, tracker *checkpoint.Tracker, exp experiment.Experiment, logger *slog.Logger) (*Trainer, error) {
	if cfg.ValidationSplit < 0 || cfg.ValidationSplit >= 1 {
		return nil, fmt.Errorf("%w: %w, got %g", pkgerrors.ErrInvalidConfig, errValidationSplit, cfg.ValidationSplit)
	}

	return &Trainer{
		factory:  factory,
		trainset: trainset,
		split:    cfg.ValidationSplit,
		hp:       cfg.Hyperparams,
		seed:     cfg.Seed,
		tracker:  tracker,
		exp:      exp,
		logger:   logger,
	}, nil
}

// Split returns the validation prefix and training suffix of the local data.
func (t *Trainer) Split() (val, train dataset.Dataset, err error) {
	n := t.trainset.Len()
	nVal := int(math.Floor(float64(n) * t.split))

	val, err = dataset.Subset(t.trainset, 0, nVal)
	if err != nil {
		return nil, nil, err
	}
	train, err = dataset.Subset(t.trainset, nVal, n)
	if err != nil {
		return nil, nil, err
	}

	return val, train, nil
}

// Fit loads params into a fresh model, trains it on the training suffix and records
// the validation outcome with the checkpoint tracker. A failed checkpoint write is
// logged and does not fail the round.
func (t *Trainer) Fit(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (fl.FitResult, error) {
	if err := cfg.ValidateFit(); err != nil {
		return fl.FitResult{}, err
	}

	m := t.factory()
	if err := m.Load(params); err != nil {
		return fl.FitResult{}, err
	}

	val, train, err := t.Split()
	if err != nil {
		return fl.FitResult{}, err
	}
	if train.Len() == 0 {
		return fl.FitResult{}, fmt.Errorf("training subset: %w", dataset.ErrEmptyDataset)
	}

	rng := rand.New(rand.NewSource(t.seed + int64(cfg.ServerRound)))
	metrics, err := model.Train(ctx, m, train, val, cfg.LocalEpochs, cfg.BatchSize, model.NewSGD(t.hp), rng)
	if err != nil {
		return fl.FitResult{}, err
	}

	valAcc, valLoss := metrics[fl.MetricValAccuracy], metrics[fl.MetricValLoss]
	if t.tracker.IsBestAccuracy(valAcc) {
		t.logger.InfoContext(ctx, "New best validation accuracy",
			slog.Int("round", cfg.ServerRound),
			slog.Float64("val_accuracy", valAcc),
		)
	}
	name := checkpoint.FileName(cfg.ServerRound, valAcc, valLoss)
	status, err := t.tracker.RecordResult(ctx, m, cfg.ServerRound, valLoss, valAcc, name)
	if err != nil {
		t.logger.WarnContext(ctx, "Failed to save checkpoint",
			slog.String("name", name),
			slog.Any("error", err),
		)
	}

	if status == fl.StatusEarlyStop {
		state := t.tracker.State()
		t.logger.WarnContext(ctx, "Early stopping: validation accuracy stopped improving",
			slog.Int("round", cfg.ServerRound),
			slog.Int("rounds_without_improvement", state.NoImprovement),
			slog.Int("patience", state.Patience),
		)
		metrics[metricEarlyStop] = 1
	}

	if err := experiment.LogMetrics(ctx, t.exp, metrics, cfg.ServerRound); err != nil {
		t.logger.WarnContext(ctx, "Failed to log training metrics", slog.Any("error", err))
	}

	return fl.FitResult{
		Parameters:  m.Parameters(),
		NumExamples: train.Len(),
		Metrics:     metrics,
		Status:      status,
	}, nil
}
