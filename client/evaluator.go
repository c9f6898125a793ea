package client

import (
	"context"
	"log/slog"

	"github.com/absmach/fedlearn/pkg/dataset"
	"github.com/absmach/fedlearn/pkg/experiment"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/absmach/fedlearn/pkg/model"
)

const (
	metricTestLoss     = "test_loss"
	metricTestAccuracy = "test_accuracy"
)

// Evaluator scores global parameters on the local test set.
type Evaluator struct {
	factory model.Factory
	testset dataset.Dataset
	exp     experiment.Experiment
	logger  *slog.Logger
}

func NewEvaluator(factory model.Factory, testset dataset.Dataset, exp experiment.Experiment, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		factory: factory,
		testset: testset,
		exp:     exp,
		logger:  logger,
	}
}

// Evaluate reads at most cfg.ValSteps batches of the test set. The reported example
// count is always the full test set size.
func (e *Evaluator) Evaluate(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (fl.EvaluateResult, error) {
	if err := cfg.ValidateEvaluate(); err != nil {
		return fl.EvaluateResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return fl.EvaluateResult{}, err
	}

	m := e.factory()
	if err := m.Load(params); err != nil {
		return fl.EvaluateResult{}, err
	}

	score, err := model.Test(m, e.testset, cfg.ValSteps, model.EvalBatchSize)
	if err != nil {
		return fl.EvaluateResult{}, err
	}

	metrics := map[string]float64{metricTestLoss: score.Loss, metricTestAccuracy: score.Accuracy}
	if err := experiment.LogMetrics(ctx, e.exp, metrics, cfg.ServerRound); err != nil {
		e.logger.WarnContext(ctx, "Failed to log evaluation metrics", slog.Any("error", err))
	}

	return fl.EvaluateResult{
		Loss:        score.Loss,
		NumExamples: e.testset.Len(),
		Metrics:     map[string]float64{fl.MetricAccuracy: score.Accuracy},
	}, nil
}
