package experiment

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

type logExperiment struct {
	name   string
	logger *slog.Logger
}

// NewLogger returns an Experiment that writes every record as a structured log line.
func NewLogger(name string, logger *slog.Logger) Experiment {
	return &logExperiment{name: name, logger: logger}
}

func (e *logExperiment) LogParams(ctx context.Context, params map[string]any) error {
	attrs := make([]any, 0, len(params))
	for _, k := range slices.Sorted(maps.Keys(params)) {
		attrs = append(attrs, slog.Any(k, params[k]))
	}
	e.logger.InfoContext(ctx, "Experiment parameters",
		slog.String("experiment", e.name),
		slog.Group("params", attrs...),
	)

	return nil
}

func (e *logExperiment) LogMetrics(ctx context.Context, metrics map[string]float64, step int) error {
	attrs := make([]any, 0, len(metrics))
	for _, k := range slices.Sorted(maps.Keys(metrics)) {
		attrs = append(attrs, slog.Float64(k, metrics[k]))
	}
	e.logger.InfoContext(ctx, "Experiment metrics",
		slog.String("experiment", e.name),
		slog.Int("step", step),
		slog.Group("metrics", attrs...),
	)

	return nil
}
