// Package experiment records the hyperparameters and per-round metrics of a training
// run. A nil Experiment is valid wherever one is accepted.
package experiment

import (
	"context"
	"errors"
	"fmt"
)

type Experiment interface {
	LogParams(ctx context.Context, params map[string]any) error
	LogMetrics(ctx context.Context, metrics map[string]float64, step int) error
}

// Name formats the run name of a client, e.g. client_0_(8080)_lr_0.1_bs_16.
func Name(index int, port string, lr float64, batchSize int) string {
	return fmt.Sprintf("client_%d_(%s)_lr_%g_bs_%d", index, port, lr, batchSize)
}

// LogMetrics forwards to exp unless it is nil.
func LogMetrics(ctx context.Context, exp Experiment, metrics map[string]float64, step int) error {
	if exp == nil {
		return nil
	}

	return exp.LogMetrics(ctx, metrics, step)
}

func LogParams(ctx context.Context, exp Experiment, params map[string]any) error {
	if exp == nil {
		return nil
	}

	return exp.LogParams(ctx, params)
}

type multi []Experiment

// Multi fans out to every non-nil experiment and joins their errors.
func Multi(exps ...Experiment) Experiment {
	m := make(multi, 0, len(exps))
	for _, e := range exps {
		if e != nil {
			m = append(m, e)
		}
	}

	return m
}

func (m multi) LogParams(ctx context.Context, params map[string]any) error {
	var errs []error
	for _, e := range m {
		errs = append(errs, e.LogParams(ctx, params))
	}

	return errors.Join(errs...)
}

func (m multi) LogMetrics(ctx context.Context, metrics map[string]float64, step int) error {
	var errs []error
	for _, e := range m {
		errs = append(errs, e.LogMetrics(ctx, metrics, step))
	}

	return errors.Join(errs...)
}
