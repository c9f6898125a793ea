package middleware

import (
	"context"
	"time"

	"github.com/absmach/fedlearn/checkpoint"
	"github.com/absmach/fedlearn/client"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/go-kit/kit/metrics"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

var _ client.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     client.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc client.Service) client.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

// MakeMetrics returns a request counter and latency histogram labelled by method,
// registered with the default Prometheus registry.
func MakeMetrics(namespace, subsystem string) (metrics.Counter, metrics.Histogram) {
	counter := kitprometheus.NewCounterFrom(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_count",
		Help:      "Number of requests received.",
	}, []string{"method"})
	latency := kitprometheus.NewSummaryFrom(prometheus.SummaryOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_latency_seconds",
		Help:      "Total duration of requests in seconds.",
	}, []string{"method"})

	return counter, latency
}

func (mm *metricsMiddleware) Fit(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (fl.FitResult, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "fit").Add(1)
		mm.latency.With("method", "fit").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Fit(ctx, params, cfg)
}

func (mm *metricsMiddleware) Evaluate(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (fl.EvaluateResult, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "evaluate").Add(1)
		mm.latency.With("method", "evaluate").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Evaluate(ctx, params, cfg)
}

func (mm *metricsMiddleware) HandleInstruction(ctx context.Context, ins fl.Instruction) (fl.Reply, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "handle-instruction").Add(1)
		mm.latency.With("method", "handle-instruction").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.HandleInstruction(ctx, ins)
}

func (mm *metricsMiddleware) CheckpointState(ctx context.Context) (checkpoint.State, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "checkpoint-state").Add(1)
		mm.latency.With("method", "checkpoint-state").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.CheckpointState(ctx)
}

func (mm *metricsMiddleware) ListCheckpoints(ctx context.Context, offset, limit uint64) (client.CheckpointPage, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list-checkpoints").Add(1)
		mm.latency.With("method", "list-checkpoints").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListCheckpoints(ctx, offset, limit)
}
