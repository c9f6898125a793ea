package experiment

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

type promExperiment struct {
	name    string
	metrics *prometheus.GaugeVec
	step    *prometheus.GaugeVec
}

// NewPrometheus exposes the latest value of every logged metric as a gauge labelled
// with the experiment and metric names. The collectors are registered with reg.
func NewPrometheus(name string, reg prometheus.Registerer) (Experiment, error) {
	metrics := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fedlearn",
		Subsystem: "experiment",
		Name:      "metric",
		Help:      "Latest value of a training or evaluation metric.",
	}, []string{"experiment", "metric"})
	step := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fedlearn",
		Subsystem: "experiment",
		Name:      "step",
		Help:      "Server round of the latest logged metrics.",
	}, []string{"experiment"})

	for _, c := range []prometheus.Collector{metrics, step} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &promExperiment{name: name, metrics: metrics, step: step}, nil
}

func (e *promExperiment) LogParams(context.Context, map[string]any) error {
	return nil
}

func (e *promExperiment) LogMetrics(_ context.Context, metrics map[string]float64, step int) error {
	for k, v := range metrics {
		e.metrics.WithLabelValues(e.name, k).Set(v)
	}
	e.step.WithLabelValues(e.name).Set(float64(step))

	return nil
}
