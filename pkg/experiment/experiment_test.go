package experiment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/absmach/fedlearn/pkg/experiment"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errLog = errors.New("log failed")

type failing struct{}

func (failing) LogParams(context.Context, map[string]any) error { return errLog }

func (failing) LogMetrics(context.Context, map[string]float64, int) error { return errLog }

func TestName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "client_2_(8080)_lr_0.1_bs_16", experiment.Name(2, "8080", 0.1, 16))
	assert.Equal(t, "client_0_(9000)_lr_0.001_bs_32", experiment.Name(0, "9000", 0.001, 32))
}

func TestNilExperiment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.NoError(t, experiment.LogMetrics(ctx, nil, map[string]float64{"val_loss": 1}, 1))
	assert.NoError(t, experiment.LogParams(ctx, nil, map[string]any{"lr": 0.1}))
}

func TestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	exp := experiment.NewLogger("client_0", slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, exp.LogMetrics(context.Background(), map[string]float64{"val_accuracy": 0.5}, 3))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "client_0", line["experiment"])
	assert.InDelta(t, 3, line["step"], 0)
	assert.Equal(t, map[string]any{"val_accuracy": 0.5}, line["metrics"])
}

func TestPrometheus(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	exp, err := experiment.NewPrometheus("client_1", reg)
	require.NoError(t, err)

	require.NoError(t, exp.LogMetrics(context.Background(), map[string]float64{"val_loss": 0.75, "val_accuracy": 0.6}, 4))

	n, err := testutil.GatherAndCount(reg, "fedlearn_experiment_metric")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = experiment.NewPrometheus("client_1", reg)
	assert.Error(t, err, "collectors cannot be registered twice")
}

func TestMulti(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	exp := experiment.Multi(nil, experiment.NewLogger("x", slog.New(slog.NewJSONHandler(&buf, nil))), failing{})

	err := exp.LogMetrics(context.Background(), map[string]float64{"accuracy": 1}, 1)
	assert.ErrorIs(t, err, errLog)
	assert.NotEmpty(t, buf.String(), "a failing experiment does not stop the others")

	assert.ErrorIs(t, exp.LogParams(context.Background(), map[string]any{"seed": 42}), errLog)
}
