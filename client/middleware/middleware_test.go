package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/absmach/fedlearn/checkpoint"
	"github.com/absmach/fedlearn/client"
	"github.com/absmach/fedlearn/client/middleware"
	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/go-kit/kit/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type stubService struct {
	err error
}

func (s stubService) Fit(context.Context, fl.ParameterSet, fl.RoundConfig) (fl.FitResult, error) {
	return fl.FitResult{NumExamples: 90, Status: fl.StatusContinue}, s.err
}

func (s stubService) Evaluate(context.Context, fl.ParameterSet, fl.RoundConfig) (fl.EvaluateResult, error) {
	return fl.EvaluateResult{NumExamples: 10}, s.err
}

func (s stubService) HandleInstruction(_ context.Context, ins fl.Instruction) (fl.Reply, error) {
	return fl.Reply{RoundID: ins.RoundID, Kind: fl.KindFit}, s.err
}

func (s stubService) CheckpointState(context.Context) (checkpoint.State, error) {
	return checkpoint.State{Patience: 5}, s.err
}

func (s stubService) ListCheckpoints(_ context.Context, offset, limit uint64) (client.CheckpointPage, error) {
	return client.CheckpointPage{Offset: offset, Limit: limit}, s.err
}

type methodCounter struct {
	method string
	calls  map[string]float64
}

func (c *methodCounter) With(labelValues ...string) metrics.Counter {
	return &methodCounter{method: labelValues[len(labelValues)-1], calls: c.calls}
}

func (c *methodCounter) Add(delta float64) { c.calls[c.method] += delta }

type methodHistogram struct {
	observed *int
}

func (h methodHistogram) With(...string) metrics.Histogram { return h }

func (h methodHistogram) Observe(float64) { *h.observed++ }

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var line map[string]any
		require.NoError(t, dec.Decode(&line))
		lines = append(lines, line)
	}

	return lines
}

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		level string
		msg   string
	}{
		{name: "success", level: "INFO", msg: "Fit completed successfully"},
		{name: "failure", err: pkgerrors.ErrParameterMismatch, level: "WARN", msg: "Fit failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			svc := middleware.Logging(slog.New(slog.NewJSONHandler(&buf, nil)), stubService{err: tt.err})

			_, err := svc.Fit(context.Background(), fl.ParameterSet{}, fl.RoundConfig{ServerRound: 4})
			assert.ErrorIs(t, err, tt.err)

			lines := logLines(t, &buf)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.level, lines[0]["level"])
			assert.Equal(t, tt.msg, lines[0]["msg"])
			round, ok := lines[0]["round"].(map[string]any)
			require.True(t, ok)
			assert.InDelta(t, 4, round["server_round"], 0)
		})
	}
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	counter := &methodCounter{calls: map[string]float64{}}
	var observed int
	latency := methodHistogram{observed: &observed}
	svc := middleware.Metrics(counter, latency, stubService{})
	ctx := context.Background()

	_, err := svc.Fit(ctx, fl.ParameterSet{}, fl.RoundConfig{})
	require.NoError(t, err)
	_, err = svc.Evaluate(ctx, fl.ParameterSet{}, fl.RoundConfig{})
	require.NoError(t, err)
	_, err = svc.HandleInstruction(ctx, fl.Instruction{})
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"fit": 1, "evaluate": 1, "handle-instruction": 1}, counter.calls)
	assert.Equal(t, 3, observed)
}

func TestTracing(t *testing.T) {
	t.Parallel()

	errFail := errors.New("fail")
	svc := middleware.Tracing(noop.NewTracerProvider().Tracer("test"), stubService{err: errFail})
	ctx := context.Background()

	reply, err := svc.HandleInstruction(ctx, fl.Instruction{RoundID: "r1"})
	assert.ErrorIs(t, err, errFail)
	assert.Equal(t, "r1", reply.RoundID)

	page, err := svc.ListCheckpoints(ctx, 2, 5)
	assert.ErrorIs(t, err, errFail)
	assert.Equal(t, uint64(5), page.Limit)
}
