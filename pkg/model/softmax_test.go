package model_test

import (
	"math"
	"testing"

	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/absmach/fedlearn/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestSoftmaxParametersRoundTrip(t *testing.T) {
	t.Parallel()

	a := model.NewSoftmax(4, 3, 42)
	b := model.NewSoftmax(4, 3, 42)
	assert.Equal(t, a.Parameters(), b.Parameters(), "same seed must give identical initial weights")

	ps := a.Parameters()
	for i := range ps.Tensors[0].Data {
		ps.Tensors[0].Data[i] = float64(i)
	}
	ps.Tensors[1].Data = []float64{1, 2, 3}

	c := model.NewSoftmax(4, 3, 7)
	require.NoError(t, c.Load(ps))
	assert.Equal(t, ps, c.Parameters())

	ps.Tensors[1].Data[0] = 99
	assert.Equal(t, 1.0, c.Parameters().Tensors[1].Data[0], "Load must copy the incoming data")
}

func TestSoftmaxLoadMismatch(t *testing.T) {
	t.Parallel()

	m := model.NewSoftmax(4, 3, 42)

	tests := []struct {
		name   string
		mutate func(ps *fl.ParameterSet)
	}{
		{
			name:   "wrong version",
			mutate: func(ps *fl.ParameterSet) { ps.Layout.Version = "cnn.v2" },
		},
		{
			name: "missing tensor",
			mutate: func(ps *fl.ParameterSet) {
				ps.Layout.Tensors = ps.Layout.Tensors[:1]
				ps.Tensors = ps.Tensors[:1]
			},
		},
		{
			name:   "short data",
			mutate: func(ps *fl.ParameterSet) { ps.Tensors[1].Data = ps.Tensors[1].Data[:2] },
		},
		{
			name:   "other shape",
			mutate: func(ps *fl.ParameterSet) { ps.Tensors[0].Shape = []int{4, 3} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ps := m.Parameters()
			tt.mutate(&ps)
			before := m.Parameters()

			err := model.NewSoftmax(4, 3, 42).Load(ps)
			assert.ErrorIs(t, err, pkgerrors.ErrParameterMismatch)
			assert.Equal(t, before, m.Parameters())
		})
	}
}

func TestSoftmaxProbabilities(t *testing.T) {
	t.Parallel()

	m := model.NewSoftmax(3, 4, 1)
	x := mat.NewDense(2, 3, []float64{0, 0.5, 1, 1, 1, 1})
	probs := m.Probabilities(x)

	rows, cols := probs.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 4, cols)
	for i := range rows {
		assert.InDelta(t, 1.0, floats.Sum(probs.RawRowView(i)), 1e-9)
	}
}

func TestSoftmaxGradientsMatchFiniteDifferences(t *testing.T) {
	t.Parallel()

	m := model.NewSoftmax(3, 2, 5)
	x := mat.NewDense(3, 3, []float64{0.1, 0.2, 0.3, 0.9, 0.1, 0.4, 0.5, 0.5, 0.5})
	labels := []int{0, 1, 1}

	_, grads := m.Gradients(x, labels)

	const eps = 1e-6
	for ti, w := range m.Weights() {
		for j := range w {
			orig := w[j]
			w[j] = orig + eps
			up, _ := m.Gradients(x, labels)
			w[j] = orig - eps
			down, _ := m.Gradients(x, labels)
			w[j] = orig

			numeric := (up - down) / (2 * eps)
			assert.InDelta(t, numeric, grads[ti][j], 1e-6, "tensor %d element %d", ti, j)
		}
	}
}

func TestSoftmaxLossIsFinite(t *testing.T) {
	t.Parallel()

	m := model.NewSoftmax(1, 2, 0)
	ps := m.Parameters()
	ps.Tensors[0].Data = []float64{1000, -1000}
	require.NoError(t, m.Load(ps))

	loss, _ := m.Gradients(mat.NewDense(1, 1, []float64{1}), []int{1})
	assert.False(t, math.IsInf(loss, 0) || math.IsNaN(loss))
}
