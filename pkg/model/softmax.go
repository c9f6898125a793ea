package model

import (
	"math"
	"math/rand"
	"slices"

	"github.com/absmach/fedlearn/pkg/fl"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	SoftmaxVersion = "softmax.v1"

	initScale = 0.01
	minProb   = 1e-12
)

// Softmax is a multinomial logistic regression over flattened image pixels.
type Softmax struct {
	features int
	classes  int
	w        *mat.Dense
	b        *mat.VecDense
}

var _ Model = (*Softmax)(nil)

// NewSoftmax returns a classifier with small weights drawn from a seeded source, so
// every client started with the same seed holds identical initial parameters.
func NewSoftmax(features, classes int, seed int64) *Softmax {
	rng := rand.New(rand.NewSource(seed))
	w := make([]float64, classes*features)
	for i := range w {
		w[i] = rng.NormFloat64() * initScale
	}

	return &Softmax{
		features: features,
		classes:  classes,
		w:        mat.NewDense(classes, features, w),
		b:        mat.NewVecDense(classes, nil),
	}
}

// SoftmaxFactory returns a Factory of identically initialized classifiers.
func SoftmaxFactory(features, classes int, seed int64) Factory {
	return func() Model {
		return NewSoftmax(features, classes, seed)
	}
}

func (s *Softmax) Layout() fl.Layout {
	return fl.Layout{
		Version: SoftmaxVersion,
		Tensors: []fl.TensorSpec{
			{Name: "weight", Shape: []int{s.classes, s.features}},
			{Name: "bias", Shape: []int{s.classes}},
		},
	}
}

func (s *Softmax) Features() int { return s.features }

func (s *Softmax) Classes() int { return s.classes }

func (s *Softmax) Load(ps fl.ParameterSet) error {
	if err := ps.Conform(s.Layout()); err != nil {
		return err
	}
	copy(s.w.RawMatrix().Data, ps.Tensors[0].Data)
	copy(s.b.RawVector().Data, ps.Tensors[1].Data)

	return nil
}

func (s *Softmax) Parameters() fl.ParameterSet {
	ps := fl.ParameterSet{Layout: s.Layout()}
	ps.Tensors = []fl.Tensor{
		{Shape: []int{s.classes, s.features}, Data: slices.Clone(s.w.RawMatrix().Data)},
		{Shape: []int{s.classes}, Data: slices.Clone(s.b.RawVector().Data)},
	}

	return ps
}

func (s *Softmax) Weights() [][]float64 {
	return [][]float64{s.w.RawMatrix().Data, s.b.RawVector().Data}
}

func (s *Softmax) Probabilities(x *mat.Dense) *mat.Dense {
	rows, _ := x.Dims()
	var logits mat.Dense
	logits.Mul(x, s.w.T())

	bias := s.b.RawVector().Data
	for i := range rows {
		row := logits.RawRowView(i)
		floats.Add(row, bias)
		softmaxInPlace(row)
	}

	return &logits
}

func (s *Softmax) Gradients(x *mat.Dense, labels []int) (float64, [][]float64) {
	rows, _ := x.Dims()
	probs := s.Probabilities(x)

	var loss float64
	for i := range rows {
		row := probs.RawRowView(i)
		loss += crossEntropy(row, labels[i])
		row[labels[i]]--
	}
	n := float64(rows)
	loss /= n
	probs.Scale(1/n, probs)

	var gw mat.Dense
	gw.Mul(probs.T(), x)

	gb := make([]float64, s.classes)
	for i := range rows {
		floats.Add(gb, probs.RawRowView(i))
	}

	return loss, [][]float64{gw.RawMatrix().Data, gb}
}

func softmaxInPlace(row []float64) {
	m := floats.Max(row)
	var sum float64
	for i, v := range row {
		row[i] = math.Exp(v - m)
		sum += row[i]
	}
	floats.Scale(1/sum, row)
}
