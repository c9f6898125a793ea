// Package model holds the classifier a client optimizes and the loops that train and
// score it over a dataset.
package model

import (
	"errors"

	"github.com/absmach/fedlearn/pkg/fl"
	"gonum.org/v1/gonum/mat"
)

var ErrInvalidSample = errors.New("sample does not fit the model")

// Model is a trainable classifier whose weights are exchanged as a ParameterSet.
type Model interface {
	// Layout describes the tensors Parameters returns and Load accepts.
	Layout() fl.Layout
	// Load replaces the weights. Any disagreement with Layout is ErrParameterMismatch.
	Load(ps fl.ParameterSet) error
	// Parameters returns a copy of the current weights.
	Parameters() fl.ParameterSet
	Features() int
	Classes() int
	// Probabilities returns a (rows x classes) matrix of class probabilities.
	Probabilities(x *mat.Dense) *mat.Dense
	// Gradients returns the mean cross-entropy of the batch and its gradient for
	// every tensor, in layout order.
	Gradients(x *mat.Dense, labels []int) (float64, [][]float64)
	// Weights returns the live weight buffers in layout order.
	Weights() [][]float64
}

// Factory builds a fresh model instance for one round.
type Factory func() Model
