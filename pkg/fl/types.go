package fl

import (
	"fmt"
	"slices"

	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
)

// TensorSpec names one trainable tensor and its shape.
type TensorSpec struct {
	Name  string `json:"name"  cbor:"name"`
	Shape []int  `json:"shape" cbor:"shape"`
}

// Layout is the versioned, ordered description of every trainable tensor of a model.
type Layout struct {
	Version string       `json:"version" cbor:"version"`
	Tensors []TensorSpec `json:"tensors" cbor:"tensors"`
}

type Tensor struct {
	Shape []int     `json:"shape" cbor:"shape"`
	Data  []float64 `json:"data"  cbor:"data"`
}

// ParameterSet is a full ordered snapshot of a model's trainable weights.
type ParameterSet struct {
	Layout  Layout   `json:"layout"  cbor:"layout"`
	Tensors []Tensor `json:"tensors" cbor:"tensors"`
}

type Status string

const (
	StatusContinue  Status = "continue"
	StatusEarlyStop Status = "early_stop"
)

// TrainResult holds scalar metrics of one local training run.
type TrainResult map[string]float64

const (
	MetricValAccuracy   = "val_accuracy"
	MetricValLoss       = "val_loss"
	MetricTrainAccuracy = "train_accuracy"
	MetricTrainLoss     = "train_loss"
	MetricAccuracy      = "accuracy"
)

type FitResult struct {
	Parameters  ParameterSet `json:"parameters"`
	NumExamples int          `json:"num_examples"`
	Metrics     TrainResult  `json:"metrics"`
	Status      Status       `json:"status"`
}

type EvaluateResult struct {
	Loss        float64            `json:"loss"`
	NumExamples int                `json:"num_examples"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Instruction is one coordinator request for a round.
type Instruction struct {
	RoundID    string         `json:"round_id"`
	ClientID   string         `json:"client_id,omitempty"`
	Parameters ParameterSet   `json:"parameters"`
	Config     map[string]any `json:"config"`
}

type ReplyKind string

const (
	KindFit      ReplyKind = "fit"
	KindEvaluate ReplyKind = "evaluate"
)

// Reply is what the client sends back to the coordinator after a round.
type Reply struct {
	RoundID     string             `json:"round_id"`
	ClientID    string             `json:"client_id"`
	Kind        ReplyKind          `json:"kind,omitempty"`
	Parameters  *ParameterSet      `json:"parameters,omitempty"`
	NumExamples int                `json:"num_examples"`
	Loss        *float64           `json:"loss,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	EarlyStop   bool               `json:"early_stop"`
	Error       string             `json:"error,omitempty"`
}

// Size returns the number of elements a tensor of the given shape holds.
func Size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}

	return n
}

func (l Layout) Validate() error {
	if l.Version == "" {
		return fmt.Errorf("%w: layout version is empty", pkgerrors.ErrParameterMismatch)
	}
	for i, spec := range l.Tensors {
		if len(spec.Shape) == 0 {
			return fmt.Errorf("%w: tensor %d (%s) has no shape", pkgerrors.ErrParameterMismatch, i, spec.Name)
		}
		for _, d := range spec.Shape {
			if d <= 0 {
				return fmt.Errorf("%w: tensor %d (%s) has non-positive dimension %v", pkgerrors.ErrParameterMismatch, i, spec.Name, spec.Shape)
			}
		}
	}

	return nil
}

// Equal reports whether two layouts describe the same tensors in the same order.
func (l Layout) Equal(o Layout) bool {
	if l.Version != o.Version || len(l.Tensors) != len(o.Tensors) {
		return false
	}
	for i := range l.Tensors {
		if l.Tensors[i].Name != o.Tensors[i].Name || !slices.Equal(l.Tensors[i].Shape, o.Tensors[i].Shape) {
			return false
		}
	}

	return true
}

// Zeros returns a parameter set with zero-valued tensors for the layout.
func (l Layout) Zeros() ParameterSet {
	ps := ParameterSet{
		Layout:  l,
		Tensors: make([]Tensor, len(l.Tensors)),
	}
	for i, spec := range l.Tensors {
		ps.Tensors[i] = Tensor{
			Shape: slices.Clone(spec.Shape),
			Data:  make([]float64, Size(spec.Shape)),
		}
	}

	return ps
}

// Conform checks the parameter set against the expected layout. Every mismatch in
// version, tensor count, shape or element count is reported as ErrParameterMismatch.
func (ps ParameterSet) Conform(expected Layout) error {
	if ps.Layout.Version != expected.Version {
		return fmt.Errorf("%w: layout version %q, expected %q", pkgerrors.ErrParameterMismatch, ps.Layout.Version, expected.Version)
	}
	if !ps.Layout.Equal(expected) {
		return fmt.Errorf("%w: layout descriptor differs from model layout %q", pkgerrors.ErrParameterMismatch, expected.Version)
	}
	if len(ps.Tensors) != len(expected.Tensors) {
		return fmt.Errorf("%w: got %d tensors, expected %d", pkgerrors.ErrParameterMismatch, len(ps.Tensors), len(expected.Tensors))
	}
	for i, spec := range expected.Tensors {
		t := ps.Tensors[i]
		if !slices.Equal(t.Shape, spec.Shape) {
			return fmt.Errorf("%w: tensor %d (%s) has shape %v, expected %v", pkgerrors.ErrParameterMismatch, i, spec.Name, t.Shape, spec.Shape)
		}
		if len(t.Data) != Size(spec.Shape) {
			return fmt.Errorf("%w: tensor %d (%s) has %d elements, expected %d", pkgerrors.ErrParameterMismatch, i, spec.Name, len(t.Data), Size(spec.Shape))
		}
	}

	return nil
}

// Clone returns a deep copy of the parameter set.
func (ps ParameterSet) Clone() ParameterSet {
	out := ParameterSet{
		Layout: Layout{
			Version: ps.Layout.Version,
			Tensors: make([]TensorSpec, len(ps.Layout.Tensors)),
		},
		Tensors: make([]Tensor, len(ps.Tensors)),
	}
	for i, spec := range ps.Layout.Tensors {
		out.Layout.Tensors[i] = TensorSpec{Name: spec.Name, Shape: slices.Clone(spec.Shape)}
	}
	for i, t := range ps.Tensors {
		out.Tensors[i] = Tensor{Shape: slices.Clone(t.Shape), Data: slices.Clone(t.Data)}
	}

	return out
}
