// Package client implements a federated-learning participant: it trains and scores a
// local model on its private partition whenever the coordinator asks for a round and
// reports only parameters and metrics back.
package client

import (
	"context"

	"github.com/absmach/fedlearn/checkpoint"
	"github.com/absmach/fedlearn/pkg/fl"
)

// Service is the round controller of a client. Calls are served one at a time.
type Service interface {
	// Fit trains a fresh model starting from params for one round.
	Fit(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (fl.FitResult, error)
	// Evaluate scores params against the local test set.
	Evaluate(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (fl.EvaluateResult, error)
	// HandleInstruction dispatches a coordinator instruction to Fit or Evaluate and
	// builds the reply. A failed round still returns a reply carrying the error.
	HandleInstruction(ctx context.Context, ins fl.Instruction) (fl.Reply, error)

	CheckpointState(ctx context.Context) (checkpoint.State, error)
	ListCheckpoints(ctx context.Context, offset, limit uint64) (CheckpointPage, error)
}

type CheckpointPage struct {
	Offset      uint64               `json:"offset"`
	Limit       uint64               `json:"limit"`
	Total       uint64               `json:"total"`
	Checkpoints []checkpoint.Summary `json:"checkpoints"`
}
