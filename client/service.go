package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/absmach/fedlearn/checkpoint"
	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/absmach/fedlearn/pkg/fl"
)

const defLimit = 100

var _ Service = (*service)(nil)

type service struct {
	mu        sync.Mutex
	clientID  string
	trainer   *Trainer
	evaluator *Evaluator
	tracker   *checkpoint.Tracker
	index     *checkpoint.Index
	lastRound int
}

// NewService wires the round controller. index may be nil, in which case checkpoints
// are listed from the tracker directory.
func NewService(clientID string, trainer *Trainer, evaluator *Evaluator, tracker *checkpoint.Tracker, index *checkpoint.Index) Service {
	return &service{
		clientID:  clientID,
		trainer:   trainer,
		evaluator: evaluator,
		tracker:   tracker,
		index:     index,
	}
}

func (svc *service) Fit(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (fl.FitResult, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	return svc.fit(ctx, params, cfg)
}

func (svc *service) Evaluate(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (fl.EvaluateResult, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	return svc.evaluate(ctx, params, cfg)
}

func (svc *service) HandleInstruction(ctx context.Context, ins fl.Instruction) (fl.Reply, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	reply := fl.Reply{
		RoundID:  ins.RoundID,
		ClientID: svc.clientID,
	}

	cfg, err := fl.ParseRoundConfig(ins.Config)
	if err != nil {
		return failed(reply, err)
	}
	kind, err := cfg.Kind()
	if err != nil {
		return failed(reply, err)
	}
	reply.Kind = kind

	switch kind {
	case fl.KindFit:
		res, err := svc.fit(ctx, ins.Parameters, cfg)
		if err != nil {
			return failed(reply, err)
		}
		reply.Parameters = &res.Parameters
		reply.NumExamples = res.NumExamples
		reply.Metrics = res.Metrics
		reply.EarlyStop = res.Status == fl.StatusEarlyStop
	case fl.KindEvaluate:
		res, err := svc.evaluate(ctx, ins.Parameters, cfg)
		if err != nil {
			return failed(reply, err)
		}
		reply.NumExamples = res.NumExamples
		reply.Loss = &res.Loss
		reply.Metrics = res.Metrics
	}

	return reply, nil
}

func (svc *service) CheckpointState(_ context.Context) (checkpoint.State, error) {
	return svc.tracker.State(), nil
}

func (svc *service) ListCheckpoints(ctx context.Context, offset, limit uint64) (CheckpointPage, error) {
	if limit == 0 {
		limit = defLimit
	}
	page := CheckpointPage{Offset: offset, Limit: limit}

	if svc.index != nil {
		summaries, total, err := svc.index.List(ctx, offset, limit)
		if err != nil {
			return CheckpointPage{}, err
		}
		page.Total = total
		page.Checkpoints = summaries

		return page, nil
	}

	summaries, err := checkpoint.List(svc.tracker.Dir())
	if err != nil {
		return CheckpointPage{}, err
	}
	page.Total = uint64(len(summaries))
	if offset >= page.Total {
		page.Checkpoints = []checkpoint.Summary{}

		return page, nil
	}
	page.Checkpoints = summaries[offset:min(offset+limit, page.Total)]

	return page, nil
}

func (svc *service) fit(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (fl.FitResult, error) {
	if err := svc.checkRound(cfg); err != nil {
		return fl.FitResult{}, err
	}

	return svc.trainer.Fit(ctx, params, cfg)
}

func (svc *service) evaluate(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (fl.EvaluateResult, error) {
	if err := svc.checkRound(cfg); err != nil {
		return fl.EvaluateResult{}, err
	}

	return svc.evaluator.Evaluate(ctx, params, cfg)
}

// checkRound rejects a server round older than the latest one seen. Rounds without
// a server_round (dry runs) are always accepted.
func (svc *service) checkRound(cfg fl.RoundConfig) error {
	if !cfg.Has(fl.KeyServerRound) {
		return nil
	}
	if cfg.ServerRound < svc.lastRound {
		return fmt.Errorf("%w: server_round %d is older than %d", pkgerrors.ErrInvalidConfig, cfg.ServerRound, svc.lastRound)
	}
	svc.lastRound = cfg.ServerRound

	return nil
}

func failed(reply fl.Reply, err error) (fl.Reply, error) {
	reply.Error = err.Error()

	return reply, err
}
