package mocks

import (
	"context"

	"github.com/absmach/fedlearn/checkpoint"
	"github.com/absmach/fedlearn/client"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/stretchr/testify/mock"
)

var _ client.Service = (*Service)(nil)

type Service struct {
	mock.Mock
}

func (m *Service) Fit(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (fl.FitResult, error) {
	args := m.Called(ctx, params, cfg)

	return args.Get(0).(fl.FitResult), args.Error(1)
}

func (m *Service) Evaluate(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (fl.EvaluateResult, error) {
	args := m.Called(ctx, params, cfg)

	return args.Get(0).(fl.EvaluateResult), args.Error(1)
}

func (m *Service) HandleInstruction(ctx context.Context, ins fl.Instruction) (fl.Reply, error) {
	args := m.Called(ctx, ins)

	return args.Get(0).(fl.Reply), args.Error(1)
}

func (m *Service) CheckpointState(ctx context.Context) (checkpoint.State, error) {
	args := m.Called(ctx)

	return args.Get(0).(checkpoint.State), args.Error(1)
}

func (m *Service) ListCheckpoints(ctx context.Context, offset, limit uint64) (client.CheckpointPage, error) {
	args := m.Called(ctx, offset, limit)

	return args.Get(0).(client.CheckpointPage), args.Error(1)
}
