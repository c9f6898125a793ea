package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/fedlearn/checkpoint"
	"github.com/absmach/fedlearn/client"
	"github.com/absmach/fedlearn/pkg/fl"
)

var _ client.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    client.Service
}

func Logging(logger *slog.Logger, svc client.Service) client.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Fit(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (res fl.FitResult, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("round",
				slog.Int("server_round", cfg.ServerRound),
				slog.Int("batch_size", cfg.BatchSize),
				slog.Int("local_epochs", cfg.LocalEpochs),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Fit failed", args...)

			return
		}
		args = append(args,
			slog.Int("num_examples", res.NumExamples),
			slog.String("status", string(res.Status)),
			slog.Float64("val_accuracy", res.Metrics[fl.MetricValAccuracy]),
		)
		lm.logger.Info("Fit completed successfully", args...)
	}(time.Now())

	return lm.svc.Fit(ctx, params, cfg)
}

func (lm *loggingMiddleware) Evaluate(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (res fl.EvaluateResult, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("round",
				slog.Int("server_round", cfg.ServerRound),
				slog.Int("val_steps", cfg.ValSteps),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Evaluate failed", args...)

			return
		}
		args = append(args,
			slog.Int("num_examples", res.NumExamples),
			slog.Float64("loss", res.Loss),
			slog.Float64("accuracy", res.Metrics[fl.MetricAccuracy]),
		)
		lm.logger.Info("Evaluate completed successfully", args...)
	}(time.Now())

	return lm.svc.Evaluate(ctx, params, cfg)
}

func (lm *loggingMiddleware) HandleInstruction(ctx context.Context, ins fl.Instruction) (reply fl.Reply, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("instruction",
				slog.String("round_id", ins.RoundID),
				slog.String("kind", string(reply.Kind)),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Handle instruction failed", args...)

			return
		}
		args = append(args,
			slog.Int("num_examples", reply.NumExamples),
			slog.Bool("early_stop", reply.EarlyStop),
		)
		lm.logger.Info("Handle instruction completed successfully", args...)
	}(time.Now())

	return lm.svc.HandleInstruction(ctx, ins)
}

func (lm *loggingMiddleware) CheckpointState(ctx context.Context) (state checkpoint.State, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get checkpoint state failed", args...)

			return
		}
		lm.logger.Debug("Get checkpoint state completed successfully", args...)
	}(time.Now())

	return lm.svc.CheckpointState(ctx)
}

func (lm *loggingMiddleware) ListCheckpoints(ctx context.Context, offset, limit uint64) (page client.CheckpointPage, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Uint64("offset", offset),
			slog.Uint64("limit", limit),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List checkpoints failed", args...)

			return
		}
		lm.logger.Info("List checkpoints completed successfully", args...)
	}(time.Now())

	return lm.svc.ListCheckpoints(ctx, offset, limit)
}
