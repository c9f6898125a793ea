package middleware

import (
	"context"

	"github.com/absmach/fedlearn/checkpoint"
	"github.com/absmach/fedlearn/client"
	"github.com/absmach/fedlearn/pkg/fl"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ client.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    client.Service
}

func Tracing(tracer trace.Tracer, svc client.Service) client.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) Fit(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (res fl.FitResult, err error) {
	ctx, span := tm.tracer.Start(ctx, "fit", trace.WithAttributes(
		attribute.String("layout", params.Layout.Version),
		attribute.Int("server_round", cfg.ServerRound),
		attribute.Int("local_epochs", cfg.LocalEpochs),
	))
	defer func() {
		endSpan(span, err)
	}()

	return tm.svc.Fit(ctx, params, cfg)
}

func (tm *tracing) Evaluate(ctx context.Context, params fl.ParameterSet, cfg fl.RoundConfig) (res fl.EvaluateResult, err error) {
	ctx, span := tm.tracer.Start(ctx, "evaluate", trace.WithAttributes(
		attribute.String("layout", params.Layout.Version),
		attribute.Int("server_round", cfg.ServerRound),
		attribute.Int("val_steps", cfg.ValSteps),
	))
	defer func() {
		endSpan(span, err)
	}()

	return tm.svc.Evaluate(ctx, params, cfg)
}

func (tm *tracing) HandleInstruction(ctx context.Context, ins fl.Instruction) (reply fl.Reply, err error) {
	ctx, span := tm.tracer.Start(ctx, "handle-instruction", trace.WithAttributes(
		attribute.String("round_id", ins.RoundID),
	))
	defer func() {
		span.SetAttributes(attribute.String("kind", string(reply.Kind)))
		endSpan(span, err)
	}()

	return tm.svc.HandleInstruction(ctx, ins)
}

func (tm *tracing) CheckpointState(ctx context.Context) (checkpoint.State, error) {
	ctx, span := tm.tracer.Start(ctx, "checkpoint-state")
	defer span.End()

	return tm.svc.CheckpointState(ctx)
}

func (tm *tracing) ListCheckpoints(ctx context.Context, offset, limit uint64) (client.CheckpointPage, error) {
	ctx, span := tm.tracer.Start(ctx, "list-checkpoints", trace.WithAttributes(
		attribute.Int64("offset", int64(offset)),
		attribute.Int64("limit", int64(limit)),
	))
	defer span.End()

	return tm.svc.ListCheckpoints(ctx, offset, limit)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
