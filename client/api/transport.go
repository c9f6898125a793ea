package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/absmach/fedlearn/client"
	"github.com/absmach/fedlearn/pkg/api"
	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// MakeHandler returns the ops API of a client. Metrics are served from gatherer.
func MakeHandler(svc client.Service, logger *slog.Logger, instanceID string, gatherer prometheus.Gatherer) http.Handler {
	mux := chi.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(api.LoggingErrorEncoder(logger, api.EncodeError)),
	}

	mux.Route("/checkpoints", func(r chi.Router) {
		r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
			listCheckpointsEndpoint(svc),
			decodeListCheckpointsReq,
			api.EncodeResponse,
			opts...,
		), "list-checkpoints").ServeHTTP)
		r.Get("/state", otelhttp.NewHandler(kithttp.NewServer(
			checkpointStateEndpoint(svc),
			kithttp.NopRequestDecoder,
			api.EncodeResponse,
			opts...,
		), "checkpoint-state").ServeHTTP)
	})

	mux.Get("/health", api.Health("fedclient", instanceID))
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return mux
}

func decodeListCheckpointsReq(_ context.Context, r *http.Request) (any, error) {
	o, err := api.ReadUintQuery(r, api.OffsetKey, api.DefOffset)
	if err != nil {
		return nil, errors.Join(api.ErrValidation, err)
	}

	l, err := api.ReadUintQuery(r, api.LimitKey, api.DefLimit)
	if err != nil {
		return nil, errors.Join(api.ErrValidation, err)
	}

	return listCheckpointsReq{
		offset: o,
		limit:  l,
	}, nil
}
