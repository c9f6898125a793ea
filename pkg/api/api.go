// Package api holds the HTTP encoding helpers shared by the client ops API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	kithttp "github.com/go-kit/kit/transport/http"
)

const (
	OffsetKey = "offset"
	LimitKey  = "limit"
	DefOffset = 0
	DefLimit  = 100

	ContentType = "application/json"

	MaxLimitSize = 100
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrLimitSize    = fmt.Errorf("limit must be between 1 and %d", MaxLimitSize)
	ErrInvalidQuery = errors.New("invalid query parameter")
)

// Response is implemented by endpoint responses that control status and headers.
type Response interface {
	Code() int
	Headers() map[string]string
	Empty() bool
}

type errorRes struct {
	Error string `json:"error"`
}

func EncodeResponse(_ context.Context, w http.ResponseWriter, response any) error {
	if ar, ok := response.(Response); ok {
		for k, v := range ar.Headers() {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", ContentType)
		w.WriteHeader(ar.Code())

		if ar.Empty() {
			return nil
		}
	}

	return json.NewEncoder(w).Encode(response)
}

func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, pkgerrors.ErrEmptyKey),
		errors.Is(err, pkgerrors.ErrInvalidConfig):
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, pkgerrors.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}

	if err := json.NewEncoder(w).Encode(errorRes{Error: err.Error()}); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// LoggingErrorEncoder logs every error before handing it to enc.
func LoggingErrorEncoder(logger *slog.Logger, enc kithttp.ErrorEncoder) kithttp.ErrorEncoder {
	return func(ctx context.Context, err error, w http.ResponseWriter) {
		logger.WarnContext(ctx, "HTTP request failed", slog.Any("error", err))
		enc(ctx, err, w)
	}
}

// ReadUintQuery returns the query parameter key of r as uint64, or def when absent.
func ReadUintQuery(r *http.Request, key string, def uint64) (uint64, error) {
	vals := r.URL.Query()[key]
	if len(vals) > 1 {
		return 0, fmt.Errorf("%w: %s given more than once", ErrInvalidQuery, key)
	}
	if len(vals) == 0 || vals[0] == "" {
		return def, nil
	}

	v, err := strconv.ParseUint(vals[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidQuery, key, err)
	}

	return v, nil
}

// Health reports the service name and instance of the running process.
func Health(service, instanceID string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", ContentType)
		w.WriteHeader(http.StatusOK)

		res := map[string]string{
			"status":      "pass",
			"service":     service,
			"instance_id": instanceID,
			"description": service + " service",
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}
