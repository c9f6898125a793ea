package api

import (
	"context"
	"errors"

	"github.com/absmach/fedlearn/client"
	"github.com/absmach/fedlearn/pkg/api"
	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/go-kit/kit/endpoint"
)

func checkpointStateEndpoint(svc client.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		state, err := svc.CheckpointState(ctx)
		if err != nil {
			return stateResponse{}, err
		}

		return stateResponse{State: state}, nil
	}
}

func listCheckpointsEndpoint(svc client.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(listCheckpointsReq)
		if !ok {
			return listCheckpointsResponse{}, errors.Join(api.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return listCheckpointsResponse{}, errors.Join(api.ErrValidation, err)
		}

		page, err := svc.ListCheckpoints(ctx, req.offset, req.limit)
		if err != nil {
			return listCheckpointsResponse{}, err
		}

		return listCheckpointsResponse{CheckpointPage: page}, nil
	}
}
