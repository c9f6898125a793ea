package api

import (
	"net/http"

	"github.com/absmach/fedlearn/checkpoint"
	"github.com/absmach/fedlearn/client"
	"github.com/absmach/fedlearn/pkg/api"
)

var (
	_ api.Response = (*stateResponse)(nil)
	_ api.Response = (*listCheckpointsResponse)(nil)
)

type stateResponse struct {
	checkpoint.State
}

func (r stateResponse) Code() int {
	return http.StatusOK
}

func (r stateResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r stateResponse) Empty() bool {
	return false
}

type listCheckpointsResponse struct {
	client.CheckpointPage
}

func (r listCheckpointsResponse) Code() int {
	return http.StatusOK
}

func (r listCheckpointsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r listCheckpointsResponse) Empty() bool {
	return false
}
