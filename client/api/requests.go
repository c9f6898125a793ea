package api

import "github.com/absmach/fedlearn/pkg/api"

type listCheckpointsReq struct {
	offset, limit uint64
}

func (req listCheckpointsReq) validate() error {
	if req.limit == 0 || req.limit > api.MaxLimitSize {
		return api.ErrLimitSize
	}

	return nil
}
