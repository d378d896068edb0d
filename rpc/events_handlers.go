package rpc

import (
	"encoding/json"
	"net/http"
)

type eventsListParams struct {
	After uint64 `json:"after"`
	Limit int    `json:"limit"`
}

type eventResult struct {
	Sequence   uint64            `json:"sequence"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func (s *Server) handleEventsList(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params eventsListParams
	if len(req.Params) > 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "at most one parameter object expected", nil)
		return
	}
	if len(req.Params) == 1 {
		if err := json.Unmarshal(req.Params[0], &params); err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
			return
		}
	}
	recorded := s.node.Events(params.After, params.Limit)
	results := make([]eventResult, len(recorded))
	for i, evt := range recorded {
		results[i] = eventResult{
			Sequence:   evt.Sequence,
			Type:       evt.Type,
			Attributes: evt.Attributes,
		}
	}
	writeResult(w, req.ID, results)
}
