package rpc

import (
	"net/http"

	"animalrogue/crypto"
)

type adminQueryParams struct {
	Account string `json:"account"`
}

type adminMutateParams struct {
	Caller  string `json:"caller"`
	Account string `json:"account"`
}

func (s *Server) handleAdminIsAdmin(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params adminQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	account, err := decodeBech32(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]bool{"isAdmin": s.node.IsAdmin(account)})
}

func (s *Server) handleAdminAdd(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	caller, account, ok := s.adminMutateAccounts(w, req)
	if !ok {
		return
	}
	added, err := s.node.AddAdmin(caller, account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"added": added})
}

func (s *Server) handleAdminRemove(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	caller, account, ok := s.adminMutateAccounts(w, req)
	if !ok {
		return
	}
	removed, err := s.node.RemoveAdmin(caller, account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"removed": removed})
}

func (s *Server) handleAdminList(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	admins := s.node.Admins()
	encoded := make([]string, len(admins))
	for i, account := range admins {
		encoded[i] = crypto.NewAddress(account).String()
	}
	writeResult(w, req.ID, map[string]interface{}{"admins": encoded})
}

func (s *Server) adminMutateAccounts(w http.ResponseWriter, req *RPCRequest) ([20]byte, [20]byte, bool) {
	var params adminMutateParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return [20]byte{}, [20]byte{}, false
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return [20]byte{}, [20]byte{}, false
	}
	account, err := decodeBech32(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return [20]byte{}, [20]byte{}, false
	}
	return caller, account, true
}
