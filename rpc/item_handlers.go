package rpc

import (
	"math/big"
	"net/http"

	"animalrogue/native/item"
)

type itemMetadataParams struct {
	Caller      string `json:"caller"`
	TokenID     uint64 `json:"tokenId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Media       string `json:"media"`
	Reference   string `json:"reference"`
}

type itemTransferParams struct {
	Caller  string `json:"caller"`
	Account string `json:"account"`
	TokenID uint64 `json:"tokenId"`
	Amount  string `json:"amount"`
}

type itemBatchParams struct {
	Caller   string   `json:"caller"`
	Account  string   `json:"account"`
	TokenIDs []uint64 `json:"tokenIds"`
	Amounts  []string `json:"amounts"`
}

type itemBalanceParams struct {
	Account string `json:"account"`
	TokenID uint64 `json:"tokenId"`
}

type itemQueryParams struct {
	TokenID uint64 `json:"tokenId"`
}

type itemMetadataResult struct {
	TokenID     uint64 `json:"tokenId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Media       string `json:"media"`
	Reference   string `json:"reference"`
}

func (s *Server) handleItemCreateMetadata(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params itemMetadataParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	metadata := item.TokenMetadata{
		Title:       params.Title,
		Description: params.Description,
		Media:       params.Media,
		Reference:   params.Reference,
	}
	if err := s.node.ItemCreateMetadata(caller, params.TokenID, metadata); err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"created": true})
}

func (s *Server) handleItemMint(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	caller, account, amount, params, ok := s.itemTransferFields(w, req)
	if !ok {
		return
	}
	minted, err := s.node.ItemMint(caller, account, params.TokenID, amount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"minted": minted})
}

func (s *Server) handleItemBurn(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	caller, account, amount, params, ok := s.itemTransferFields(w, req)
	if !ok {
		return
	}
	burned, err := s.node.ItemBurn(caller, account, params.TokenID, amount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"burned": burned})
}

func (s *Server) handleItemMintBatch(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	caller, account, amounts, params, ok := s.itemBatchFields(w, req)
	if !ok {
		return
	}
	minted, err := s.node.ItemMintBatch(caller, account, params.TokenIDs, amounts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"minted": minted})
}

func (s *Server) handleItemBurnBatch(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	caller, account, amounts, params, ok := s.itemBatchFields(w, req)
	if !ok {
		return
	}
	burned, err := s.node.ItemBurnBatch(caller, account, params.TokenIDs, amounts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"burned": burned})
}

func (s *Server) handleItemBalanceOf(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params itemBalanceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	account, err := decodeBech32(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]string{"balance": s.node.ItemBalance(account, params.TokenID).String()})
}

func (s *Server) handleItemMetadata(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params itemQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	metadata, ok := s.node.ItemMetadata(params.TokenID)
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeServerError, "token metadata not found", nil)
		return
	}
	writeResult(w, req.ID, itemMetadataResult{
		TokenID:     params.TokenID,
		Title:       metadata.Title,
		Description: metadata.Description,
		Media:       metadata.Media,
		Reference:   metadata.Reference,
	})
}

func (s *Server) itemTransferFields(w http.ResponseWriter, req *RPCRequest) ([20]byte, [20]byte, *big.Int, itemTransferParams, bool) {
	var params itemTransferParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return [20]byte{}, [20]byte{}, nil, params, false
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return [20]byte{}, [20]byte{}, nil, params, false
	}
	account, err := decodeBech32(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return [20]byte{}, [20]byte{}, nil, params, false
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return [20]byte{}, [20]byte{}, nil, params, false
	}
	return caller, account, amount, params, true
}

func (s *Server) itemBatchFields(w http.ResponseWriter, req *RPCRequest) ([20]byte, [20]byte, []*big.Int, itemBatchParams, bool) {
	var params itemBatchParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return [20]byte{}, [20]byte{}, nil, params, false
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return [20]byte{}, [20]byte{}, nil, params, false
	}
	account, err := decodeBech32(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return [20]byte{}, [20]byte{}, nil, params, false
	}
	amounts, err := parseAmountList(params.Amounts)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return [20]byte{}, [20]byte{}, nil, params, false
	}
	return caller, account, amounts, params, true
}
