package rpc

import (
	"net/http"
)

type marketSetPriceParams struct {
	Caller  string `json:"caller"`
	TokenID uint64 `json:"tokenId"`
	Price   string `json:"price"`
}

type marketQueryParams struct {
	TokenID uint64 `json:"tokenId"`
}

type marketBuyParams struct {
	Buyer   string `json:"buyer"`
	TokenID uint64 `json:"tokenId"`
	Amount  string `json:"amount"`
}

func (s *Server) handleMarketSetPrice(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params marketSetPriceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	price, err := parseAmount(params.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.MarketSetPrice(caller, params.TokenID, price); err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"set": true})
}

func (s *Server) handleMarketGetPrice(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params marketQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	price, ok := s.node.MarketGetPrice(params.TokenID)
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeServerError, "price not set", nil)
		return
	}
	writeResult(w, req.ID, map[string]string{"price": price.String()})
}

func (s *Server) handleMarketBuy(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params marketBuyParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	buyer, err := decodeBech32(params.Buyer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid buyer address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.MarketBuy(buyer, params.TokenID, amount); err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"purchased": true})
}
