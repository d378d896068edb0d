package rpc

import (
	"bytes"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"animalrogue/core"
	"animalrogue/crypto"
	"animalrogue/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
)

const authTokenEnv = "ARO_RPC_TOKEN"

type Server struct {
	node      *core.Node
	logger    *slog.Logger
	authToken string
}

func NewServer(node *core.Node) *Server {
	token := strings.TrimSpace(os.Getenv(authTokenEnv))
	return &Server{node: node, logger: slog.Default(), authToken: token}
}

// SetLogger overrides the server logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Router assembles the HTTP surface: the JSON-RPC endpoint at the root plus
// health and metrics endpoints.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/", s.handle)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func (s *Server) Start(addr string) error {
	s.logger.Info("starting JSON-RPC server", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// handle is the main request handler that routes to specific handlers.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	started := time.Now()
	s.dispatch(w, r, req)
	observability.ObserveRPC(req.Method, time.Since(started))
}

// mutatingMethods lists every method that changes state; they all require the
// configured bearer token.
var mutatingMethods = map[string]bool{
	"admin_add":                   true,
	"admin_remove":                true,
	"gold_mint":                   true,
	"gold_burn":                   true,
	"item_createMetadata":         true,
	"item_mint":                   true,
	"item_mintBatch":              true,
	"item_burn":                   true,
	"item_burnBatch":              true,
	"market_setPrice":             true,
	"market_buy":                  true,
	"game_setVerifierKey":         true,
	"game_setGameTime":            true,
	"game_setMaxEarn":             true,
	"game_setInitialMaxStamina":   true,
	"game_setStaminaRecoveryRate": true,
	"game_registerPlayer":         true,
	"game_updatePlayerInfo":       true,
	"game_create":                 true,
	"game_update":                 true,
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return &RPCError{Code: codeUnauthorized, Message: "RPC authentication token not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid RPC credentials"}
	}
	return nil
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if mutatingMethods[req.Method] {
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
	}
	switch req.Method {
	case "admin_isAdmin":
		s.handleAdminIsAdmin(w, r, req)
	case "admin_add":
		s.handleAdminAdd(w, r, req)
	case "admin_remove":
		s.handleAdminRemove(w, r, req)
	case "admin_list":
		s.handleAdminList(w, r, req)
	case "gold_mint":
		s.handleGoldMint(w, r, req)
	case "gold_burn":
		s.handleGoldBurn(w, r, req)
	case "gold_balanceOf":
		s.handleGoldBalanceOf(w, r, req)
	case "gold_totalSupply":
		s.handleGoldTotalSupply(w, r, req)
	case "item_createMetadata":
		s.handleItemCreateMetadata(w, r, req)
	case "item_mint":
		s.handleItemMint(w, r, req)
	case "item_mintBatch":
		s.handleItemMintBatch(w, r, req)
	case "item_burn":
		s.handleItemBurn(w, r, req)
	case "item_burnBatch":
		s.handleItemBurnBatch(w, r, req)
	case "item_balanceOf":
		s.handleItemBalanceOf(w, r, req)
	case "item_metadata":
		s.handleItemMetadata(w, r, req)
	case "market_setPrice":
		s.handleMarketSetPrice(w, r, req)
	case "market_getPrice":
		s.handleMarketGetPrice(w, r, req)
	case "market_buy":
		s.handleMarketBuy(w, r, req)
	case "game_setVerifierKey":
		s.handleGameSetVerifierKey(w, r, req)
	case "game_setGameTime":
		s.handleGameSetGameTime(w, r, req)
	case "game_setMaxEarn":
		s.handleGameSetMaxEarn(w, r, req)
	case "game_setInitialMaxStamina":
		s.handleGameSetInitialMaxStamina(w, r, req)
	case "game_setStaminaRecoveryRate":
		s.handleGameSetStaminaRecoveryRate(w, r, req)
	case "game_getSettings":
		s.handleGameGetSettings(w, r, req)
	case "game_registerPlayer":
		s.handleGameRegisterPlayer(w, r, req)
	case "game_updatePlayerInfo":
		s.handleGameUpdatePlayerInfo(w, r, req)
	case "game_create":
		s.handleGameCreate(w, r, req)
	case "game_update":
		s.handleGameUpdate(w, r, req)
	case "game_get":
		s.handleGameGet(w, r, req)
	case "game_player":
		s.handleGamePlayer(w, r, req)
	case "game_players":
		s.handleGamePlayers(w, r, req)
	case "game_leaderboard":
		s.handleGameLeaderboard(w, r, req)
	case "game_stamina":
		s.handleGameStamina(w, r, req)
	case "game_recoveredBlock":
		s.handleGameRecoveredBlock(w, r, req)
	case "events_list":
		s.handleEventsList(w, r, req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("method %q not found", req.Method), nil)
	}
}

// --- shared parameter helpers ---

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return fmt.Errorf("invalid parameter object")
	}
	return nil
}

func decodeBech32(value string) ([20]byte, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return [20]byte{}, fmt.Errorf("address required")
	}
	addr, err := crypto.DecodeAddress(trimmed)
	if err != nil {
		return [20]byte{}, err
	}
	return addr.Bytes(), nil
}

func parseAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("amount required")
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return amount, nil
}

func parseAmountList(values []string) ([]*big.Int, error) {
	amounts := make([]*big.Int, len(values))
	for i, raw := range values {
		amount, err := parseAmount(raw)
		if err != nil {
			return nil, err
		}
		amounts[i] = amount
	}
	return amounts, nil
}

func decodeHexField(value, name string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("%s required", name)
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid %s encoding", name)
	}
	return decoded, nil
}
