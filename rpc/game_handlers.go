package rpc

import (
	"encoding/hex"
	"net/http"

	"animalrogue/crypto"
	"animalrogue/native/game"
)

type verifierKeyParams struct {
	Caller    string `json:"caller"`
	PublicKey string `json:"publicKey"`
}

type gameTimeParams struct {
	Caller   string `json:"caller"`
	GameTime uint32 `json:"gameTime"`
}

type maxEarnParams struct {
	Caller  string `json:"caller"`
	MaxEarn uint64 `json:"maxEarn"`
}

type staminaParams struct {
	Caller  string `json:"caller"`
	Stamina uint64 `json:"stamina"`
}

type recoveryRateParams struct {
	Caller   string `json:"caller"`
	Interval uint64 `json:"interval"`
}

type registerPlayerParams struct {
	Caller     string `json:"caller"`
	Name       string `json:"name"`
	AvatarID   uint32 `json:"avatarId"`
	AvatarIcon string `json:"avatarIcon"`
}

type updatePlayerParams struct {
	Caller     string  `json:"caller"`
	Name       *string `json:"name,omitempty"`
	AvatarID   *uint32 `json:"avatarId,omitempty"`
	AvatarIcon *string `json:"avatarIcon,omitempty"`
}

type callerParams struct {
	Caller string `json:"caller"`
}

type gameUpdateParams struct {
	GameID    uint64   `json:"gameId"`
	Score     int64    `json:"score"`
	Earn      string   `json:"earn"`
	Signature string   `json:"signature"`
	TokenIDs  []uint64 `json:"tokenIds"`
	Amounts   []string `json:"amounts"`
}

type gameQueryParams struct {
	GameID uint64 `json:"gameId"`
}

type playerQueryParams struct {
	Account string `json:"account"`
}

type settingsResult struct {
	VerifierPublicKey       string `json:"verifierPublicKey"`
	GameTime                uint32 `json:"gameTime"`
	MaxEarn                 uint64 `json:"maxEarn"`
	InitialMaxStamina       uint64 `json:"initialMaxStamina"`
	StaminaRecoveryInterval uint64 `json:"staminaRecoveryInterval"`
}

type gameResult struct {
	GameID  uint64 `json:"gameId"`
	Stage   uint32 `json:"stage"`
	Time    uint32 `json:"time"`
	Status  string `json:"status"`
	Score   int64  `json:"score"`
	Creator string `json:"creator"`
}

type playerResult struct {
	Account      string `json:"account"`
	Name         string `json:"name"`
	AvatarID     uint32 `json:"avatarId"`
	AvatarIcon   string `json:"avatarIcon"`
	HighestScore int64  `json:"highestScore"`
	GamesPlayed  uint32 `json:"gamesPlayed"`
	Stamina      uint64 `json:"stamina"`
	MaxStamina   uint64 `json:"maxStamina"`
}

type leaderboardResult struct {
	Account      string `json:"account"`
	HighestScore int64  `json:"highestScore"`
}

func (s *Server) handleGameSetVerifierKey(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params verifierKeyParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	key, err := decodeHexField(params.PublicKey, "public key")
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.SetVerifierPublicKey(caller, key); err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"set": true})
}

func (s *Server) handleGameSetGameTime(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params gameTimeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.node.SetGameTime(caller, params.GameTime); err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"set": true})
}

func (s *Server) handleGameSetMaxEarn(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params maxEarnParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.node.SetMaxEarn(caller, params.MaxEarn); err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"set": true})
}

func (s *Server) handleGameSetInitialMaxStamina(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params staminaParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.node.SetInitialMaxStamina(caller, params.Stamina); err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"set": true})
}

func (s *Server) handleGameSetStaminaRecoveryRate(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params recoveryRateParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.node.SetStaminaRecoveryRate(caller, params.Interval); err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"set": true})
}

func (s *Server) handleGameGetSettings(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	settings := s.node.GetSettings()
	writeResult(w, req.ID, settingsResult{
		VerifierPublicKey:       hex.EncodeToString(settings.VerifierPublicKey),
		GameTime:                settings.GameTime,
		MaxEarn:                 settings.MaxEarn,
		InitialMaxStamina:       settings.InitialMaxStamina,
		StaminaRecoveryInterval: settings.StaminaRecoveryInterval,
	})
}

func (s *Server) handleGameRegisterPlayer(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params registerPlayerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.node.RegisterPlayer(caller, params.Name, params.AvatarID, params.AvatarIcon); err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"registered": true})
}

func (s *Server) handleGameUpdatePlayerInfo(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params updatePlayerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.node.UpdatePlayerInfo(caller, params.Name, params.AvatarID, params.AvatarIcon); err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"updated": true})
}

func (s *Server) handleGameCreate(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	gameID, err := s.node.CreateGame(caller)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"gameId": gameID})
}

func (s *Server) handleGameUpdate(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params gameUpdateParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	earn, err := parseAmount(params.Earn)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	signature, err := decodeHexField(params.Signature, "signature")
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amounts, err := parseAmountList(params.Amounts)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.UpdateGame(params.GameID, params.Score, earn, signature, params.TokenIDs, amounts); err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"settled": true})
}

func (s *Server) handleGameGet(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params gameQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	info, ok := s.node.GetGame(params.GameID)
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeServerError, "game not found", nil)
		return
	}
	writeResult(w, req.ID, encodeGame(info))
}

func (s *Server) handleGamePlayer(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params playerQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	account, err := decodeBech32(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	player, ok := s.node.GetPlayer(account)
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeServerError, "player not registered", nil)
		return
	}
	writeResult(w, req.ID, encodePlayer(account, player))
}

func (s *Server) handleGamePlayers(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	entries := s.node.GetPlayers()
	results := make([]playerResult, len(entries))
	for i, entry := range entries {
		results[i] = encodePlayer(entry.Account, entry.Player)
	}
	writeResult(w, req.ID, results)
}

func (s *Server) handleGameLeaderboard(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	entries := s.node.GetLeaderboard()
	results := make([]leaderboardResult, len(entries))
	for i, entry := range entries {
		results[i] = leaderboardResult{
			Account:      crypto.NewAddress(entry.Account).String(),
			HighestScore: entry.HighestScore,
		}
	}
	writeResult(w, req.ID, results)
}

func (s *Server) handleGameStamina(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	stamina, err := s.node.GetPlayerStamina(caller)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"stamina": stamina})
}

func (s *Server) handleGameRecoveredBlock(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	remaining, err := s.node.GetPlayerRecoveredBlock(caller)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"recoveredBlock": remaining})
}

func encodeGame(info game.GameInfo) gameResult {
	return gameResult{
		GameID:  info.ID,
		Stage:   info.Stage,
		Time:    info.Time,
		Status:  info.Status.String(),
		Score:   info.Score,
		Creator: crypto.NewAddress(info.Creator).String(),
	}
}

func encodePlayer(account [20]byte, player game.Player) playerResult {
	return playerResult{
		Account:      crypto.NewAddress(account).String(),
		Name:         player.Name,
		AvatarID:     player.AvatarID,
		AvatarIcon:   player.AvatarIcon,
		HighestScore: player.HighestScore,
		GamesPlayed:  player.GamesPlayed,
		Stamina:      player.Stamina,
		MaxStamina:   player.MaxStamina,
	}
}
