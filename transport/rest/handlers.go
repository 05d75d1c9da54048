package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lobbygames/majority-backend/internal/apperror"
	"github.com/lobbygames/majority-backend/internal/entity"
)

const recentMatchesLimit = 20

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Server) handleListLobbies(w http.ResponseWriter, r *http.Request) {
	that.writeJSON(w, http.StatusOK, that.game.ListLobbies())
}

func (that *Server) handleCreateLobby(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleCreateLobby")

	var req createLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	nick := strings.TrimSpace(req.Nick)
	format := strings.TrimSpace(req.Format)

	if nick == "" {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "nick is required"})
		return
	}

	if !entity.IsKnownFormat(format) {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown format"})
		return
	}

	ticket, err := that.game.CreateLobby(nick, format)
	if err != nil {
		log.Error("failed to create lobby", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal"})
		return
	}

	that.writeJSON(w, http.StatusOK, ticket)
}

func (that *Server) handleLobbyState(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	playerID := strings.TrimSpace(r.URL.Query().Get("player_id"))

	state, err := that.game.LobbyState(code, playerID)
	if err != nil {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: apperror.Reason(err)})
		return
	}

	that.writeJSON(w, http.StatusOK, state)
}

func (that *Server) handleJoinLobby(w http.ResponseWriter, r *http.Request) {
	var req joinLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	nick := strings.TrimSpace(req.Nick)
	if nick == "" {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "nick is required"})
		return
	}

	ticket, err := that.game.JoinLobby(chi.URLParam(r, "code"), nick)
	if err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: apperror.Reason(err)})
		return
	}

	that.writeJSON(w, http.StatusOK, ticket)
}

func (that *Server) handleLeaveLobby(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if req.PlayerID == "" {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "player_id is required"})
		return
	}

	if err := that.game.LeaveLobby(chi.URLParam(r, "code"), req.PlayerID); err != nil {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: apperror.Reason(err)})
		return
	}

	that.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (that *Server) handleStartLobby(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if req.PlayerID == "" {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "player_id is required"})
		return
	}

	if err := that.game.StartGame(chi.URLParam(r, "code"), req.PlayerID); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: apperror.Reason(err)})
		return
	}

	that.writeJSON(w, http.StatusOK, startResponse{OK: true, Started: true})
}

func (that *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	playerID := strings.TrimSpace(r.URL.Query().Get("player_id"))

	state, err := that.game.GameState(code, playerID)
	if err != nil {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: apperror.Reason(err)})
		return
	}

	that.writeJSON(w, http.StatusOK, state)
}

func (that *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, moveErrorResponse{Error: "invalid request body"})
		return
	}

	if req.PlayerID == "" {
		that.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "auth required"})
		return
	}

	if req.Row == nil || req.Col == nil {
		that.writeJSON(w, http.StatusBadRequest, moveErrorResponse{Error: "row and col are required"})
		return
	}

	outcome, err := that.game.MakeTurn(r.Context(), chi.URLParam(r, "code"), req.PlayerID, *req.Row, *req.Col)
	if err != nil {
		that.writeJSON(w, http.StatusBadRequest, moveErrorResponse{Error: apperror.Reason(err)})
		return
	}

	that.writeJSON(w, http.StatusOK, moveResponse{
		OK:         true,
		Flips:      outcome.Flips,
		NextPlayer: outcome.NextPlayer,
	})
}

func (that *Server) handleRecentMatches(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleRecentMatches")

	records, err := that.game.RecentMatches(r.Context(), recentMatchesLimit)
	if err != nil {
		log.Error("failed to list matches", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal"})
		return
	}

	that.writeJSON(w, http.StatusOK, records)
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
