package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/openfrag/agmmr/internal/adapters/repository"
	"github.com/openfrag/agmmr/internal/domain/model"
)

// PlayersHandler serves player profiles.
type PlayersHandler struct {
	deps Dependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps Dependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

type playerProfileResponse struct {
	Player  *model.PlayerRecord      `json:"player"`
	History []*model.MatchStatRecord `json:"history"`
}

// HandleGetPlayer serves GET /players/{id}: the player record plus their
// per-match stat history in processing order.
func (h *PlayersHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/players/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid_player_id", ErrInvalidPayload)
		return
	}

	player, history, err := h.deps.PlayerProfile(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, "player_not_found", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, playerProfileResponse{Player: player, History: history})
}
