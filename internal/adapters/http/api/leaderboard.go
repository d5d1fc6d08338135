package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/openfrag/agmmr/internal/adapters/repository"
	"github.com/openfrag/agmmr/internal/domain/model"
)

// defaultLeaderboardLimit applies when the caller omits ?limit.
const defaultLeaderboardLimit = 10

// LeaderboardHandler serves the MMR leaderboard.
type LeaderboardHandler struct {
	deps Dependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

type leaderboardResponse struct {
	Players []*model.PlayerRecord `json:"players"`
}

// HandleGetLeaderboard serves GET /leaderboard?limit=N, players ordered by
// MMR descending.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", ErrInvalidPayload)
			return
		}
		limit = n
	}

	players, err := h.deps.Leaderboard(r.Context(), limit)
	switch {
	case errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "invalid_limit", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Players: players})
}
