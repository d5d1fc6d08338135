package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/openfrag/agmmr/internal/adapters/repository"
	"github.com/openfrag/agmmr/internal/domain/model"
)

// MatchesHandler serves per-match stat views.
type MatchesHandler struct {
	deps Dependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps Dependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

type matchResponse struct {
	MatchID int64                    `json:"match_id"`
	Details []*model.MatchStatRecord `json:"details"`
}

// HandleGetMatch serves GET /matches/{id}: every stat record of one processed
// match in roster order.
func (h *MatchesHandler) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/matches/")
	matchID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || matchID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_match_id", ErrInvalidPayload)
		return
	}

	details, err := h.deps.MatchDetails(r.Context(), matchID)
	switch {
	case errors.Is(err, repository.ErrMatchNotFound):
		writeError(w, http.StatusNotFound, "match_not_found", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, matchResponse{MatchID: matchID, Details: details})
}
