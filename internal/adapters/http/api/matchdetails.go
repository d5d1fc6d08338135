package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	service "github.com/openfrag/agmmr/internal/app"
	"github.com/openfrag/agmmr/internal/domain/model"
)

// MatchDetailsHandler accepts one match's stat records for processing.
type MatchDetailsHandler struct {
	deps Dependencies
}

// NewMatchDetailsHandler creates a new match submission handler.
func NewMatchDetailsHandler(deps Dependencies) *MatchDetailsHandler {
	return &MatchDetailsHandler{deps: deps}
}

type matchDetailEntry struct {
	PlayerID    string `json:"player_id"`
	Side        string `json:"side"`
	Frags       int    `json:"frags"`
	Deaths      int    `json:"deaths"`
	AveragePing int    `json:"average_ping"`
	DamageDealt int    `json:"damage_dealt"`
	DamageTaken int    `json:"damage_taken"`
}

type matchDetailsRequest struct {
	MatchID int64              `json:"match_id"`
	Details []matchDetailEntry `json:"details"`
}

// HandlePostMatchDetails parses, validates, and queues a match submission.
// The response acknowledges receipt; rating updates happen asynchronously.
func (h *MatchDetailsHandler) HandlePostMatchDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	var req matchDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload",
			fmt.Errorf("%w: %v", ErrInvalidPayload, err))
		return
	}

	sub, err := req.toSubmission()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	duplicate, err := h.deps.SubmitMatch(r.Context(), sub)
	switch {
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	case duplicate:
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

func (req *matchDetailsRequest) toSubmission() (model.MatchSubmission, error) {
	if req.MatchID <= 0 {
		return model.MatchSubmission{}, fmt.Errorf("%w: match_id must be positive", ErrInvalidPayload)
	}
	if len(req.Details) < 2 {
		return model.MatchSubmission{}, fmt.Errorf("%w: a match needs at least two records", ErrInvalidPayload)
	}

	sides := make(map[string]int, 2)
	records := make([]*model.MatchStatRecord, 0, len(req.Details))
	for i, d := range req.Details {
		if d.PlayerID == "" {
			return model.MatchSubmission{}, fmt.Errorf("%w: details[%d] missing player_id", ErrInvalidPayload, i)
		}
		side := strings.ToLower(strings.TrimSpace(d.Side))
		if side == "" {
			return model.MatchSubmission{}, fmt.Errorf("%w: details[%d] missing side", ErrInvalidPayload, i)
		}
		if d.Deaths < 0 || d.AveragePing < 0 || d.DamageDealt < 0 || d.DamageTaken < 0 {
			return model.MatchSubmission{}, fmt.Errorf("%w: details[%d] has negative stats", ErrInvalidPayload, i)
		}
		sides[side]++
		records = append(records, &model.MatchStatRecord{
			MatchID:     req.MatchID,
			PlayerID:    d.PlayerID,
			Side:        side,
			Frags:       d.Frags,
			Deaths:      d.Deaths,
			AveragePing: d.AveragePing,
			DamageDealt: d.DamageDealt,
			DamageTaken: d.DamageTaken,
		})
	}

	if len(sides) != 2 {
		return model.MatchSubmission{}, fmt.Errorf("%w: a match needs exactly two sides, got %d", ErrInvalidPayload, len(sides))
	}
	var counts []int
	for _, n := range sides {
		counts = append(counts, n)
	}
	if counts[0] != counts[1] {
		return model.MatchSubmission{}, fmt.Errorf("%w: sides must be the same size", ErrInvalidPayload)
	}

	return model.MatchSubmission{MatchID: req.MatchID, Records: records}, nil
}
