package api

import "net/http"

// ReprocessHandler triggers a full replay of the stored match history.
type ReprocessHandler struct {
	deps Dependencies
}

// NewReprocessHandler creates a new reprocess handler.
func NewReprocessHandler(deps Dependencies) *ReprocessHandler {
	return &ReprocessHandler{deps: deps}
}

type reprocessResponse struct {
	Status           string `json:"status"`
	RecordsProcessed int    `json:"records_processed"`
}

// HandlePostReprocess replays every stored match in order and rewrites
// deltas, placements, and ratings from scratch.
func (h *ReprocessHandler) HandlePostReprocess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	n, err := h.deps.Reprocess(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, reprocessResponse{Status: "ok", RecordsProcessed: n})
}
