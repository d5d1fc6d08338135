// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/openfrag/agmmr/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// SubmitMatch queues one match's stat records for processing.
	// duplicate reports an already-seen match id.
	SubmitMatch(ctx context.Context, sub model.MatchSubmission) (duplicate bool, err error)

	// Reprocess replays the full match history and returns the number of
	// records recomputed.
	Reprocess(ctx context.Context) (int, error)

	// MatchDetails returns one match's stat records in roster order.
	MatchDetails(ctx context.Context, matchID int64) ([]*model.MatchStatRecord, error)

	// PlayerProfile returns a player record plus their match history.
	PlayerProfile(ctx context.Context, playerID string) (*model.PlayerRecord, []*model.MatchStatRecord, error)

	// Leaderboard returns players ordered by MMR descending.
	Leaderboard(ctx context.Context, limit int) ([]*model.PlayerRecord, error)
}

// StatsProvider exposes service statistics for the /stats endpoint.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the rating API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	matchDetailsHandler *MatchDetailsHandler
	matchesHandler      *MatchesHandler
	reprocessHandler    *ReprocessHandler
	playersHandler      *PlayersHandler
	leaderboardHandler  *LeaderboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		matchDetailsHandler: NewMatchDetailsHandler(deps),
		matchesHandler:      NewMatchesHandler(deps),
		reprocessHandler:    NewReprocessHandler(deps),
		playersHandler:      NewPlayersHandler(deps),
		leaderboardHandler:  NewLeaderboardHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", Middleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", Middleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/match-details", Middleware(s.matchDetailsHandler.HandlePostMatchDetails, "match_details"))
	mux.HandleFunc("/matches/", Middleware(s.matchesHandler.HandleGetMatch, "matches"))
	mux.HandleFunc("/reprocess", Middleware(s.reprocessHandler.HandlePostReprocess, "reprocess"))
	mux.HandleFunc("/players/", Middleware(s.playersHandler.HandleGetPlayer, "players"))
	mux.HandleFunc("/leaderboard", Middleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
