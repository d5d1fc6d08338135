// Package model contains domain models passed between layers.
package model

// Conventional side tags. The engine accepts any two distinct tags; these are
// the values the game servers actually send.
const (
	SideBlue = "blue"
	SideRed  = "red"
)

// MatchStatRecord is one player's raw statistics for one match.
// Created by the ingestion side with zeroed MMR fields; the rating engine
// fills MMRDelta and MMRAfterMatch exactly once per processing pass.
type MatchStatRecord struct {
	ID          int64  `json:"id"`
	MatchID     int64  `json:"match_id"`
	PlayerID    string `json:"player_id"`
	Side        string `json:"side"`
	Frags       int    `json:"frags"`
	Deaths      int    `json:"deaths"`
	AveragePing int    `json:"average_ping"`
	DamageDealt int    `json:"damage_dealt"`
	DamageTaken int    `json:"damage_taken"`

	MMRDelta      int `json:"mmr_delta"`
	MMRAfterMatch int `json:"mmr_after_match"`
}

// PlayerRecord is a player's persisted state as supplied by the persistence
// collaborator: matchmaking MMR plus the last committed skill rating.
type PlayerRecord struct {
	PlayerID   string  `json:"player_id"`
	MMR        int     `json:"mmr"`
	SkillMu    float64 `json:"skill_mu"`
	SkillSigma float64 `json:"skill_sigma"`
}

// MatchSubmission is one match's worth of stat rows travelling through the
// submission queue.
type MatchSubmission struct {
	MatchID int64
	Records []*MatchStatRecord
}
