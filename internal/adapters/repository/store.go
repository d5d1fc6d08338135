// Package repository defines persistence for players and match details.
package repository

import (
	"context"

	"github.com/openfrag/agmmr/internal/domain/model"
)

// Store provides read/write access to player and match-detail state. The
// engine never touches it directly; the service layer feeds engine output
// into it and engine input out of it.
type Store interface {
	// UpsertPlayer creates or refreshes a player record.
	UpsertPlayer(ctx context.Context, p *model.PlayerRecord) error

	// Player returns a copy of a player record.
	// Returns ErrPlayerNotFound for unknown ids.
	Player(ctx context.Context, playerID string) (*model.PlayerRecord, error)

	// Players returns copies of all player records.
	Players(ctx context.Context) []*model.PlayerRecord

	// TopByMMR returns up to n players ordered by MMR descending.
	TopByMMR(ctx context.Context, n int) ([]*model.PlayerRecord, error)

	// SetPlayerMMR updates a player's matchmaking MMR.
	SetPlayerMMR(ctx context.Context, playerID string, mmr int) error

	// SetPlayerRating updates a player's persisted skill rating.
	SetPlayerRating(ctx context.Context, playerID string, mu, sigma float64) error

	// AppendDetails persists new match-detail records, assigning ascending
	// ids. The caller's records receive the assigned ids.
	AppendDetails(ctx context.Context, records []*model.MatchStatRecord) error

	// SaveDetails writes back records whose MMR fields were filled in.
	// Returns ErrDetailNotFound if any record id is unknown.
	SaveDetails(ctx context.Context, records []*model.MatchStatRecord) error

	// LatestDetail returns a copy of the player's most recent match detail,
	// or nil when the player has no processed matches.
	LatestDetail(ctx context.Context, playerID string) *model.MatchStatRecord

	// DetailsByPlayer returns copies of a player's details in ascending order.
	DetailsByPlayer(ctx context.Context, playerID string) []*model.MatchStatRecord

	// DetailsByMatch returns copies of one match's details in roster order.
	// Returns ErrMatchNotFound for match ids with no records.
	DetailsByMatch(ctx context.Context, matchID int64) ([]*model.MatchStatRecord, error)

	// AllDetails returns copies of every detail ordered by match id ascending,
	// roster order preserved within a match.
	AllDetails(ctx context.Context) []*model.MatchStatRecord

	// CountPlayers returns the number of tracked players.
	CountPlayers(ctx context.Context) int
}
