package skill

import (
	"context"
	"sync"

	"github.com/openfrag/agmmr/internal/domain/model"
	"github.com/openfrag/agmmr/pkg/logger"
)

// Store is the process-lifetime mapping from player identity to skill rating.
// Match processing is serialized by the engine; the internal lock only guards
// concurrent snapshot/count reads from the HTTP surface.
type Store struct {
	mu      sync.RWMutex
	ratings map[string]Rating
	log     logger.Logger
}

// StoreOption applies a configuration option to the Store.
type StoreOption func(*Store)

// WithLogger sets a custom logger for the store.
func WithLogger(log logger.Logger) StoreOption {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// NewStore creates an empty rating store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		ratings: make(map[string]Rating),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure seeds the store from persisted player records. Unusable persisted
// values are normalized to the model defaults and logged; they never fail the
// call. The matchmaking MMR is left untouched: zero is a reachable floor, so
// only the caller can tell "never rated" from "rated down to zero". Idempotent.
func (s *Store) Ensure(ctx context.Context, players []*model.PlayerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range players {
		r, ok := Normalize(Rating{Mu: p.SkillMu, Sigma: p.SkillSigma})
		if !ok {
			s.warn(ctx, "unusable persisted rating; reset to defaults",
				logger.String("playerID", p.PlayerID))
		}
		s.ratings[p.PlayerID] = r
		p.SkillMu = r.Mu
		p.SkillSigma = r.Sigma
	}
}

// Get returns the stored rating for a player, bootstrapping one from the
// supplied first-match statistics when the player has never been seen.
func (s *Store) Get(playerID string, firstMatch *model.MatchStatRecord) Rating {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.ratings[playerID]; ok {
		return r
	}
	r := Bootstrap(firstMatch)
	s.ratings[playerID] = r
	return r
}

// Sync carries a player's rating through unchanged, writing the model
// defaults for players the store has never seen. Used for gate-suppressed
// matches, where bootstrapping from the match's own statistics would encode
// noise.
func (s *Store) Sync(playerID string) Rating {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.ratings[playerID]; ok {
		return r
	}
	r := Default()
	s.ratings[playerID] = r
	return r
}

// Update overwrites the stored rating. Non-finite updates are dropped and the
// prior rating retained.
func (s *Store) Update(ctx context.Context, playerID string, r Rating) {
	if !r.Finite() {
		s.warn(ctx, "dropping non-finite rating update",
			logger.String("playerID", playerID),
			logger.Float64("mu", r.Mu),
			logger.Float64("sigma", r.Sigma))
		return
	}
	s.mu.Lock()
	s.ratings[playerID] = r
	s.mu.Unlock()
}

// Snapshot returns a copy of the full rating mapping for persistence.
func (s *Store) Snapshot() map[string]Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Rating, len(s.ratings))
	for id, r := range s.ratings {
		out[id] = r
	}
	return out
}

// Reset clears all stored ratings. Callers use it before a full-history
// replay.
func (s *Store) Reset() {
	s.mu.Lock()
	s.ratings = make(map[string]Rating)
	s.mu.Unlock()
}

// Count returns the number of tracked ratings.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ratings)
}

func (s *Store) warn(ctx context.Context, msg string, fields ...logger.Field) {
	if s.log == nil {
		return
	}
	s.log.Warn(ctx, msg, fields...)
}
