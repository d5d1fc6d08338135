package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/openfrag/agmmr/internal/domain/model"
)

// MemStore implements Store in memory. Records are stored as copies so the
// engine's in-place mutations never leak into persisted state before the
// service decides to save them.
type MemStore struct {
	mu       sync.RWMutex
	players  map[string]*model.PlayerRecord
	details  []*model.MatchStatRecord
	byID     map[int64]*model.MatchStatRecord
	byPlayer map[string][]*model.MatchStatRecord
	byMatch  map[int64][]*model.MatchStatRecord
	nextID   int64
}

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithPlayers seeds the store with existing player records.
func WithPlayers(players []*model.PlayerRecord) Option {
	return func(s *MemStore) {
		for _, p := range players {
			cp := *p
			s.players[p.PlayerID] = &cp
		}
	}
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		players:  make(map[string]*model.PlayerRecord),
		byID:     make(map[int64]*model.MatchStatRecord),
		byPlayer: make(map[string][]*model.MatchStatRecord),
		byMatch:  make(map[int64][]*model.MatchStatRecord),
		nextID:   1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemStore) UpsertPlayer(_ context.Context, p *model.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.players[p.PlayerID] = &cp
	return nil
}

func (s *MemStore) Player(_ context.Context, playerID string) (*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	cp := *p
	return &cp, nil
}

func (s *MemStore) Players(_ context.Context) []*model.PlayerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.PlayerRecord, 0, len(s.players))
	for _, p := range s.players {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

func (s *MemStore) TopByMMR(ctx context.Context, n int) ([]*model.PlayerRecord, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}

	out := s.Players(ctx)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MMR > out[j].MMR })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemStore) SetPlayerMMR(_ context.Context, playerID string, mmr int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	p.MMR = mmr
	return nil
}

func (s *MemStore) SetPlayerRating(_ context.Context, playerID string, mu, sigma float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	p.SkillMu = mu
	p.SkillSigma = sigma
	return nil
}

func (s *MemStore) AppendDetails(_ context.Context, records []*model.MatchStatRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		r.ID = s.nextID
		s.nextID++

		cp := *r
		s.details = append(s.details, &cp)
		s.byID[cp.ID] = &cp
		s.byPlayer[cp.PlayerID] = append(s.byPlayer[cp.PlayerID], &cp)
		s.byMatch[cp.MatchID] = append(s.byMatch[cp.MatchID], &cp)
	}
	return nil
}

func (s *MemStore) SaveDetails(_ context.Context, records []*model.MatchStatRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		stored, ok := s.byID[r.ID]
		if !ok {
			return fmt.Errorf("%w: id %d", ErrDetailNotFound, r.ID)
		}
		*stored = *r
	}
	return nil
}

func (s *MemStore) LatestDetail(_ context.Context, playerID string) *model.MatchStatRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byPlayer[playerID]
	if len(list) == 0 {
		return nil
	}
	cp := *list[len(list)-1]
	return &cp
}

func (s *MemStore) DetailsByPlayer(_ context.Context, playerID string) []*model.MatchStatRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byPlayer[playerID]
	out := make([]*model.MatchStatRecord, len(list))
	for i, r := range list {
		cp := *r
		out[i] = &cp
	}
	return out
}

func (s *MemStore) DetailsByMatch(_ context.Context, matchID int64) ([]*model.MatchStatRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byMatch[matchID]
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrMatchNotFound, matchID)
	}
	out := make([]*model.MatchStatRecord, len(list))
	for i, r := range list {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}

func (s *MemStore) AllDetails(_ context.Context) []*model.MatchStatRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.MatchStatRecord, len(s.details))
	for i, r := range s.details {
		cp := *r
		out[i] = &cp
	}
	// Insertion order already tracks id order; matches sort by match id with
	// roster order preserved.
	sort.SliceStable(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	return out
}

func (s *MemStore) CountPlayers(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}
