// Package engine orchestrates rating and MMR computation per match.
package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/openfrag/agmmr/internal/domain/gate"
	"github.com/openfrag/agmmr/internal/domain/mmr"
	"github.com/openfrag/agmmr/internal/domain/model"
	"github.com/openfrag/agmmr/internal/domain/performance"
	"github.com/openfrag/agmmr/internal/domain/skill"
	"github.com/openfrag/agmmr/internal/domain/team"
	"github.com/openfrag/agmmr/pkg/logger"
	"github.com/openfrag/agmmr/pkg/metrics"
)

// defaultMMR is the fallback matchmaking rating when a gate-suppressed match
// has no previous record to carry forward.
const defaultMMR = 1000

// Engine computes skill-rating and MMR updates from match results. All match
// processing runs under a single mutex: a player's update must observe that
// player's most recently committed rating, so concurrent calls are serialized
// rather than interleaved.
type Engine struct {
	// mu serializes ProcessMatch and ReprocessAll (single-writer discipline).
	mu sync.Mutex

	store      *skill.Store
	gate       *gate.Gate
	defaultMMR int
	log        logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithGate sets a custom validity gate.
func WithGate(g *gate.Gate) Option {
	return func(e *Engine) {
		if g != nil {
			e.gate = g
		}
	}
}

// WithDefaultMMR sets the fallback MMR for gate-suppressed matches without a
// previous record.
func WithDefaultMMR(v int) Option {
	return func(e *Engine) {
		if v > 0 {
			e.defaultMMR = v
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithStore sets a custom skill-rating store.
func WithStore(s *skill.Store) Option {
	return func(e *Engine) {
		if s != nil {
			e.store = s
		}
	}
}

// New constructs an Engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		gate:       gate.New(),
		defaultMMR: defaultMMR,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		var storeOpts []skill.StoreOption
		if e.log != nil {
			storeOpts = append(storeOpts, skill.WithLogger(e.log))
		}
		e.store = skill.NewStore(storeOpts...)
	}
	return e
}

// EnsureRatings seeds the skill store from persisted player records,
// normalizing corrupted values to the model defaults. Idempotent.
func (e *Engine) EnsureRatings(ctx context.Context, players []*model.PlayerRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Ensure(ctx, players)
}

// ProcessMatch computes MMR deltas and rating updates for one match. records
// must hold exactly one match's roster with zeroed MMR fields; previous maps
// each player to their latest prior record, nil (or absent) meaning first
// match. On success the same records are returned with MMRDelta and
// MMRAfterMatch populated. On error nothing is mutated.
func (e *Engine) ProcessMatch(ctx context.Context, records []*model.MatchStatRecord, previous map[string]*model.MatchStatRecord) ([]*model.MatchStatRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	out, err := e.processLocked(ctx, records, previous)
	if err != nil {
		return nil, err
	}
	metrics.RecordProcessDuration(float64(time.Since(start).Milliseconds()))
	return out, nil
}

// ReprocessAll replays the complete match history in ascending match-id order,
// threading each player's previous record forward. It holds the processing
// lock for its full duration and fails the whole replay on the first malformed
// match; a partially replayed history would corrupt previous-record chaining.
// Callers reset the rating store beforehand when replaying from scratch.
func (e *Engine) ReprocessAll(ctx context.Context, records []*model.MatchStatRecord) ([]*model.MatchStatRecord, map[string]skill.Rating, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	groups := make(map[int64][]*model.MatchStatRecord)
	order := make([]int64, 0)
	for _, r := range records {
		if _, ok := groups[r.MatchID]; !ok {
			order = append(order, r.MatchID)
		}
		groups[r.MatchID] = append(groups[r.MatchID], r)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	previous := make(map[string]*model.MatchStatRecord)
	for _, matchID := range order {
		batch := groups[matchID]
		prevForMatch := make(map[string]*model.MatchStatRecord, len(batch))
		for _, r := range batch {
			prevForMatch[r.PlayerID] = previous[r.PlayerID]
		}

		if _, err := e.processLocked(ctx, batch, prevForMatch); err != nil {
			return nil, nil, fmt.Errorf("replaying match %d: %w", matchID, err)
		}
		for _, r := range batch {
			previous[r.PlayerID] = r
		}
	}

	metrics.RecordReprocessRun()
	metrics.RecordReprocessDuration(float64(time.Since(start).Milliseconds()))
	e.info(ctx, "history replayed",
		logger.Int("matches", len(order)),
		logger.Int("records", len(records)),
	)

	return records, e.store.Snapshot(), nil
}

// Snapshot returns the current skill-rating mapping for persistence.
func (e *Engine) Snapshot() map[string]skill.Rating {
	return e.store.Snapshot()
}

// ResetRatings clears all skill ratings, e.g. before a from-scratch replay.
func (e *Engine) ResetRatings() {
	e.store.Reset()
}

// RatingCount returns the number of tracked skill ratings.
func (e *Engine) RatingCount() int {
	return e.store.Count()
}

func (e *Engine) processLocked(ctx context.Context, records []*model.MatchStatRecord, previous map[string]*model.MatchStatRecord) ([]*model.MatchStatRecord, error) {
	// Team validation fails atomically, before any store interaction.
	sideA, sideB, err := team.Organize(records)
	if err != nil {
		metrics.RecordMatchRejected()
		return nil, err
	}

	if !e.gate.Valid(records) {
		e.suppress(ctx, records, previous)
		return records, nil
	}

	winner := team.ResolveWinner(sideA, sideB)

	// Headline performance is relative to the whole match, not just the side.
	scores := make(map[string]performance.Score, len(records))
	for _, r := range records {
		scores[r.PlayerID] = performance.Compute(r, records)
	}

	oldA := e.sideRatings(sideA)
	oldB := e.sideRatings(sideB)

	var updatedA, updatedB []skill.Rating
	if winner == 0 {
		updatedA, updatedB = skill.RateTeams(oldA, oldB)
	} else {
		updatedB, updatedA = skill.RateTeams(oldB, oldA)
	}

	var balance float64
	if winner == 0 {
		balance = mmr.BalanceFactor(avgMu(oldA), avgMu(oldB))
	} else {
		balance = mmr.BalanceFactor(avgMu(oldB), avgMu(oldA))
	}

	e.applySide(ctx, sideA, oldA, updatedA, winner == 0, balance, scores, previous)
	e.applySide(ctx, sideB, oldB, updatedB, winner == 1, balance, scores, previous)

	metrics.RecordMatchProcessed()
	return records, nil
}

// suppress handles a gate-invalid match: skill ratings carry through
// unchanged, deltas are zero, and MMR is copied from the previous record.
func (e *Engine) suppress(ctx context.Context, records []*model.MatchStatRecord, previous map[string]*model.MatchStatRecord) {
	for _, r := range records {
		e.store.Sync(r.PlayerID)
		r.MMRDelta = 0
		if prev := previous[r.PlayerID]; prev != nil {
			r.MMRAfterMatch = prev.MMRAfterMatch
		} else {
			r.MMRAfterMatch = e.defaultMMR
		}
	}
	metrics.RecordMatchInvalid()
	e.info(ctx, "match below validity thresholds; ratings untouched",
		logger.Int64("matchID", matchID(records)),
		logger.Int("players", len(records)),
	)
}

func (e *Engine) applySide(ctx context.Context, side team.Side, old, updated []skill.Rating, won bool, balance float64, matchScores map[string]performance.Score, previous map[string]*model.MatchStatRecord) {
	teamSize := side.Size()

	// Carry baselines are side-relative: every member scored against their
	// own roster. Sides of one have no teammates to carry or be carried by.
	var sideScores []float64
	if teamSize > 1 {
		sideScores = make([]float64, teamSize)
		for i, r := range side.Records {
			sideScores[i] = performance.Compute(r, side.Records).Score
		}
	}

	for i, rec := range side.Records {
		perf := matchScores[rec.PlayerID]
		adjustment := mmr.PerformanceAdjustment(perf.Score, won, teamSize)
		perf.Adjustment = adjustment
		matchScores[rec.PlayerID] = perf

		carry := 0.0
		if teamSize > 1 {
			sum := 0.0
			for j, s := range sideScores {
				if j != i {
					sum += s
				}
			}
			teammateAvg := sum / float64(teamSize-1)
			carry = mmr.CarryAdjustment(sideScores[i]-teammateAvg, won)
		}

		if prev := previous[rec.PlayerID]; prev == nil {
			// Placement: an absolute starting MMR, not a delta on anything.
			placement := mmr.PlacementMMR(updated[i], perf.Score)
			rec.MMRDelta = placement
			rec.MMRAfterMatch = placement
			metrics.RecordPlacement()
		} else {
			base := mmr.BaseChange(old[i], updated[i])
			delta := mmr.Delta(base, adjustment, carry, balance, won)
			rec.MMRDelta = delta
			if delta == 0 {
				// Only a non-finite combination yields zero; leave MMR as-is.
				rec.MMRAfterMatch = prev.MMRAfterMatch
			} else {
				rec.MMRAfterMatch = int(math.Max(0, float64(prev.MMRAfterMatch+delta)))
			}
		}

		e.store.Update(ctx, rec.PlayerID, updated[i])
	}
}

// sideRatings fetches (bootstrapping where needed) the pre-update ratings for
// a side, in roster order.
func (e *Engine) sideRatings(side team.Side) []skill.Rating {
	ratings := make([]skill.Rating, side.Size())
	for i, r := range side.Records {
		ratings[i] = e.store.Get(r.PlayerID, r)
	}
	return ratings
}

func avgMu(ratings []skill.Rating) float64 {
	sum := 0.0
	for _, r := range ratings {
		sum += r.Mu
	}
	return sum / float64(len(ratings))
}

func matchID(records []*model.MatchStatRecord) int64 {
	if len(records) == 0 {
		return 0
	}
	return records[0].MatchID
}

func (e *Engine) info(ctx context.Context, msg string, fields ...logger.Field) {
	if e.log == nil {
		return
	}
	e.log.Info(ctx, msg, fields...)
}
