// Package service wires the rating engine to its collaborators: the
// repository, the submission queue, the worker, and the deduper.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	submissionqueue "github.com/openfrag/agmmr/internal/adapters/mq/queue"
	submissionworker "github.com/openfrag/agmmr/internal/adapters/mq/worker"
	"github.com/openfrag/agmmr/internal/adapters/repository"
	"github.com/openfrag/agmmr/internal/domain/dedupe"
	"github.com/openfrag/agmmr/internal/domain/gate"
	"github.com/openfrag/agmmr/internal/domain/model"
	"github.com/openfrag/agmmr/internal/domain/skill"
	"github.com/openfrag/agmmr/internal/engine"
	"github.com/openfrag/agmmr/pkg/logger"
	"github.com/openfrag/agmmr/pkg/metrics"
)

// Sentinel kinds for submission outcomes.
var (
	ErrBackpressure = errors.New("submission queue full")
)

// Default service configuration.
const (
	defaultQueueSize        = 10000
	defaultDedupeSize       = 50000
	defaultMMR              = 1000
	defaultLeaderboardLimit = 100
)

// Service implements the API dependencies for the rating system.
type Service struct {
	mu sync.RWMutex

	// Core components
	repo    repository.Store
	engine  *engine.Engine
	deduper dedupe.Deduper
	queue   submissionqueue.Queue
	worker  *submissionworker.Worker

	// Configuration
	queueSize           int
	dedupeSize          int
	defaultMMRValue     int
	maxLeaderboardLimit int
	minTotalFrags       int
	minTotalDamage      int
	minActivePlayers    int

	// State
	started bool

	// Logging
	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRepository sets a custom repository.
func WithRepository(repo repository.Store) Option {
	return func(s *Service) {
		if repo != nil {
			s.repo = repo
		}
	}
}

// WithQueueSize bounds the submission queue.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithDedupeSize bounds the duplicate-match cache.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithDefaultMMR sets the fallback MMR for gate-suppressed matches.
func WithDefaultMMR(v int) Option {
	return func(s *Service) {
		if v > 0 {
			s.defaultMMRValue = v
		}
	}
}

// WithMaxLeaderboardLimit caps leaderboard reads.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLeaderboardLimit = n
		}
	}
}

// WithGateThresholds sets the match-validity thresholds.
func WithGateThresholds(minFrags, minDamage, minActive int) Option {
	return func(s *Service) {
		s.minTotalFrags = minFrags
		s.minTotalDamage = minDamage
		s.minActivePlayers = minActive
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:           defaultQueueSize,
		dedupeSize:          defaultDedupeSize,
		defaultMMRValue:     defaultMMR,
		maxLeaderboardLimit: defaultLeaderboardLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components and hydrates skill ratings from
// persisted player records.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.log == nil {
		s.log = logger.Get()
	}

	s.log.Info(ctx, "starting rating service...")

	if s.repo == nil {
		s.repo = repository.NewMemStore()
	}
	s.engine = engine.New(
		engine.WithLogger(s.log.Named("engine")),
		engine.WithDefaultMMR(s.defaultMMRValue),
		engine.WithGate(gate.New(
			gate.WithMinTotalFrags(s.minTotalFrags),
			gate.WithMinTotalDamage(s.minTotalDamage),
			gate.WithMinActivePlayers(s.minActivePlayers),
		)),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = submissionqueue.NewInMemoryQueue(
		submissionqueue.WithCapacity(s.queueSize),
	)
	s.worker = submissionworker.New(s.queue, s,
		submissionworker.WithLogger(s.log.Named("worker")),
	)

	// Hydrate ratings for all known players before accepting submissions.
	players := s.repo.Players(ctx)
	s.engine.EnsureRatings(ctx, players)
	for _, p := range players {
		// A display MMR is derived only for players who never played a match;
		// an MMR of zero with history behind it is the clamp floor, not an
		// unseeded record.
		if p.MMR == 0 && s.repo.LatestDetail(ctx, p.PlayerID) == nil {
			p.MMR = skill.DisplayMMR(skill.Rating{Mu: p.SkillMu, Sigma: p.SkillSigma})
		}
		if err := s.repo.UpsertPlayer(ctx, p); err != nil {
			return fmt.Errorf("rehydrating player %s: %w", p.PlayerID, err)
		}
	}
	s.log.Info(ctx, "ratings initialized for all players",
		logger.Int("players", len(players)),
	)

	go s.worker.Run(context.WithoutCancel(ctx))

	s.started = true
	s.log.Info(ctx, "rating service started",
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.log.Info(ctx, "stopping rating service...")

	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.worker != nil {
		if err := s.worker.Shutdown(ctx); err != nil {
			s.log.Warn(ctx, "worker did not stop cleanly", logger.Error(err))
		}
	}

	s.started = false
	s.log.Info(ctx, "rating service stopped")
}

// SubmitMatch queues one match's stat records for processing. Returns
// duplicate=true when the match id was already submitted; ErrBackpressure
// when the queue is full.
func (s *Service) SubmitMatch(ctx context.Context, sub model.MatchSubmission) (bool, error) {
	if s.deduper.SeenAndRecord(ctx, sub.MatchID) {
		metrics.RecordMatchDuplicate()
		s.log.Debug(ctx, "duplicate match submission",
			logger.Int64("matchID", sub.MatchID),
		)
		return true, nil
	}

	if !s.queue.Enqueue(ctx, sub) {
		// Give the id back so the sender can retry.
		s.deduper.Unrecord(ctx, sub.MatchID)
		return false, ErrBackpressure
	}
	return false, nil
}

// ProcessSubmission handles one dequeued match end to end: create records,
// chain previous records, run the engine, persist the output. It implements
// the worker's Processor contract.
func (s *Service) ProcessSubmission(ctx context.Context, sub model.MatchSubmission) error {
	// Previous records must be looked up before the new ones are appended.
	previous := make(map[string]*model.MatchStatRecord, len(sub.Records))
	known := make([]*model.PlayerRecord, 0, len(sub.Records))
	for _, r := range sub.Records {
		previous[r.PlayerID] = s.repo.LatestDetail(ctx, r.PlayerID)

		p, err := s.repo.Player(ctx, r.PlayerID)
		switch {
		case errors.Is(err, repository.ErrPlayerNotFound):
			// A never-seen player is created but not ensured: the engine
			// bootstraps their rating from this match's stats instead of the
			// flat defaults.
			p = &model.PlayerRecord{
				PlayerID:   r.PlayerID,
				SkillMu:    skill.DefaultMu,
				SkillSigma: skill.DefaultSigma,
			}
			if err := s.repo.UpsertPlayer(ctx, p); err != nil {
				return fmt.Errorf("creating player %s: %w", p.PlayerID, err)
			}
		case err != nil:
			return fmt.Errorf("loading player %s: %w", r.PlayerID, err)
		default:
			known = append(known, p)
		}
	}

	s.engine.EnsureRatings(ctx, known)
	for _, p := range known {
		if err := s.repo.UpsertPlayer(ctx, p); err != nil {
			return fmt.Errorf("saving player %s: %w", p.PlayerID, err)
		}
	}

	processed, err := s.engine.ProcessMatch(ctx, sub.Records, previous)
	if err != nil {
		return fmt.Errorf("processing match %d: %w", sub.MatchID, err)
	}

	// Rows only exist for matches the engine accepted; a rejection must not
	// leave unprocessed records for a later replay to trip over.
	if err := s.repo.AppendDetails(ctx, processed); err != nil {
		return fmt.Errorf("creating match details: %w", err)
	}

	if err := s.persistProcessed(ctx, processed); err != nil {
		return err
	}

	s.log.Info(ctx, "match processed",
		logger.Int64("matchID", sub.MatchID),
		logger.Int("players", len(processed)),
	)
	return nil
}

// Reprocess replays the full match history with the current formulas,
// resetting every rating to the model defaults first.
func (s *Service) Reprocess(ctx context.Context) (int, error) {
	details := s.repo.AllDetails(ctx)

	// Replay starts from a clean store so first matches bootstrap exactly as
	// they did (or would have) when processed live.
	s.engine.ResetRatings()

	processed, snapshot, err := s.engine.ReprocessAll(ctx, details)
	if err != nil {
		return 0, fmt.Errorf("replaying history: %w", err)
	}

	if err := s.persistProcessed(ctx, processed); err != nil {
		return 0, err
	}
	for id, r := range snapshot {
		if err := s.repo.SetPlayerRating(ctx, id, r.Mu, r.Sigma); err != nil &&
			!errors.Is(err, repository.ErrPlayerNotFound) {
			return 0, fmt.Errorf("persisting rating for %s: %w", id, err)
		}
	}
	return len(processed), nil
}

// persistProcessed saves engine output: the mutated detail records, each
// player's new MMR, and the rating snapshot.
func (s *Service) persistProcessed(ctx context.Context, processed []*model.MatchStatRecord) error {
	if err := s.repo.SaveDetails(ctx, processed); err != nil {
		return fmt.Errorf("saving match details: %w", err)
	}
	for _, r := range processed {
		if err := s.repo.SetPlayerMMR(ctx, r.PlayerID, r.MMRAfterMatch); err != nil {
			return fmt.Errorf("saving MMR for %s: %w", r.PlayerID, err)
		}
	}
	for id, r := range s.engine.Snapshot() {
		if err := s.repo.SetPlayerRating(ctx, id, r.Mu, r.Sigma); err != nil &&
			!errors.Is(err, repository.ErrPlayerNotFound) {
			return fmt.Errorf("persisting rating for %s: %w", id, err)
		}
	}

	metrics.UpdatePlayersTracked(s.repo.CountPlayers(ctx))
	metrics.UpdateRatingsTracked(s.engine.RatingCount())
	return nil
}

// MatchDetails returns every stat record of one match in roster order.
func (s *Service) MatchDetails(ctx context.Context, matchID int64) ([]*model.MatchStatRecord, error) {
	return s.repo.DetailsByMatch(ctx, matchID)
}

// PlayerProfile returns a player record with their match history.
func (s *Service) PlayerProfile(ctx context.Context, playerID string) (*model.PlayerRecord, []*model.MatchStatRecord, error) {
	p, err := s.repo.Player(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	return p, s.repo.DetailsByPlayer(ctx, playerID), nil
}

// Leaderboard returns up to limit players ordered by MMR descending. The
// configured maximum caps the limit.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]*model.PlayerRecord, error) {
	if limit <= 0 || limit > s.maxLeaderboardLimit {
		limit = s.maxLeaderboardLimit
	}
	return s.repo.TopByMMR(ctx, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":    s.started,
		"queueSize":  s.queueSize,
		"dedupeSize": s.dedupeSize,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["players"] = s.repo.CountPlayers(ctx)
		stats["ratings"] = s.engine.RatingCount()
		stats["seenMatches"] = s.deduper.Size()

		metrics.UpdateQueueSize(s.queue.Len(ctx))
		metrics.UpdatePlayersTracked(s.repo.CountPlayers(ctx))
		metrics.UpdateRatingsTracked(s.engine.RatingCount())
	}
	return stats
}
