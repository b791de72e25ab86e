// Package service provides the core scoring service that implements the
// dependencies required by the HTTP API: leaderboard, per-player race
// breakdowns and season statistics, all served from a cached per-season
// snapshot.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/backmarker/backmarker/internal/adapters/cache"
	repository "github.com/backmarker/backmarker/internal/adapters/repository"
	"github.com/backmarker/backmarker/internal/domain/types"
	"github.com/backmarker/backmarker/pkg/logger"
)

// Default service configuration constants.
const (
	defaultTopScoresLimit = 10
	defaultStoreTimeout   = 5 * time.Second
)

// Service implements the API dependencies for the pick'em engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store repository.Store
	cache *cache.SnapshotCache

	// Configuration
	workerCount  int
	topLimit     int
	storeTimeout time.Duration

	// Per-season in-flight computations. Concurrent requests for the
	// same uncached season share one aggregation pass instead of each
	// recomputing; this is an efficiency guard, not a correctness
	// requirement — redundant computation would be idempotent.
	flightMu sync.Mutex
	inFlight map[int]*flight

	// State
	started      bool
	lastComputed time.Time

	// Logging
	logger logger.Logger
}

type flight struct {
	done chan struct{}
	snap *types.Snapshot
	err  error
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the pick store the aggregator reads from.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCache sets the season snapshot cache.
func WithCache(c *cache.SnapshotCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithWorkerCount sets the number of concurrent per-user resolution
// goroutines used during an aggregation pass.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithTopScoresLimit caps the top single-race score and driver rankings.
func WithTopScoresLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.topLimit = limit
		}
	}
}

// WithStoreTimeout bounds the batch-fetch step of an aggregation pass.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.storeTimeout = timeout
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU() * 2,
		topLimit:     defaultTopScoresLimit,
		storeTimeout: defaultStoreTimeout,
		inFlight:     make(map[int]*flight),
		logger:       nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		return ErrNoStore
	}
	if s.cache == nil {
		s.cache = cache.New()
	}

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("topScoresLimit", s.topLimit),
	)

	return nil
}

// Stop shuts the service down. Cached snapshots are dropped so a restart
// never serves stale state across a data migration.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if s.cache != nil {
		s.cache.Purge()
	}

	s.started = false
	s.logger.Info(context.Background(), "scoring service stopped")
}

// Leaderboard returns the season leaderboard, sorted by points descending
// with ties broken by username ascending.
func (s *Service) Leaderboard(ctx context.Context, season int) ([]types.LeaderboardEntry, error) {
	snap, err := s.snapshot(ctx, season)
	if err != nil {
		return nil, err
	}
	return snap.Entries, nil
}

// PlayerBreakdown returns one user's race-by-race season view.
func (s *Service) PlayerBreakdown(ctx context.Context, season int, username string) (types.PlayerSeason, error) {
	snap, err := s.snapshot(ctx, season)
	if err != nil {
		return types.PlayerSeason{}, err
	}
	player, ok := snap.Breakdowns[username]
	if !ok {
		return types.PlayerSeason{}, ErrUnknownPlayer
	}
	return player, nil
}

// SeasonStats returns the auxiliary season aggregations.
func (s *Service) SeasonStats(ctx context.Context, season int) (types.SeasonStats, error) {
	snap, err := s.snapshot(ctx, season)
	if err != nil {
		return types.SeasonStats{}, err
	}
	return snap.Stats, nil
}

// snapshot returns the cached snapshot for the season, computing it when
// the cache misses. Concurrent callers for the same season share one
// computation.
func (s *Service) snapshot(ctx context.Context, season int) (*types.Snapshot, error) {
	if snap, ok := s.cache.Get(season); ok {
		return snap, nil
	}

	s.flightMu.Lock()
	if f, ok := s.inFlight[season]; ok {
		s.flightMu.Unlock()
		select {
		case <-f.done:
			return f.snap, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	s.inFlight[season] = f
	s.flightMu.Unlock()

	f.snap, f.err = s.computeSnapshot(ctx, season)
	if f.err == nil {
		s.cache.Put(season, f.snap)
		s.mu.Lock()
		s.lastComputed = f.snap.ComputedAt
		s.mu.Unlock()
	}

	s.flightMu.Lock()
	delete(s.inFlight, season)
	s.flightMu.Unlock()
	close(f.done)

	return f.snap, f.err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"topScoresLimit": s.topLimit,
	}
	if s.cache != nil {
		stats["cachedSeasons"] = s.cache.Len()
	}
	if !s.lastComputed.IsZero() {
		stats["lastComputedAt"] = s.lastComputed.Format(time.RFC3339)
	}
	return stats
}
