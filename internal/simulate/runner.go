package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/backmarker/backmarker/internal/adapters/cache"
	"github.com/backmarker/backmarker/internal/adapters/repository"
	service "github.com/backmarker/backmarker/internal/app"
	"github.com/backmarker/backmarker/internal/domain/types"
	"github.com/backmarker/backmarker/pkg/logger"
)

// File permission constants.
const (
	outputFilePermission = 0600
)

// Run executes a complete simulation: generate, aggregate, verify, report.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting season simulation",
		logger.Int("season", config.Season),
		logger.Int("users", config.NumUsers),
		logger.Int("races", config.NumRaces),
		logger.Int("workers", config.Workers),
		logger.Any("seed", config.Seed),
	)

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	// Step 1: Generate the synthetic season
	s := generateSeason(ctx, config, stats)

	// Step 2: Seed an in-memory store
	store := repository.NewMemStore()
	if err := seedStore(ctx, store, s); err != nil {
		return fmt.Errorf("store seeding failed: %w", err)
	}

	// Step 3: Run a real aggregation pass through the service
	svc := service.New(
		service.WithStore(store),
		service.WithCache(cache.New()),
		service.WithWorkerCount(config.Workers),
		service.WithTopScoresLimit(config.TopN),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("service start failed: %w", err)
	}
	defer svc.Stop()

	entries, err := svc.Leaderboard(ctx, config.Season)
	if err != nil {
		return fmt.Errorf("leaderboard computation failed: %w", err)
	}
	seasonStats, err := svc.SeasonStats(ctx, config.Season)
	if err != nil {
		return fmt.Errorf("season stats computation failed: %w", err)
	}

	// Step 4: Verify against an independent recomputation
	if err := verifySeason(ctx, s, entries, stats); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	// Step 5: Report
	renderReport(entries, seasonStats, config.TopN)

	// Step 6: Optionally dump the computed output
	if config.OutputFile != "" {
		if err := saveOutput(ctx, config.OutputFile, config.Season, entries, seasonStats); err != nil {
			logger.Get().Warn(ctx, "failed to save output", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	return nil
}

func seedStore(ctx context.Context, store repository.Seeder, s *season) error {
	if err := store.InsertUsers(ctx, s.users); err != nil {
		return err
	}
	if err := store.InsertRaces(ctx, s.races); err != nil {
		return err
	}
	return store.InsertDrivers(ctx, s.drivers)
}

// saveOutput writes the computed leaderboard and stats to a JSON file.
func saveOutput(ctx context.Context, filename string, season int, entries []types.LeaderboardEntry, seasonStats types.SeasonStats) error {
	out := struct {
		Season  int                      `json:"season"`
		Entries []types.LeaderboardEntry `json:"entries"`
		Stats   types.SeasonStats        `json:"stats"`
	}{Season: season, Entries: entries, Stats: seasonStats}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	if err := os.WriteFile(filename, data, outputFilePermission); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	logger.Get().Info(ctx, "output saved", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final simulation statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "simulation completed",
		logger.Int("usersGenerated", stats.UsersGenerated),
		logger.Int("racesGenerated", stats.RacesGenerated),
		logger.Int("picksGenerated", stats.PicksGenerated),
		logger.Int("autopicks", stats.AutopickCount),
		logger.Int("bonusPicks", stats.BonusPickCount),
		logger.Int("mismatches", stats.Mismatches),
		logger.String("duration", stats.Duration.String()),
	)
}
