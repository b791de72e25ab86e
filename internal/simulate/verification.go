package simulate

import (
	"context"
	"fmt"

	"github.com/backmarker/backmarker/internal/domain/model"
	"github.com/backmarker/backmarker/internal/domain/scoring"
	"github.com/backmarker/backmarker/internal/domain/types"
	"github.com/backmarker/backmarker/pkg/logger"
)

// verifySeason recomputes every user's season total with a plain
// sequential walk over the generated data and compares it against the
// engine's leaderboard. Any divergence between the parallel aggregation
// and this naive pass is a bug.
func verifySeason(ctx context.Context, s *season, entries []types.LeaderboardEntry, stats *Stats) error {
	expected := make(map[string]*int, len(s.users))
	for i := range s.users {
		expected[s.users[i].Username] = expectedTotal(&s.users[i], s)
	}

	if len(entries) != len(s.users) {
		return fmt.Errorf("leaderboard has %d entries, expected %d", len(entries), len(s.users))
	}

	for _, entry := range entries {
		want, ok := expected[entry.Username]
		if !ok {
			stats.Mismatches++
			logger.Get().Error(ctx, "unexpected leaderboard user", logger.String("username", entry.Username))
			continue
		}
		if !samePoints(entry.Points, want) {
			stats.Mismatches++
			logger.Get().Error(ctx, "points mismatch",
				logger.String("username", entry.Username),
				logger.Any("got", entry.Points),
				logger.Any("want", want),
			)
		}
	}

	if err := verifyOrdering(entries); err != nil {
		stats.Mismatches++
		return err
	}

	if stats.Mismatches > 0 {
		return fmt.Errorf("%d verification mismatches", stats.Mismatches)
	}
	logger.Get().Info(ctx, "verification passed", logger.Int("users", len(entries)))
	return nil
}

// expectedTotal is the reference scoring walk: no worker pool, no caching,
// no normalization, just the policy applied pick by pick.
func expectedTotal(user *model.User, s *season) *int {
	picks := user.SeasonPicks(s.year)

	races := make(map[string]*model.RaceRecord, len(s.races))
	for i := range s.races {
		races[s.races[i].MeetingKey] = &s.races[i]
	}

	total := 0
	hasPicks := false
	for key, record := range picks {
		if len(record.Picks) == 0 && record.BonusPicks == nil {
			continue
		}
		hasPicks = true
		race := races[key]
		if race == nil {
			continue
		}

		seen := map[int]bool{}
		for _, n := range record.Picks {
			if seen[n] {
				continue
			}
			seen[n] = true
			quali, ok := race.QualifyingResult(n)
			if !ok {
				continue
			}
			raceRes, ok := race.RaceResult(n)
			if !ok {
				continue
			}
			total += scoring.ScoreDriver(quali.FinishPosition, raceRes.FinishPosition).Points
		}

		if record.BonusPicks != nil {
			total += scoring.ScoreBonusPicks(*record.BonusPicks, race).Points
		}
	}

	if !hasPicks {
		return nil
	}
	return &total
}

func samePoints(got, want *int) bool {
	if got == nil || want == nil {
		return got == nil && want == nil
	}
	return *got == *want
}

// verifyOrdering checks that ranks are sequential and points never
// increase down the board, with null-point users at the bottom.
func verifyOrdering(entries []types.LeaderboardEntry) error {
	for i, entry := range entries {
		if entry.Rank != i+1 {
			return fmt.Errorf("entry %d has rank %d", i, entry.Rank)
		}
		if i == 0 {
			continue
		}
		prev := entries[i-1]
		switch {
		case prev.Points == nil && entry.Points != nil:
			return fmt.Errorf("user %s with points ranked below null-point user %s", entry.Username, prev.Username)
		case prev.Points != nil && entry.Points != nil && *entry.Points > *prev.Points:
			return fmt.Errorf("leaderboard not sorted at rank %d", entry.Rank)
		}
	}
	return nil
}
