package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/backmarker/backmarker/internal/domain/model"
	"github.com/backmarker/backmarker/internal/domain/resolve"
	"github.com/backmarker/backmarker/internal/domain/scoring"
	"github.com/backmarker/backmarker/internal/domain/types"
	"github.com/backmarker/backmarker/pkg/logger"
	"github.com/backmarker/backmarker/pkg/metrics"
)

// userResult is the output of scoring one user's whole season. Results
// are computed per user in parallel and merged sequentially afterwards,
// so nothing in here is shared between goroutines.
type userResult struct {
	username  string
	firstName string

	hasPicks     bool
	totalPoints  int
	autopicks    int
	participated int

	breakdown  types.PlayerSeason
	raceScores []types.TopRaceScore
	tallies    map[int]*driverTally
}

// driverTally accumulates one driver's standing across pick lists.
type driverTally struct {
	pickCount int
	points    int
	maxGain   int
}

// computeSnapshot runs one full aggregation pass for a season: batch
// fetch, parallel per-user resolution, then ranking and statistics.
func (s *Service) computeSnapshot(ctx context.Context, season int) (*types.Snapshot, error) {
	start := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	users, err := s.store.FindUsersBySeason(fetchCtx, season)
	if err != nil {
		return nil, fmt.Errorf("fetch users for season %d: %w", season, err)
	}

	meetingKeys, driverNumbers := collectReferences(users, season)

	races, err := s.store.FindRacesByMeetingKeys(fetchCtx, meetingKeys, season)
	if err != nil {
		return nil, fmt.Errorf("fetch races for season %d: %w", season, err)
	}
	raceIndex := make(map[string]*model.RaceRecord, len(races))
	for i := range races {
		raceIndex[races[i].MeetingKey] = &races[i]
	}

	drivers, err := s.store.FindDriversByNumbers(fetchCtx, driverNumbers, season)
	if err != nil {
		return nil, fmt.Errorf("fetch drivers for season %d: %w", season, err)
	}
	directory := make(resolve.Directory, len(drivers))
	for _, d := range drivers {
		directory[d.DriverNumber] = d
	}

	results, err := s.aggregateUsers(ctx, season, users, raceIndex, directory)
	if err != nil {
		return nil, err
	}

	snap := buildSnapshot(season, results, directory, s.topLimit)

	metrics.RecordLeaderboardComputation()
	metrics.RecordComputationDuration(float64(time.Since(start).Milliseconds()))
	metrics.UpdateUsersAggregated(len(users))
	metrics.UpdateRacesAggregated(len(meetingKeys))

	s.logger.Info(ctx, "season snapshot computed",
		logger.Int("season", season),
		logger.Int("users", len(users)),
		logger.Int("races", len(meetingKeys)),
		logger.Int("drivers", len(drivers)),
		logger.Float64("durationMs", float64(time.Since(start).Milliseconds())),
	)

	return snap, nil
}

// collectReferences walks all users' season picks once and returns the
// distinct meeting keys and driver numbers they reference, sorted for
// deterministic store queries. Worst-driver bonus picks count as driver
// references too; their display metadata is never needed but fetching
// the union keeps the query logic uniform.
func collectReferences(users []model.User, season int) ([]string, []int) {
	keySet := make(map[string]bool)
	numSet := make(map[int]bool)

	for i := range users {
		for key, record := range users[i].SeasonPicks(season) {
			if len(record.Picks) == 0 && record.BonusPicks == nil {
				continue
			}
			keySet[key] = true
			for _, n := range record.Picks {
				numSet[n] = true
			}
			if record.BonusPicks != nil && record.BonusPicks.WorstDriver != nil {
				numSet[*record.BonusPicks.WorstDriver] = true
			}
		}
	}

	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	nums := make([]int, 0, len(numSet))
	for n := range numSet {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	return keys, nums
}

// aggregateUsers scores every user's season with a bounded worker pool.
// Workers write into disjoint slice slots, so the merge that follows is
// deterministic regardless of scheduling.
func (s *Service) aggregateUsers(ctx context.Context, season int, users []model.User, races map[string]*model.RaceRecord, dir resolve.Directory) ([]userResult, error) {
	results := make([]userResult, len(users))
	if len(users) == 0 {
		return results, nil
	}

	workers := s.workerCount
	if workers > len(users) {
		workers = len(users)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = aggregateUser(&users[i], season, races, dir)
			}
		}()
	}

	var dispatchErr error
dispatch:
	for i := range users {
		select {
		case jobs <- i:
		case <-ctx.Done():
			dispatchErr = ctx.Err()
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if dispatchErr != nil {
		return nil, dispatchErr
	}
	return results, nil
}

// aggregateUser scores one user's full season. Races are visited in
// meeting-key order so breakdowns come out stable.
func aggregateUser(user *model.User, season int, races map[string]*model.RaceRecord, dir resolve.Directory) userResult {
	res := userResult{
		username:  user.Username,
		firstName: user.FirstName,
		tallies:   make(map[int]*driverTally),
		breakdown: types.PlayerSeason{Username: user.Username, Races: []types.RaceBreakdown{}},
	}

	picks := user.SeasonPicks(season)
	keys := make([]string, 0, len(picks))
	for key := range picks {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		record := picks[key]
		if len(record.Picks) == 0 && record.BonusPicks == nil {
			continue
		}
		res.hasPicks = true
		if record.Autopick {
			res.autopicks++
		}

		race := races[key]
		racePoints := 0
		resolvedAny := false
		lines := []resolve.ScoreLine{}

		for _, r := range resolve.ResolvePicks(record.Picks, race, dir) {
			if r.Kind != resolve.SkippedMalformedPick {
				res.tally(r.DriverNumber).pickCount++
			}
			if r.Kind != resolve.Resolved {
				metrics.RecordPickSkipped(r.Kind.String())
				continue
			}
			metrics.RecordPickResolved()
			resolvedAny = true
			racePoints += r.Line.Points
			lines = append(lines, r.Line)

			t := res.tally(r.DriverNumber)
			t.points += r.Line.Points
			if r.Line.RacePosition != model.DNFFinishPosition {
				if gain := r.Line.QualifyingPosition - r.Line.RacePosition; gain > t.maxGain {
					t.maxGain = gain
				}
			}
		}

		var bonus scoring.BonusOutcome
		if record.BonusPicks != nil && race != nil {
			bonus = scoring.ScoreBonusPicks(*record.BonusPicks, race)
		}

		if resolvedAny {
			res.participated++
		}
		res.totalPoints += racePoints + bonus.Points

		// Races not ingested yet stay out of the breakdown; their picks
		// were already counted as missing_race skips above.
		if race == nil {
			continue
		}
		res.breakdown.Races = append(res.breakdown.Races, types.RaceBreakdown{
			MeetingKey:   race.MeetingKey,
			RaceName:     race.MeetingName,
			Results:      lines,
			Points:       racePoints,
			BonusPoints:  bonus.Points,
			BonusDetails: bonus.Details,
			Autopick:     record.Autopick,
		})
		if resolvedAny || bonus.Points != 0 {
			res.raceScores = append(res.raceScores, types.TopRaceScore{
				Username:   user.Username,
				RaceName:   race.MeetingName,
				MeetingKey: race.MeetingKey,
				Points:     racePoints + bonus.Points,
			})
		}
	}

	res.breakdown.TotalPoints = res.totalPoints
	return res
}

func (r *userResult) tally(driverNumber int) *driverTally {
	t, ok := r.tallies[driverNumber]
	if !ok {
		t = &driverTally{}
		r.tallies[driverNumber] = t
	}
	return t
}

// buildSnapshot merges per-user results into the final ranked snapshot.
func buildSnapshot(season int, results []userResult, dir resolve.Directory, topLimit int) *types.Snapshot {
	entries := make([]types.LeaderboardEntry, 0, len(results))
	breakdowns := make(map[string]types.PlayerSeason, len(results))
	raceScores := []types.TopRaceScore{}
	averages := []types.UserAverage{}
	tallies := make(map[int]*driverTally)

	for i := range results {
		r := &results[i]

		entry := types.LeaderboardEntry{
			Username:  r.username,
			FirstName: r.firstName,
			Autopicks: r.autopicks,
		}
		if r.hasPicks {
			total := r.totalPoints
			entry.Points = &total
		}
		entries = append(entries, entry)
		breakdowns[r.username] = r.breakdown
		raceScores = append(raceScores, r.raceScores...)

		if r.participated > 0 {
			averages = append(averages, types.UserAverage{
				Username:    r.username,
				TotalPoints: r.totalPoints,
				Races:       r.participated,
				Average:     float64(r.totalPoints) / float64(r.participated),
			})
		}

		for n, t := range r.tallies {
			g, ok := tallies[n]
			if !ok {
				g = &driverTally{}
				tallies[n] = g
			}
			g.pickCount += t.pickCount
			g.points += t.points
			if t.maxGain > g.maxGain {
				g.maxGain = t.maxGain
			}
		}
	}

	sortEntries(entries)
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return &types.Snapshot{
		Season:     season,
		ComputedAt: time.Now(),
		Entries:    entries,
		Breakdowns: breakdowns,
		Stats:      buildStats(season, raceScores, averages, tallies, dir, topLimit),
	}
}

// sortEntries orders the leaderboard: points descending, users who have
// not played yet (nil points) last, ties broken by username ascending.
func sortEntries(entries []types.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		pi, pj := entries[i].Points, entries[j].Points
		switch {
		case pi == nil && pj == nil:
			return entries[i].Username < entries[j].Username
		case pi == nil:
			return false
		case pj == nil:
			return true
		case *pi != *pj:
			return *pi > *pj
		default:
			return entries[i].Username < entries[j].Username
		}
	})
}

func buildStats(season int, raceScores []types.TopRaceScore, averages []types.UserAverage, tallies map[int]*driverTally, dir resolve.Directory, topLimit int) types.SeasonStats {
	sort.SliceStable(raceScores, func(i, j int) bool {
		if raceScores[i].Points != raceScores[j].Points {
			return raceScores[i].Points > raceScores[j].Points
		}
		if raceScores[i].Username != raceScores[j].Username {
			return raceScores[i].Username < raceScores[j].Username
		}
		return raceScores[i].MeetingKey < raceScores[j].MeetingKey
	})

	sort.SliceStable(averages, func(i, j int) bool {
		if averages[i].Average != averages[j].Average {
			return averages[i].Average > averages[j].Average
		}
		return averages[i].Username < averages[j].Username
	})

	totalSelections := 0
	for _, t := range tallies {
		totalSelections += t.pickCount
	}

	driverStats := make([]types.DriverStat, 0, len(tallies))
	for n, t := range tallies {
		stat := types.DriverStat{
			DriverNumber: n,
			PickCount:    t.pickCount,
			TotalPoints:  t.points,
			BiggestGain:  t.maxGain,
		}
		if info, ok := dir[n]; ok {
			stat.DriverName = info.FullName
			stat.NameAcronym = info.NameAcronym
			stat.TeamColour = info.TeamColour
			stat.HeadshotURL = info.HeadshotPath(season)
		} else {
			stat.DriverName = fmt.Sprintf("Driver #%d", n)
			stat.HeadshotURL = model.DriverInfo{}.HeadshotPath(season)
		}
		if totalSelections > 0 {
			stat.SelectionPercent = 100 * float64(t.pickCount) / float64(totalSelections)
		}
		if t.pickCount > 0 {
			stat.PointsPerPick = float64(t.points) / float64(t.pickCount)
		}
		driverStats = append(driverStats, stat)
	}

	return types.SeasonStats{
		TopSingleRaceScores:  top(raceScores, topLimit),
		AveragePointsPerUser: top(averages, topLimit),
		MostPickedDrivers: rankDrivers(driverStats, topLimit, func(a, b types.DriverStat) bool {
			return a.PickCount > b.PickCount
		}),
		TopScoringDrivers: rankDrivers(driverStats, topLimit, func(a, b types.DriverStat) bool {
			return a.TotalPoints > b.TotalPoints
		}),
		UnderratedDrivers: rankDrivers(driverStats, topLimit, func(a, b types.DriverStat) bool {
			return a.PointsPerPick > b.PointsPerPick
		}),
		BiggestPositionGainers: rankDrivers(driverStats, topLimit, func(a, b types.DriverStat) bool {
			return a.BiggestGain > b.BiggestGain
		}),
	}
}

// rankDrivers returns a fresh slice of the top driver stats under the
// given ordering, with driver number as the stable tie-break.
func rankDrivers(stats []types.DriverStat, limit int, less func(a, b types.DriverStat) bool) []types.DriverStat {
	ranked := make([]types.DriverStat, len(stats))
	copy(ranked, stats)
	sort.SliceStable(ranked, func(i, j int) bool {
		if less(ranked[i], ranked[j]) {
			return true
		}
		if less(ranked[j], ranked[i]) {
			return false
		}
		return ranked[i].DriverNumber < ranked[j].DriverNumber
	})
	return top(ranked, limit)
}

func top[T any](items []T, limit int) []T {
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
