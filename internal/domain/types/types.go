// Package types contains the derived read shapes served to callers:
// leaderboard entries, per-player race breakdowns and season statistics.
// Everything here is recomputed on demand and only ever cached, never
// persisted.
package types

import (
	"time"

	"github.com/backmarker/backmarker/internal/domain/resolve"
)

// LeaderboardEntry is one user's row on the season leaderboard.
//
// Points is nil for a user who has not played yet (no picks at all for
// the season); a user whose picks all failed to resolve scores 0. The
// two cases render differently and must stay distinguishable.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	Points    *int   `json:"points"`
	Autopicks int    `json:"autopicks"`
}

// RaceBreakdown is one user's scored outcome for one race.
type RaceBreakdown struct {
	MeetingKey   string              `json:"meetingKey"`
	RaceName     string              `json:"raceName"`
	Results      []resolve.ScoreLine `json:"results"`
	Points       int                 `json:"points"`
	BonusPoints  int                 `json:"bonusPoints"`
	BonusDetails []string            `json:"bonusDetails,omitempty"`
	Autopick     bool                `json:"autopick"`
}

// PlayerSeason is a user's full race-by-race season view.
type PlayerSeason struct {
	Username    string          `json:"username"`
	Races       []RaceBreakdown `json:"races"`
	TotalPoints int             `json:"totalPoints"`
}

// TopRaceScore is one user-race pair on the single-race score ranking.
type TopRaceScore struct {
	Username   string `json:"username"`
	RaceName   string `json:"raceName"`
	MeetingKey string `json:"meetingKey"`
	Points     int    `json:"points"`
}

// UserAverage ranks a user by average points across the races that user
// actually participated in. Races is the per-user denominator: the count
// of that user's races with at least one resolvable pick, never the
// season's total race count.
type UserAverage struct {
	Username    string  `json:"username"`
	TotalPoints int     `json:"totalPoints"`
	Races       int     `json:"races"`
	Average     float64 `json:"average"`
}

// DriverStat aggregates one driver's standing across all users' picks.
type DriverStat struct {
	DriverNumber     int     `json:"driverNumber"`
	DriverName       string  `json:"driverName"`
	NameAcronym      string  `json:"nameAcronym"`
	TeamColour       string  `json:"teamColour"`
	HeadshotURL      string  `json:"headshotUrl"`
	PickCount        int     `json:"pickCount"`
	SelectionPercent float64 `json:"selectionPercent"`
	TotalPoints      int     `json:"totalPoints"`
	PointsPerPick    float64 `json:"pointsPerPick"`
	BiggestGain      int     `json:"biggestGain"`
}

// SeasonStats bundles the auxiliary season aggregations. All rankings are
// computed in the same pass as the leaderboard, not by separate queries.
type SeasonStats struct {
	TopSingleRaceScores    []TopRaceScore `json:"topSingleRaceScores"`
	AveragePointsPerUser   []UserAverage  `json:"averagePointsPerUser"`
	MostPickedDrivers      []DriverStat   `json:"mostPickedDrivers"`
	TopScoringDrivers      []DriverStat   `json:"topScoringDrivers"`
	UnderratedDrivers      []DriverStat   `json:"underratedDrivers"`
	BiggestPositionGainers []DriverStat   `json:"biggestPositionGainers"`
}

// Snapshot is the cached output of one full season aggregation pass.
type Snapshot struct {
	Season     int                     `json:"season"`
	ComputedAt time.Time               `json:"computedAt"`
	Entries    []LeaderboardEntry      `json:"entries"`
	Breakdowns map[string]PlayerSeason `json:"-"`
	Stats      SeasonStats             `json:"stats"`
}
