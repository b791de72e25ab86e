// Package resolve turns picked driver numbers into scored lines against a
// race's result sets. Every skip decision the engine makes is an explicit
// Resolution variant rather than a silent continue, so callers can count
// and test them.
package resolve

import (
	"fmt"

	"github.com/backmarker/backmarker/internal/domain/model"
	"github.com/backmarker/backmarker/internal/domain/scoring"
)

// Kind classifies the outcome of resolving one pick.
type Kind int

const (
	// Resolved means the pick produced a score line.
	Resolved Kind = iota
	// SkippedMissingRace means no race record exists for the meeting key
	// yet (ingestion lag). The pick contributes zero.
	SkippedMissingRace
	// SkippedMissingDriver means the driver is absent from the qualifying
	// or race result set. The pick contributes zero.
	SkippedMissingDriver
	// SkippedMalformedPick means the pick entry itself is unusable, e.g.
	// a duplicate driver number within one pick list.
	SkippedMalformedPick
)

// String returns the metric-friendly name of the kind.
func (k Kind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case SkippedMissingRace:
		return "missing_race"
	case SkippedMissingDriver:
		return "missing_driver"
	case SkippedMalformedPick:
		return "malformed_pick"
	default:
		return "unknown"
	}
}

// ScoreLine is the scored, display-ready outcome for one picked driver.
type ScoreLine struct {
	DriverNumber       int    `json:"driverNumber"`
	DriverName         string `json:"driverName"`
	TeamName           string `json:"teamName"`
	TeamColour         string `json:"teamColour"`
	NameAcronym        string `json:"nameAcronym"`
	HeadshotURL        string `json:"headshotUrl"`
	QualifyingPosition int    `json:"qualifyingPosition"`
	RacePosition       int    `json:"racePosition"`
	Points             int    `json:"points"`
	BonusTitle         string `json:"bonusTitle,omitempty"`
	RaceWinner         bool   `json:"raceWinner"`
}

// Resolution is the outcome of resolving a single pick. Line is only
// meaningful when Kind == Resolved.
type Resolution struct {
	Kind         Kind
	DriverNumber int
	Line         ScoreLine
}

// Directory provides display metadata for picked drivers, keyed by driver
// number. A nil or incomplete directory degrades to placeholder metadata
// rather than failing resolution.
type Directory map[int]model.DriverInfo

// ResolvePick resolves one picked driver against a race's result sets.
//
// The qualifying session's finish position is the authoritative start
// position fed into the scoring policy; the race-session start position
// is retained only as a cross-check/display value. A lookup miss in
// either result set is the normal case for a race whose results have not
// been ingested yet and is reported as a skip, never an error.
func ResolvePick(driverNumber int, race *model.RaceRecord, dir Directory) Resolution {
	if race == nil {
		return Resolution{Kind: SkippedMissingRace, DriverNumber: driverNumber}
	}

	quali, ok := race.QualifyingResult(driverNumber)
	if !ok {
		return Resolution{Kind: SkippedMissingDriver, DriverNumber: driverNumber}
	}
	raceRes, ok := race.RaceResult(driverNumber)
	if !ok {
		return Resolution{Kind: SkippedMissingDriver, DriverNumber: driverNumber}
	}

	result := scoring.ScoreDriver(quali.FinishPosition, raceRes.FinishPosition)

	line := ScoreLine{
		DriverNumber:       driverNumber,
		QualifyingPosition: quali.FinishPosition,
		RacePosition:       raceRes.FinishPosition,
		Points:             result.Points,
		BonusTitle:         result.BonusTitle,
		RaceWinner:         result.RaceWinner,
	}

	if info, ok := dir[driverNumber]; ok {
		line.DriverName = info.FullName
		line.TeamName = info.TeamName
		line.TeamColour = info.TeamColour
		line.NameAcronym = info.NameAcronym
		line.HeadshotURL = info.HeadshotPath(race.Year)
	} else {
		// Stale or retired directory data; keep the line scorable.
		line.DriverName = fmt.Sprintf("Driver #%d", driverNumber)
		line.HeadshotURL = model.DriverInfo{}.HeadshotPath(race.Year)
	}

	return Resolution{Kind: Resolved, DriverNumber: driverNumber, Line: line}
}

// ResolvePicks resolves a whole pick list for one race. Duplicate driver
// numbers within the list are malformed historic data; the first
// occurrence is scored and the duplicates are reported as skips. The
// returned slice always has one Resolution per pick entry, in order.
func ResolvePicks(picks []int, race *model.RaceRecord, dir Directory) []Resolution {
	out := make([]Resolution, 0, len(picks))
	seen := make(map[int]bool, len(picks))
	for _, driverNumber := range picks {
		if seen[driverNumber] {
			out = append(out, Resolution{Kind: SkippedMalformedPick, DriverNumber: driverNumber})
			continue
		}
		seen[driverNumber] = true
		out = append(out, ResolvePick(driverNumber, race, dir))
	}
	return out
}
