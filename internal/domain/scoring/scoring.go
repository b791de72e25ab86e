// Package scoring implements the pick'em scoring policy: a pure mapping
// from session positions to points. Same inputs always yield the same
// output; no state, no I/O.
package scoring

import (
	"fmt"

	"github.com/backmarker/backmarker/internal/domain/model"
)

// Winner bonus applied when a picked driver wins the race outright.
const raceWinnerBonus = 3

// Positions-gained bonus tiers. Tiers are mutually exclusive and inspect
// the raw positions-gained delta, never the post-bonus point total.
const (
	overtakeArtistMin = 10
	overtakeArtistMax = 13
	trackTitanMin     = 14
	trackTitanMax     = 17
	zeroToHeroMin     = 18

	overtakeArtistBonus = 2
	trackTitanBonus     = 3
	zeroToHeroBonus     = 4
)

// Bonus tier labels surfaced on score lines.
const (
	OvertakeArtistTitle = "Overtake Artist Bonus +2"
	TrackTitanTitle     = "Track Titan Bonus +3"
	ZeroToHeroTitle     = "Zero to Hero Bonus +4"
)

// DNF-count prediction reward for an exact match.
const dnfExactMatchBonus = 5

// Result is the outcome of scoring one driver in one race.
type Result struct {
	// Points is the signed total for the driver: base position delta plus
	// winner and tier bonuses. Zero when the driver did not finish.
	Points int
	// BonusTitle labels the positions-gained tier, or empty.
	BonusTitle string
	// RaceWinner reports whether the driver won the race.
	RaceWinner bool
}

// ScoreDriver maps a driver's start and finish positions to points.
//
// startPosition is the grid slot earned in qualifying (the qualifying
// session's finish position). finishPosition of 0 means DNF, which
// overrides all other rules.
func ScoreDriver(startPosition, finishPosition int) Result {
	if finishPosition == model.DNFFinishPosition {
		return Result{}
	}

	gained := startPosition - finishPosition
	points := gained

	winner := finishPosition == 1
	if winner {
		points += raceWinnerBonus
	}

	title := ""
	switch {
	case gained >= zeroToHeroMin:
		points += zeroToHeroBonus
		title = ZeroToHeroTitle
	case gained >= trackTitanMin && gained <= trackTitanMax:
		points += trackTitanBonus
		title = TrackTitanTitle
	case gained >= overtakeArtistMin && gained <= overtakeArtistMax:
		points += overtakeArtistBonus
		title = OvertakeArtistTitle
	}

	return Result{
		Points:     points,
		BonusTitle: title,
		RaceWinner: winner,
	}
}

// BonusOutcome is the result of evaluating a user's bonus picks for a race.
type BonusOutcome struct {
	Points  int
	Details []string
}

// ScoreBonusPicks evaluates the secondary predictions for one race.
//
// Worst-driver: the user is rewarded for predicting a driver who loses
// positions, so the sign is inverted relative to the main policy. A
// predicted driver who retired scores zero.
//
// DNF count: +5 for an exact match when the race actually had
// retirements. A race with zero DNFs never pays out, so there are no
// free points for trivially predicting "no DNFs".
func ScoreBonusPicks(picks model.BonusPicks, race *model.RaceRecord) BonusOutcome {
	var out BonusOutcome
	if race == nil || !race.HasResults() {
		return out
	}

	if picks.WorstDriver != nil {
		out = scoreWorstDriver(*picks.WorstDriver, race, out)
	}

	if picks.DNFs != nil {
		actual := race.ActualDNFCount()
		if actual > 0 && *picks.DNFs == actual {
			out.Points += dnfExactMatchBonus
			out.Details = append(out.Details, fmt.Sprintf("DNF count exact (%d): +%d", actual, dnfExactMatchBonus))
		}
	}

	return out
}

func scoreWorstDriver(driverNumber int, race *model.RaceRecord, out BonusOutcome) BonusOutcome {
	res, ok := race.RaceResult(driverNumber)
	if !ok {
		return out
	}
	if res.DidNotFinish() {
		out.Details = append(out.Details, fmt.Sprintf("worst driver #%d retired: +0", driverNumber))
		return out
	}
	points := -(res.StartPosition - res.FinishPosition)
	out.Points += points
	out.Details = append(out.Details, fmt.Sprintf("worst driver #%d: %+d", driverNumber, points))
	return out
}
