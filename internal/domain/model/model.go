// Package model contains the core entities read by the scoring engine:
// users and their picks, race records, and driver directory entries.
//
// All of these are read-only inputs from the engine's point of view; the
// external ingestion process owns race and driver documents, and the
// submission flow owns user picks.
package model

import "fmt"

// DNFFinishPosition marks a driver who did not finish the race.
const DNFFinishPosition = 0

// DriverResult is one driver's outcome in one session of one race.
type DriverResult struct {
	DriverNumber   int `bson:"driverNumber" json:"driverNumber"`
	StartPosition  int `bson:"startPosition" json:"startPosition"`
	FinishPosition int `bson:"finishPosition" json:"finishPosition"`
}

// DidNotFinish reports whether the driver retired from the session.
func (r DriverResult) DidNotFinish() bool {
	return r.FinishPosition == DNFFinishPosition
}

// RaceRecord is one event: qualifying and race result sets plus metadata.
type RaceRecord struct {
	MeetingKey        string         `bson:"meeting_key" json:"meetingKey"`
	MeetingName       string         `bson:"meeting_name" json:"meetingName"`
	CountryName       string         `bson:"country_name" json:"countryName"`
	Year              int            `bson:"year" json:"year"`
	QualifyingResults []DriverResult `bson:"qualifying_results" json:"qualifyingResults"`
	RaceResults       []DriverResult `bson:"race_results" json:"raceResults"`
	DNFs              int            `bson:"dnfs" json:"dnfs"`
}

// HasResults reports whether both result sets have been ingested.
func (r *RaceRecord) HasResults() bool {
	return len(r.QualifyingResults) > 0 && len(r.RaceResults) > 0
}

// QualifyingResult looks up a driver's qualifying entry by driver number.
func (r *RaceRecord) QualifyingResult(driverNumber int) (DriverResult, bool) {
	return findDriver(r.QualifyingResults, driverNumber)
}

// RaceResult looks up a driver's race entry by driver number.
func (r *RaceRecord) RaceResult(driverNumber int) (DriverResult, bool) {
	return findDriver(r.RaceResults, driverNumber)
}

// ActualDNFCount returns the number of retirements for the race. The
// manually maintained dnfs field wins when set; otherwise the count is
// derived from race results with finishPosition == 0.
func (r *RaceRecord) ActualDNFCount() int {
	if r.DNFs > 0 {
		return r.DNFs
	}
	n := 0
	for _, res := range r.RaceResults {
		if res.DidNotFinish() {
			n++
		}
	}
	return n
}

func findDriver(results []DriverResult, driverNumber int) (DriverResult, bool) {
	for _, res := range results {
		if res.DriverNumber == driverNumber {
			return res, true
		}
	}
	return DriverResult{}, false
}

// BonusPicks are a user's secondary predictions for one race. Nil pointer
// fields mean the user made no prediction for that category.
type BonusPicks struct {
	WorstDriver *int `bson:"worstDriver" json:"worstDriver"`
	DNFs        *int `bson:"dnfs" json:"dnfs"`
}

// PickRecord is one user's selection for one race: normally an ordered
// pair of two distinct driver numbers, but historic data may carry fewer
// entries or duplicates, which scoring tolerates.
type PickRecord struct {
	Picks      []int       `bson:"picks" json:"picks"`
	Autopick   bool        `bson:"autopick" json:"autopick"`
	BonusPicks *BonusPicks `bson:"bonusPicks" json:"bonusPicks,omitempty"`
}

// SeasonPicks maps meeting key to the user's pick record for that race.
type SeasonPicks map[string]PickRecord

// User is the identity the engine reads picks from. Picks are keyed by
// season rendered as a string, the way the document store keys them.
type User struct {
	Username  string                 `bson:"username" json:"username"`
	FirstName string                 `bson:"first_name" json:"firstName"`
	Seasons   []int                  `bson:"seasons" json:"seasons"`
	Picks     map[string]SeasonPicks `bson:"picks" json:"picks"`
}

// SeasonPicks returns the user's picks for the given season, or nil.
func (u *User) SeasonPicks(season int) SeasonPicks {
	if u.Picks == nil {
		return nil
	}
	return u.Picks[fmt.Sprintf("%d", season)]
}

// DriverInfo is a driver directory entry, keyed by driver number within
// a season.
type DriverInfo struct {
	DriverNumber int    `bson:"driver_number" json:"driverNumber"`
	FullName     string `bson:"full_name" json:"fullName"`
	FirstName    string `bson:"first_name" json:"firstName"`
	LastName     string `bson:"last_name" json:"lastName"`
	NameAcronym  string `bson:"name_acronym" json:"nameAcronym"`
	CountryCode  string `bson:"country_code" json:"countryCode"`
	TeamName     string `bson:"team_name" json:"teamName"`
	TeamColour   string `bson:"team_colour" json:"teamColour"`
	Year         int    `bson:"year" json:"year"`
}

// HeadshotPath builds the display image reference for a driver. Drivers
// without an acronym fall back to the season's default image.
func (d DriverInfo) HeadshotPath(season int) string {
	if d.NameAcronym == "" {
		return fmt.Sprintf("/drivers/%d/default.png", season)
	}
	return fmt.Sprintf("/drivers/%d/%s.png", season, d.NameAcronym)
}
