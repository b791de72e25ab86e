// Package simulate generates a synthetic season, runs a full aggregation
// pass over it and verifies the engine's output against an independent
// recomputation. It backs the cmd/simulate harness used for local
// plausibility checks before pointing the service at real data.
package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	Season     int           // Season year to simulate
	NumUsers   int           // Number of synthetic users
	NumRaces   int           // Number of synthetic races
	Workers    int           // Aggregation worker count
	Seed       int64         // RNG seed; same seed, same grids and picks (usernames stay random)
	TopN       int           // Rows shown in the report tables
	Timeout    time.Duration // Overall run timeout
	OutputFile string        // Optional JSON dump of the snapshot
	Verbose    bool          // Enable verbose logging
}

// Stats holds simulation statistics.
type Stats struct {
	UsersGenerated int
	RacesGenerated int
	PicksGenerated int
	AutopickCount  int
	BonusPickCount int
	Mismatches     int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
