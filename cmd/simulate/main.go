package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/backmarker/backmarker/internal/simulate"
	"github.com/backmarker/backmarker/pkg/logger"
)

// Default configuration constants.
const (
	defaultSeason     = 2024
	defaultNumUsers   = 500
	defaultNumRaces   = 24
	defaultTopN       = 10
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		season   = flag.Int("season", defaultSeason, "Season year to simulate")
		numUsers = flag.Int("users", defaultNumUsers, "Number of synthetic users")
		numRaces = flag.Int("races", defaultNumRaces, "Number of synthetic races")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Aggregation worker count")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "RNG seed; reuse a seed to replay a season")
		topN     = flag.Int("top", defaultTopN, "Rows shown in the report tables")
		timeout  = flag.Duration("timeout", defaultRunTimeout, "Overall run timeout")
		output   = flag.String("output", "", "Optional JSON dump of the computed output")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	config := &simulate.Config{
		Season:     *season,
		NumUsers:   *numUsers,
		NumRaces:   *numRaces,
		Workers:    *workers,
		Seed:       *seed,
		TopN:       *topN,
		Timeout:    *timeout,
		OutputFile: *output,
		Verbose:    *verbose,
	}

	if err := simulate.Run(context.Background(), config); err != nil {
		logger.Get().Error(context.Background(), "simulation failed", logger.Error(err))
		os.Exit(1)
	}
}
