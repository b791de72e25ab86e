package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/backmarker/backmarker/internal/domain/model"
	"github.com/backmarker/backmarker/pkg/logger"
)

// Grid and pick generation constants.
const (
	gridSize = 20

	// Picks target the back of the qualifying grid; the bottom half is
	// where the scoring upside lives.
	bottomHalfStart = 11

	maxDNFsPerRace = 3
)

// Behavioral probabilities for synthetic users.
const (
	participationChance = 0.85
	autopickChance      = 0.15
	bonusPickChance     = 0.5
)

// Driver numbers on the synthetic grid, loosely modeled on a modern grid.
var gridNumbers = []int{1, 2, 4, 10, 11, 14, 16, 18, 20, 22, 23, 24, 27, 31, 44, 55, 63, 77, 81, 87}

var circuitNames = []string{
	"Bahrain", "Jeddah", "Melbourne", "Suzuka", "Shanghai", "Miami",
	"Imola", "Monaco", "Montreal", "Barcelona", "Spielberg", "Silverstone",
	"Budapest", "Spa", "Zandvoort", "Monza", "Baku", "Singapore",
	"Austin", "Mexico City", "Sao Paulo", "Las Vegas", "Lusail", "Abu Dhabi",
}

var teamNames = []string{
	"Red Bull Racing", "Ferrari", "Mercedes", "McLaren", "Aston Martin",
	"Alpine", "Williams", "RB", "Kick Sauber", "Haas",
}

// season is the full synthetic data set plus the RNG that built it.
type season struct {
	year    int
	drivers []model.DriverInfo
	races   []model.RaceRecord
	users   []model.User
}

// generateSeason builds a deterministic synthetic season from the seed.
func generateSeason(ctx context.Context, config *Config, stats *Stats) *season {
	rng := rand.New(rand.NewSource(config.Seed))

	s := &season{year: config.Season}
	s.drivers = generateDrivers(config.Season)
	s.races = generateRaces(rng, config)
	s.users = generateUsers(rng, config, s.races, stats)

	stats.UsersGenerated = len(s.users)
	stats.RacesGenerated = len(s.races)

	logger.Get().Info(ctx, "synthetic season generated",
		logger.Int("season", config.Season),
		logger.Int("users", len(s.users)),
		logger.Int("races", len(s.races)),
		logger.Int("picks", stats.PicksGenerated),
	)
	return s
}

func generateDrivers(year int) []model.DriverInfo {
	drivers := make([]model.DriverInfo, 0, len(gridNumbers))
	for i, n := range gridNumbers {
		name := fmt.Sprintf("Sim Driver %d", n)
		drivers = append(drivers, model.DriverInfo{
			DriverNumber: n,
			FullName:     name,
			FirstName:    "Sim",
			LastName:     fmt.Sprintf("Driver %d", n),
			NameAcronym:  fmt.Sprintf("S%02d", n),
			TeamName:     teamNames[i%len(teamNames)],
			TeamColour:   fmt.Sprintf("%06x", n*123457%0xffffff),
			Year:         year,
		})
	}
	return drivers
}

func generateRaces(rng *rand.Rand, config *Config) []model.RaceRecord {
	races := make([]model.RaceRecord, 0, config.NumRaces)
	for i := 0; i < config.NumRaces; i++ {
		meetingKey := fmt.Sprintf("%d", 1200+i)
		name := circuitNames[i%len(circuitNames)] + " Grand Prix"

		qualiOrder := rng.Perm(gridSize)
		quali := make([]model.DriverResult, gridSize)
		for pos, idx := range qualiOrder {
			quali[pos] = model.DriverResult{
				DriverNumber:   gridNumbers[idx],
				StartPosition:  pos + 1,
				FinishPosition: pos + 1,
			}
		}

		races = append(races, model.RaceRecord{
			MeetingKey:        meetingKey,
			MeetingName:       name,
			CountryName:       circuitNames[i%len(circuitNames)],
			Year:              config.Season,
			QualifyingResults: quali,
			RaceResults:       generateRaceResults(rng, quali),
		})
	}
	return races
}

// generateRaceResults shuffles the grid into a race classification with a
// random handful of retirements (finish position 0).
func generateRaceResults(rng *rand.Rand, quali []model.DriverResult) []model.DriverResult {
	dnfCount := rng.Intn(maxDNFsPerRace + 1)
	finishOrder := rng.Perm(len(quali))

	results := make([]model.DriverResult, 0, len(quali))
	pos := 0
	for i, idx := range finishOrder {
		start := quali[idx].FinishPosition
		finish := model.DNFFinishPosition
		if i >= dnfCount {
			pos++
			finish = pos
		}
		results = append(results, model.DriverResult{
			DriverNumber:   quali[idx].DriverNumber,
			StartPosition:  start,
			FinishPosition: finish,
		})
	}
	return results
}

func generateUsers(rng *rand.Rand, config *Config, races []model.RaceRecord, stats *Stats) []model.User {
	seasonKey := fmt.Sprintf("%d", config.Season)

	users := make([]model.User, 0, config.NumUsers)
	for i := 0; i < config.NumUsers; i++ {
		username := "player_" + strings.Split(uuid.New().String(), "-")[0]
		picks := model.SeasonPicks{}

		for _, race := range races {
			if rng.Float64() > participationChance {
				continue
			}
			record := model.PickRecord{
				Picks:    pickBackmarkers(rng, &race),
				Autopick: rng.Float64() < autopickChance,
			}
			if rng.Float64() < bonusPickChance {
				worst := gridNumbers[rng.Intn(len(gridNumbers))]
				dnfs := rng.Intn(maxDNFsPerRace + 2)
				record.BonusPicks = &model.BonusPicks{WorstDriver: &worst, DNFs: &dnfs}
				stats.BonusPickCount++
			}
			picks[race.MeetingKey] = record
			stats.PicksGenerated += len(record.Picks)
			if record.Autopick {
				stats.AutopickCount++
			}
		}

		users = append(users, model.User{
			Username:  username,
			FirstName: fmt.Sprintf("Player %d", i+1),
			Seasons:   []int{config.Season},
			Picks:     map[string]model.SeasonPicks{seasonKey: picks},
		})
	}
	return users
}

// pickBackmarkers selects two distinct drivers from the bottom half of the
// qualifying grid, the way the pick UI constrains real users.
func pickBackmarkers(rng *rand.Rand, race *model.RaceRecord) []int {
	bottom := make([]int, 0, gridSize-bottomHalfStart+1)
	for _, res := range race.QualifyingResults {
		if res.FinishPosition >= bottomHalfStart {
			bottom = append(bottom, res.DriverNumber)
		}
	}
	first := rng.Intn(len(bottom))
	second := rng.Intn(len(bottom) - 1)
	if second >= first {
		second++
	}
	return []int{bottom[first], bottom[second]}
}
