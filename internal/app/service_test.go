package service_test

import (
	"context"
	"errors"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/backmarker/backmarker/internal/adapters/cache"
	"github.com/backmarker/backmarker/internal/adapters/repository"
	service "github.com/backmarker/backmarker/internal/app"
	"github.com/backmarker/backmarker/internal/domain/model"
	"github.com/backmarker/backmarker/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	os.Exit(m.Run())
}

func intPtr(n int) *int { return &n }

// seedSeason loads a small but fully exercised 2024 season:
//
//	monaco (1229): quali and race results for drivers 10, 22, 44, 77 plus
//	two retirements (30, 31). alice picks 10+22 with bonus picks, bob
//	picks 44 and an unknown 99, carol picks a race that has no record
//	yet, dave never picked at all.
func seedSeason(store repository.Seeder) {
	ctx := context.Background()

	_ = store.InsertRaces(ctx, []model.RaceRecord{
		{
			MeetingKey:  "1229",
			MeetingName: "Monaco Grand Prix",
			CountryName: "Monaco",
			Year:        2024,
			QualifyingResults: []model.DriverResult{
				{DriverNumber: 10, StartPosition: 15, FinishPosition: 14},
				{DriverNumber: 22, StartPosition: 19, FinishPosition: 20},
				{DriverNumber: 44, StartPosition: 11, FinishPosition: 12},
				{DriverNumber: 77, StartPosition: 10, FinishPosition: 11},
			},
			RaceResults: []model.DriverResult{
				{DriverNumber: 10, StartPosition: 14, FinishPosition: 10},
				{DriverNumber: 22, StartPosition: 20, FinishPosition: 3},
				{DriverNumber: 44, StartPosition: 12, FinishPosition: 1},
				{DriverNumber: 77, StartPosition: 11, FinishPosition: 16},
				{DriverNumber: 30, StartPosition: 8, FinishPosition: 0},
				{DriverNumber: 31, StartPosition: 9, FinishPosition: 0},
			},
		},
	})

	_ = store.InsertDrivers(ctx, []model.DriverInfo{
		{DriverNumber: 10, FullName: "Pierre Gasly", NameAcronym: "GAS", TeamName: "Alpine", TeamColour: "0093cc", Year: 2024},
		{DriverNumber: 22, FullName: "Yuki Tsunoda", NameAcronym: "TSU", TeamName: "RB", TeamColour: "6692ff", Year: 2024},
		{DriverNumber: 44, FullName: "Lewis Hamilton", NameAcronym: "HAM", TeamName: "Mercedes", TeamColour: "27f4d2", Year: 2024},
		{DriverNumber: 77, FullName: "Valtteri Bottas", NameAcronym: "BOT", TeamName: "Kick Sauber", TeamColour: "52e252", Year: 2024},
	})

	_ = store.InsertUsers(ctx, []model.User{
		{
			Username:  "alice",
			FirstName: "Alice",
			Seasons:   []int{2024},
			Picks: map[string]model.SeasonPicks{
				"2024": {
					"1229": {
						Picks: []int{10, 22},
						BonusPicks: &model.BonusPicks{
							WorstDriver: intPtr(77),
							DNFs:        intPtr(2),
						},
					},
				},
			},
		},
		{
			Username: "bob",
			Seasons:  []int{2024},
			Picks: map[string]model.SeasonPicks{
				"2024": {
					"1229": {Picks: []int{44, 99}, Autopick: true},
				},
			},
		},
		{
			Username: "carol",
			Seasons:  []int{2024},
			Picks: map[string]model.SeasonPicks{
				"2024": {
					"9999": {Picks: []int{10, 44}},
				},
			},
		},
		{
			Username: "dave",
			Seasons:  []int{2024},
		},
	})
}

func newTestService(store repository.Store) *service.Service {
	svc := service.New(
		service.WithStore(store),
		service.WithCache(cache.New()),
		service.WithWorkerCount(4),
		service.WithTopScoresLimit(5),
	)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func TestLeaderboard(t *testing.T) {
	Convey("Given a seeded season", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		seedSeason(store)
		svc := newTestService(store)
		defer svc.Stop()

		entries, err := svc.Leaderboard(ctx, 2024)
		So(err, ShouldBeNil)
		So(entries, ShouldHaveLength, 4)

		Convey("Users rank by points descending", func() {
			// alice: 10 (14->10 = 4) + 22 (20->3 = 17+3 titan = 20)
			// plus bonus picks: worst driver 77 lost 5 places (+5) and
			// exact DNF count (+5) = 34.
			So(entries[0].Username, ShouldEqual, "alice")
			So(entries[0].Rank, ShouldEqual, 1)
			So(*entries[0].Points, ShouldEqual, 34)

			// bob: 44 wins from P12 on the quali grid = 11 + 3 winner
			// + 2 overtake artist = 16; pick of unknown 99 skipped.
			So(entries[1].Username, ShouldEqual, "bob")
			So(*entries[1].Points, ShouldEqual, 16)
		})

		Convey("Picks against a missing race score zero, not null", func() {
			So(entries[2].Username, ShouldEqual, "carol")
			So(entries[2].Points, ShouldNotBeNil)
			So(*entries[2].Points, ShouldEqual, 0)
		})

		Convey("A user with no picks at all has null points and still appears", func() {
			So(entries[3].Username, ShouldEqual, "dave")
			So(entries[3].Points, ShouldBeNil)
			So(entries[3].Rank, ShouldEqual, 4)
		})

		Convey("Autopick counts are carried per user", func() {
			So(entries[0].Autopicks, ShouldEqual, 0)
			So(entries[1].Autopicks, ShouldEqual, 1)
		})
	})
}

func TestLeaderboardTieBreak(t *testing.T) {
	Convey("Given two users with identical totals", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()

		_ = store.InsertRaces(ctx, []model.RaceRecord{{
			MeetingKey: "1300", MeetingName: "Suzuka", Year: 2025,
			QualifyingResults: []model.DriverResult{
				{DriverNumber: 4, FinishPosition: 10},
				{DriverNumber: 5, FinishPosition: 12},
			},
			RaceResults: []model.DriverResult{
				{DriverNumber: 4, StartPosition: 10, FinishPosition: 5},
				{DriverNumber: 5, StartPosition: 12, FinishPosition: 7},
			},
		}})
		_ = store.InsertUsers(ctx, []model.User{
			{Username: "zoe", Seasons: []int{2025}, Picks: map[string]model.SeasonPicks{
				"2025": {"1300": {Picks: []int{4}}},
			}},
			{Username: "amir", Seasons: []int{2025}, Picks: map[string]model.SeasonPicks{
				"2025": {"1300": {Picks: []int{5}}},
			}},
		})

		svc := newTestService(store)
		defer svc.Stop()

		entries, err := svc.Leaderboard(ctx, 2025)
		So(err, ShouldBeNil)
		So(entries, ShouldHaveLength, 2)

		Convey("Both score five and order falls back to username", func() {
			So(*entries[0].Points, ShouldEqual, 5)
			So(*entries[1].Points, ShouldEqual, 5)
			So(entries[0].Username, ShouldEqual, "amir")
			So(entries[1].Username, ShouldEqual, "zoe")
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[1].Rank, ShouldEqual, 2)
		})
	})
}

func TestPlayerBreakdown(t *testing.T) {
	Convey("Given a seeded season", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		seedSeason(store)
		svc := newTestService(store)
		defer svc.Stop()

		Convey("A player's season view carries per-race detail", func() {
			player, err := svc.PlayerBreakdown(ctx, 2024, "alice")
			So(err, ShouldBeNil)
			So(player.Username, ShouldEqual, "alice")
			So(player.TotalPoints, ShouldEqual, 34)
			So(player.Races, ShouldHaveLength, 1)

			race := player.Races[0]
			So(race.RaceName, ShouldEqual, "Monaco Grand Prix")
			So(race.Points, ShouldEqual, 24)
			So(race.BonusPoints, ShouldEqual, 10)
			So(race.BonusDetails, ShouldHaveLength, 2)
			So(race.Results, ShouldHaveLength, 2)
			So(race.Results[1].BonusTitle, ShouldEqual, "Track Titan Bonus +3")
		})

		Convey("Skipped picks stay out of the score lines", func() {
			player, err := svc.PlayerBreakdown(ctx, 2024, "bob")
			So(err, ShouldBeNil)
			So(player.Races, ShouldHaveLength, 1)
			So(player.Races[0].Results, ShouldHaveLength, 1)
			So(player.Races[0].Results[0].RaceWinner, ShouldBeTrue)
		})

		Convey("A race with no record yet is absent from the breakdown", func() {
			player, err := svc.PlayerBreakdown(ctx, 2024, "carol")
			So(err, ShouldBeNil)
			So(player.Races, ShouldBeEmpty)
			So(player.TotalPoints, ShouldEqual, 0)
		})

		Convey("Unknown usernames are rejected", func() {
			_, err := svc.PlayerBreakdown(ctx, 2024, "nobody")
			So(errors.Is(err, service.ErrUnknownPlayer), ShouldBeTrue)
		})
	})
}

func TestSeasonStats(t *testing.T) {
	Convey("Given a seeded season", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		seedSeason(store)
		svc := newTestService(store)
		defer svc.Stop()

		stats, err := svc.SeasonStats(ctx, 2024)
		So(err, ShouldBeNil)

		Convey("Top single-race scores include bonus points", func() {
			So(len(stats.TopSingleRaceScores), ShouldBeGreaterThanOrEqualTo, 2)
			So(stats.TopSingleRaceScores[0].Username, ShouldEqual, "alice")
			So(stats.TopSingleRaceScores[0].Points, ShouldEqual, 34)
			So(stats.TopSingleRaceScores[1].Username, ShouldEqual, "bob")
		})

		Convey("Averages divide by races participated, not the season length", func() {
			So(stats.AveragePointsPerUser[0].Username, ShouldEqual, "alice")
			So(stats.AveragePointsPerUser[0].Races, ShouldEqual, 1)
			So(stats.AveragePointsPerUser[0].Average, ShouldEqual, 34.0)
			for _, avg := range stats.AveragePointsPerUser {
				So(avg.Username, ShouldNotEqual, "carol")
				So(avg.Username, ShouldNotEqual, "dave")
			}
		})

		Convey("Driver rankings cover every picked driver", func() {
			// Picks across all users: 10 twice (alice, carol), 44 twice
			// (bob, carol), 22 and 99 once each.
			byNumber := map[int]int{}
			for _, d := range stats.MostPickedDrivers {
				byNumber[d.DriverNumber] = d.PickCount
			}
			So(byNumber[10], ShouldEqual, 2)
			So(byNumber[44], ShouldEqual, 2)
			So(byNumber[22], ShouldEqual, 1)
			So(byNumber[99], ShouldEqual, 1)
		})

		Convey("Top scoring drivers rank by resolved points", func() {
			So(stats.TopScoringDrivers[0].DriverNumber, ShouldEqual, 22)
			So(stats.TopScoringDrivers[0].TotalPoints, ShouldEqual, 20)
			So(stats.TopScoringDrivers[0].DriverName, ShouldEqual, "Yuki Tsunoda")
		})

		Convey("Biggest gainers use the raw position delta", func() {
			So(stats.BiggestPositionGainers[0].DriverNumber, ShouldEqual, 22)
			So(stats.BiggestPositionGainers[0].BiggestGain, ShouldEqual, 17)
		})

		Convey("Drivers missing from the directory get placeholder metadata", func() {
			var unknown bool
			for _, d := range stats.MostPickedDrivers {
				if d.DriverNumber == 99 {
					unknown = true
					So(d.DriverName, ShouldEqual, "Driver #99")
				}
			}
			So(unknown, ShouldBeTrue)
		})
	})
}

func TestSnapshotCaching(t *testing.T) {
	Convey("Given a service that computed a season once", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		seedSeason(store)
		svc := newTestService(store)
		defer svc.Stop()

		_, err := svc.Leaderboard(ctx, 2024)
		So(err, ShouldBeNil)

		Convey("Later reads are served from cache, not the store", func() {
			store.FailWith(repository.ErrUnavailable)
			entries, err := svc.Leaderboard(ctx, 2024)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 4)
		})

		Convey("Other seasons still hit the store", func() {
			store.FailWith(repository.ErrUnavailable)
			_, err := svc.Leaderboard(ctx, 2023)
			So(errors.Is(err, repository.ErrUnavailable), ShouldBeTrue)
		})
	})
}

func TestStoreFailures(t *testing.T) {
	Convey("Given a store that is down", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		seedSeason(store)
		store.FailWith(repository.ErrUnavailable)
		svc := newTestService(store)
		defer svc.Stop()

		Convey("Every read surfaces the failure", func() {
			_, err := svc.Leaderboard(ctx, 2024)
			So(errors.Is(err, repository.ErrUnavailable), ShouldBeTrue)

			_, err = svc.SeasonStats(ctx, 2024)
			So(errors.Is(err, repository.ErrUnavailable), ShouldBeTrue)
		})

		Convey("Failures are never cached", func() {
			_, err := svc.Leaderboard(ctx, 2024)
			So(err, ShouldNotBeNil)

			store.FailWith(nil)
			entries, err := svc.Leaderboard(ctx, 2024)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 4)
		})
	})
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service configuration", t, func() {
		Convey("Start without a store fails", func() {
			svc := service.New()
			err := svc.Start(context.Background())
			So(errors.Is(err, service.ErrNoStore), ShouldBeTrue)
		})

		Convey("Stats reflect the running state", func() {
			svc := newTestService(repository.NewMemStore())
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["workerCount"], ShouldEqual, 4)

			svc.Stop()
			stats = svc.GetStats()
			So(stats["started"], ShouldBeFalse)
		})
	})
}
