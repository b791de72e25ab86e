package scoring_test

import (
	"testing"

	"github.com/backmarker/backmarker/internal/domain/model"
	"github.com/backmarker/backmarker/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoreDriver(t *testing.T) {
	Convey("Given the standard scoring policy", t, func() {
		Convey("When a driver gains a few positions", func() {
			// P14 -> P10: base 4, no winner, no tier.
			res := scoring.ScoreDriver(14, 10)

			Convey("Then they score the raw position delta", func() {
				So(res.Points, ShouldEqual, 4)
				So(res.BonusTitle, ShouldBeEmpty)
				So(res.RaceWinner, ShouldBeFalse)
			})
		})

		Convey("When a driver charges from P20 to P3", func() {
			// base 17, gain 17 lands in the Track Titan tier.
			res := scoring.ScoreDriver(20, 3)

			Convey("Then the Track Titan bonus applies", func() {
				So(res.Points, ShouldEqual, 20)
				So(res.BonusTitle, ShouldEqual, scoring.TrackTitanTitle)
				So(res.RaceWinner, ShouldBeFalse)
			})
		})

		Convey("When a driver wins from P12", func() {
			// base 11, +3 winner, gain 11 lands in the Overtake Artist tier.
			res := scoring.ScoreDriver(12, 1)

			Convey("Then winner and tier bonuses stack", func() {
				So(res.Points, ShouldEqual, 16)
				So(res.BonusTitle, ShouldEqual, scoring.OvertakeArtistTitle)
				So(res.RaceWinner, ShouldBeTrue)
			})
		})

		Convey("When a driver does not finish", func() {
			res := scoring.ScoreDriver(15, model.DNFFinishPosition)

			Convey("Then the DNF rule overrides everything", func() {
				So(res.Points, ShouldEqual, 0)
				So(res.BonusTitle, ShouldBeEmpty)
				So(res.RaceWinner, ShouldBeFalse)
			})

			Convey("And it does so regardless of start position", func() {
				for start := 1; start <= 20; start++ {
					So(scoring.ScoreDriver(start, 0).Points, ShouldEqual, 0)
				}
			})
		})

		Convey("When a driver loses positions", func() {
			res := scoring.ScoreDriver(11, 16)

			Convey("Then points go negative", func() {
				So(res.Points, ShouldEqual, -5)
				So(res.BonusTitle, ShouldBeEmpty)
			})
		})

		Convey("When a driver gains 18 or more positions", func() {
			res := scoring.ScoreDriver(20, 2)

			Convey("Then the Zero to Hero bonus applies", func() {
				So(res.Points, ShouldEqual, 22)
				So(res.BonusTitle, ShouldEqual, scoring.ZeroToHeroTitle)
			})
		})

		Convey("When sweeping all position pairs", func() {
			Convey("Then at most one tier label is ever set", func() {
				seen := map[string]bool{
					"":                          true,
					scoring.OvertakeArtistTitle: true,
					scoring.TrackTitanTitle:     true,
					scoring.ZeroToHeroTitle:     true,
				}
				for start := 1; start <= 20; start++ {
					for finish := 0; finish <= 20; finish++ {
						res := scoring.ScoreDriver(start, finish)
						So(seen[res.BonusTitle], ShouldBeTrue)
					}
				}
			})

			Convey("And the mapping is pure", func() {
				for start := 1; start <= 20; start++ {
					for finish := 0; finish <= 20; finish++ {
						first := scoring.ScoreDriver(start, finish)
						second := scoring.ScoreDriver(start, finish)
						So(second, ShouldResemble, first)
					}
				}
			})
		})

		Convey("When checking tier boundaries", func() {
			Convey("Then a gain of 9 pays no tier", func() {
				So(scoring.ScoreDriver(19, 10).BonusTitle, ShouldBeEmpty)
			})
			Convey("Then a gain of 10 pays +2", func() {
				res := scoring.ScoreDriver(20, 10)
				So(res.BonusTitle, ShouldEqual, scoring.OvertakeArtistTitle)
				So(res.Points, ShouldEqual, 12)
			})
			Convey("Then a gain of 14 pays +3", func() {
				res := scoring.ScoreDriver(20, 6)
				So(res.BonusTitle, ShouldEqual, scoring.TrackTitanTitle)
				So(res.Points, ShouldEqual, 17)
			})
		})
	})
}

func TestScoreBonusPicks(t *testing.T) {
	Convey("Given a race with full results", t, func() {
		race := &model.RaceRecord{
			MeetingKey: "1219",
			Year:       2024,
			QualifyingResults: []model.DriverResult{
				{DriverNumber: 44, StartPosition: 11, FinishPosition: 11},
				{DriverNumber: 22, StartPosition: 18, FinishPosition: 18},
			},
			RaceResults: []model.DriverResult{
				{DriverNumber: 44, StartPosition: 11, FinishPosition: 16},
				{DriverNumber: 22, StartPosition: 18, FinishPosition: model.DNFFinishPosition},
				{DriverNumber: 77, StartPosition: 19, FinishPosition: model.DNFFinishPosition},
			},
		}

		Convey("When the worst-driver prediction loses five positions", func() {
			worst := 44
			out := scoring.ScoreBonusPicks(model.BonusPicks{WorstDriver: &worst}, race)

			Convey("Then the sign is inverted relative to the main policy", func() {
				So(out.Points, ShouldEqual, 5)
				So(out.Details, ShouldHaveLength, 1)
			})
		})

		Convey("When the worst-driver prediction retired", func() {
			worst := 22
			out := scoring.ScoreBonusPicks(model.BonusPicks{WorstDriver: &worst}, race)

			Convey("Then it scores zero", func() {
				So(out.Points, ShouldEqual, 0)
			})
		})

		Convey("When the worst-driver prediction is absent from results", func() {
			worst := 99
			out := scoring.ScoreBonusPicks(model.BonusPicks{WorstDriver: &worst}, race)

			Convey("Then it contributes nothing", func() {
				So(out.Points, ShouldEqual, 0)
				So(out.Details, ShouldBeEmpty)
			})
		})

		Convey("When the DNF count prediction matches exactly", func() {
			dnfs := 2
			out := scoring.ScoreBonusPicks(model.BonusPicks{DNFs: &dnfs}, race)

			Convey("Then the exact-match bonus pays out", func() {
				So(out.Points, ShouldEqual, 5)
			})
		})

		Convey("When the DNF count prediction misses", func() {
			dnfs := 3
			out := scoring.ScoreBonusPicks(model.BonusPicks{DNFs: &dnfs}, race)

			Convey("Then nothing pays out", func() {
				So(out.Points, ShouldEqual, 0)
			})
		})

		Convey("When the manually maintained dnfs field is set", func() {
			race.DNFs = 4
			dnfs := 4
			out := scoring.ScoreBonusPicks(model.BonusPicks{DNFs: &dnfs}, race)

			Convey("Then it wins over the derived count", func() {
				So(out.Points, ShouldEqual, 5)
			})
		})
	})

	Convey("Given a race with no retirements", t, func() {
		race := &model.RaceRecord{
			MeetingKey: "1220",
			QualifyingResults: []model.DriverResult{
				{DriverNumber: 44, StartPosition: 11, FinishPosition: 11},
			},
			RaceResults: []model.DriverResult{
				{DriverNumber: 44, StartPosition: 11, FinishPosition: 11},
			},
		}

		Convey("When a user predicts zero DNFs", func() {
			dnfs := 0
			out := scoring.ScoreBonusPicks(model.BonusPicks{DNFs: &dnfs}, race)

			Convey("Then there is no reward for the trivial prediction", func() {
				So(out.Points, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a race without ingested results", t, func() {
		race := &model.RaceRecord{MeetingKey: "1221"}
		worst, dnfs := 44, 2

		Convey("When bonus picks are evaluated", func() {
			out := scoring.ScoreBonusPicks(model.BonusPicks{WorstDriver: &worst, DNFs: &dnfs}, race)

			Convey("Then nothing is scored", func() {
				So(out.Points, ShouldEqual, 0)
				So(out.Details, ShouldBeEmpty)
			})
		})
	})
}
