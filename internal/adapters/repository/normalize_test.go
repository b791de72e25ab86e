package repository_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	repository "github.com/backmarker/backmarker/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizeSeasonPicks(t *testing.T) {
	Convey("Given season picks in the modern document shape", t, func() {
		raw := bson.M{
			"1229": bson.M{
				"picks":    bson.A{int32(44), int32(22)},
				"autopick": true,
				"bonusPicks": bson.M{
					"worstDriver": int64(44),
					"dnfs":        float64(3),
				},
			},
		}

		Convey("When normalized", func() {
			picks := repository.NormalizeSeasonPicks(raw)

			Convey("Then the canonical record carries every field", func() {
				So(picks, ShouldHaveLength, 1)
				record := picks["1229"]
				So(record.Picks, ShouldResemble, []int{44, 22})
				So(record.Autopick, ShouldBeTrue)
				So(record.BonusPicks, ShouldNotBeNil)
				So(*record.BonusPicks.WorstDriver, ShouldEqual, 44)
				So(*record.BonusPicks.DNFs, ShouldEqual, 3)
			})
		})
	})

	Convey("Given season picks wrapped in the legacy races sub-document", t, func() {
		raw := bson.M{
			"races": bson.M{
				"1210": bson.M{"picks": bson.A{int32(10), int32(31)}},
			},
		}

		Convey("When normalized", func() {
			picks := repository.NormalizeSeasonPicks(raw)

			Convey("Then the wrapper is unwrapped transparently", func() {
				So(picks, ShouldHaveLength, 1)
				So(picks["1210"].Picks, ShouldResemble, []int{10, 31})
			})
		})
	})

	Convey("Given a legacy bare driver-number array pick", t, func() {
		raw := bson.M{
			"1205": bson.A{int32(20), int32(27)},
		}

		Convey("When normalized", func() {
			picks := repository.NormalizeSeasonPicks(raw)

			Convey("Then it becomes a plain pick record", func() {
				record := picks["1205"]
				So(record.Picks, ShouldResemble, []int{20, 27})
				So(record.Autopick, ShouldBeFalse)
				So(record.BonusPicks, ShouldBeNil)
			})
		})
	})

	Convey("Given unrecognizable season picks", t, func() {
		Convey("Then a scalar normalizes to nil", func() {
			So(repository.NormalizeSeasonPicks("not-a-document"), ShouldBeNil)
		})
		Convey("Then nil normalizes to nil", func() {
			So(repository.NormalizeSeasonPicks(nil), ShouldBeNil)
		})
	})
}

func TestNormalizeResults(t *testing.T) {
	Convey("Given results in the structured document shape", t, func() {
		raw := bson.A{
			bson.M{"driverNumber": int32(44), "startPosition": int32(14), "finishPosition": int32(10)},
			bson.M{"driverNumber": int32(22), "startPosition": int32(20), "finishPosition": int32(0)},
		}

		Convey("When normalized", func() {
			results := repository.NormalizeResults(raw)

			Convey("Then positions carry through including DNF zero", func() {
				So(results, ShouldHaveLength, 2)
				So(results[0].DriverNumber, ShouldEqual, 44)
				So(results[0].FinishPosition, ShouldEqual, 10)
				So(results[1].DidNotFinish(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a legacy bare driver-number array", t, func() {
		raw := bson.A{int32(1), int32(16), int32(44)}

		Convey("When normalized", func() {
			results := repository.NormalizeResults(raw)

			Convey("Then position is the slot in the classified order", func() {
				So(results, ShouldHaveLength, 3)
				So(results[0].DriverNumber, ShouldEqual, 1)
				So(results[0].FinishPosition, ShouldEqual, 1)
				So(results[2].DriverNumber, ShouldEqual, 44)
				So(results[2].FinishPosition, ShouldEqual, 3)
			})
		})
	})

	Convey("Given an absent result set", t, func() {
		Convey("Then it normalizes to nil", func() {
			So(repository.NormalizeResults(nil), ShouldBeNil)
			So(repository.NormalizeResults(bson.A{}), ShouldBeNil)
		})
	})
}

func TestNormalizeMeetingKey(t *testing.T) {
	Convey("Given meeting keys of different vintages", t, func() {
		Convey("Then strings pass through", func() {
			So(repository.NormalizeMeetingKey("1229"), ShouldEqual, "1229")
		})
		Convey("Then numbers render as canonical strings", func() {
			So(repository.NormalizeMeetingKey(int32(1229)), ShouldEqual, "1229")
			So(repository.NormalizeMeetingKey(int64(1229)), ShouldEqual, "1229")
			So(repository.NormalizeMeetingKey(float64(1229)), ShouldEqual, "1229")
		})
	})
}
