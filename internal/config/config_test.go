package config_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/backmarker/backmarker/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8090")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.MongoURI, convey.ShouldEqual, "mongodb://localhost:27017")
			convey.So(cfg.MongoDatabase, convey.ShouldEqual, "backmarker")
			convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 300)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.TopScoresLimit, convey.ShouldEqual, 10)
		})

		convey.Convey("Then duration helpers convert the raw values", func() {
			convey.So(cfg.CacheTTL(), convey.ShouldEqual, 300*time.Second)
			convey.So(cfg.StoreTimeout(), convey.ShouldEqual, 5*time.Second)
		})
	})
}
