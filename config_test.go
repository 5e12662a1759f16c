package qshadow

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConfig(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		config := NewConfig()

		So(config.Workers, ShouldBeGreaterThan, 0)
		So(config.BatchDivisor, ShouldEqual, 4)
		So(config.Strategy, ShouldEqual, Parallel)
		So(config.Validate(), ShouldBeNil)
	})

	Convey("Given a YAML config file", t, func() {
		path := filepath.Join(t.TempDir(), "qshadow.yaml")
		err := os.WriteFile(path, []byte(
			"workers: 3\nbatch_size: 10\nqueue_depth: 6\nstrategy: sequential\nscheduling_timeout: 2s\n",
		), 0o644)
		So(err, ShouldBeNil)

		Convey("It should overlay the defaults", func() {
			config, err := LoadConfig(path)
			So(err, ShouldBeNil)
			So(config.Workers, ShouldEqual, 3)
			So(config.BatchSize, ShouldEqual, 10)
			So(config.QueueDepth, ShouldEqual, 6)
			So(config.BatchDivisor, ShouldEqual, 4)
			So(config.Strategy, ShouldEqual, Sequential)
			So(config.SchedulingTimeout, ShouldEqual, 2*time.Second)
		})

		Convey("Environment variables should win over the file", func() {
			t.Setenv("QSHADOW_WORKERS", "5")
			t.Setenv("QSHADOW_STRATEGY", "parallel")

			config, err := LoadConfig(path)
			So(err, ShouldBeNil)
			So(config.Workers, ShouldEqual, 5)
			So(config.Strategy, ShouldEqual, Parallel)
		})

		Convey("A malformed environment value should fail", func() {
			t.Setenv("QSHADOW_BATCH_SIZE", "many")
			_, err := LoadConfig(path)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given invalid settings", t, func() {
		config := NewConfig()

		Convey("Zero workers should be rejected", func() {
			config.Workers = 0
			So(config.Validate(), ShouldNotBeNil)
		})

		Convey("An unknown strategy should be rejected", func() {
			config.Strategy = "quantum"
			So(config.Validate(), ShouldNotBeNil)
		})

		Convey("A missing file should fail to load", func() {
			_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
