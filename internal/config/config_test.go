package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given no file and no environment", t, func() {
		cfg, err := Load(context.Background(), "")

		Convey("The defaults are returned", func() {
			So(err, ShouldBeNil)
			So(cfg.Workers, ShouldEqual, 2)
			So(cfg.MaxRetries, ShouldEqual, 2)
			So(cfg.RetryBaseDelay, ShouldEqual, time.Second)
			So(cfg.WidgetPoll, ShouldEqual, 600*time.Millisecond)
			So(cfg.Headless, ShouldBeTrue)
			So(cfg.ClutchMargin, ShouldEqual, 5)
		})

		Convey("The engine config matches the standard clutch definition", func() {
			eng := cfg.Engine()
			So(eng.ClutchLastSeconds, ShouldEqual, 300)
			So(eng.Clock.PeriodLength(5), ShouldEqual, 300)
			So(eng.Validate(), ShouldBeNil)
		})

		Convey("The browser and retry settings are carried over", func() {
			b := cfg.Browser()
			So(b.WidgetStableCycles, ShouldEqual, 3)
			So(b.FetchTimeout, ShouldEqual, 60*time.Second)
			So(b.Headless, ShouldBeTrue)

			r := cfg.Retry()
			So(r.MaxRetries, ShouldEqual, 2)
			So(r.Delay(1), ShouldEqual, 2*time.Second)
		})
	})

	Convey("Given a YAML file", t, func() {
		path := filepath.Join(t.TempDir(), "clutch.yaml")
		body := "workers: 4\nretry_base_delay: 250ms\nclutch_margin: 3\nsnapshot_dir: /tmp/snaps\n"
		So(os.WriteFile(path, []byte(body), 0o644), ShouldBeNil)

		Reset(func() {
			os.Unsetenv("CLUTCH_WORKERS")
			os.Unsetenv("CLUTCH_LOG_FORMAT")
		})

		cfg, err := Load(context.Background(), path)

		Convey("File values override defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Workers, ShouldEqual, 4)
			So(cfg.RetryBaseDelay, ShouldEqual, 250*time.Millisecond)
			So(cfg.ClutchMargin, ShouldEqual, 3)
			So(cfg.SnapshotDir, ShouldEqual, "/tmp/snaps")
			So(cfg.FetchTimeout, ShouldEqual, 60*time.Second)
		})

		Convey("Environment values override the file", func() {
			t.Setenv("CLUTCH_WORKERS", "6")
			t.Setenv("CLUTCH_LOG_FORMAT", "json")
			cfg, err := Load(context.Background(), path)
			So(err, ShouldBeNil)
			So(cfg.Workers, ShouldEqual, 6)
			So(cfg.LogFormat, ShouldEqual, "json")
			So(cfg.ClutchMargin, ShouldEqual, 3)
		})
	})

	Convey("Given CLUTCH_CONFIG pointing at a file", t, func() {
		path := filepath.Join(t.TempDir(), "env.yaml")
		So(os.WriteFile(path, []byte("max_retries: 5\n"), 0o644), ShouldBeNil)
		t.Setenv("CLUTCH_CONFIG", path)
		Reset(func() { os.Unsetenv("CLUTCH_CONFIG") })

		cfg, err := Load(context.Background(), "")
		So(err, ShouldBeNil)
		So(cfg.MaxRetries, ShouldEqual, 5)
	})

	Convey("Given invalid values", t, func() {
		Reset(func() {
			os.Unsetenv("CLUTCH_WORKERS")
			os.Unsetenv("CLUTCH_LOG_LEVEL")
		})

		Convey("Too many workers is rejected", func() {
			t.Setenv("CLUTCH_WORKERS", "9")
			_, err := Load(context.Background(), "")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "Workers")
		})

		Convey("An unknown log level is rejected", func() {
			t.Setenv("CLUTCH_LOG_LEVEL", "loud")
			_, err := Load(context.Background(), "")
			So(err, ShouldNotBeNil)
		})

		Convey("A clutch threshold longer than a period is rejected", func() {
			cfg := New()
			cfg.ClutchLastSeconds = 700
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("A missing file is an error", func() {
			_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
