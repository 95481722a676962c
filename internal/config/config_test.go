package config_test

import (
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitchtrack/internal/config"
	"github.com/okian/pitchtrack/internal/domain/layout"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, "parquet")
			convey.So(cfg.NameLine, convey.ShouldEqual, 3)
			convey.So(cfg.HeaderLine, convey.ShouldEqual, 5)
			convey.So(cfg.SniffLines, convey.ShouldEqual, 10)
			convey.So(cfg.SniffLines, convey.ShouldEqual, layout.DefaultSniffLines)
			convey.So(cfg.SentinelTokens, convey.ShouldResemble, []string{"-", "－"})
			convey.So(cfg.ExcludeCategories, convey.ShouldResemble, []string{"-", "Other"})
			convey.So(cfg.BreakLimit, convey.ShouldEqual, 70.0)
			convey.So(cfg.MinCount, convey.ShouldEqual, 1)
			convey.So(cfg.Uploader, convey.ShouldEqual, "none")
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "pitchtrack")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configs", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":         func(c *config.Config) { c.Addr = " " },
			"unknown store":      func(c *config.Config) { c.StoreDriver = "redis" },
			"postgres sans dsn":  func(c *config.Config) { c.StoreDriver = "postgres" },
			"zero header line":   func(c *config.Config) { c.HeaderLine = 0 },
			"no sniff lines":     func(c *config.Config) { c.SniffLines = 0 },
			"negative min count": func(c *config.Config) { c.MinCount = -1 },
			"tiny chart":         func(c *config.Config) { c.ChartWidth = 10 },
			"unknown uploader":   func(c *config.Config) { c.Uploader = "ftp" },
			"drive sans creds":   func(c *config.Config) { c.Uploader = "drive" },
			"s3 sans bucket":     func(c *config.Config) { c.Uploader = "s3" },
			"bad namespace":      func(c *config.Config) { c.MetricsNamespace = "pitch-track" },
			"bad metrics label":  func(c *config.Config) { c.MetricsLabels = map[string]string{"1x": "a"} },
		}
		for name, mutate := range cases {
			convey.Convey("Then "+name+" is rejected", func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
