package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/pitchtrack/internal/config"
	"github.com/okian/pitchtrack/pkg/logger"
	"github.com/okian/pitchtrack/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.New()
	cfg.StoreDriver = "memory"
	cfg.DataDir = t.TempDir()
	return cfg
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		ctx := context.Background()

		convey.Convey("When configuration comes from the environment", func() {
			t.Setenv("PITCHTRACK_ADDR", ":8080")
			t.Setenv("PITCHTRACK_STORE_DRIVER", "memory")
			t.Setenv("PITCHTRACK_MAX_UPLOAD_MB", "4")

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
				convey.So(cfg.MaxUploadMB, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When initializing logging", func() {
			var buf bytes.Buffer
			cfg := testConfig(t)
			cfg.LogFormat = "json"
			cfg.LogLevel = "verbose"

			convey.Convey("Then an invalid level falls back to info with a warning", func() {
				convey.So(initLogging(&buf, cfg), convey.ShouldBeNil)
				convey.So(buf.String(), convey.ShouldContainSubstring, `"log_level":"verbose"`)
			})
		})

		convey.Convey("When an unknown log format is configured", func() {
			cfg := testConfig(t)
			cfg.LogFormat = "xml"
			convey.So(initLogging(&bytes.Buffer{}, cfg), convey.ShouldNotBeNil)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		convey.So(logger.Init(logger.WithWriter(&bytes.Buffer{})), convey.ShouldBeNil)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cfg := testConfig(t)
		svc, err := newService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("When building the mux", func() {
			mux := newMux(ctx, cfg, svc)

			convey.Convey("Then API and docs routes are served", func() {
				for _, path := range []string{"/healthz", "/subjects", "/stats", "/openapi.yaml", "/api-docs"} {
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})
		})

		convey.Convey("When metrics are initialised from the configuration", func() {
			cfg.MetricsNamespace = "cmdtest"
			cfg.MetricsLabels = map[string]string{"site": "east"}
			initMetrics(cfg)
			defer metrics.Init()

			convey.Convey("Then the refreshed gauge is exported under the namespace", func() {
				convey.So(svc.RefreshMetrics(ctx), convey.ShouldBeNil)
				families, err := metrics.GetRegistry().Gather()
				convey.So(err, convey.ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				convey.So(names, convey.ShouldContain, "cmdtest_ingest_subjects")
			})
		})

		convey.Convey("When the metrics updater runs until cancelled", func() {
			short, stop := context.WithTimeout(ctx, 50*time.Millisecond)
			defer stop()

			convey.Convey("Then it returns without panicking", func() {
				convey.So(func() { startServiceMetricsUpdater(short, svc) }, convey.ShouldNotPanic)
			})
		})
	})

	convey.Convey("Given an invalid upload configuration", t, func() {
		cfg := testConfig(t)
		cfg.Uploader = "drive"
		cfg.DriveCredentialsFile = "/nonexistent/creds.json"

		convey.Convey("Then the service cannot be built", func() {
			_, err := newService(context.Background(), cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "drive credentials")
		})
	})
}

func TestServerConstants(t *testing.T) {
	convey.Convey("Server timeouts are ordered", t, func() {
		convey.So(readHeaderTimeout, convey.ShouldBeLessThan, readTimeout)
		convey.So(readTimeout, convey.ShouldBeLessThanOrEqualTo, writeTimeout)
		convey.So(shutdownTimeout, convey.ShouldBeGreaterThan, 0)
	})
}
