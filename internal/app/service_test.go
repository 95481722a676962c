package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitchtrack/internal/adapters/repository"
	"github.com/okian/pitchtrack/internal/adapters/upload"
	service "github.com/okian/pitchtrack/internal/app"
	"github.com/okian/pitchtrack/internal/config"
	"github.com/okian/pitchtrack/internal/domain/model"
	"github.com/okian/pitchtrack/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			f := svc.DefaultFilter()
			So(f.Exclude, ShouldResemble, []string{"-", "Other"})
			So(f.BreakLimit, ShouldEqual, 70.0)
			So(f.MinCount, ShouldEqual, 1)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service over a memory store", t, func() {
		svc := service.New(service.WithStoreDriver(repository.DriverMemory))
		defer svc.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("Before start, operations report not started", func() {
			_, err := svc.Ingest(ctx, []model.RawFile{{Name: "a.csv"}})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("When starting the service", func() {
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["uploader"], ShouldEqual, upload.SinkNone)
				So(stats["subjects"], ShouldEqual, 0)
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And an empty ingest is rejected", func() {
				_, err := svc.Ingest(ctx, nil)
				So(errors.Is(err, service.ErrNoFiles), ShouldBeTrue)
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
				_, err := svc.Subjects(ctx)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unknown store driver", t, func() {
		svc := service.New(service.WithStoreDriver("redis"))

		Convey("Start fails", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, repository.ErrUnknownDriver), ShouldBeTrue)
		})
	})

	Convey("Given an unknown upload sink", t, func() {
		svc := service.New(service.WithStoreDriver(repository.DriverMemory), service.WithUploadSink("ftp"))

		Convey("Start fails", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, upload.ErrUnknownSink), ShouldBeTrue)
		})
	})
}

func TestArtifactName(t *testing.T) {
	Convey("Artifact names carry subject, session and page", t, func() {
		So(service.ArtifactName("0000001_Tanaka", "2024-05-01", 1, "trend", "png"), ShouldEqual, "0000001_Tanaka_2024-05-01_01_trend.png")
		So(service.ArtifactName("k", "s", 4, "summary", "xlsx"), ShouldEqual, "k_s_04_summary.xlsx")
	})
}

func TestFromConfig(t *testing.T) {
	Convey("Given a loaded configuration", t, func() {
		cfg := config.New()
		cfg.StoreDriver = "MEMORY"
		cfg.ExcludeCategories = []string{"Other"}
		cfg.BreakLimit = 50
		cfg.MinCount = 3

		Convey("When translating it into service options", func() {
			opts, err := service.FromConfig(cfg)
			So(err, ShouldBeNil)
			svc := service.New(opts...)

			Convey("Then the default filter follows the configuration", func() {
				f := svc.DefaultFilter()
				So(f.Exclude, ShouldResemble, []string{"Other"})
				So(f.BreakLimit, ShouldEqual, 50.0)
				So(f.MinCount, ShouldEqual, 3)
			})

			Convey("And the service starts on the configured store", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
				defer svc.Stop()
				So(svc.GetStats()["storeDriver"], ShouldEqual, "memory")
				So(svc.GetStats()["uploader"], ShouldEqual, "none")
			})
		})

		Convey("When the drive credentials file is missing", func() {
			cfg.Uploader = "drive"
			cfg.DriveCredentialsFile = t.TempDir() + "/missing.json"
			_, err := service.FromConfig(cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
