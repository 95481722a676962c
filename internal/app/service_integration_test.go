package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitchtrack/internal/adapters/repository"
	"github.com/okian/pitchtrack/internal/adapters/upload"
	service "github.com/okian/pitchtrack/internal/app"
	"github.com/okian/pitchtrack/internal/domain/aggregate"
	"github.com/okian/pitchtrack/internal/domain/columns"
	"github.com/okian/pitchtrack/internal/domain/model"
)

const header = "Rapsodo\nExported,2024-05-02\nPlayer Name,Taro Yamada\n\n" +
	"Date,Pitch Type,Velocity,Total Spin,VB (trajectory),HB (trajectory),Is Strike\n"

func csv(rows ...string) []byte {
	return []byte(header + strings.Join(rows, "\n") + "\n")
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service over a parquet store", t, func() {
		mem := upload.NewMemory()
		svc := service.New(
			service.WithStoreDriver(repository.DriverParquet, repository.WithDataDir(t.TempDir())),
			service.WithUploader(mem),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		first := model.RawFile{Name: "0000001_day1.csv", Data: csv(
			"2024-05-01,Fastball,145.2,2200,45.1,-12.3,Yes",
			"2024-05-01,Slider,-,2000,5.2,20.1,No",
			"2024-05-01,Fastball,143.0,2150,44.0,-11.0,Yes",
		)}
		second := model.RawFile{Name: "0000001_day2.csv", Data: csv(
			"2024-05-01,Fastball,143.0,2150,44.0,-11.0,Yes",
			"2024-05-08,Fastball,146.0,2250,46.0,-13.0,No",
		)}
		broken := model.RawFile{Name: "0000002_bad.csv", Data: []byte("a\nb\nName,X\n\nPitch Type,Velocity\nFastball,140\n")}

		Convey("When ingesting a batch with one broken file", func() {
			res, err := svc.Ingest(ctx, []model.RawFile{first, broken, second})
			So(err, ShouldBeNil)

			Convey("Then the broken file fails alone", func() {
				So(res.BatchID, ShouldNotBeEmpty)
				So(res.Files, ShouldHaveLength, 3)
				So(res.Failed, ShouldEqual, 1)
				So(res.Files[1].OK(), ShouldBeFalse)
				So(res.Files[1].Error, ShouldContainSubstring, "0000002_bad.csv")
				So(res.Files[1].Error, ShouldContainSubstring, columns.FieldDate)
			})

			Convey("And the overlapping row is stored once", func() {
				So(res.Files[0].Key, ShouldEqual, "0000001_Taro_Yamada")
				So(res.Files[0].RowsAdded, ShouldEqual, 3)
				So(res.Files[2].RowsParsed, ShouldEqual, 2)
				So(res.Files[2].RowsAdded, ShouldEqual, 1)
				So(res.Files[2].Duplicates, ShouldEqual, 1)
				So(res.Files[2].TotalRows, ShouldEqual, 4)
			})

			Convey("And ingesting the same file again adds nothing", func() {
				again, err := svc.Ingest(ctx, []model.RawFile{first})
				So(err, ShouldBeNil)
				So(again.Files[0].RowsAdded, ShouldEqual, 0)
				So(again.Files[0].TotalRows, ShouldEqual, 4)
			})

			Convey("And subjects are listed with their mode session", func() {
				subs, err := svc.Subjects(ctx)
				So(err, ShouldBeNil)
				So(subs, ShouldHaveLength, 1)
				So(subs[0].Rows, ShouldEqual, 4)
				So(subs[0].Session, ShouldEqual, "2024-05-01")
				So(svc.GetStats()["failedFiles"], ShouldEqual, 1)
			})

			Convey("And queries see the merged content", func() {
				key := res.Files[0].Key
				f := svc.DefaultFilter()

				b, err := svc.Observations(ctx, key, f)
				So(err, ShouldBeNil)
				So(b.Len(), ShouldEqual, 4)
				So(b.Observations[1].Get(model.Velocity).Valid, ShouldBeFalse)

				f.Session = time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)
				b, err = svc.Observations(ctx, key, f)
				So(err, ShouldBeNil)
				So(b.Len(), ShouldEqual, 1)

				rows, err := svc.Summary(ctx, key, svc.DefaultFilter())
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Category, ShouldEqual, "Fastball")
				So(rows[0].Count, ShouldEqual, 3)

				pts, err := svc.Trend(ctx, key, svc.DefaultFilter(), model.Velocity, aggregate.Week)
				So(err, ShouldBeNil)
				So(pts, ShouldNotBeEmpty)

				series, err := svc.Scatter(ctx, key, svc.DefaultFilter(), model.HorizontalBreak, model.VerticalBreak)
				So(err, ShouldBeNil)
				So(series, ShouldHaveLength, 2)

				ind, err := svc.Indicator(ctx, key, svc.DefaultFilter())
				So(err, ShouldBeNil)
				So(ind[0].Fastball, ShouldBeTrue)

				cmp, err := svc.CompareFastballs(ctx, svc.DefaultFilter())
				So(err, ShouldBeNil)
				So(cmp, ShouldHaveLength, 1)
				So(cmp[0].Count, ShouldEqual, 3)
			})

			Convey("And charts and the workbook render", func() {
				key := res.Files[0].Key
				for _, kind := range []string{service.ChartTrend, service.ChartScatter, service.ChartMovement} {
					var buf bytes.Buffer
					So(svc.Chart(ctx, &buf, key, kind, svc.DefaultFilter(), service.DefaultChartRequest()), ShouldBeNil)
					So(buf.Len(), ShouldBeGreaterThan, 0)
				}
				err := svc.Chart(ctx, &bytes.Buffer{}, key, "pie", svc.DefaultFilter(), service.DefaultChartRequest())
				So(errors.Is(err, service.ErrUnknownChart), ShouldBeTrue)

				var xlsx bytes.Buffer
				So(svc.Export(ctx, &xlsx, key, svc.DefaultFilter()), ShouldBeNil)
				So(xlsx.Len(), ShouldBeGreaterThan, 0)
			})

			Convey("And publish uploads the subject pages and the comparison pages", func() {
				key := res.Files[0].Key
				pub, err := svc.Publish(ctx, key, svc.DefaultFilter())
				So(err, ShouldBeNil)
				So(pub.Session, ShouldEqual, "2024-05-01")
				So(pub.Sink, ShouldEqual, upload.SinkMemory)
				So(pub.Uploaded, ShouldEqual, 6)
				So(pub.Failed, ShouldEqual, 0)
				So(pub.Artifacts, ShouldHaveLength, 6)

				objs := mem.Objects()
				So(objs, ShouldHaveLength, 6)
				So(objs[0].Name, ShouldEqual, key+"_2024-05-01_01_trend.png")
				So(objs[3].Name, ShouldEqual, key+"_2024-05-01_04_summary.xlsx")
				So(objs[3].ContentType, ShouldEqual, service.ContentTypeXLSX)
				So(objs[4].Name, ShouldEqual, "ALL_fastball_2024-05-01_compare_1.png")
				So(objs[5].Name, ShouldEqual, "ALL_fastball_2024-05-01_compare_2.png")
				So(objs[5].ContentType, ShouldEqual, service.ContentTypePNG)
			})
		})

		Convey("When querying an unknown subject", func() {
			_, err := svc.Summary(ctx, "nobody", svc.DefaultFilter())

			Convey("Then it is not found", func() {
				So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

// rejectingUploader fails the names in reject and keeps the rest.
type rejectingUploader struct {
	*upload.Memory
	reject map[string]bool
}

func (r rejectingUploader) Upload(ctx context.Context, name, contentType string, data []byte) error {
	if r.reject[name] || r.reject["*"] {
		return errors.New("quota exceeded")
	}
	return r.Memory.Upload(ctx, name, contentType, data)
}

func TestPublish(t *testing.T) {
	Convey("Given a service with one stored subject", t, func() {
		ctx := context.Background()
		const key = "0000001_Taro_Yamada"
		start := func(opts ...service.Option) *service.Service {
			svc := service.New(append(opts, service.WithStoreDriver(repository.DriverMemory))...)
			So(svc.Start(ctx), ShouldBeNil)
			_, err := svc.Ingest(ctx, []model.RawFile{{Name: "0000001_day1.csv", Data: csv(
				"2024-05-01,Fastball,145.2,2200,45.1,-12.3,Yes",
				"2024-05-01,Curve,120.0,2500,-20.0,8.0,No",
			)}})
			So(err, ShouldBeNil)
			return svc
		}

		Convey("When one upload is rejected", func() {
			up := rejectingUploader{Memory: upload.NewMemory(), reject: map[string]bool{
				key + "_2024-05-01_02_scatter.png": true,
			}}
			svc := start(service.WithUploader(up))
			defer svc.Stop()

			res, err := svc.Publish(ctx, key, svc.DefaultFilter())

			Convey("Then the remaining artifacts are still uploaded", func() {
				So(err, ShouldBeNil)
				So(res.Uploaded, ShouldEqual, 5)
				So(res.Failed, ShouldEqual, 1)
				So(res.Failures, ShouldHaveLength, 1)
				So(res.Failures[0].Name, ShouldEqual, key+"_2024-05-01_02_scatter.png")
				So(res.Failures[0].Error, ShouldContainSubstring, "quota exceeded")
				So(up.Objects(), ShouldHaveLength, 5)
				So(up.Objects()[4].Name, ShouldEqual, "ALL_fastball_2024-05-01_compare_2.png")
			})
		})

		Convey("When every upload is rejected", func() {
			up := rejectingUploader{Memory: upload.NewMemory(), reject: map[string]bool{"*": true}}
			svc := start(service.WithUploader(up))
			defer svc.Stop()

			res, err := svc.Publish(ctx, key, svc.DefaultFilter())

			Convey("Then the result counts the failures and the error says nothing was uploaded", func() {
				So(errors.Is(err, service.ErrPublish), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "quota exceeded")
				So(res.Uploaded, ShouldEqual, 0)
				So(res.Failed, ShouldEqual, 6)
			})
		})

		Convey("When no uploader is configured", func() {
			svc := start()
			defer svc.Stop()

			_, err := svc.Publish(ctx, key, svc.DefaultFilter())

			Convey("Then publishing is disabled", func() {
				So(errors.Is(err, upload.ErrDisabled), ShouldBeTrue)
			})
		})
	})
}

func TestStopDuringOperations(t *testing.T) {
	Convey("Given a started service answering queries", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithStoreDriver(repository.DriverMemory))
		So(svc.Start(ctx), ShouldBeNil)
		_, err := svc.Ingest(ctx, []model.RawFile{{Name: "0000001_day1.csv", Data: csv(
			"2024-05-01,Fastball,145.2,2200,45.1,-12.3,Yes",
		)}})
		So(err, ShouldBeNil)

		Convey("When Stop runs concurrently", func() {
			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				errs []error
			)
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 20; j++ {
						_, err := svc.Summary(ctx, "0000001_Taro_Yamada", svc.DefaultFilter())
						if err == nil {
							_, err = svc.Subjects(ctx)
						}
						if err == nil {
							err = svc.RefreshMetrics(ctx)
						}
						if err != nil {
							mu.Lock()
							errs = append(errs, err)
							mu.Unlock()
						}
					}
				}()
			}
			svc.Stop()
			wg.Wait()

			Convey("Then every call either completes or reports not started", func() {
				for _, err := range errs {
					So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				}
				_, err := svc.Subjects(ctx)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}
