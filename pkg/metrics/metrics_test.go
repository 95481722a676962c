package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry and options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metrics are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.rowsParsed.Add(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_rows_parsed_total")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording ingestion metrics", func() {
			before := value(globalManager.rowsAdded)
			RecordRowsAdded(4)
			RecordRowsAdded(0)

			Convey("Then counters advance by the recorded amount", func() {
				So(value(globalManager.rowsAdded)-before, ShouldEqual, 4)
			})
		})

		Convey("When recording labelled metrics", func() {
			RecordFile("ok")
			RecordUpload("s3", "ok")
			RecordStoreLatency("memory", "load", 0.01)

			Convey("Then the labelled series exist", func() {
				So(value(globalManager.filesIngested.WithLabelValues("ok")), ShouldBeGreaterThanOrEqualTo, 1)
				So(value(globalManager.uploads.WithLabelValues("s3", "ok")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording any helper", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordRowsParsed(2)
					RecordRowsDropped("date", 1)
					RecordIngestLatency(0.2)
					RecordEncoding("utf-8")
					RecordStoreError("parquet", "replace")
					UpdateSubjects(3)
					RecordArtifact("trend")
					RecordHTTPRequest("/ingest", "POST", "200")
					RecordHTTPRequestDuration("/ingest", "POST", "200", 0.05)
					RecordErrorByEndpoint("/ingest", "POST", "bad_request")
				}, ShouldNotPanic)
			})
		})

		Convey("Then GetRegistry returns the custom registry", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given a configured global manager", t, func() {
		Reset(func() { Init() })

		Convey("When metrics are disabled", func() {
			Init(WithMetricsEnabled(false))
			RecordRowsAdded(5)

			Convey("Then nothing is recorded", func() {
				So(Enabled(), ShouldBeFalse)
				So(value(globalManager.rowsAdded), ShouldEqual, 0)
			})
		})

		Convey("When a namespace and labels are set", func() {
			m := Init(WithNamespace("pt"), WithCustomLabels(map[string]string{"site": "east"}))
			RecordRowsParsed(2)

			Convey("Then the fresh registry exposes the renamed series", func() {
				So(m, ShouldEqual, globalManager)
				So(GetRegistry(), ShouldEqual, customRegistry)
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() != "pt_ingest_rows_parsed_total" {
						continue
					}
					found = true
					So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "site")
					So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "east")
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func value(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
