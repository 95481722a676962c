package api

import (
	"bytes"
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitchtrack/internal/domain/aggregate"
	"github.com/okian/pitchtrack/internal/domain/model"
	"github.com/okian/pitchtrack/internal/domain/types"
)

func TestDashboardPage(t *testing.T) {
	Convey("Given dashboard data for one subject", t, func() {
		mean := 145.25
		summary := []aggregate.SummaryRow{{
			Category: "Fastball",
			Count:    3,
			Means:    map[model.Measure]model.Value{model.Velocity: model.Some(mean)},
		}}
		d := dashboardData{
			Subjects:  []types.SubjectInfo{{Key: "0000001_<Taro>", Rows: 3}},
			Selected:  "0000001_<Taro>",
			Query:     "from=2024-05-01",
			Measures:  []model.Measure{model.Velocity},
			Summary:   summary,
			Indicator: []aggregate.IndicatorRow{{Category: "Fastball", MeanVelocity: &mean}},
		}

		Convey("When the page is rendered", func() {
			var buf bytes.Buffer
			err := dashboardPage(d).Render(context.Background(), &buf)
			html := buf.String()

			Convey("Then text is escaped and links carry the filter", func() {
				So(err, ShouldBeNil)
				So(html, ShouldContainSubstring, "<h2>0000001_&lt;Taro&gt;</h2>")
				So(html, ShouldNotContainSubstring, "<Taro>")
				So(html, ShouldContainSubstring, "/dashboard?subject=0000001_%3CTaro%3E")
				So(html, ShouldContainSubstring, "/subjects/0000001_%3CTaro%3E/charts/trend.png?from=2024-05-01")
				So(html, ShouldContainSubstring, "<td>145.25</td>")
				So(html, ShouldContainSubstring, "<td>-</td>")
			})
		})

		Convey("When there are no subjects", func() {
			var buf bytes.Buffer
			So(dashboardPage(dashboardData{}).Render(context.Background(), &buf), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "No subjects yet.")
			So(buf.String(), ShouldNotContainSubstring, "<table>")
		})
	})
}
