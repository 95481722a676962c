package normalize_test

import (
	"testing"
	"time"

	"github.com/okian/pitchtrack/internal/domain/columns"
	"github.com/okian/pitchtrack/internal/domain/layout"
	"github.com/okian/pitchtrack/internal/domain/model"
	"github.com/okian/pitchtrack/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseNumber(t *testing.T) {
	Convey("Given the default normalizer", t, func() {
		n := normalize.New()

		Convey("Then the dash sentinel is missing, not zero", func() {
			v := n.ParseNumber("-")
			So(v.Valid, ShouldBeFalse)
			So(v.Equal(model.Some(0)), ShouldBeFalse)
		})

		Convey("Then the full-width dash is missing", func() {
			So(n.ParseNumber("－").Valid, ShouldBeFalse)
		})

		Convey("Then blanks and garbage are missing", func() {
			So(n.ParseNumber("  ").Valid, ShouldBeFalse)
			So(n.ParseNumber("abc").Valid, ShouldBeFalse)
			So(n.ParseNumber("NaN").Valid, ShouldBeFalse)
			So(n.ParseNumber("Inf").Valid, ShouldBeFalse)
		})

		Convey("Then numbers parse, including full-width digits and percentages", func() {
			So(n.ParseNumber(" 145.2 "), ShouldResemble, model.Some(145.2))
			So(n.ParseNumber("-12.5"), ShouldResemble, model.Some(-12.5))
			So(n.ParseNumber("１４５"), ShouldResemble, model.Some(145))
			So(n.ParseNumber("92%"), ShouldResemble, model.Some(92))
		})

		Convey("When sentinels are configured", func() {
			n := normalize.New(normalize.WithSentinels("N/A"))

			Convey("Then only the configured tokens are sentinels", func() {
				So(n.ParseNumber("N/A").Valid, ShouldBeFalse)
				So(n.ParseNumber("-").Valid, ShouldBeFalse)
			})
		})
	})
}

func TestParseDate(t *testing.T) {
	Convey("Given the default normalizer", t, func() {
		n := normalize.New()
		want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

		Convey("Then the supported layouts resolve to the same calendar date", func() {
			for _, s := range []string{
				"2024-05-01",
				"2024-05-01 13:45:10",
				"2024/05/01",
				"2024/5/1 9:30",
				"5/1/2024",
				"5/1/2024 1:45:10 PM",
				"2024年5月1日",
			} {
				d, ok := n.ParseDate(s)
				So(ok, ShouldBeTrue)
				So(d.Equal(want), ShouldBeTrue)
			}
		})

		Convey("Then unparseable dates fail", func() {
			_, ok := n.ParseDate("yesterday")
			So(ok, ShouldBeFalse)
			_, ok = n.ParseDate("-")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestParseStrike(t *testing.T) {
	Convey("Given strike flags", t, func() {
		n := normalize.New()
		So(n.ParseStrike("Y"), ShouldResemble, model.Some(1))
		So(n.ParseStrike("no"), ShouldResemble, model.Some(0))
		So(n.ParseStrike("TRUE"), ShouldResemble, model.Some(1))
		So(n.ParseStrike("?").Valid, ShouldBeFalse)
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given the end-to-end example table", t, func() {
		tbl := layout.NewTable(
			[]string{"Date", "Pitch Type", "Velocity", "Total Spin"},
			[][]string{
				{"2024-05-01", "Fastball", "145.2", "2200"},
				{"2024-05-01", "Slider", "-", "2000"},
				{"not a date", "Curve", "120", "2500"},
			},
		)
		res, err := columns.NewResolver().Check(tbl.Headers())
		So(err, ShouldBeNil)

		b, st := normalize.New().Normalize(tbl, res)

		Convey("Then valid rows are kept and the bad date is dropped", func() {
			So(b.Len(), ShouldEqual, 2)
			So(st.Rows, ShouldEqual, 3)
			So(st.DroppedDate, ShouldEqual, 1)
			So(st.Missing, ShouldEqual, 1)
		})

		Convey("Then the slider keeps its spin with velocity missing", func() {
			o := b.Observations[1]
			So(o.Category, ShouldEqual, "Slider")
			So(o.Get(model.Velocity).Valid, ShouldBeFalse)
			So(o.Get(model.TotalSpin), ShouldResemble, model.Some(2000))
		})

		Convey("Then the schema lists only the resolved measures", func() {
			So(b.Schema.Names(), ShouldResemble, []string{"velocity", "total_spin"})
		})
	})
}
