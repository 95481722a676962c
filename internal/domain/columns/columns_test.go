package columns_test

import (
	"errors"
	"testing"

	"github.com/okian/pitchtrack/internal/domain/columns"
	"github.com/okian/pitchtrack/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolve(t *testing.T) {
	Convey("Given the default resolver", t, func() {
		r := columns.NewResolver()

		Convey("When both Velocity and Velo are present", func() {
			res := r.Resolve([]string{"Date", "Pitch Type", "Velo", "Velocity"})

			Convey("Then Velocity wins and Velo is dropped", func() {
				i, ok := res.Index(model.Velocity.String())
				So(ok, ShouldBeTrue)
				So(i, ShouldEqual, 3)
				So(res.Dropped, ShouldResemble, []string{"Velo"})
			})
		})

		Convey("When headers carry surrounding whitespace", func() {
			res := r.Resolve([]string{" Date ", "Pitch Type"})

			Convey("Then they still match", func() {
				i, ok := res.Index(columns.FieldDate)
				So(ok, ShouldBeTrue)
				So(i, ShouldEqual, 0)
			})
		})

		Convey("When headers are written in full-width characters", func() {
			res := r.Resolve([]string{"Ｄａｔｅ", "Pitch Type", "Ｖｅｌｏｃｉｔｙ", "VB（trajectory）", "VB （trajectory）"})

			Convey("Then they match after NFKC folding", func() {
				So(res.Mapping[columns.FieldDate], ShouldEqual, 0)
				So(res.Mapping[model.Velocity.String()], ShouldEqual, 2)
				So(res.Mapping[model.VerticalBreak.String()], ShouldEqual, 4)
				So(columns.NormalizeHeader("　Ｓｐｉｎ Ａｘｉｓ　"), ShouldEqual, "Spin Axis")
			})
		})

		Convey("When headers differ in case", func() {
			res := r.Resolve([]string{"date", "pitch type"})

			Convey("Then nothing matches", func() {
				So(res.Mapping, ShouldBeEmpty)
				So(res.Unresolved, ShouldContain, columns.FieldDate)
			})
		})

		Convey("When a Japanese export is resolved", func() {
			res := r.Resolve([]string{"日付", "球種", "球速", "回転数", "謎"})

			Convey("Then the Japanese aliases map and unknown headers are ignored", func() {
				So(res.Mapping, ShouldResemble, map[string]int{
					columns.FieldDate:        0,
					columns.FieldCategory:    1,
					model.Velocity.String():  2,
					model.TotalSpin.String(): 3,
				})
				So(res.Unresolved, ShouldNotContain, columns.FieldDate)
				So(res.Unresolved, ShouldContain, model.SpinAxis.String())
			})
		})
	})
}

func TestCheck(t *testing.T) {
	Convey("Given the default resolver", t, func() {
		r := columns.NewResolver()

		Convey("When no date-like column exists", func() {
			_, err := r.Check([]string{"Pitch Type", "Velocity"})

			Convey("Then a schema error names date and lists the headers", func() {
				So(errors.Is(err, columns.ErrSchema), ShouldBeTrue)
				var se *columns.SchemaError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Missing, ShouldResemble, []string{"date"})
				So(se.Observed, ShouldResemble, []string{"Pitch Type", "Velocity"})
				So(err.Error(), ShouldContainSubstring, "date")
			})
		})

		Convey("When required fields are present", func() {
			res, err := r.Check([]string{"Date", "Pitch Type"})

			Convey("Then no error is returned", func() {
				So(err, ShouldBeNil)
				So(len(res.Mapping), ShouldEqual, 2)
			})
		})

		Convey("When only date is required", func() {
			r := columns.NewResolver(columns.WithRequired(columns.FieldDate))
			_, err := r.Check([]string{"Date"})

			Convey("Then a missing category is tolerated", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestOverrides(t *testing.T) {
	Convey("Given alias overrides", t, func() {
		r := columns.NewResolver(columns.WithOverrides(map[string][]string{
			model.Velocity.String(): {"Ball Speed"},
		}))

		Convey("When resolving a header set", func() {
			res := r.Resolve([]string{"Date", "Pitch Type", "Velocity", "Ball Speed"})

			Convey("Then only the overridden alias is used", func() {
				i, ok := res.Index(model.Velocity.String())
				So(ok, ShouldBeTrue)
				So(i, ShouldEqual, 3)
			})
		})

		Convey("Then the default table is left untouched", func() {
			So(columns.DefaultAliases()[2].Aliases[0], ShouldEqual, "Velocity")
			So(r.Table().Fields()[0], ShouldEqual, columns.FieldDate)
		})
	})
}
