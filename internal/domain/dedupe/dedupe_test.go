package dedupe_test

import (
	"testing"
	"time"

	"github.com/okian/pitchtrack/internal/domain/dedupe"
	"github.com/okian/pitchtrack/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func obs(day int, cat string, velo model.Value) model.Observation {
	o := model.Observation{Date: time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC), Category: cat}
	o.Set(model.Velocity, velo)
	return o
}

func TestKey(t *testing.T) {
	Convey("Given observations under a velocity schema", t, func() {
		schema := model.SchemaOf(model.Velocity)

		Convey("Then equal fields give equal keys", func() {
			So(dedupe.Key(obs(1, "FB", model.Some(145)), schema), ShouldEqual, dedupe.Key(obs(1, "FB", model.Some(145)), schema))
		})

		Convey("Then two missing values are equal", func() {
			So(dedupe.Key(obs(1, "FB", model.Missing()), schema), ShouldEqual, dedupe.Key(obs(1, "FB", model.Missing()), schema))
		})

		Convey("Then missing differs from zero", func() {
			So(dedupe.Key(obs(1, "FB", model.Missing()), schema), ShouldNotEqual, dedupe.Key(obs(1, "FB", model.Some(0)), schema))
		})

		Convey("Then date and category take part", func() {
			So(dedupe.Key(obs(1, "FB", model.Some(1)), schema), ShouldNotEqual, dedupe.Key(obs(2, "FB", model.Some(1)), schema))
			So(dedupe.Key(obs(1, "FB", model.Some(1)), schema), ShouldNotEqual, dedupe.Key(obs(1, "SL", model.Some(1)), schema))
		})

		Convey("Then measures outside the schema are ignored", func() {
			a := obs(1, "FB", model.Some(1))
			b := obs(1, "FB", model.Some(1))
			b.Set(model.TotalSpin, model.Some(2000))
			So(dedupe.Key(a, schema), ShouldEqual, dedupe.Key(b, schema))
		})
	})
}

func TestUnique(t *testing.T) {
	Convey("Given a batch with repeated observations", t, func() {
		b := model.Batch{
			Schema: model.SchemaOf(model.Velocity),
			Observations: []model.Observation{
				obs(1, "FB", model.Some(145)),
				obs(1, "SL", model.Missing()),
				obs(1, "FB", model.Some(145)),
				obs(1, "SL", model.Missing()),
			},
		}

		out, dropped := dedupe.Unique(b)

		Convey("Then the first occurrences are kept in order", func() {
			So(out.Schema, ShouldResemble, b.Schema)
			So(dropped, ShouldEqual, 2)
			So(out.Len(), ShouldEqual, 2)
			So(out.Observations[0].Category, ShouldEqual, "FB")
			So(out.Observations[1].Category, ShouldEqual, "SL")
		})
	})
}
