package model_test

import (
	"encoding/json"
	"testing"
	"time"

	model "github.com/okian/pitchtrack/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestMeasure(t *testing.T) {
	convey.Convey("Given the canonical measures", t, func() {
		convey.Convey("Then names round-trip through ParseMeasure", func() {
			for _, m := range model.Measures() {
				got, ok := model.ParseMeasure(m.String())
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got, convey.ShouldEqual, m)
			}
		})

		convey.Convey("Then unknown names are rejected", func() {
			_, ok := model.ParseMeasure("spin_rate")
			convey.So(ok, convey.ShouldBeFalse)
			convey.So(model.Measure(99).String(), convey.ShouldEqual, "unknown")
		})
	})
}

func TestValue(t *testing.T) {
	convey.Convey("Given optional values", t, func() {
		convey.Convey("Then two missing values are equal", func() {
			convey.So(model.Missing().Equal(model.Missing()), convey.ShouldBeTrue)
		})

		convey.Convey("Then missing differs from zero", func() {
			convey.So(model.Missing().Equal(model.Some(0)), convey.ShouldBeFalse)
		})

		convey.Convey("Then Ptr is nil only when missing", func() {
			convey.So(model.Missing().Ptr(), convey.ShouldBeNil)
			convey.So(*model.Some(2.5).Ptr(), convey.ShouldEqual, 2.5)
		})
	})
}

func TestObservationJSON(t *testing.T) {
	convey.Convey("Given an observation with one missing measure", t, func() {
		obs := model.Observation{
			Date:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			Category: "Slider",
		}
		obs.Set(model.TotalSpin, model.Some(2000))

		convey.Convey("When it is marshaled", func() {
			data, err := json.Marshal(obs)
			convey.So(err, convey.ShouldBeNil)

			var flat map[string]any
			convey.So(json.Unmarshal(data, &flat), convey.ShouldBeNil)

			convey.Convey("Then missing measures are null and present ones are numbers", func() {
				convey.So(flat["date"], convey.ShouldEqual, "2024-05-01")
				convey.So(flat["category"], convey.ShouldEqual, "Slider")
				convey.So(flat["velocity"], convey.ShouldBeNil)
				convey.So(flat["total_spin"], convey.ShouldEqual, 2000.0)
			})

			convey.Convey("Then it can be read back", func() {
				var back model.Observation
				convey.So(json.Unmarshal(data, &back), convey.ShouldBeNil)
				convey.So(back, convey.ShouldResemble, obs)
			})
		})
	})
}

func TestSchema(t *testing.T) {
	convey.Convey("Given two schemas", t, func() {
		a := model.SchemaOf(model.Velocity)
		b := model.SchemaOf(model.TotalSpin, model.Velocity)

		convey.Convey("Then the union lists measures in schema order", func() {
			convey.So(a.Union(b).Names(), convey.ShouldResemble, []string{"velocity", "total_spin"})
		})
	})
}
