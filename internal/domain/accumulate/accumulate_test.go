package accumulate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/pitchtrack/internal/domain/accumulate"
	"github.com/okian/pitchtrack/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// mockStore keeps batches in a map and can be told to fail.
type mockStore struct {
	data       map[string]model.Batch
	replaces   int
	loadErr    error
	replaceErr error
}

func newMockStore() *mockStore { return &mockStore{data: map[string]model.Batch{}} }

func (m *mockStore) Load(_ context.Context, key string) (model.Batch, error) {
	if m.loadErr != nil {
		return model.Batch{}, m.loadErr
	}
	b, ok := m.data[key]
	if !ok {
		return model.Batch{}, accumulate.ErrNotFound
	}
	return b.Clone(), nil
}

func (m *mockStore) Replace(_ context.Context, key string, b model.Batch) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replaces++
	m.data[key] = b.Clone()
	return nil
}

func pitch(day int, cat string, velo, spin model.Value) model.Observation {
	o := model.Observation{Date: time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC), Category: cat}
	o.Set(model.Velocity, velo)
	o.Set(model.TotalSpin, spin)
	return o
}

func batch(obs ...model.Observation) model.Batch {
	return model.Batch{Schema: model.SchemaOf(model.Velocity, model.TotalSpin), Observations: obs}
}

func TestAppend(t *testing.T) {
	Convey("Given an accumulator over an empty store", t, func() {
		ctx := context.Background()
		store := newMockStore()
		acc := accumulate.New(store)

		x := batch(
			pitch(1, "Fastball", model.Some(145.2), model.Some(2200)),
			pitch(1, "Slider", model.Missing(), model.Some(2000)),
		)

		Convey("When a batch is appended once", func() {
			res, err := acc.Append(ctx, "k", x)

			Convey("Then the store holds the batch and reports rows added", func() {
				So(err, ShouldBeNil)
				So(res.Previous, ShouldEqual, 0)
				So(res.Added, ShouldEqual, 2)
				So(store.data["k"].Len(), ShouldEqual, 2)
			})
		})

		Convey("When the same batch is appended twice", func() {
			_, err := acc.Append(ctx, "k", x)
			So(err, ShouldBeNil)
			once := store.data["k"].Clone()
			res, err := acc.Append(ctx, "k", x)

			Convey("Then the store is unchanged and nothing is added", func() {
				So(err, ShouldBeNil)
				So(res.Added, ShouldEqual, 0)
				So(res.Duplicates, ShouldEqual, 2)
				So(store.data["k"], ShouldResemble, once)
				So(store.replaces, ShouldEqual, 1)
			})
		})

		Convey("When two uploads overlap by one row", func() {
			y := batch(
				pitch(1, "Slider", model.Missing(), model.Some(2000)),
				pitch(2, "Curve", model.Some(120), model.Some(2500)),
			)
			_, err := acc.Append(ctx, "k", x)
			So(err, ShouldBeNil)
			res, err := acc.Append(ctx, "k", y)

			Convey("Then the store holds the union minus the overlap in order", func() {
				So(err, ShouldBeNil)
				So(res.Added, ShouldEqual, 1)
				got := store.data["k"].Observations
				So(len(got), ShouldEqual, 3)
				So(got[0].Category, ShouldEqual, "Fastball")
				So(got[1].Category, ShouldEqual, "Slider")
				So(got[2].Category, ShouldEqual, "Curve")
			})
		})

		Convey("When the incoming batch repeats a row internally", func() {
			dup := batch(
				pitch(3, "Fastball", model.Some(140), model.Missing()),
				pitch(3, "Fastball", model.Some(140), model.Missing()),
			)
			res, err := acc.Append(ctx, "k", dup)

			Convey("Then only the first occurrence is kept", func() {
				So(err, ShouldBeNil)
				So(res.Added, ShouldEqual, 1)
				So(res.Duplicates, ShouldEqual, 1)
			})
		})

		Convey("When an empty batch is appended to an unknown key", func() {
			res, err := acc.Append(ctx, "empty", model.Batch{})

			Convey("Then no store unit is created", func() {
				So(err, ShouldBeNil)
				So(res.Added, ShouldEqual, 0)
				_, ok := store.data["empty"]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a later batch brings a new measure", func() {
			_, err := acc.Append(ctx, "k", x)
			So(err, ShouldBeNil)
			o := pitch(4, "Fastball", model.Some(147), model.Some(2300))
			o.Set(model.SpinAxis, model.Some(210))
			extra := model.Batch{Schema: model.SchemaOf(model.Velocity, model.TotalSpin, model.SpinAxis), Observations: []model.Observation{o}}
			res, err := acc.Append(ctx, "k", extra)

			Convey("Then the stored schema is the union", func() {
				So(err, ShouldBeNil)
				So(res.Batch.Schema.Has(model.SpinAxis), ShouldBeTrue)
				So(store.data["k"].Observations[0].Get(model.SpinAxis).Valid, ShouldBeFalse)
			})
		})

		Convey("When the key is blank", func() {
			_, err := acc.Append(ctx, " ", x)

			Convey("Then ErrInvalidKey is returned", func() {
				So(errors.Is(err, accumulate.ErrInvalidKey), ShouldBeTrue)
			})
		})
	})

	Convey("Given a failing store", t, func() {
		ctx := context.Background()
		boom := errors.New("disk full")

		Convey("When Replace fails", func() {
			store := newMockStore()
			store.replaceErr = boom
			_, err := accumulate.New(store).Append(ctx, "k", batch(pitch(1, "FB", model.Some(1), model.Some(1))))

			Convey("Then the error is a storage error wrapping the cause", func() {
				So(errors.Is(err, accumulate.ErrStorage), ShouldBeTrue)
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})

		Convey("When Load fails", func() {
			store := newMockStore()
			store.loadErr = boom
			_, err := accumulate.New(store).Append(ctx, "k", batch())

			Convey("Then the error is a storage error", func() {
				So(errors.Is(err, accumulate.ErrStorage), ShouldBeTrue)
			})
		})
	})
}
