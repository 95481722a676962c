// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"math"
	"time"
)

// DateLayout is the canonical textual form of an observation date.
const DateLayout = "2006-01-02"

// Measure identifies one optional numeric field of an observation.
type Measure int

// Canonical measures, in schema order.
const (
	Velocity Measure = iota
	TotalSpin
	TrueSpin
	SpinEfficiency
	VerticalBreak
	HorizontalBreak
	SpinAxis
	Strike

	measureCount
)

var measureNames = [measureCount]string{
	Velocity:        "velocity",
	TotalSpin:       "total_spin",
	TrueSpin:        "true_spin",
	SpinEfficiency:  "spin_efficiency",
	VerticalBreak:   "vertical_break",
	HorizontalBreak: "horizontal_break",
	SpinAxis:        "spin_axis",
	Strike:          "strike",
}

// Measures returns every canonical measure in schema order.
func Measures() []Measure {
	out := make([]Measure, measureCount)
	for i := range out {
		out[i] = Measure(i)
	}
	return out
}

// String returns the canonical field name.
func (m Measure) String() string {
	if m < 0 || m >= measureCount {
		return "unknown"
	}
	return measureNames[m]
}

// Valid reports whether m is a known measure.
func (m Measure) Valid() bool { return m >= 0 && m < measureCount }

// ParseMeasure maps a canonical field name back to its Measure.
func ParseMeasure(name string) (Measure, bool) {
	for i, n := range measureNames {
		if n == name {
			return Measure(i), true
		}
	}
	return 0, false
}

// Value is an optional float. The zero Value is missing.
type Value struct {
	Float float64
	Valid bool
}

// Some returns a present value.
func Some(v float64) Value { return Value{Float: v, Valid: true} }

// Missing returns an absent value.
func Missing() Value { return Value{} }

// Equal compares two values; two missing values are equal.
func (v Value) Equal(o Value) bool {
	if v.Valid != o.Valid {
		return false
	}
	return !v.Valid || v.Float == o.Float
}

// Ptr returns nil for a missing value.
func (v Value) Ptr() *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float
	return &f
}

// FromPtr is the inverse of Ptr.
func FromPtr(p *float64) Value {
	if p == nil || math.IsNaN(*p) {
		return Missing()
	}
	return Some(*p)
}

// Observation is one normalized pitch measurement.
type Observation struct {
	Date     time.Time // calendar date at UTC midnight
	Category string    // pitch type, trimmed
	Values   [measureCount]Value
}

// Get returns the value of measure m.
func (o Observation) Get(m Measure) Value {
	if !m.Valid() {
		return Missing()
	}
	return o.Values[m]
}

// Set assigns the value of measure m.
func (o *Observation) Set(m Measure, v Value) {
	if m.Valid() {
		o.Values[m] = v
	}
}

// DateString formats the observation date.
func (o Observation) DateString() string { return o.Date.Format(DateLayout) }

// MarshalJSON writes a flat object with one key per measure; missing values are null.
func (o Observation) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, int(measureCount)+2)
	out["date"] = o.DateString()
	out["category"] = o.Category
	for _, m := range Measures() {
		out[m.String()] = o.Values[m].Ptr()
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the shape produced by MarshalJSON.
func (o *Observation) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var date string
	if err := json.Unmarshal(raw["date"], &date); err != nil {
		return err
	}
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return err
	}
	*o = Observation{Date: d}
	if c, ok := raw["category"]; ok {
		if err := json.Unmarshal(c, &o.Category); err != nil {
			return err
		}
	}
	for _, m := range Measures() {
		v, ok := raw[m.String()]
		if !ok {
			continue
		}
		var p *float64
		if err := json.Unmarshal(v, &p); err != nil {
			return err
		}
		o.Values[m] = FromPtr(p)
	}
	return nil
}

// Date truncates t to a calendar date at UTC midnight.
func Date(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
