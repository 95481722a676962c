package model

// Schema is the set of measures whose source column was present.
type Schema [measureCount]bool

// SchemaOf builds a schema from a list of measures.
func SchemaOf(ms ...Measure) Schema {
	var s Schema
	for _, m := range ms {
		if m.Valid() {
			s[m] = true
		}
	}
	return s
}

// Has reports whether m is part of the schema.
func (s Schema) Has(m Measure) bool { return m.Valid() && s[m] }

// Union merges two schemas.
func (s Schema) Union(o Schema) Schema {
	for i := range s {
		s[i] = s[i] || o[i]
	}
	return s
}

// Measures lists the present measures in schema order.
func (s Schema) Measures() []Measure {
	var out []Measure
	for i, ok := range s {
		if ok {
			out = append(out, Measure(i))
		}
	}
	return out
}

// Names lists the present measure names in schema order.
func (s Schema) Names() []string {
	ms := s.Measures()
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.String()
	}
	return out
}

// Batch is an ordered set of observations sharing a schema.
type Batch struct {
	Schema       Schema
	Observations []Observation
}

// Len returns the number of observations.
func (b Batch) Len() int { return len(b.Observations) }

// Clone returns a deep copy of the batch.
func (b Batch) Clone() Batch {
	out := Batch{Schema: b.Schema}
	if b.Observations != nil {
		out.Observations = make([]Observation, len(b.Observations))
		copy(out.Observations, b.Observations)
	}
	return out
}

// RawFile is the byte content of one uploaded file.
type RawFile struct {
	Name string
	Data []byte
}
