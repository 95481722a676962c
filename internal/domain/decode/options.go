package decode

// Option applies a configuration option to the Decoder.
type Option func(*Decoder)

// WithCandidates replaces the ordered candidate list.
func WithCandidates(candidates ...Candidate) Option {
	return func(d *Decoder) {
		if len(candidates) > 0 {
			d.candidates = candidates
		}
	}
}
