package normalize

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithSentinels replaces the tokens treated as missing values.
func WithSentinels(tokens ...string) Option {
	return func(n *Normalizer) {
		if len(tokens) > 0 {
			n.setSentinels(tokens)
		}
	}
}

// WithDateLayouts replaces the ordered date layouts.
func WithDateLayouts(layouts ...string) Option {
	return func(n *Normalizer) {
		if len(layouts) > 0 {
			n.layouts = layouts
		}
	}
}
