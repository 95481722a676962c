package accumulate

import "github.com/okian/pitchtrack/pkg/logger"

// Option applies a configuration option to the Accumulator.
type Option func(*Accumulator)

// WithLogger sets the logger used for replace events.
func WithLogger(l logger.Logger) Option {
	return func(a *Accumulator) {
		a.log = l
	}
}
