package aggregate

import "time"

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithFastballKeywords replaces the fastball keyword list.
func WithFastballKeywords(keywords ...string) Option {
	return func(c *Calculator) {
		if len(keywords) > 0 {
			c.fastball = keywords
		}
	}
}

// WithClock sets the clock used when a batch has no dates.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}
