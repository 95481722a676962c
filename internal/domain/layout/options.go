package layout

// Option applies a configuration option to the Reader.
type Option func(*Reader)

// WithNameLine sets the 1-indexed line holding the subject name.
func WithNameLine(line int) Option {
	return func(r *Reader) {
		if line > 0 {
			r.nameLine = line
		}
	}
}

// WithHeaderLine sets the 1-indexed header line; data starts on the next line.
func WithHeaderLine(line int) Option {
	return func(r *Reader) {
		if line > 0 {
			r.headerLine = line
		}
	}
}

// WithSniffLines sets how many non-blank lines feed delimiter detection.
func WithSniffLines(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.sniffLines = n
		}
	}
}
