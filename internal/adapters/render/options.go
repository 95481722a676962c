package render

// Default image size in pixels.
const (
	DefaultWidth  = 1240
	DefaultHeight = 1754
)

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithSize sets the PNG dimensions; non-positive values keep the default.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}
