package event

// BusOption configures a Bus.
type BusOption func(*busConfig)

type busConfig struct {
	// panicHandler is called with every recovered handler panic.
	panicHandler func(*PanicError)
}

// WithPanicHandler sets a callback for recovered handler panics.
func WithPanicHandler(h func(*PanicError)) BusOption {
	return func(c *busConfig) {
		c.panicHandler = h
	}
}
