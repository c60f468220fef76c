package docs

// Option configures a Journal or a Store.
type Option func(*options)

type options struct {
	ids IDGenerator
}

func defaultOptions() options {
	return options{ids: UUIDv7Generator{}}
}

// WithIDGenerator overrides how record IDs are generated.
// Tests use testutil.FixedIDGenerator for deterministic output.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.ids = g
		}
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
