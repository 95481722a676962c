package columns

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithAliases replaces the alias table.
func WithAliases(t AliasTable) Option {
	return func(r *Resolver) {
		if len(t) > 0 {
			r.table = t
		}
	}
}

// WithOverrides replaces the aliases of individual fields.
func WithOverrides(overrides map[string][]string) Option {
	return func(r *Resolver) {
		if len(overrides) > 0 {
			r.table = r.table.Override(overrides)
		}
	}
}

// WithRequired sets the fields that must resolve.
func WithRequired(fields ...string) Option {
	return func(r *Resolver) {
		r.required = append([]string(nil), fields...)
	}
}
