package memory

import "time"

// Options controls expiration defaults and background maintenance.
type Options struct {
	// DefaultWindow is the sliding window applied when a Set carries a zero
	// expiration.
	DefaultWindow time.Duration

	// SweepInterval is how often the background sweep reclaims expired
	// entries. Zero or negative disables the sweep; lazy expiry on access
	// still applies.
	SweepInterval time.Duration

	// OnEvict, when set, runs after an entry is removed because its deadline
	// passed (by the sweep or lazily on access). It does not run for explicit
	// deletes. The callback executes outside the store's lock, so it may call
	// back into the store.
	OnEvict func(key string)
}

func (o Options) withDefaults() Options {
	if o.DefaultWindow <= 0 {
		o.DefaultWindow = 20 * time.Minute
	}
	if o.SweepInterval < 0 {
		o.SweepInterval = 0
	}
	return o
}
