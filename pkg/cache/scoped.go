package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments or
// tenants can share one Redis instance without seeing each other's
// entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// SweepKey generates a prefixed key for sweep caching.
func (k *ScopedKeyer) SweepKey(graphSpec string, opts SweepKeyOpts) string {
	return k.prefix + k.inner.SweepKey(graphSpec, opts)
}
