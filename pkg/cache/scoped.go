package cache

// ScopedKeyer wraps a Keyer with a prefix so that several processes or
// projects can share one backend without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "project:ring-filter:")
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

// RouteKey generates a prefixed key for a routing result.
func (k *ScopedKeyer) RouteKey(requestHash, obstaclesHash string, opts RouteKeyOpts) string {
	return k.prefix + k.inner.RouteKey(requestHash, obstaclesHash, opts)
}

// DiagramKey generates a prefixed key for a rendered diagram.
func (k *ScopedKeyer) DiagramKey(designHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(designHash, opts)
}
