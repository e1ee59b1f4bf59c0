package cache

// ScopedKeyer prefixes every key from an inner Keyer. The Redis backend is
// shared between deployments, so each one scopes its keys, e.g.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "pipgrid:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// DecodeKey returns the prefixed decode key.
func (k *ScopedKeyer) DecodeKey(token string) string {
	return k.prefix + k.inner.DecodeKey(token)
}

// LayoutKey returns the prefixed layout key.
func (k *ScopedKeyer) LayoutKey(token string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(token, opts)
}
