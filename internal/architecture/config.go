package architecture

import (
	"maps"
	"slices"
)

// Config is the open parameter map of a component.
type Config map[string]Value

// Get returns the value stored under key.
func (c Config) Get(key string) (Value, bool) {
	v, ok := c[key]
	return v, ok
}

// String returns the canonical string form of key, or "" when absent.
func (c Config) String(key string) string {
	if v, ok := c[key]; ok {
		return v.AsString()
	}
	return ""
}

// Bool reports whether key is present and truthy.
func (c Config) Bool(key string) bool {
	v, ok := c[key]
	return ok && v.Truthy()
}

// Clone returns a shallow copy; values are immutable.
func (c Config) Clone() Config {
	if c == nil {
		return Config{}
	}
	return maps.Clone(c)
}

// Merge returns a copy of c overlaid with updates.
func (c Config) Merge(updates Config) Config {
	out := c.Clone()
	maps.Copy(out, updates)
	return out
}

// Keys returns the keys in sorted order.
func (c Config) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}
