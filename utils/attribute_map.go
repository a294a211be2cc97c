// Package utils contains small helpers shared across the module.
package utils

import "github.com/spf13/cast"

// AttributeMap is a convenience wrapper around a JSON-ish attribute bag.
// Getters coerce with best effort and fall back to the given default; use
// Has to distinguish a missing key from a zero value.
type AttributeMap map[string]interface{}

// Has returns whether the map contains the given name.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// Float64 returns the attribute as a float64, or def when absent or not
// coercible.
func (am AttributeMap) Float64(name string, def float64) float64 {
	if v, has := am[name]; has {
		if f, err := cast.ToFloat64E(v); err == nil {
			return f
		}
	}
	return def
}

// Int returns the attribute as an int, or def when absent or not
// coercible.
func (am AttributeMap) Int(name string, def int) int {
	if v, has := am[name]; has {
		if i, err := cast.ToIntE(v); err == nil {
			return i
		}
	}
	return def
}

// String returns the attribute as a string, or def when absent or not
// coercible.
func (am AttributeMap) String(name, def string) string {
	if v, has := am[name]; has {
		if s, err := cast.ToStringE(v); err == nil {
			return s
		}
	}
	return def
}

// Bool returns the attribute as a bool, or def when absent or not
// coercible.
func (am AttributeMap) Bool(name string, def bool) bool {
	if v, has := am[name]; has {
		if b, err := cast.ToBoolE(v); err == nil {
			return b
		}
	}
	return def
}
