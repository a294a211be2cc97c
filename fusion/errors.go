package fusion

import "fmt"

// ConfigError is returned when an observer is constructed with an invalid
// configuration. No mutable observer memory is allocated before the
// configuration passes validation.
type ConfigError struct {
	msg string
}

func newConfigErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	return e.msg
}

// ShapeError is returned when a per-step input vector does not match the
// channel count fixed at construction. The observer's memory is left
// untouched when a ShapeError is returned.
type ShapeError struct {
	Expected int
	Got      int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("input vector length mismatch: expected %d, got %d", e.Expected, e.Got)
}
