// Package clock lets services read the current time through an interface so
// that code generation can be pinned to a fixed instant in tests.
package clock

import "time"

// Clock abstracts time.Now.
type Clock interface {
	Now() time.Time
}

// System is the production Clock.
type System struct{}

// New returns the system clock.
func New() *System {
	return &System{}
}

func (*System) Now() time.Time {
	return time.Now()
}

// Fixed is a Clock that always returns the same instant.
type Fixed struct {
	At time.Time
}

// NewFixed returns a Clock frozen at the given unix time.
func NewFixed(unix int64) *Fixed {
	return &Fixed{At: time.Unix(unix, 0).UTC()}
}

func (f *Fixed) Now() time.Time {
	return f.At
}
