package providers

import "github.com/facebookgo/clock"

// NewClockProvider returns the real clock. Tests construct services with
// clock.NewMock() instead.
func NewClockProvider() clock.Clock {
	return clock.New()
}
