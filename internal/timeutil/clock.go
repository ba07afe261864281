package timeutil

import "time"

// Clock supplies "now" to status and report computations so tests can pin it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return Now() }

// System is the wall clock in GST.
var System Clock = systemClock{}

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

// Fixed returns a clock frozen at t.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t.In(GST)}
}
