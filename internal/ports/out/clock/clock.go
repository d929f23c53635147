package clock

import "time"

// Clock is the source of "now" for services and adapters.
type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// System reports wall-clock time in UTC.
var System Clock = Func(func() time.Time { return time.Now().UTC() })

// Today returns the UTC calendar day of c.Now().
func Today(c Clock) time.Time {
	y, m, d := c.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
