package clock

import (
	"time"
)

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock is the time source of a booking session. Now is always expressed
// in the booking location so day comparisons use the shop's calendar.
type Clock interface {
	Now() time.Time
	Location() *time.Location
	NewTicker(d time.Duration) Ticker
}

type realClock struct {
	loc *time.Location
}

// New returns the wall clock in loc (UTC when loc is nil).
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return realClock{loc: loc}
}

func (c realClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c realClock) Location() *time.Location { return c.loc }

func (c realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (t *realTicker) C() <-chan time.Time { return t.t.C }
func (t *realTicker) Stop()               { t.t.Stop() }
