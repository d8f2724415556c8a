package governance

import "time"

// Clock supplies the engine's notion of now. The engine only ever reads
// whole seconds from it, matching the chain timestamp granularity.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// ManualClock is a settable clock for tests and replays.
type ManualClock struct {
	current time.Time
}

func NewManualClock(at time.Time) *ManualClock {
	return &ManualClock{current: at}
}

func (c *ManualClock) Now() time.Time { return c.current }

func (c *ManualClock) Set(at time.Time) { c.current = at }

func (c *ManualClock) Advance(d time.Duration) { c.current = c.current.Add(d) }
