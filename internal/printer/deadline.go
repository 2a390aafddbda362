package printer

import "time"

// Clock is the time source the deadline gate waits on
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock is the wall clock, time.Now carries a monotonic reading so
// deadlines are unaffected by wall clock adjustments.
var SystemClock Clock = systemClock{}

// deadlineGate holds the single estimated time at which the device will
// have finished with everything sent so far. There is no flow control on
// the link, so this estimate is the only thing stopping the host from
// overrunning the printer's buffer.
type deadlineGate struct {
	clock    Clock
	resumeAt time.Time
}

func newDeadlineGate(c Clock) *deadlineGate {
	return &deadlineGate{clock: c, resumeAt: c.Now()}
}

// set replaces the deadline with now + d. Deadlines are not queued or
// summed, callers pass the full estimate for what they just sent. A
// deadline never moves earlier than one already pending.
func (g *deadlineGate) set(d time.Duration) {
	if next := g.clock.Now().Add(d); next.After(g.resumeAt) {
		g.resumeAt = next
	}
}

// wait blocks until the deadline has passed. There's no timeout, nothing
// comes back from the device that would tell us it's stuck.
func (g *deadlineGate) wait() {
	for {
		remaining := g.resumeAt.Sub(g.clock.Now())
		if remaining <= 0 {
			return
		}
		g.clock.Sleep(remaining)
	}
}
