package printer

import "sync"

// Locked shares one Printer between goroutines. Each call to Do has the
// printer to itself, so a job made of several operations isn't interleaved
// with anyone else's.
type Locked struct {
	mu sync.Mutex
	p  *Printer
}

func NewLocked(p *Printer) *Locked {
	return &Locked{p: p}
}

func (l *Locked) Do(f func(p *Printer) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return f(l.p)
}

// Snapshot reads the state and counters together, between jobs
func (l *Locked) Snapshot() (State, Stats) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.State(), l.p.Stats()
}
