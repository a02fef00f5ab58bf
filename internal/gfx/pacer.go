package gfx

import "time"

// DefaultRefreshRate is used when the display refresh rate is unknown.
const DefaultRefreshRate = 60.0

// Pacer spaces presentations a whole number of refresh periods apart.
// An interval of zero disables waiting.
type Pacer struct {
	period   time.Duration
	interval int
	last     time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewPacer creates a pacer for a display refreshing at hz. Non-positive
// rates fall back to DefaultRefreshRate.
func NewPacer(hz float64) *Pacer {
	if hz <= 0 {
		hz = DefaultRefreshRate
	}
	return &Pacer{
		period: time.Duration(float64(time.Second) / hz),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Period returns the length of one refresh period.
func (p *Pacer) Period() time.Duration { return p.period }

// SetInterval sets the number of refresh periods between presentations.
func (p *Pacer) SetInterval(n int) {
	if n < 0 {
		n = 0
	}
	p.interval = n
}

// Interval returns the current swap interval.
func (p *Pacer) Interval() int { return p.interval }

// Wait blocks until the next presentation slot and records it as used.
func (p *Pacer) Wait() {
	now := p.now()
	if p.interval > 0 && !p.last.IsZero() {
		next := p.last.Add(time.Duration(p.interval) * p.period)
		if d := next.Sub(now); d > 0 {
			p.sleep(d)
			now = next
		}
	}
	p.last = now
}
