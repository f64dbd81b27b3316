package hal

import "time"

// PIT channel 0 programming used by the host timer.
const (
	PITFrequency = 1193182 // Hz
	PITDivisor   = 11932
)

// TickDuration is the host timer period: one PIT channel 0 wrap at
// PITDivisor, about 100 Hz.
const TickDuration = time.Second * PITDivisor / PITFrequency

// hostTime models the PIT as a counter fed by wall time. Ticks that the
// kernel has not drained yet are dropped, like a missed IRQ0.
type hostTime struct {
	ch   chan uint64
	seq  uint64
	now  func() time.Time
	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024), now: time.Now}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// step credits the wall time elapsed since the last call. The first call
// only latches the clock and fires boot ticks.
func (t *hostTime) step(boot uint64) {
	now := t.now()
	if t.last.IsZero() {
		t.last = now
		t.fire(boot)
		return
	}
	t.acc += now.Sub(t.last)
	t.last = now
	if n := uint64(t.acc / TickDuration); n > 0 {
		t.acc -= time.Duration(n) * TickDuration
		t.fire(n)
	}
}

func (t *hostTime) fire(n uint64) {
	for ; n > 0; n-- {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}
