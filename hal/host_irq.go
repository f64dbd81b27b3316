package hal

import "sync"

// hostIRQ emulates the interrupt controller. The gate mutex stands in for
// the CPU interrupt flag: a handler runs with it held, so main-flow code
// holding it cannot be preempted by one.
type hostIRQ struct {
	gate sync.Mutex
	line <-chan uint8

	mu    sync.Mutex
	kbd   func(uint8)
	start sync.Once
}

func newHostIRQ(line <-chan uint8) *hostIRQ {
	return &hostIRQ{line: line}
}

func (q *hostIRQ) Gate() sync.Locker { return &q.gate }

func (q *hostIRQ) HandleKeyboard(fn func(scanCode uint8)) {
	q.mu.Lock()
	q.kbd = fn
	q.mu.Unlock()
	q.start.Do(func() { go q.dispatch() })
}

func (q *hostIRQ) dispatch() {
	for code := range q.line {
		q.mu.Lock()
		fn := q.kbd
		q.mu.Unlock()
		if fn == nil {
			continue
		}
		q.gate.Lock()
		fn(code)
		q.gate.Unlock()
	}
}
