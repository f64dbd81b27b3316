package kernel

import (
	"sync/atomic"

	"candycane/kbd"
)

const mailboxSlots = 64

// Mailbox is a fixed-size single-producer, single-consumer queue carrying
// keyboard echoes from the interrupt handler to the main loop. It never
// allocates or blocks; a full mailbox drops the record and counts it.
type Mailbox struct {
	_       [0]func() // prevent accidental copying.
	head    atomic.Uint32
	tail    atomic.Uint32
	dropped atomic.Uint32
	slots   [mailboxSlots]kbd.Echo
}

// TrySend enqueues e, returning false if the mailbox is full.
func (mb *Mailbox) TrySend(e kbd.Echo) bool {
	head := mb.head.Load()
	tail := mb.tail.Load()
	if head-tail >= mailboxSlots {
		mb.dropped.Add(1)
		return false
	}

	mb.slots[head%mailboxSlots] = e
	mb.head.Store(head + 1)
	return true
}

// TryRecv dequeues one record, returning false if empty.
func (mb *Mailbox) TryRecv() (kbd.Echo, bool) {
	tail := mb.tail.Load()
	head := mb.head.Load()
	if tail == head {
		return kbd.Echo{}, false
	}

	e := mb.slots[tail%mailboxSlots]
	mb.tail.Store(tail + 1)
	return e, true
}

// Len returns the number of queued records.
func (mb *Mailbox) Len() int {
	return int(mb.head.Load() - mb.tail.Load())
}

// Dropped returns how many records were lost to a full mailbox.
func (mb *Mailbox) Dropped() uint32 {
	return mb.dropped.Load()
}
