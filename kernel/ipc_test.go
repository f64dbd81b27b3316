package kernel

import (
	"runtime"
	"sync"
	"testing"

	"candycane/kbd"
)

func TestMailboxTryRecvEmpty(t *testing.T) {
	var mb Mailbox

	_, ok := mb.TryRecv()
	if ok {
		t.Fatalf("TryRecv() ok = true, want false")
	}
}

func TestMailboxTrySendFull(t *testing.T) {
	var mb Mailbox

	for i := 0; i < mailboxSlots; i++ {
		if ok := mb.TrySend(kbd.Echo{Code: uint8(i)}); !ok {
			t.Fatalf("TrySend() ok = false at slot %d, want true", i)
		}
	}
	if ok := mb.TrySend(kbd.Echo{}); ok {
		t.Fatalf("TrySend() ok = true when full, want false")
	}
	if got := mb.Dropped(); got != 1 {
		t.Fatalf("Dropped() = %d, want 1", got)
	}
	if got := mb.Len(); got != mailboxSlots {
		t.Fatalf("Len() = %d, want %d", got, mailboxSlots)
	}

	for i := 0; i < mailboxSlots; i++ {
		e, ok := mb.TryRecv()
		if !ok {
			t.Fatalf("TryRecv() ok = false at slot %d, want true", i)
		}
		if e.Code != uint8(i) {
			t.Fatalf("TryRecv() code = %d at slot %d, want %d", e.Code, i, i)
		}
	}
}

func TestMailboxProducerConsumer(t *testing.T) {
	oldProcs := runtime.GOMAXPROCS(2)
	defer runtime.GOMAXPROCS(oldProcs)

	const total = 10_000

	var mb Mailbox
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			e := kbd.Echo{Code: uint8(i), Special: uint8(i >> 8)}
			for !mb.TrySend(e) {
				runtime.Gosched()
			}
		}
	}()

	for i := 0; i < total; i++ {
		var e kbd.Echo
		for {
			var ok bool
			if e, ok = mb.TryRecv(); ok {
				break
			}
			runtime.Gosched()
		}
		if e.Code != uint8(i) || e.Special != uint8(i>>8) {
			t.Fatalf("TryRecv() = %+v, want record %d in order", e, i)
		}
	}
	wg.Wait()
}
