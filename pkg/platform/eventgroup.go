package platform

import (
	"sync"
	"time"
)

// EventBits is a set of event flags. The top 8 bits are reserved.
type EventBits uint32

// EventBitsMask covers the usable bits.
const EventBitsMask EventBits = 0x00ffffff

const eventGroupRecordSize = 32

// EventGroup lets tasks wait for combinations of flags.
type EventGroup struct {
	platform *Platform
	record   []byte

	lock    sync.Mutex
	bits    EventBits
	changed chan struct{}
	deleted bool
}

// CreateEventGroup allocates an event group from the platform heap.
func (p *Platform) CreateEventGroup() (*EventGroup, error) {
	record, err := p.heap().Malloc(eventGroupRecordSize)
	if err != nil {
		return nil, err
	}
	return &EventGroup{
		platform: p,
		record:   record,
		changed:  make(chan struct{}),
	}, nil
}

// Delete frees the group. Blocked waiters return with the current bits.
func (g *EventGroup) Delete() {
	g.lock.Lock()
	if g.deleted {
		g.lock.Unlock()
		return
	}
	g.deleted = true
	g.notifyLocked()
	g.lock.Unlock()
	g.platform.heap().Free(g.record)
}

// GetBits returns the current bits.
func (g *EventGroup) GetBits() EventBits {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.bits
}

// SetBits sets bits and returns the resulting value.
func (g *EventGroup) SetBits(bits EventBits) EventBits {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.bits |= bits & EventBitsMask
	g.notifyLocked()
	return g.bits
}

// SetBitsFromISR sets bits without blocking. It always succeeds.
func (g *EventGroup) SetBitsFromISR(bits EventBits) bool {
	g.SetBits(bits)
	return true
}

// ClearBits clears bits and returns the value before clearing.
func (g *EventGroup) ClearBits(bits EventBits) EventBits {
	g.lock.Lock()
	defer g.lock.Unlock()
	prev := g.bits
	g.bits &^= bits
	return prev
}

// WaitBits blocks until any (or all, with waitForAll) of bits are set or
// timeout expires. It returns the bits at the moment the wait ended; when the
// condition was met and clearOnExit is set the waited bits are cleared.
func (g *EventGroup) WaitBits(bits EventBits, clearOnExit, waitForAll bool, timeout Ticks) EventBits {
	var expired <-chan time.Time
	if timeout != 0 && timeout != MaxDelay {
		timer := time.NewTimer(g.platform.TicksToDuration(timeout))
		defer timer.Stop()
		expired = timer.C
	}
	for {
		g.lock.Lock()
		cur := g.bits
		if satisfied(cur, bits, waitForAll) {
			if clearOnExit {
				g.bits &^= bits
			}
			g.lock.Unlock()
			return cur
		}
		if g.deleted || timeout == 0 {
			g.lock.Unlock()
			return cur
		}
		changed := g.changed
		g.lock.Unlock()

		select {
		case <-changed:
		case <-expired:
			return g.GetBits()
		}
	}
}

func (g *EventGroup) notifyLocked() {
	close(g.changed)
	g.changed = make(chan struct{})
}

func satisfied(cur, bits EventBits, all bool) bool {
	if all {
		return cur&bits == bits
	}
	return cur&bits != 0
}
