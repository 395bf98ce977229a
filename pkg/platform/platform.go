package platform

import (
	"runtime"
	"sync"
	"time"
)

// Ticks is a duration in scheduler ticks.
type Ticks uint32

// MaxDelay blocks without timeout.
const MaxDelay Ticks = ^Ticks(0)

// Thread defaults expected by the protocol stack.
const (
	IdlePriority           int32 = 0
	MaxPriorities          int32 = 25
	DefaultThreadPriority        = IdlePriority + 5
	DefaultThreadStackSize       = 2048
	// DefaultTickPeriod matches a 100Hz tick.
	DefaultTickPeriod = 10 * time.Millisecond
)

// Platform bundles the resources shared by all primitives it creates.
// The zero value is usable and equivalent to New().
type Platform struct {
	Heap       Allocator
	Scheduler  Scheduler
	TickPeriod time.Duration
	// MaxMutexes limits the mutex storage, 0 for unlimited.
	MaxMutexes int

	lock    sync.Mutex
	mutexes int
}

var (
	defaultHeap      = &Heap{}
	defaultScheduler = &TaskPool{}
)

// New creates a Platform with an unbounded heap and task pool.
func New() *Platform {
	return &Platform{
		Heap:       &Heap{},
		Scheduler:  &TaskPool{},
		TickPeriod: DefaultTickPeriod,
	}
}

func (p *Platform) heap() Allocator {
	if p.Heap != nil {
		return p.Heap
	}
	return defaultHeap
}

func (p *Platform) scheduler() Scheduler {
	if p.Scheduler != nil {
		return p.Scheduler
	}
	return defaultScheduler
}

func (p *Platform) tickPeriod() time.Duration {
	if p.TickPeriod >= time.Millisecond {
		return p.TickPeriod
	}
	return DefaultTickPeriod
}

// MsToTicks converts milliseconds into ticks, truncating like
// ms / portTICK_PERIOD_MS.
func (p *Platform) MsToTicks(ms uint32) Ticks {
	return Ticks(ms / uint32(p.tickPeriod()/time.Millisecond))
}

// TicksToDuration converts ticks into wall-clock time.
// MaxDelay has no finite duration and returns a negative value.
func (p *Platform) TicksToDuration(t Ticks) time.Duration {
	if t == MaxDelay {
		return -1
	}
	return time.Duration(t) * p.tickPeriod()
}

// Delay blocks the calling goroutine for at least ms milliseconds rounded
// down to whole ticks. A zero-tick delay yields.
func (p *Platform) Delay(ms uint32) {
	ticks := p.MsToTicks(ms)
	if ticks == 0 {
		runtime.Gosched()
		return
	}
	time.Sleep(p.TicksToDuration(ticks))
}

// Malloc allocates from the platform heap.
func (p *Platform) Malloc(size int) ([]byte, error) {
	return p.heap().Malloc(size)
}

// Free returns memory obtained by Malloc.
func (p *Platform) Free(b []byte) {
	p.heap().Free(b)
}

func (p *Platform) reserveMutex() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.MaxMutexes > 0 && p.mutexes >= p.MaxMutexes {
		return false
	}
	p.mutexes++
	return true
}

func (p *Platform) releaseMutex() {
	p.lock.Lock()
	p.mutexes--
	p.lock.Unlock()
}
