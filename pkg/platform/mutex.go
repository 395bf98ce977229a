package platform

import "sync/atomic"

// Mutex is a mutual exclusion lock which is either recursive or exclusive.
// The kind is fixed at creation.
//
// A recursive Mutex may be locked repeatedly by the goroutine holding it and
// must be unlocked the same number of times. Locking an exclusive Mutex twice
// from the same goroutine deadlocks. Misuse is not detected.
type Mutex struct {
	recursive bool
	sem       chan struct{}
	owner     uint64 // goroutine holding a recursive mutex
	depth     int    // only accessed by owner
	destroyed int32
	platform  *Platform
}

// NewMutex creates a Mutex from the platform mutex storage.
func (p *Platform) NewMutex(recursive bool) (*Mutex, error) {
	if !p.reserveMutex() {
		return nil, ErrCreationFailed
	}
	return &Mutex{
		recursive: recursive,
		sem:       make(chan struct{}, 1),
		platform:  p,
	}, nil
}

// Recursive reports whether the mutex was created recursive.
func (m *Mutex) Recursive() bool {
	return m.recursive
}

// Destroy releases the storage. No goroutine may hold or wait on the mutex.
func (m *Mutex) Destroy() {
	if atomic.CompareAndSwapInt32(&m.destroyed, 0, 1) {
		m.platform.releaseMutex()
	}
}

// Lock blocks until the mutex is acquired.
func (m *Mutex) Lock() {
	m.take(true)
}

// TryLock acquires the mutex only if it is immediately available.
func (m *Mutex) TryLock() bool {
	return m.take(false)
}

// Unlock releases one acquisition. Releasing a recursive mutex not owned by
// the caller is ignored, as is releasing an unlocked exclusive mutex.
func (m *Mutex) Unlock() {
	m.mustBeAlive()
	if !m.recursive {
		select {
		case <-m.sem:
		default:
		}
		return
	}
	if atomic.LoadUint64(&m.owner) != goroutineID() {
		return
	}
	if m.depth--; m.depth == 0 {
		atomic.StoreUint64(&m.owner, 0)
		<-m.sem
	}
}

func (m *Mutex) take(block bool) bool {
	m.mustBeAlive()
	var id uint64
	if m.recursive {
		id = goroutineID()
		if atomic.LoadUint64(&m.owner) == id {
			m.depth++
			return true
		}
	}
	if block {
		m.sem <- struct{}{}
	} else {
		select {
		case m.sem <- struct{}{}:
		default:
			return false
		}
	}
	if m.recursive {
		atomic.StoreUint64(&m.owner, id)
		m.depth = 1
	}
	return true
}

func (m *Mutex) mustBeAlive() {
	if atomic.LoadInt32(&m.destroyed) != 0 {
		panic("platform: use of destroyed mutex")
	}
}
