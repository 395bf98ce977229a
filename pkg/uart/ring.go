package uart

import "sync"

// ring is the inbound byte buffer between the receive loop and readers.
type ring struct {
	lock    sync.Mutex
	buf     []byte
	head    int
	size    int
	closed  bool
	changed chan struct{}
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]byte, capacity), changed: make(chan struct{})}
}

// write stores as much of p as fits and returns the stored count.
func (r *ring) write(p []byte) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.closed {
		return 0
	}
	n := len(r.buf) - r.size
	if n > len(p) {
		n = len(p)
	}
	tail := (r.head + r.size) % len(r.buf)
	for i := 0; i < n; i++ {
		r.buf[(tail+i)%len(r.buf)] = p[i]
	}
	r.size += n
	if n > 0 {
		r.notifyLocked()
	}
	return n
}

// read moves buffered bytes into p. When nothing is buffered it also returns
// the channel closed by the next write, so the caller can wait without
// missing data.
func (r *ring) read(p []byte) (int, <-chan struct{}, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	n := r.size
	if n > len(p) {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		p[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	r.head = (r.head + n) % len(r.buf)
	r.size -= n
	return n, r.changed, r.closed
}

func (r *ring) buffered() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.size
}

func (r *ring) reset() {
	r.lock.Lock()
	r.head, r.size = 0, 0
	r.lock.Unlock()
}

func (r *ring) close() {
	r.lock.Lock()
	defer r.lock.Unlock()
	if !r.closed {
		r.closed = true
		r.notifyLocked()
	}
}

func (r *ring) notifyLocked() {
	close(r.changed)
	r.changed = make(chan struct{})
}
