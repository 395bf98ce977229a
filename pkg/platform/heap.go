package platform

import "sync"

// Allocator is the process-wide memory allocator.
type Allocator interface {
	// Malloc returns a block of exactly size bytes.
	Malloc(size int) ([]byte, error)
	// Free releases a block returned by Malloc. nil is ignored.
	Free([]byte)
}

// Heap is an Allocator with usage accounting and an optional capacity.
type Heap struct {
	// Capacity in bytes, 0 for unbounded.
	Capacity int

	lock   sync.Mutex
	used   int
	blocks int
}

// Malloc implements Allocator.
func (h *Heap) Malloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrAllocFailed
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.Capacity > 0 && h.used+size > h.Capacity {
		return nil, ErrAllocFailed
	}
	h.used += size
	h.blocks++
	return make([]byte, size), nil
}

// Free implements Allocator.
func (h *Heap) Free(b []byte) {
	if b == nil {
		return
	}
	h.lock.Lock()
	h.used -= cap(b)
	h.blocks--
	h.lock.Unlock()
}

// InUse reports the bytes and blocks currently allocated.
func (h *Heap) InUse() (bytes, blocks int) {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.used, h.blocks
}
