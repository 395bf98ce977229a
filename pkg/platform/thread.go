package platform

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robotalks/cellular.go/pkg/clog"
)

// threadRecordSize is the heap footprint of the record handing entry and
// argument over to a detached thread.
const threadRecordSize = 16

type threadInfo struct {
	record []byte
	entry  func(interface{})
	arg    interface{}
}

// SpawnDetached runs entry(arg) on a new execution context which ends by
// itself. Ownership of arg moves to the new context. There is no handle: the
// spawned routine cannot be joined, cancelled or queried.
//
// It returns false when the transfer record cannot be allocated or the
// scheduler refuses the task; nothing stays allocated in that case.
func (p *Platform) SpawnDetached(entry func(interface{}), arg interface{}, priority int32, stackSize int) bool {
	heap := p.heap()
	record, err := heap.Malloc(threadRecordSize)
	if err != nil {
		clog.Cellular.Warnf("detached thread: %v", err)
		return false
	}
	info := &threadInfo{record: record, entry: entry, arg: arg}
	release, err := p.scheduler().Admit(priority, stackSize)
	if err != nil {
		heap.Free(record)
		clog.Cellular.Warnf("detached thread: %v", err)
		return false
	}
	go func() {
		defer release()
		info.entry(info.arg)
		heap.Free(info.record)
	}()
	return true
}

// Task is a supervised execution context, created and deleted explicitly.
type Task struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
	gid    uint64
}

// CreateTask admits and starts fn on a new goroutine. fn should return once
// its context is cancelled.
func (p *Platform) CreateTask(name string, priority int32, stackSize int, fn func(context.Context)) (*Task, error) {
	release, err := p.scheduler().Admit(priority, stackSize)
	if err != nil {
		return nil, fmt.Errorf("create task %s: %w", name, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &Task{name: name, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer release()
		atomic.StoreUint64(&t.gid, goroutineID())
		clog.Cellular.Debugf("task %s started", name)
		fn(ctx)
		clog.Cellular.Debugf("task %s stopped", name)
	}()
	return t, nil
}

// Name returns the task name.
func (t *Task) Name() string {
	return t.name
}

// Done is closed once the task function returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Delete stops the task and waits until its function has returned, so no
// work of the task is in flight afterwards. Called from the task itself it
// only requests the stop.
func (t *Task) Delete() {
	t.cancel()
	if atomic.LoadUint64(&t.gid) == goroutineID() {
		return
	}
	<-t.done
}
