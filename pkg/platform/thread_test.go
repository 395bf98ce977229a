package platform

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type trackingAllocator struct {
	lock        sync.Mutex
	outstanding int
	fail        bool
}

func (a *trackingAllocator) Malloc(size int) ([]byte, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.fail {
		return nil, ErrAllocFailed
	}
	a.outstanding++
	return make([]byte, size), nil
}

func (a *trackingAllocator) Free(b []byte) {
	a.lock.Lock()
	a.outstanding--
	a.lock.Unlock()
}

func (a *trackingAllocator) Outstanding() int {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.outstanding
}

type refusingScheduler struct{}

func (refusingScheduler) Admit(int32, int) (func(), error) {
	return nil, ErrAdmissionRefused
}

func waitUntil(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSpawnDetached(t *testing.T) {
	heap := &trackingAllocator{}
	pool := &TaskPool{}
	p := &Platform{Heap: heap, Scheduler: pool}

	argCh := make(chan interface{}, 1)
	require.True(t, p.SpawnDetached(func(arg interface{}) {
		argCh <- arg
	}, "payload", DefaultThreadPriority, DefaultThreadStackSize))

	select {
	case arg := <-argCh:
		require.Equal(t, "payload", arg)
	case <-time.After(time.Second):
		t.Fatal("entry not invoked")
	}
	waitUntil(t, func() bool { return heap.Outstanding() == 0 && pool.Running() == 0 })
}

func TestSpawnDetachedFailures(t *testing.T) {
	testCases := []struct {
		name  string
		heap  *trackingAllocator
		sched Scheduler
	}{
		{"admission refused", &trackingAllocator{}, refusingScheduler{}},
		{"pool full", &trackingAllocator{}, &TaskPool{StackBudget: 100}},
		{"allocation failed", &trackingAllocator{fail: true}, &TaskPool{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Platform{Heap: tc.heap, Scheduler: tc.sched}
			called := false
			ok := p.SpawnDetached(func(interface{}) { called = true }, nil, DefaultThreadPriority, DefaultThreadStackSize)
			require.False(t, ok)
			require.False(t, called)
			require.Equal(t, 0, tc.heap.Outstanding())
		})
	}
}

func TestTaskPoolAdmission(t *testing.T) {
	pool := &TaskPool{MaxTasks: 1}
	release, err := pool.Admit(DefaultThreadPriority, 1024)
	require.NoError(t, err)
	_, err = pool.Admit(DefaultThreadPriority, 1024)
	require.Equal(t, ErrAdmissionRefused, err)
	release()
	release()
	require.Equal(t, 0, pool.Running())

	_, err = pool.Admit(MaxPriorities, 1024)
	require.Equal(t, ErrAdmissionRefused, err)
	_, err = pool.Admit(DefaultThreadPriority, 0)
	require.Equal(t, ErrAdmissionRefused, err)
}

func TestTaskDeleteWaitsForFunction(t *testing.T) {
	p := New()
	entered := make(chan struct{})
	var finished bool
	task, err := p.CreateTask("worker", 12, 2048, func(ctx context.Context) {
		close(entered)
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		finished = true
	})
	require.NoError(t, err)
	require.Equal(t, "worker", task.Name())
	<-entered
	task.Delete()
	require.True(t, finished)
	waitUntil(t, func() bool { return p.Scheduler.(*TaskPool).Running() == 0 })
}

func TestTaskDeleteFromItself(t *testing.T) {
	p := New()
	var task *Task
	ready := make(chan struct{})
	task, err := p.CreateTask("self", 12, 2048, func(ctx context.Context) {
		<-ready
		task.Delete()
		<-ctx.Done()
	})
	require.NoError(t, err)
	close(ready)
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("self delete did not stop the task")
	}
}

func TestCreateTaskRefused(t *testing.T) {
	p := &Platform{Scheduler: refusingScheduler{}}
	_, err := p.CreateTask("relay", 12, 2048, func(context.Context) {})
	require.True(t, errors.Is(err, ErrAdmissionRefused))
}
