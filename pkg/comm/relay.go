package comm

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robotalks/cellular.go/pkg/cellular"
	"github.com/robotalks/cellular.go/pkg/clog"
	"github.com/robotalks/cellular.go/pkg/platform"
	"github.com/robotalks/cellular.go/pkg/trace"
	"github.com/robotalks/cellular.go/pkg/uart"
)

// Relay is the task turning driver events of a session into receive
// callbacks. Events are handled one at a time in queue order; each data event
// causes exactly one callback. Other events are discarded.
type Relay struct {
	transport *Transport
	session   *Session
	events    <-chan uart.Event
	task      *platform.Task
	readyCh   chan struct{}
}

func startRelay(t *Transport, s *Session, events <-chan uart.Event) (*Relay, error) {
	r := &Relay{transport: t, session: s, events: events, readyCh: make(chan struct{})}
	task, err := t.platform().CreateTask(
		fmt.Sprintf("uart%d-relay", s.port),
		t.Config.RelayPriority,
		t.Config.RelayStackSize,
		r.run)
	if err != nil {
		return nil, err
	}
	r.task = task
	return r, nil
}

// start releases the task once the session is complete.
func (r *Relay) start() {
	close(r.readyCh)
}

// Stop ends the relay. Events still queued are dropped. It returns after an
// in-flight callback completed, except when called from the callback.
func (r *Relay) Stop() {
	r.task.Delete()
}

func (r *Relay) run(ctx context.Context) {
	select {
	case <-r.readyCh:
	case <-ctx.Done():
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-r.events:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				return
			}
			r.dispatch(ev)
		}
	}
}

func (r *Relay) dispatch(ev uart.Event) {
	t, s := r.transport, r.session
	if ev.Type != uart.EventData {
		atomic.AddUint64(&t.counters.dropped, 1)
		t.trace(trace.KindEvent, nil, ev.Type.String())
		clog.Cellular.Debugf("uart%d: %s event (%d) discarded", s.port, ev.Type, ev.Size)
		return
	}
	atomic.AddUint64(&t.counters.callbacks, 1)
	if status := s.recv(s.userData, s); status != cellular.Success {
		clog.Cellular.Debugf("uart%d: receive callback returned %s", s.port, status)
	}
}
