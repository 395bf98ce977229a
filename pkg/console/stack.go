package console

import (
	"errors"
	"time"

	"github.com/robotalks/cellular.go/pkg/cellular"
	"github.com/robotalks/cellular.go/pkg/clog"
	"github.com/robotalks/cellular.go/pkg/platform"
	"github.com/robotalks/cellular.go/pkg/runner"
)

// Event bits of the stack.
const (
	rxDataBit platform.EventBits = 1 << iota
	abortBit
	stoppedBit
	inputReadyBit
)

// Stack error codes reported through cellular.StackError.
const (
	CodeNoMemory = iota + 1
	CodeCommOpen
	CodeThread
)

const (
	recvChunkSize   = 256
	sendTimeoutMs   = 1000
	pktioThreadName = "pktio"
)

// DefaultStopTimeout bounds how long Close waits for the pktio thread.
const DefaultStopTimeout = time.Second

var (
	// ErrNotOpen indicates the stack is not initialized.
	ErrNotOpen = errors.New("stack not open")
	// ErrNotStopped indicates the pktio thread missed the stop deadline.
	ErrNotStopped = errors.New("pktio thread not stopped")
)

// Stack is a minimal packet I/O stack. The receive callback only signals the
// pktio thread, which drains the comm interface into the input buffer.
type Stack struct {
	Platform *platform.Platform
	// StopTimeout is the wait for the pktio thread on Close,
	// DefaultStopTimeout if 0.
	StopTimeout time.Duration

	comm   cellular.CommInterface
	handle cellular.CommHandle
	events *platform.EventGroup
	lock   *platform.Mutex
	input  []byte
}

// NewStack creates a Stack on plat, or on a default Platform if nil.
func NewStack(plat *platform.Platform) *Stack {
	if plat == nil {
		plat = platform.New()
	}
	return &Stack{Platform: plat}
}

// Init implements cellular.Initializer.
func (s *Stack) Init(comm cellular.CommInterface) (cellular.StackHandle, error) {
	if s.comm != nil {
		return s, nil
	}
	events, err := s.Platform.CreateEventGroup()
	if err != nil {
		return nil, &cellular.StackError{Code: CodeNoMemory}
	}
	lock, err := s.Platform.NewMutex(true)
	if err != nil {
		events.Delete()
		return nil, &cellular.StackError{Code: CodeNoMemory}
	}
	s.events, s.lock, s.input = events, lock, nil

	h, status := comm.Open(onReceive, s)
	if status != cellular.Success {
		s.release()
		return nil, &cellular.StackError{Code: CodeCommOpen}
	}
	s.comm, s.handle = comm, h
	if !s.Platform.SpawnDetached(s.pktio, &pktioContext{comm: comm, handle: h, events: events, lock: lock}, platform.DefaultThreadPriority, platform.DefaultThreadStackSize) {
		comm.Close(h)
		s.comm, s.handle = nil, nil
		s.release()
		return nil, &cellular.StackError{Code: CodeThread}
	}
	return s, nil
}

// IsOpen reports whether the stack is initialized.
func (s *Stack) IsOpen() bool {
	return s.comm != nil
}

// Send transmits data.
func (s *Stack) Send(data []byte) (int, error) {
	if s.comm == nil {
		return 0, ErrNotOpen
	}
	n, status := s.comm.Send(s.handle, data, sendTimeoutMs)
	if status != cellular.Success {
		return 0, cellular.Errorf(cellular.IOFailure, "send", nil)
	}
	return int(n), nil
}

// Read returns the received input, waiting up to wait for some if none is
// buffered.
func (s *Stack) Read(wait time.Duration) ([]byte, error) {
	if s.comm == nil {
		return nil, ErrNotOpen
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.events.ClearBits(inputReadyBit)
	if data := s.take(); len(data) > 0 || wait <= 0 {
		return data, nil
	}
	s.lock.Unlock()
	s.events.WaitBits(inputReadyBit, true, false, s.Platform.MsToTicks(uint32(wait/time.Millisecond)))
	s.lock.Lock()
	return s.take(), nil
}

// Close stops the pktio thread and closes the comm interface. If the thread
// misses the deadline its event group and mutex are left allocated, as it
// still uses them.
func (s *Stack) Close() error {
	if s.comm == nil {
		return ErrNotOpen
	}
	timeout := s.StopTimeout
	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}
	s.events.SetBits(abortBit)
	bits := s.events.WaitBits(stoppedBit, true, false, s.Platform.MsToTicks(uint32(timeout/time.Millisecond)))
	stopped := bits&stoppedBit != 0

	var errs runner.AggregatedError
	if !stopped {
		clog.Cellular.Warnf("%s thread not stopped in %v, leaking its primitives", pktioThreadName, timeout)
		errs.Add(ErrNotStopped)
	}
	if status := s.comm.Close(s.handle); status != cellular.Success {
		errs.Add(cellular.Errorf(cellular.DriverConfigurationFailure, "close", nil))
	}
	s.comm, s.handle = nil, nil
	if stopped {
		s.release()
	}
	s.events, s.lock = nil, nil
	return errs.Aggregate()
}

func (s *Stack) release() {
	s.lock.Destroy()
	s.events.Delete()
}

func (s *Stack) take() []byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	data := s.input
	s.input = nil
	return data
}

func (s *Stack) append(lock *platform.Mutex, events *platform.EventGroup, p []byte) {
	lock.Lock()
	s.input = append(s.input, p...)
	lock.Unlock()
	events.SetBits(inputReadyBit)
}

func onReceive(userData interface{}, h cellular.CommHandle) cellular.Status {
	if !userData.(*Stack).events.SetBitsFromISR(rxDataBit) {
		return cellular.Failure
	}
	return cellular.Success
}

// pktioContext is what the pktio thread owns. It outlives the Stack fields
// when the thread misses the stop deadline.
type pktioContext struct {
	comm   cellular.CommInterface
	handle cellular.CommHandle
	events *platform.EventGroup
	lock   *platform.Mutex
}

func (s *Stack) pktio(arg interface{}) {
	pc := arg.(*pktioContext)
	clog.Cellular.Debugf("%s thread started", pktioThreadName)
	buf := make([]byte, recvChunkSize)
	for {
		bits := pc.events.WaitBits(rxDataBit|abortBit, true, false, platform.MaxDelay)
		if bits&abortBit != 0 {
			break
		}
		for {
			n, status := pc.comm.Recv(pc.handle, buf, 0)
			if status != cellular.Success || n == 0 {
				break
			}
			s.append(pc.lock, pc.events, buf[:n])
		}
	}
	clog.Cellular.Debugf("%s thread stopped", pktioThreadName)
	pc.events.SetBits(stoppedBit)
}
