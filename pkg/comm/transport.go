package comm

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robotalks/cellular.go/pkg/cellular"
	"github.com/robotalks/cellular.go/pkg/clog"
	"github.com/robotalks/cellular.go/pkg/platform"
	"github.com/robotalks/cellular.go/pkg/trace"
	"github.com/robotalks/cellular.go/pkg/uart"
)

var (
	// ErrInvalidHandle indicates the session is closed or foreign.
	ErrInvalidHandle = errors.New("invalid comm handle")
	// ErrEndpointOpen indicates the endpoint has an open session.
	ErrEndpointOpen = errors.New("endpoint already open")
	// ErrNoCallback indicates Open without a receive callback.
	ErrNoCallback = errors.New("receive callback required")
)

// Transport drives one UART endpoint. At most one Session is open at a time.
type Transport struct {
	Config   EndpointConfig
	Driver   *uart.Driver
	Platform *platform.Platform
	// Tracer, if set, observes the traffic.
	Tracer trace.Tracer
	// Device names the endpoint in trace records.
	Device string

	lock     sync.Mutex
	session  *Session
	counters counters
}

// Session is an open endpoint. Its fields are set by Open and never change.
type Session struct {
	transport *Transport
	port      uart.Port
	recv      cellular.ReceiveCallback
	userData  interface{}
	relay     *Relay
	closed    int32
}

// NewTransport creates a Transport.
func NewTransport(cfg EndpointConfig, drv *uart.Driver, plat *platform.Platform) *Transport {
	return &Transport{Config: cfg, Driver: drv, Platform: plat}
}

// Port returns the port of the session.
func (s *Session) Port() uart.Port {
	return s.port
}

// Open configures the endpoint and starts relaying data events to recv.
func (t *Transport) Open(recv cellular.ReceiveCallback, userData interface{}) (*Session, error) {
	if recv == nil {
		return nil, cellular.Errorf(cellular.DriverConfigurationFailure, "open", ErrNoCallback)
	}
	cfg := t.Config
	if err := cfg.Validate(); err != nil {
		return nil, cellular.Errorf(cellular.DriverConfigurationFailure, "open", err)
	}

	t.lock.Lock()
	defer t.lock.Unlock()
	if t.session != nil {
		return nil, cellular.Errorf(cellular.DriverConfigurationFailure, "open", ErrEndpointOpen)
	}

	events, err := t.Driver.Install(cfg.Port, cfg.RxBufferSize, cfg.EventQueueDepth)
	if err != nil {
		return nil, cellular.Errorf(cellular.DriverConfigurationFailure, "install", err)
	}
	if err = t.Driver.ParamConfig(cfg.Port, cfg.UART); err == nil {
		err = t.Driver.SetPin(cfg.Port, cfg.TxPin, cfg.RxPin)
	}
	if err == nil {
		// drop anything the modem sent before the session existed
		err = t.Driver.FlushInput(cfg.Port)
	}
	if err != nil {
		t.Driver.Delete(cfg.Port)
		return nil, cellular.Errorf(cellular.DriverConfigurationFailure, "configure", err)
	}

	s := &Session{
		transport: t,
		port:      cfg.Port,
		recv:      recv,
		userData:  userData,
	}
	relay, err := startRelay(t, s, events)
	if err != nil {
		t.Driver.Delete(cfg.Port)
		return nil, cellular.Errorf(cellular.SchedulerAdmissionFailure, "relay", err)
	}
	s.relay = relay
	t.session = s
	relay.start()
	atomic.AddUint64(&t.counters.opens, 1)
	t.trace(trace.KindOpen, nil, cfg.UART.String())
	clog.Cellular.Infof("uart%d: opened %s tx=%d rx=%d", cfg.Port, cfg.UART, cfg.TxPin, cfg.RxPin)
	return s, nil
}

// Close stops the relay and uninstalls the driver. An in-flight receive
// callback finishes first, unless Close is called from that callback.
func (t *Transport) Close(s *Session) error {
	if !t.owns(s) || !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return ErrInvalidHandle
	}
	s.relay.Stop()
	err := t.Driver.Delete(s.port)

	t.lock.Lock()
	if t.session == s {
		t.session = nil
	}
	t.lock.Unlock()

	atomic.AddUint64(&t.counters.closes, 1)
	t.trace(trace.KindClose, nil, "")
	if err != nil {
		clog.Cellular.Warnf("uart%d: close: %v", s.port, err)
		return cellular.Errorf(cellular.DriverConfigurationFailure, "close", err)
	}
	clog.Cellular.Infof("uart%d: closed", s.port)
	return nil
}

// Send writes data and returns the count the driver accepted, which may be
// less than len(data). The write is not retried and cannot be interrupted,
// so timeoutMs does not bound it.
func (t *Transport) Send(s *Session, data []byte, timeoutMs uint32) (int, error) {
	if !t.isOpen(s) {
		return 0, ErrInvalidHandle
	}
	if len(data) == 0 {
		return 0, nil
	}
	n, err := t.Driver.WriteBytes(s.port, data)
	if n > 0 {
		// Bytes are on the wire, a short write still succeeds.
		if n > len(data) {
			n = len(data)
		}
		if err != nil {
			clog.Cellular.Debugf("uart%d: short write %d/%d: %v", s.port, n, len(data), err)
		}
		atomic.AddUint64(&t.counters.txBytes, uint64(n))
		t.trace(trace.KindTx, data[:n], "")
		return n, nil
	}
	if err == nil && n < 0 {
		err = errors.New("negative write count")
	}
	if err != nil {
		atomic.AddUint64(&t.counters.txErrors, 1)
		t.trace(trace.KindTx, nil, err.Error())
		return 0, cellular.Errorf(cellular.IOFailure, "send", err)
	}
	return 0, nil
}

// Recv reads up to len(buf) bytes waiting at most timeoutMs, rounded down to
// scheduler ticks. Zero bytes without error means nothing arrived in time.
func (t *Transport) Recv(s *Session, buf []byte, timeoutMs uint32) (int, error) {
	if !t.isOpen(s) {
		return 0, ErrInvalidHandle
	}
	if len(buf) == 0 {
		return 0, nil
	}
	n, err := t.Driver.ReadBytes(s.port, buf, t.timeout(timeoutMs))
	if err != nil {
		atomic.AddUint64(&t.counters.rxErrors, 1)
		t.trace(trace.KindRx, nil, err.Error())
		return 0, cellular.Errorf(cellular.IOFailure, "recv", err)
	}
	if n > 0 {
		atomic.AddUint64(&t.counters.rxBytes, uint64(n))
		t.trace(trace.KindRx, buf[:n], "")
	}
	return n, nil
}

// Session returns the open session, nil if none.
func (t *Transport) Session() *Session {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.session
}

// Stats returns the counters.
func (t *Transport) Stats() Stats {
	return t.counters.snapshot()
}

func (t *Transport) owns(s *Session) bool {
	return s != nil && s.transport == t
}

func (t *Transport) isOpen(s *Session) bool {
	return t.owns(s) && atomic.LoadInt32(&s.closed) == 0
}

func (t *Transport) platform() *platform.Platform {
	if t.Platform != nil {
		return t.Platform
	}
	return defaultPlatform
}

func (t *Transport) timeout(ms uint32) time.Duration {
	p := t.platform()
	return p.TicksToDuration(p.MsToTicks(ms))
}

func (t *Transport) trace(kind trace.Kind, data []byte, event string) {
	if t.Tracer == nil {
		return
	}
	r := &trace.Record{
		Time:   time.Now(),
		Device: t.Device,
		Port:   int(t.Config.Port),
		Kind:   kind,
		Event:  event,
	}
	if len(data) > 0 {
		r.Data = append([]byte(nil), data...)
	}
	t.Tracer.Trace(r)
}

var defaultPlatform = platform.New()
