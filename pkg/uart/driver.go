package uart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robotalks/cellular.go/pkg/clog"
)

// rxChunkSize bounds a single read from the line, like the hardware FIFO.
const rxChunkSize = MinRxBufferSize

// Driver manages installed ports. A port can be installed once at a time;
// after Delete it can be installed again.
type Driver struct {
	Opener LineOpener

	lock  sync.Mutex
	ports map[Port]*device
}

type device struct {
	port   Port
	rx     *ring
	events chan Event

	lock    sync.Mutex
	cfg     Config
	tx, rxp Pin
	line    Line
	closing bool
	rxDone  chan struct{}

	txLock sync.Mutex
}

// NewDriver creates a Driver bringing lines up with opener.
func NewDriver(opener LineOpener) *Driver {
	return &Driver{Opener: opener}
}

// Install sets up the ring buffer and the event queue of port. queueDepth 0
// installs no event queue and the returned channel is nil.
func (d *Driver) Install(port Port, rxBufSize, queueDepth int) (<-chan Event, error) {
	if rxBufSize <= MinRxBufferSize || queueDepth < 0 {
		return nil, fmt.Errorf("%w: rx buffer %d, queue depth %d", ErrInvalidArg, rxBufSize, queueDepth)
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.ports == nil {
		d.ports = make(map[Port]*device)
	}
	if _, ok := d.ports[port]; ok {
		return nil, ErrAlreadyInstalled
	}
	dev := &device{
		port: port,
		rx:   newRing(rxBufSize),
		cfg:  DefaultConfig(),
		tx:   PinNoChange,
		rxp:  PinNoChange,
	}
	if queueDepth > 0 {
		dev.events = make(chan Event, queueDepth)
	}
	d.ports[port] = dev
	clog.Cellular.Debugf("uart%d: driver installed, rx buffer %d, queue %d", port, rxBufSize, queueDepth)
	return dev.events, nil
}

// IsInstalled reports whether port has an installed driver.
func (d *Driver) IsInstalled(port Port) bool {
	_, err := d.device(port)
	return err == nil
}

// ParamConfig sets the framing of port.
func (d *Driver) ParamConfig(port Port, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	dev, err := d.device(port)
	if err != nil {
		return err
	}
	dev.lock.Lock()
	defer dev.lock.Unlock()
	if dev.line != nil {
		configurer, ok := dev.line.(LineConfigurer)
		if !ok {
			return ErrLineOpen
		}
		if err := configurer.SetConfig(cfg); err != nil {
			return err
		}
	}
	dev.cfg = cfg
	return nil
}

// SetPin binds the signal pins of port and brings the line up.
func (d *Driver) SetPin(port Port, tx, rx Pin) error {
	if tx < PinNoChange || rx < PinNoChange || (tx != PinNoChange && tx == rx) {
		return fmt.Errorf("%w: tx pin %d, rx pin %d", ErrInvalidArg, tx, rx)
	}
	dev, err := d.device(port)
	if err != nil {
		return err
	}
	if d.Opener == nil {
		return fmt.Errorf("uart%d: %w", port, ErrNoDevice)
	}
	dev.lock.Lock()
	defer dev.lock.Unlock()
	if dev.line != nil {
		return ErrLineOpen
	}
	if tx != PinNoChange {
		dev.tx = tx
	}
	if rx != PinNoChange {
		dev.rxp = rx
	}
	line, err := d.Opener.OpenLine(port, dev.cfg, dev.tx, dev.rxp)
	if err != nil {
		return fmt.Errorf("uart%d: open line: %w", port, err)
	}
	dev.line = line
	dev.rxDone = make(chan struct{})
	go dev.rxLoop(line, dev.rxDone)
	clog.Cellular.Debugf("uart%d: line up %s tx=%d rx=%d", port, dev.cfg, dev.tx, dev.rxp)
	return nil
}

// WriteBytes writes data to the line of port and returns the count written.
func (d *Driver) WriteBytes(port Port, data []byte) (int, error) {
	dev, err := d.device(port)
	if err != nil {
		return 0, err
	}
	line := dev.currentLine()
	if line == nil {
		return 0, ErrNotConfigured
	}
	if len(data) == 0 {
		return 0, nil
	}
	dev.txLock.Lock()
	defer dev.txLock.Unlock()
	return line.Write(data)
}

// ReadBytes reads into buf until it is full or timeout elapses, returning
// what was received. Zero timeout only takes what is buffered, a negative
// timeout waits until buf is full.
func (d *Driver) ReadBytes(port Port, buf []byte, timeout time.Duration) (int, error) {
	dev, err := d.device(port)
	if err != nil {
		return 0, err
	}
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	var n int
	for {
		k, changed, closed := dev.rx.read(buf[n:])
		n += k
		if n == len(buf) {
			return n, nil
		}
		if closed {
			if n == 0 {
				return 0, ErrNotInstalled
			}
			return n, nil
		}
		if timeout == 0 {
			return n, nil
		}
		select {
		case <-changed:
		case <-expired:
			k, _, _ = dev.rx.read(buf[n:])
			return n + k, nil
		}
	}
}

// Buffered returns the number of received bytes not read yet.
func (d *Driver) Buffered(port Port) (int, error) {
	dev, err := d.device(port)
	if err != nil {
		return 0, err
	}
	return dev.rx.buffered(), nil
}

// FlushInput discards the received bytes not read yet.
func (d *Driver) FlushInput(port Port) error {
	dev, err := d.device(port)
	if err != nil {
		return err
	}
	dev.rx.reset()
	return nil
}

// Delete shuts the line down and uninstalls the driver. Pending events are
// dropped and the event channel is closed.
func (d *Driver) Delete(port Port) error {
	d.lock.Lock()
	dev, ok := d.ports[port]
	if ok {
		delete(d.ports, port)
	}
	d.lock.Unlock()
	if !ok {
		return ErrNotInstalled
	}

	dev.lock.Lock()
	dev.closing = true
	line, rxDone := dev.line, dev.rxDone
	dev.line = nil
	dev.lock.Unlock()

	var err error
	if line != nil {
		err = line.Close()
		<-rxDone
	}
	dev.rx.close()
	if dev.events != nil {
		close(dev.events)
	}
	clog.Cellular.Debugf("uart%d: driver deleted", port)
	return err
}

func (d *Driver) device(port Port) (*device, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if dev, ok := d.ports[port]; ok {
		return dev, nil
	}
	return nil, ErrNotInstalled
}

func (dev *device) currentLine() Line {
	dev.lock.Lock()
	defer dev.lock.Unlock()
	return dev.line
}

func (dev *device) isClosing() bool {
	dev.lock.Lock()
	defer dev.lock.Unlock()
	return dev.closing
}

func (dev *device) rxLoop(line Line, done chan struct{}) {
	defer close(done)
	buf := make([]byte, rxChunkSize)
	for {
		n, err := line.Read(buf)
		if n > 0 {
			dev.receive(buf[:n])
		}
		if err == nil {
			continue
		}
		var lineErr *LineError
		if errors.As(err, &lineErr) {
			dev.post(Event{Type: lineErr.Event})
			continue
		}
		if !dev.isClosing() {
			clog.Cellular.Warnf("uart%d: receive stopped: %v", dev.port, err)
		}
		return
	}
}

func (dev *device) receive(p []byte) {
	stored := dev.rx.write(p)
	if stored > 0 {
		dev.post(Event{Type: EventData, Size: stored})
	}
	if dropped := len(p) - stored; dropped > 0 {
		dev.post(Event{Type: EventBufferFull, Size: dropped})
	}
}

func (dev *device) post(ev Event) {
	if dev.events == nil {
		return
	}
	select {
	case dev.events <- ev:
	default:
		clog.Cellular.Debugf("uart%d: event queue full, %s dropped", dev.port, ev.Type)
	}
}
