package uart

import (
	"bytes"
	"sync"
)

// SimBus is a LineOpener of in-memory lines. Each OpenLine creates a fresh
// SimLine for the port, retrievable with Line.
type SimBus struct {
	// Echo makes new lines loop written bytes back to the receive side.
	Echo bool
	// OpenErr, if set, fails OpenLine.
	OpenErr error

	lock  sync.Mutex
	lines map[Port]*SimLine
}

// NewSimBus creates a SimBus.
func NewSimBus() *SimBus {
	return &SimBus{lines: make(map[Port]*SimLine)}
}

// OpenLine implements LineOpener.
func (b *SimBus) OpenLine(port Port, cfg Config, tx, rx Pin) (Line, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.OpenErr != nil {
		return nil, b.OpenErr
	}
	if b.lines == nil {
		b.lines = make(map[Port]*SimLine)
	}
	if l := b.lines[port]; l != nil && !l.Closed() {
		return nil, ErrLineOpen
	}
	l := NewSimLine(cfg, tx, rx)
	l.echo = b.Echo
	b.lines[port] = l
	return l, nil
}

// Line returns the last line opened for port.
func (b *SimBus) Line(port Port) *SimLine {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.lines[port]
}

type simChunk struct {
	data []byte
	err  error
}

// SimLine is an in-memory Line. Bytes injected appear on the receive side
// in the same chunks; bytes written are recorded.
type SimLine struct {
	Config Config
	TxPin  Pin
	RxPin  Pin

	rxCh    chan simChunk
	pending []byte
	closeCh chan struct{}
	echo    bool

	lock      sync.Mutex
	written   bytes.Buffer
	writeErr  error
	closeOnce sync.Once
}

// NewSimLine creates a SimLine.
func NewSimLine(cfg Config, tx, rx Pin) *SimLine {
	return &SimLine{
		Config:  cfg,
		TxPin:   tx,
		RxPin:   rx,
		rxCh:    make(chan simChunk, 64),
		closeCh: make(chan struct{}),
	}
}

// Inject delivers p to the receive side as one chunk.
func (l *SimLine) Inject(p []byte) {
	l.push(simChunk{data: append([]byte(nil), p...)})
}

// InjectEvent reports a line condition to the receive side.
func (l *SimLine) InjectEvent(t EventType) {
	l.push(simChunk{err: &LineError{Event: t}})
}

func (l *SimLine) push(c simChunk) {
	select {
	case l.rxCh <- c:
	case <-l.closeCh:
	}
}

// SetWriteError makes subsequent writes fail with err, nil to recover.
func (l *SimLine) SetWriteError(err error) {
	l.lock.Lock()
	l.writeErr = err
	l.lock.Unlock()
}

// Written returns all bytes written so far.
func (l *SimLine) Written() []byte {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]byte(nil), l.written.Bytes()...)
}

// Closed reports whether Close was called.
func (l *SimLine) Closed() bool {
	select {
	case <-l.closeCh:
		return true
	default:
		return false
	}
}

// Read implements io.Reader.
func (l *SimLine) Read(p []byte) (int, error) {
	if len(l.pending) == 0 {
		select {
		case c := <-l.rxCh:
			if c.err != nil {
				return 0, c.err
			}
			l.pending = c.data
		case <-l.closeCh:
			return 0, ErrLineClosed
		}
	}
	n := copy(p, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}

// Write implements io.Writer.
func (l *SimLine) Write(p []byte) (int, error) {
	if l.Closed() {
		return 0, ErrLineClosed
	}
	l.lock.Lock()
	if err := l.writeErr; err != nil {
		l.lock.Unlock()
		return 0, err
	}
	l.written.Write(p)
	l.lock.Unlock()
	if l.echo {
		l.Inject(p)
	}
	return len(p), nil
}

// SetConfig implements LineConfigurer.
func (l *SimLine) SetConfig(cfg Config) error {
	l.lock.Lock()
	l.Config = cfg
	l.lock.Unlock()
	return nil
}

// Close implements io.Closer.
func (l *SimLine) Close() error {
	l.closeOnce.Do(func() { close(l.closeCh) })
	return nil
}
