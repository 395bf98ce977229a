package uart

import (
	"fmt"

	"go.bug.st/serial"

	"github.com/robotalks/cellular.go/pkg/clog"
)

// SerialOpener brings lines up on host serial devices. Pins cannot be
// routed on a host and are only recorded.
type SerialOpener struct {
	// Devices maps ports to device paths, e.g. 2 => /dev/ttyUSB0.
	Devices map[Port]string
}

// OpenLine implements LineOpener.
func (o *SerialOpener) OpenLine(port Port, cfg Config, tx, rx Pin) (Line, error) {
	name, ok := o.Devices[port]
	if !ok || name == "" {
		return nil, ErrNoDevice
	}
	mode, err := serialMode(cfg)
	if err != nil {
		return nil, err
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	clog.Cellular.Debugf("uart%d: %s opened, pins tx=%d rx=%d are fixed by the device", port, name, tx, rx)
	return &serialLine{Port: p}, nil
}

// ListPorts enumerates the serial devices of the host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

type serialLine struct {
	serial.Port
}

// SetConfig implements LineConfigurer.
func (l *serialLine) SetConfig(cfg Config) error {
	mode, err := serialMode(cfg)
	if err != nil {
		return err
	}
	return l.SetMode(mode)
}

func serialMode(cfg Config) (*serial.Mode, error) {
	if cfg.FlowControl != FlowControlNone {
		return nil, fmt.Errorf("%w: hardware flow control unsupported on host", ErrInvalidArg)
	}
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
	}
	switch cfg.Parity {
	case ParityEven:
		mode.Parity = serial.EvenParity
	case ParityOdd:
		mode.Parity = serial.OddParity
	default:
		mode.Parity = serial.NoParity
	}
	switch cfg.StopBits {
	case StopBits1_5:
		mode.StopBits = serial.OnePointFiveStopBits
	case StopBits2:
		mode.StopBits = serial.TwoStopBits
	default:
		mode.StopBits = serial.OneStopBit
	}
	return mode, nil
}
