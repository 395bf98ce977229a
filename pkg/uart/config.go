package uart

import "fmt"

// Port identifies a UART peripheral.
type Port int

// Pin identifies a signal pin.
type Pin int

// PinNoChange keeps the current pin assignment.
const PinNoChange Pin = -1

// Parity setting.
type Parity int

// Parity values.
const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// StopBits setting.
type StopBits int

// StopBits values.
const (
	StopBits1 StopBits = iota
	StopBits1_5
	StopBits2
)

// FlowControl setting.
type FlowControl int

// FlowControl values.
const (
	FlowControlNone FlowControl = iota
	FlowControlRTSCTS
)

// Config is the framing of a port.
type Config struct {
	BaudRate    int
	DataBits    int
	Parity      Parity
	StopBits    StopBits
	FlowControl FlowControl
}

// Defaults of the modem link.
const (
	DefaultBaudRate     = 115200
	DefaultRxBufferSize = 1024
	DefaultQueueDepth   = 4
	// MinRxBufferSize is the hardware FIFO length, the ring must exceed it.
	MinRxBufferSize = 128
)

// DefaultConfig returns 115200-8N1 without flow control.
func DefaultConfig() Config {
	return Config{
		BaudRate: DefaultBaudRate,
		DataBits: 8,
		Parity:   ParityNone,
		StopBits: StopBits1,
	}
}

// Validate checks the values are in range.
func (c Config) Validate() error {
	if c.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate %d", ErrInvalidArg, c.BaudRate)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("%w: data bits %d", ErrInvalidArg, c.DataBits)
	}
	if c.Parity < ParityNone || c.Parity > ParityOdd {
		return fmt.Errorf("%w: parity %d", ErrInvalidArg, c.Parity)
	}
	if c.StopBits < StopBits1 || c.StopBits > StopBits2 {
		return fmt.Errorf("%w: stop bits %d", ErrInvalidArg, c.StopBits)
	}
	if c.FlowControl < FlowControlNone || c.FlowControl > FlowControlRTSCTS {
		return fmt.Errorf("%w: flow control %d", ErrInvalidArg, c.FlowControl)
	}
	return nil
}

// String formats the config like 115200-8N1.
func (c Config) String() string {
	parity := "N"
	switch c.Parity {
	case ParityEven:
		parity = "E"
	case ParityOdd:
		parity = "O"
	}
	stop := "1"
	switch c.StopBits {
	case StopBits1_5:
		stop = "1.5"
	case StopBits2:
		stop = "2"
	}
	s := fmt.Sprintf("%d-%d%s%s", c.BaudRate, c.DataBits, parity, stop)
	if c.FlowControl == FlowControlRTSCTS {
		s += " rtscts"
	}
	return s
}
