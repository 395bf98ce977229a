package comm

import (
	"fmt"

	"github.com/robotalks/cellular.go/pkg/uart"
)

// Relay task defaults.
const (
	DefaultRelayPriority  int32 = 12
	DefaultRelayStackSize       = 2048
)

// EndpointConfig describes a UART endpoint.
type EndpointConfig struct {
	Port  uart.Port
	TxPin uart.Pin
	RxPin uart.Pin
	UART  uart.Config

	RxBufferSize    int
	EventQueueDepth int

	RelayPriority  int32
	RelayStackSize int
}

// NewEndpointConfig creates an EndpointConfig with the modem link defaults.
func NewEndpointConfig(port uart.Port, tx, rx uart.Pin) EndpointConfig {
	return EndpointConfig{
		Port:            port,
		TxPin:           tx,
		RxPin:           rx,
		UART:            uart.DefaultConfig(),
		RxBufferSize:    uart.DefaultRxBufferSize,
		EventQueueDepth: uart.DefaultQueueDepth,
		RelayPriority:   DefaultRelayPriority,
		RelayStackSize:  DefaultRelayStackSize,
	}
}

// Validate checks the values are usable.
func (c EndpointConfig) Validate() error {
	if c.RxBufferSize <= uart.MinRxBufferSize {
		return fmt.Errorf("%w: rx buffer size %d", uart.ErrInvalidArg, c.RxBufferSize)
	}
	if c.EventQueueDepth <= 0 {
		return fmt.Errorf("%w: event queue depth %d", uart.ErrInvalidArg, c.EventQueueDepth)
	}
	if c.RelayStackSize <= 0 {
		return fmt.Errorf("%w: relay stack size %d", uart.ErrInvalidArg, c.RelayStackSize)
	}
	return c.UART.Validate()
}
