package comm

import (
	"errors"

	"github.com/robotalks/cellular.go/pkg/cellular"
	"github.com/robotalks/cellular.go/pkg/clog"
	"github.com/robotalks/cellular.go/pkg/platform"
	"github.com/robotalks/cellular.go/pkg/uart"
)

// Setup initializes the protocol stack with the comm interface of t.
func Setup(stack cellular.Initializer, t *Transport) (cellular.StackHandle, error) {
	h, err := stack.Init(NewAdapter(t))
	if err != nil {
		code := -1
		var stackErr *cellular.StackError
		if errors.As(err, &stackErr) {
			code = stackErr.Code
		}
		clog.Cellular.Errorf("cellular setup failed %d", code)
		return nil, cellular.Errorf(cellular.StackInitializationFailure, "setup", err)
	}
	return h, nil
}

// Initialize sets up the stack on port with the default link settings.
func Initialize(stack cellular.Initializer, port uart.Port, tx, rx uart.Pin, drv *uart.Driver, plat *platform.Platform) (cellular.StackHandle, error) {
	return Setup(stack, NewTransport(NewEndpointConfig(port, tx, rx), drv, plat))
}
