package uart

import "errors"

var (
	// ErrNotInstalled indicates the port has no installed driver.
	ErrNotInstalled = errors.New("driver not installed")
	// ErrAlreadyInstalled indicates the port driver is installed already.
	ErrAlreadyInstalled = errors.New("driver already installed")
	// ErrNotConfigured indicates the line is not up yet (pins not set).
	ErrNotConfigured = errors.New("line not configured")
	// ErrLineOpen indicates the line of the port is already up.
	ErrLineOpen = errors.New("line already open")
	// ErrInvalidArg indicates an invalid argument.
	ErrInvalidArg = errors.New("invalid argument")
	// ErrNoDevice indicates no device is mapped to the port.
	ErrNoDevice = errors.New("no device for port")
	// ErrLineClosed is returned by a closed line.
	ErrLineClosed = errors.New("line closed")
)

// LineError is returned by Line.Read to report a receive condition which is
// not data, such as a framing error. The receive loop turns it into an Event
// and keeps reading.
type LineError struct {
	Event EventType
}

// Error implements error.
func (e *LineError) Error() string {
	return "line condition: " + e.Event.String()
}
