package cellular

import "strconv"

// Status is the result code exchanged with the protocol stack.
type Status int

// Status values.
const (
	Success Status = iota
	Failure
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

// CommHandle identifies an open comm session. It is only meaningful to the
// CommInterface which issued it.
type CommHandle interface{}

// ReceiveCallback is invoked by the comm interface each time inbound data is
// available. It runs on the relay context, not on the stack's own threads.
type ReceiveCallback func(userData interface{}, h CommHandle) Status

// CommInterface is the fixed set of operations the stack uses to reach the
// modem.
type CommInterface interface {
	// Open prepares the link and registers cb to be called with userData
	// whenever data arrives.
	Open(cb ReceiveCallback, userData interface{}) (CommHandle, Status)
	// Close releases everything Open acquired.
	Close(h CommHandle) Status
	// Send writes data, returning the number of bytes sent.
	Send(h CommHandle, data []byte, timeoutMs uint32) (uint32, Status)
	// Recv reads into buf waiting at most timeoutMs, returning the number
	// of bytes received.
	Recv(h CommHandle, buf []byte, timeoutMs uint32) (uint32, Status)
}

// StackHandle is the opaque handle of an initialized stack.
type StackHandle interface{}

// StackError is the failure code returned by a stack initializer.
type StackError struct {
	Code int
}

// Error implements error.
func (e *StackError) Error() string {
	return "cellular stack error " + strconv.Itoa(e.Code)
}

// Initializer initializes the protocol stack over comm.
type Initializer interface {
	Init(comm CommInterface) (StackHandle, error)
}

// InitFunc is the func form of Initializer.
type InitFunc func(comm CommInterface) (StackHandle, error)

// Init implements Initializer.
func (f InitFunc) Init(comm CommInterface) (StackHandle, error) {
	return f(comm)
}
