package comm

import (
	"github.com/robotalks/cellular.go/pkg/cellular"
	"github.com/robotalks/cellular.go/pkg/clog"
)

// Adapter implements cellular.CommInterface on a Transport. Handles are
// *Session values.
type Adapter struct {
	Transport *Transport
}

// NewAdapter creates an Adapter.
func NewAdapter(t *Transport) *Adapter {
	return &Adapter{Transport: t}
}

// Open implements cellular.CommInterface.
func (a *Adapter) Open(cb cellular.ReceiveCallback, userData interface{}) (cellular.CommHandle, cellular.Status) {
	s, err := a.Transport.Open(cb, userData)
	if err != nil {
		clog.Cellular.Errorf("comm open: %v", err)
		return nil, cellular.Failure
	}
	return s, cellular.Success
}

// Close implements cellular.CommInterface.
func (a *Adapter) Close(h cellular.CommHandle) cellular.Status {
	if err := a.Transport.Close(session(h)); err != nil {
		clog.Cellular.Errorf("comm close: %v", err)
		return cellular.Failure
	}
	return cellular.Success
}

// Send implements cellular.CommInterface.
func (a *Adapter) Send(h cellular.CommHandle, data []byte, timeoutMs uint32) (uint32, cellular.Status) {
	n, err := a.Transport.Send(session(h), data, timeoutMs)
	if err != nil {
		clog.Cellular.Errorf("comm send: %v", err)
		return 0, cellular.Failure
	}
	return uint32(n), cellular.Success
}

// Recv implements cellular.CommInterface.
func (a *Adapter) Recv(h cellular.CommHandle, buf []byte, timeoutMs uint32) (uint32, cellular.Status) {
	n, err := a.Transport.Recv(session(h), buf, timeoutMs)
	if err != nil {
		clog.Cellular.Errorf("comm recv: %v", err)
		return 0, cellular.Failure
	}
	return uint32(n), cellular.Success
}

func session(h cellular.CommHandle) *Session {
	s, _ := h.(*Session)
	return s
}
