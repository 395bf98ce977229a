package uart

import "strconv"

// EventType is the kind of a driver event.
type EventType int

// Event types.
const (
	// EventData indicates bytes were stored into the ring buffer.
	EventData EventType = iota
	// EventBreak indicates a break condition on the line.
	EventBreak
	// EventBufferFull indicates received bytes were dropped, ring full.
	EventBufferFull
	// EventFIFOOverflow indicates the receive FIFO overflowed.
	EventFIFOOverflow
	// EventFrameErr indicates a framing error.
	EventFrameErr
	// EventParityErr indicates a parity error.
	EventParityErr
)

var eventNames = map[EventType]string{
	EventData:         "data",
	EventBreak:        "break",
	EventBufferFull:   "buffer-full",
	EventFIFOOverflow: "fifo-overflow",
	EventFrameErr:     "frame-error",
	EventParityErr:    "parity-error",
}

// String implements fmt.Stringer.
func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return "event(" + strconv.Itoa(int(t)) + ")"
}

// Event is posted to the event queue of a port.
type Event struct {
	Type EventType
	// Size is the number of bytes concerned, if any.
	Size int
}
