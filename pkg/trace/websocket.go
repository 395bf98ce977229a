package trace

import (
	"io"
	"io/ioutil"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/robotalks/cellular.go/pkg/clog"
)

// Hub streams records as JSON text messages to websocket clients.
// A slow client loses records rather than stalling others.
type Hub struct {
	QueueSize int

	lock sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	msgCh chan string
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{QueueSize: DefaultQueueSize}
}

// Handler returns the websocket endpoint.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.subs)
}

// Trace implements Tracer.
func (h *Hub) Trace(r *Record) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if len(h.subs) == 0 {
		return
	}
	msg, err := r.MarshalJSON()
	if err != nil {
		clog.Cellular.Warnf("trace: encode %s record: %v", r.Kind, err)
		return
	}
	for sub := range h.subs {
		select {
		case sub.msgCh <- string(msg):
		default:
		}
	}
}

func (h *Hub) serve(conn *websocket.Conn) {
	defer conn.Close()
	size := h.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	sub := &subscriber{msgCh: make(chan string, size)}
	h.lock.Lock()
	if h.subs == nil {
		h.subs = make(map[*subscriber]struct{})
	}
	h.subs[sub] = struct{}{}
	h.lock.Unlock()
	defer func() {
		h.lock.Lock()
		delete(h.subs, sub)
		h.lock.Unlock()
	}()

	// Clients only listen; reading detects the disconnect.
	goneCh := make(chan struct{})
	go func() {
		io.Copy(ioutil.Discard, conn)
		close(goneCh)
	}()
	for {
		select {
		case msg := <-sub.msgCh:
			if err := websocket.Message.Send(conn, msg); err != nil {
				clog.Cellular.Debugf("trace: websocket send: %v", err)
				return
			}
		case <-goneCh:
			return
		}
	}
}
