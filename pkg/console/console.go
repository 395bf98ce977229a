package console

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/robotalks/cellular.go/pkg/cellular"
	"github.com/robotalks/cellular.go/pkg/comm"
	"github.com/robotalks/cellular.go/pkg/uart"
)

// Console drives a Stack on a Transport.
type Console struct {
	Transport *comm.Transport
	Stack     *Stack
}

// New creates a Console.
func New(t *comm.Transport) *Console {
	return &Console{Transport: t, Stack: NewStack(t.Platform)}
}

// Open initializes the stack on the transport.
func (c *Console) Open() error {
	if c.Stack.IsOpen() {
		return fmt.Errorf("already open")
	}
	_, err := comm.Setup(c.Stack, c.Transport)
	return err
}

// Close shuts the stack down.
func (c *Console) Close() error {
	return c.Stack.Close()
}

// SendLine sends text terminated by CR LF.
func (c *Console) SendLine(text string) (int, error) {
	return c.Stack.Send([]byte(text + "\r\n"))
}

// SendHex sends bytes given in hex, spaces allowed.
func (c *Console) SendHex(str string) (int, error) {
	data, err := hex.DecodeString(strings.Replace(str, " ", "", -1))
	if err != nil {
		return 0, err
	}
	return c.Stack.Send(data)
}

// Recv returns the received input, waiting up to wait for some.
func (c *Console) Recv(wait time.Duration) ([]byte, error) {
	return c.Stack.Read(wait)
}

// Stats returns the transport counters.
func (c *Console) Stats() comm.Stats {
	return c.Transport.Stats()
}

// Prompt returns the shell prompt reflecting the endpoint state.
func (c *Console) Prompt() string {
	state := "closed"
	if c.Stack.IsOpen() {
		state = "open"
	}
	return fmt.Sprintf("[uart%d %s] > ", c.Transport.Config.Port, state)
}

// FormatStats prints counters for display.
func FormatStats(s comm.Stats) string {
	return fmt.Sprintf("opens=%d closes=%d tx=%d rx=%d tx-errors=%d rx-errors=%d callbacks=%d dropped-events=%d",
		s.Opens, s.Closes, s.TxBytes, s.RxBytes, s.TxErrors, s.RxErrors, s.Callbacks, s.DroppedEvents)
}

// Ports lists the serial devices of the host.
func Ports() ([]string, error) {
	return uart.ListPorts()
}

var _ cellular.Initializer = (*Stack)(nil)
