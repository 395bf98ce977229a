// Package comm implements the cellular comm interface on a UART port.
//
// A Transport owns one endpoint: Open installs the driver, binds the pins and
// starts a Relay which invokes the receive callback for every data event;
// Send and Recv move bytes; Close reverses Open. Adapter presents a Transport
// as cellular.CommInterface and Setup hands it to the protocol stack.
package comm
