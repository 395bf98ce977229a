// Package uart drives serial peripherals the way an MCU UART driver does:
// a port is installed with an inbound ring buffer and an event queue, then
// configured, then bound to its pins which brings the line up.
//
// Received bytes are moved from the line into the ring buffer by a receive
// loop which posts an event for every chunk. Consumers drain the ring with
// ReadBytes, bounded by a timeout.
//
// The physical line is pluggable: SerialOpener maps ports to host serial
// devices and SimBus provides in-memory lines for tests and simulation.
package uart
