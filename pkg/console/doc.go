// Package console provides an interactive modem console on a comm Transport.
//
// Stack stands in for the cellular protocol stack: it consumes the comm
// interface and the platform primitives the same way, with a packet I/O
// thread woken by the receive callback. Shell exposes it through ishell.
package console
