// Package cellular defines the contracts between the cellular protocol stack
// and the platform underneath: the comm interface the stack drives to talk to
// the modem, and the errors reported across it.
package cellular
