// Package clog routes diagnostics of the cellular layer to a single named
// channel on top of glog.
package clog

import (
	"fmt"

	"github.com/golang/glog"
)

// Channel is a named log channel. Messages are prefixed with the name.
type Channel string

// Cellular is the channel shared by all packages of the comm layer.
const Cellular Channel = "CELLULAR"

// DebugLevel is the glog verbosity which enables Debugf output.
const DebugLevel glog.Level = 2

func (c Channel) format(format string, args []interface{}) string {
	return "[" + string(c) + "] " + fmt.Sprintf(format, args...)
}

// Errorf logs at error severity.
func (c Channel) Errorf(format string, args ...interface{}) {
	glog.ErrorDepth(1, c.format(format, args))
}

// Warnf logs at warning severity.
func (c Channel) Warnf(format string, args ...interface{}) {
	glog.WarningDepth(1, c.format(format, args))
}

// Infof logs at info severity.
func (c Channel) Infof(format string, args ...interface{}) {
	glog.InfoDepth(1, c.format(format, args))
}

// Debugf logs at info severity when verbosity is at least DebugLevel.
func (c Channel) Debugf(format string, args ...interface{}) {
	if glog.V(DebugLevel) {
		glog.InfoDepth(1, c.format(format, args))
	}
}
