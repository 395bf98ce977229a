package cellular

import "errors"

// Kind classifies failures of the comm layer.
type Kind int

// Kinds of failures.
const (
	// Unknown is the Kind of errors not raised by the comm layer.
	Unknown Kind = iota
	AllocationFailure
	SchedulerAdmissionFailure
	DriverConfigurationFailure
	IOFailure
	StackInitializationFailure
)

var kindNames = map[Kind]string{
	Unknown:                    "unknown",
	AllocationFailure:          "allocation failure",
	SchedulerAdmissionFailure:  "scheduler admission failure",
	DriverConfigurationFailure: "driver configuration failure",
	IOFailure:                  "io failure",
	StackInitializationFailure: "stack initialization failure",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Unknown]
}

// Error is a classified failure of operation Op.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Errorf wraps err as an Error of kind k.
func Errorf(k Kind, op string, err error) *Error {
	return &Error{Kind: k, Op: op, Err: err}
}

// Error implements error.
func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first Error in the chain of err.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
