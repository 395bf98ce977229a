package platform

import "errors"

var (
	// ErrCreationFailed indicates a primitive could not be created because
	// its pre-allocated storage is exhausted.
	ErrCreationFailed = errors.New("primitive creation failed")
	// ErrAllocFailed indicates the heap cannot satisfy an allocation.
	ErrAllocFailed = errors.New("allocation failed")
	// ErrAdmissionRefused indicates the scheduler refused a new task.
	ErrAdmissionRefused = errors.New("scheduler admission refused")
)
