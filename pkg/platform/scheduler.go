package platform

import "sync"

// Scheduler admits new execution contexts.
type Scheduler interface {
	// Admit reserves room for a task. release must be called exactly once
	// when the task ends.
	Admit(priority int32, stackSize int) (release func(), err error)
}

// TaskPool is a Scheduler bounding the number of live tasks and the sum of
// their stack sizes. Priorities are validated but goroutines are not
// prioritized.
type TaskPool struct {
	// MaxTasks limits live tasks, 0 for unlimited.
	MaxTasks int
	// StackBudget limits the sum of stack sizes, 0 for unlimited.
	StackBudget int

	lock  sync.Mutex
	tasks int
	stack int
}

// Admit implements Scheduler.
func (p *TaskPool) Admit(priority int32, stackSize int) (func(), error) {
	if priority < IdlePriority || priority >= MaxPriorities || stackSize <= 0 {
		return nil, ErrAdmissionRefused
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.MaxTasks > 0 && p.tasks >= p.MaxTasks {
		return nil, ErrAdmissionRefused
	}
	if p.StackBudget > 0 && p.stack+stackSize > p.StackBudget {
		return nil, ErrAdmissionRefused
	}
	p.tasks++
	p.stack += stackSize
	var once sync.Once
	return func() {
		once.Do(func() {
			p.lock.Lock()
			p.tasks--
			p.stack -= stackSize
			p.lock.Unlock()
		})
	}, nil
}

// Running returns the number of admitted tasks not yet released.
func (p *TaskPool) Running() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.tasks
}
