// Package platform provides the concurrency primitives a cellular protocol
// stack expects from its host RTOS, expressed on goroutines.
//
// The stack creates mutexes (recursive or exclusive), spawns fire-and-forget
// threads, waits on event groups and delays by milliseconds. Resource limits
// of an embedded target are modelled by an Allocator (heap) and a Scheduler
// (task admission), so the failure paths of the platform contract stay
// reachable: a spawn that cannot be admitted reports false and releases
// everything it allocated.
package platform
