package trace

// Tracer receives records. Trace must not block.
type Tracer interface {
	Trace(*Record)
}

// Func is the func form of Tracer.
type Func func(*Record)

// Trace implements Tracer.
func (f Func) Trace(r *Record) {
	f(r)
}

// Multi fans a record out to all tracers.
type Multi []Tracer

// Trace implements Tracer.
func (m Multi) Trace(r *Record) {
	for _, t := range m {
		t.Trace(r)
	}
}

// Nop discards records.
type Nop struct{}

// Trace implements Tracer.
func (Nop) Trace(*Record) {}
