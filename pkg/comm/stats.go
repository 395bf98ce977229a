package comm

import "sync/atomic"

// Stats counts the activity of a Transport.
type Stats struct {
	Opens         uint64
	Closes        uint64
	TxBytes       uint64
	RxBytes       uint64
	TxErrors      uint64
	RxErrors      uint64
	Callbacks     uint64
	DroppedEvents uint64
}

type counters struct {
	opens, closes      uint64
	txBytes, rxBytes   uint64
	txErrors, rxErrors uint64
	callbacks, dropped uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Opens:         atomic.LoadUint64(&c.opens),
		Closes:        atomic.LoadUint64(&c.closes),
		TxBytes:       atomic.LoadUint64(&c.txBytes),
		RxBytes:       atomic.LoadUint64(&c.rxBytes),
		TxErrors:      atomic.LoadUint64(&c.txErrors),
		RxErrors:      atomic.LoadUint64(&c.rxErrors),
		Callbacks:     atomic.LoadUint64(&c.callbacks),
		DroppedEvents: atomic.LoadUint64(&c.dropped),
	}
}
