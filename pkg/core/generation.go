package core

import "sync/atomic"

// Generation hands out tickets for one kind of asynchronous operation.
// Only the holder of the newest ticket may apply its result; older responses
// are stale and must be dropped.
type Generation struct {
	n atomic.Uint64
}

// Next issues a new ticket, invalidating every ticket issued before it.
func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

// Current reports whether ticket is still the newest one.
func (g *Generation) Current(ticket uint64) bool {
	return g.n.Load() == ticket
}
