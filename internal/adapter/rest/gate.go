package rest

import "sync/atomic"

// Gate is the external market-state switch spec.md §6(d) describes: the
// core itself enforces no open/halted state, so the adapter checks this
// before submit/modify and never before cancel.
type Gate struct {
	open atomic.Bool
}

// NewGate returns a Gate that starts open.
func NewGate() *Gate {
	g := &Gate{}
	g.open.Store(true)
	return g
}

// Open reports whether new submits/modifies are currently accepted.
func (g *Gate) Open() bool {
	return g.open.Load()
}

// SetOpen toggles the gate. Intended for an admin-only control path.
func (g *Gate) SetOpen(open bool) {
	g.open.Store(open)
}
