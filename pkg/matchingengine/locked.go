package matchingengine

import (
	"sync"

	"github.com/ionex-markets/matchcore/internal/core/types"
	"github.com/ionex-markets/matchcore/internal/core/venue"
)

// Locked wraps a MatchingEngine behind a single sync.Mutex, holding the lock
// for exactly the duration of one call and releasing it before the adapter
// does any outbound I/O — spec.md §5's "operations are linearizable with
// respect to the lock" requirement, with no reader/writer split even for the
// read-only accessors.
type Locked struct {
	mu     sync.Mutex
	engine MatchingEngine
}

// NewLocked wraps engine for concurrent access.
func NewLocked(engine MatchingEngine) *Locked {
	return &Locked{engine: engine}
}

func (l *Locked) Submit(order types.Order) ([]types.Trade, []types.ExecutionReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Submit(order)
}

func (l *Locked) Cancel(id types.OrderID) (types.InstrumentID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Cancel(id)
}

func (l *Locked) Modify(id types.OrderID, replacement types.Order) ([]types.Trade, []types.ExecutionReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Modify(id, replacement)
}

func (l *Locked) ListInstruments() []venue.InstrumentInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.ListInstruments()
}

func (l *Locked) BookSnapshot(id types.InstrumentID) (venue.TopOfBook, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.BookSnapshot(id)
}

func (l *Locked) AddInstrument(id types.InstrumentID, symbol string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.AddInstrument(id, symbol)
}

func (l *Locked) RemoveInstrument(id types.InstrumentID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.RemoveInstrument(id)
}

func (l *Locked) Snapshot() venue.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Snapshot()
}

func (l *Locked) LoadSnapshot(s venue.Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.LoadSnapshot(s)
}

var _ MatchingEngine = (*Locked)(nil)
