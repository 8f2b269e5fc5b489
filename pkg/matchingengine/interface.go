// Package matchingengine defines the uniform operation surface protocol
// adapters drive (spec.md §2, component C6), and a mutual-exclusion wrapper
// satisfying spec.md §5's "caller wraps the engine in a single lock"
// requirement.
package matchingengine

import (
	"github.com/ionex-markets/matchcore/internal/core/types"
	"github.com/ionex-markets/matchcore/internal/core/venue"
)

// MatchingEngine is the operation surface every protocol adapter (REST,
// WebSocket, FIX, or a test harness) is built against. *venue.MultiEngine
// implements it directly; production callers drive it through Locked.
type MatchingEngine interface {
	Submit(order types.Order) ([]types.Trade, []types.ExecutionReport, error)
	Cancel(id types.OrderID) (types.InstrumentID, bool)
	Modify(id types.OrderID, replacement types.Order) ([]types.Trade, []types.ExecutionReport, error)
	ListInstruments() []venue.InstrumentInfo
	BookSnapshot(id types.InstrumentID) (venue.TopOfBook, bool)
	AddInstrument(id types.InstrumentID, symbol string) error
	RemoveInstrument(id types.InstrumentID) error
	Snapshot() venue.Snapshot
	LoadSnapshot(s venue.Snapshot) error
}

var _ MatchingEngine = (*venue.MultiEngine)(nil)
