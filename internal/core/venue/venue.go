// Package venue implements the multi-instrument facade (spec.md §4.4,
// component C5): N engines sharing one counter pool, an instrument
// registry, and an order-id index that lets cancel/modify route by order-id
// alone.
package venue

import (
	"sort"

	"github.com/ionex-markets/matchcore/internal/core/engine"
	"github.com/ionex-markets/matchcore/internal/core/matcherr"
	"github.com/ionex-markets/matchcore/internal/core/types"
)

// InstrumentInfo is the public view of a registered instrument.
type InstrumentInfo struct {
	InstrumentID types.InstrumentID
	Symbol       string
}

// TopOfBook is the best-bid/best-ask view of one instrument's book.
type TopOfBook struct {
	InstrumentID types.InstrumentID
	BestBid      *types.Decimal
	BestAsk      *types.Decimal
}

// Snapshot is the serializable state of a MultiEngine: every instrument,
// every book's resting orders in time-priority order, the order-id index,
// and the counter cursors. Adapters persist this as-is (see
// internal/adapter/persistence).
type Snapshot struct {
	Instruments       []InstrumentInfo
	Books             map[types.InstrumentID][]types.RestingOrder
	OrderToInstrument map[types.OrderID]types.InstrumentID
	NextTradeID       types.TradeID
	NextExecID        types.ExecutionID
}

// MultiEngine owns every instrument's Engine behind one shared counter pool
// and one order-id index. It performs no locking itself: spec.md §5 assigns
// mutual exclusion to the caller (see pkg/matchingengine.Locked).
type MultiEngine struct {
	engines  map[types.InstrumentID]*engine.Engine
	symbols  map[types.InstrumentID]string
	index    map[types.OrderID]types.InstrumentID
	counters *engine.Counters
}

// New creates an empty venue.
func New() *MultiEngine {
	return &MultiEngine{
		engines:  make(map[types.InstrumentID]*engine.Engine),
		symbols:  make(map[types.InstrumentID]string),
		index:    make(map[types.OrderID]types.InstrumentID),
		counters: engine.NewCounters(),
	}
}

// AddInstrument registers a fresh, empty book. Returns DuplicateInstrument
// if id is already registered.
func (m *MultiEngine) AddInstrument(id types.InstrumentID, symbol string) error {
	if _, exists := m.engines[id]; exists {
		return matcherr.Newf(matcherr.DuplicateInstrument, "instrument %d already registered", id)
	}
	m.engines[id] = engine.New(id, m.counters)
	m.symbols[id] = symbol
	return nil
}

// RemoveInstrument unregisters an instrument. Returns UnknownInstrument if
// id is not registered, or InstrumentInUse if its book still has resting
// orders.
func (m *MultiEngine) RemoveInstrument(id types.InstrumentID) error {
	e, ok := m.engines[id]
	if !ok {
		return matcherr.Newf(matcherr.UnknownInstrument, "instrument %d is not registered", id)
	}
	if e.HasRestingOrders() {
		return matcherr.Newf(matcherr.InstrumentInUse, "instrument %d still has resting orders", id)
	}
	delete(m.engines, id)
	delete(m.symbols, id)
	for orderID, instrumentID := range m.index {
		if instrumentID == id {
			delete(m.index, orderID)
		}
	}
	return nil
}

// ListInstruments returns every registered instrument. Iteration order is
// not meaningful on its own; results are sorted by id for determinism.
func (m *MultiEngine) ListInstruments() []InstrumentInfo {
	out := make([]InstrumentInfo, 0, len(m.engines))
	for id := range m.engines {
		out = append(out, InstrumentInfo{InstrumentID: id, Symbol: m.symbols[id]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstrumentID < out[j].InstrumentID })
	return out
}

// Submit routes order to its instrument's engine. If the aggressor rests
// (positive remaining quantity on its final report), the order-id index is
// updated so a later Cancel/Modify can find it.
func (m *MultiEngine) Submit(order types.Order) ([]types.Trade, []types.ExecutionReport, error) {
	e, ok := m.engines[order.InstrumentID]
	if !ok {
		return nil, nil, matcherr.Newf(matcherr.UnknownInstrument, "instrument %d is not registered", order.InstrumentID)
	}
	trades, reports, err := e.Submit(order)
	if err != nil {
		return nil, nil, err
	}
	if rests(order, reports) {
		m.index[order.OrderID] = order.InstrumentID
	}
	return trades, reports, nil
}

// rests reports whether the aggressor's final report left it resting on the
// book: GTC, carrying a limit price, structurally admitted (at least one
// report was produced), and a positive remaining quantity.
func rests(order types.Order, reports []types.ExecutionReport) bool {
	if order.TIF != types.GTC || !order.HasPrice() || len(reports) == 0 {
		return false
	}
	final := reports[len(reports)-1]
	return final.OrderStatus != types.StatusRejected && final.RemainingQuantity.GreaterThan(types.Zero)
}

// Cancel looks up order-id's instrument via the index and cancels it there.
// Returns (instrumentID, true) on success so the caller knows which book
// changed. A stale index entry (order already gone from the book) is
// repaired by removing it, and Cancel reports false.
func (m *MultiEngine) Cancel(orderID types.OrderID) (types.InstrumentID, bool) {
	instrumentID, ok := m.index[orderID]
	if !ok {
		return 0, false
	}
	e := m.engines[instrumentID]
	if e == nil || !e.Cancel(orderID) {
		delete(m.index, orderID)
		return 0, false
	}
	delete(m.index, orderID)
	return instrumentID, true
}

// Modify looks up the existing order's instrument via the index, forbids
// routing the replacement to a different instrument, and otherwise defers
// to Engine.Modify. The index is updated to reflect the replacement's
// resulting order-id (which may differ from orderID) and resting state.
func (m *MultiEngine) Modify(orderID types.OrderID, replacement types.Order) ([]types.Trade, []types.ExecutionReport, error) {
	instrumentID, ok := m.index[orderID]
	if !ok {
		return nil, nil, matcherr.Newf(matcherr.UnknownOrder, "order %d is not resting on any instrument", orderID)
	}
	if replacement.InstrumentID != instrumentID {
		return nil, nil, matcherr.New(matcherr.InstrumentMismatch, "modify may not move an order to a different instrument")
	}
	e := m.engines[instrumentID]
	trades, reports, err := e.Modify(orderID, replacement)
	if err != nil {
		return nil, nil, err
	}
	delete(m.index, orderID)
	if rests(replacement, reports) {
		m.index[replacement.OrderID] = instrumentID
	}
	return trades, reports, nil
}

// BookSnapshot returns the top-of-book view for one instrument.
func (m *MultiEngine) BookSnapshot(id types.InstrumentID) (TopOfBook, bool) {
	e, ok := m.engines[id]
	if !ok {
		return TopOfBook{}, false
	}
	top := TopOfBook{InstrumentID: id}
	if bid, ok := e.BestBid(); ok {
		top.BestBid = &bid
	}
	if ask, ok := e.BestAsk(); ok {
		top.BestAsk = &ask
	}
	return top, true
}

// Snapshot captures the entire venue for persistence.
func (m *MultiEngine) Snapshot() Snapshot {
	books := make(map[types.InstrumentID][]types.RestingOrder, len(m.engines))
	for id, e := range m.engines {
		books[id] = e.SnapshotResting()
	}
	orderToInstrument := make(map[types.OrderID]types.InstrumentID, len(m.index))
	for orderID, instrumentID := range m.index {
		orderToInstrument[orderID] = instrumentID
	}
	return Snapshot{
		Instruments:       m.ListInstruments(),
		Books:             books,
		OrderToInstrument: orderToInstrument,
		NextTradeID:       m.counters.NextTradeID,
		NextExecID:        m.counters.NextExecID,
	}
}

// LoadSnapshot clears all state and restores it from s. The restored
// resting-order order within each book is the restored time priority. The
// index is rebuilt by walking the restored books rather than trusting
// s.OrderToInstrument verbatim, so I4 (index consistency) holds regardless
// of what the snapshot's index section says. Fails atomically: on any
// error, the venue's prior state is left unchanged.
func (m *MultiEngine) LoadSnapshot(s Snapshot) error {
	next := New()
	next.counters.NextTradeID = s.NextTradeID
	next.counters.NextExecID = s.NextExecID

	for _, info := range s.Instruments {
		if err := next.AddInstrument(info.InstrumentID, info.Symbol); err != nil {
			return err
		}
	}
	for id, orders := range s.Books {
		e, ok := next.engines[id]
		if !ok {
			return matcherr.Newf(matcherr.UnknownInstrument, "snapshot references unregistered instrument %d", id)
		}
		if err := e.LoadResting(orders); err != nil {
			return err
		}
		for _, o := range orders {
			next.index[o.OrderID] = id
		}
	}

	*m = *next
	return nil
}
