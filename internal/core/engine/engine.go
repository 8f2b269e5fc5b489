// Package engine implements the single-instrument Engine (spec.md §4.3,
// component C4): the book plus the counters the matcher needs, wired
// together behind Submit/Cancel/Modify.
package engine

import (
	"github.com/ionex-markets/matchcore/internal/core/book"
	"github.com/ionex-markets/matchcore/internal/core/matcherr"
	"github.com/ionex-markets/matchcore/internal/core/matching"
	"github.com/ionex-markets/matchcore/internal/core/types"
)

// Counters holds the monotonic trade/execution id generators. A MultiEngine
// shares a single Counters across every instrument's Engine so ids stay
// globally unique and ordered venue-wide, not just per instrument.
type Counters struct {
	NextTradeID types.TradeID
	NextExecID  types.ExecutionID
}

// NewCounters returns Counters starting at 1; 0 is reserved as the
// unset/sentinel value.
func NewCounters() *Counters {
	return &Counters{NextTradeID: 1, NextExecID: 1}
}

func (c *Counters) reserve(trades, reports int) (types.TradeID, types.ExecutionID) {
	tradeID, execID := c.NextTradeID, c.NextExecID
	c.NextTradeID += types.TradeID(trades)
	c.NextExecID += types.ExecutionID(reports)
	return tradeID, execID
}

// Engine owns one instrument's Book and drives the pure Matcher against it,
// advancing the shared Counters by the length of whatever the matcher
// returns (spec.md §4.2's pure-function/caller-advances-counters contract).
type Engine struct {
	InstrumentID types.InstrumentID

	book     *book.Book
	counters *Counters
}

// New creates an Engine for instrumentID, sharing counters with every other
// Engine in the same venue.
func New(instrumentID types.InstrumentID, counters *Counters) *Engine {
	return &Engine{
		InstrumentID: instrumentID,
		book:         book.New(instrumentID),
		counters:     counters,
	}
}

// Submit validates order against this instrument and runs it through the
// matcher. A structurally invalid order (limit-with-no-price, a market order
// carrying a price, or a non-positive quantity) never reaches the matcher
// and is reported as a Go error, matching spec.md §4.3's "Errors:"
// enumeration and §7's InvalidOrder recovery ("caller reports; no state
// change") — the same contract Modify already follows.
func (e *Engine) Submit(order types.Order) ([]types.Trade, []types.ExecutionReport, error) {
	if order.InstrumentID != e.InstrumentID {
		return nil, nil, matcherr.New(matcherr.InstrumentMismatch, "order routed to the wrong instrument engine")
	}
	if e.reject(order) {
		return nil, nil, matcherr.New(matcherr.InvalidOrder, "order is structurally invalid")
	}

	tradeID, execID := e.peekCounters()
	trades, reports := matching.Match(e.book, order, tradeID, execID)
	e.counters.reserve(len(trades), len(reports))
	return trades, reports, nil
}

func (e *Engine) peekCounters() (types.TradeID, types.ExecutionID) {
	return e.counters.NextTradeID, e.counters.NextExecID
}

// reject reports whether order is structurally invalid, so the matcher never
// has to handle it: a Limit order with no price or any non-positive quantity
// (both also refused by Book.Add), or a Market order carrying a price.
func (e *Engine) reject(order types.Order) bool {
	if order.Type == types.Limit && !order.HasPrice() {
		return true
	}
	if order.Type == types.Market && order.HasPrice() {
		return true
	}
	return order.Quantity.LessThanOrEqual(types.Zero)
}

// Cancel removes a resting order. Returns false if the id is not resting on
// this instrument's book.
func (e *Engine) Cancel(orderID types.OrderID) bool {
	return e.book.Cancel(orderID)
}

// Modify cancels the existing order and submits replacement as a brand new
// order, per spec.md §4.3: the replacement is validated before the existing
// order is touched, so a rejected replacement leaves the original resting
// order untouched. Time priority is never preserved across a Modify, even
// when the replacement's price and side are unchanged.
func (e *Engine) Modify(orderID types.OrderID, replacement types.Order) ([]types.Trade, []types.ExecutionReport, error) {
	if replacement.InstrumentID != e.InstrumentID {
		return nil, nil, matcherr.New(matcherr.InstrumentMismatch, "replacement order routed to the wrong instrument engine")
	}
	if e.reject(replacement) {
		return nil, nil, matcherr.New(matcherr.InvalidOrder, "replacement order is structurally invalid")
	}
	if !e.book.Cancel(orderID) {
		return nil, nil, matcherr.New(matcherr.UnknownOrder, "order is not resting on this instrument")
	}
	trades, reports, err := e.Submit(replacement)
	return trades, reports, err
}

// BestBid returns the best resting bid price, if any.
func (e *Engine) BestBid() (types.Decimal, bool) {
	return e.book.BestBid()
}

// BestAsk returns the best resting ask price, if any.
func (e *Engine) BestAsk() (types.Decimal, bool) {
	return e.book.BestAsk()
}

// HasRestingOrders reports whether the book is non-empty; used by
// MultiEngine.RemoveInstrument to enforce InstrumentInUse (spec.md §4.4).
func (e *Engine) HasRestingOrders() bool {
	return e.book.HasRestingOrders()
}

// SnapshotResting returns every resting order for persistence.
func (e *Engine) SnapshotResting() []types.RestingOrder {
	return e.book.SnapshotResting()
}

// LoadResting replaces the book's contents, restoring time priority in the
// order supplied.
func (e *Engine) LoadResting(orders []types.RestingOrder) error {
	return e.book.LoadResting(orders)
}
