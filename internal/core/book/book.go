// Package book implements the per-instrument two-sided order book (spec.md
// §4.1, component C2): price-ordered levels of FIFO-queued resting orders,
// with the add/cancel/take/snapshot/restore operations the matcher needs.
//
// Book does not lock: spec.md §5 places the single mutual-exclusion
// primitive at the caller (see pkg/matchingengine.Locked), and the matcher
// that drives Book is itself required to be a pure, synchronous function.
package book

import (
	"container/list"

	"github.com/ionex-markets/matchcore/internal/core/matcherr"
	"github.com/ionex-markets/matchcore/internal/core/types"
)

// indexEntry lets Cancel find an order's queue position without scanning:
// O(log P) to find the level by price, O(1) to unlink the list element.
type indexEntry struct {
	side Side
	lvl  *level
	elem *list.Element
}

// Side re-exports types.Side so callers of this package don't need to
// import types solely to name a side.
type Side = types.Side

const (
	Buy  = types.Buy
	Sell = types.Sell
)

// Book is the two-sided order book for one instrument.
type Book struct {
	InstrumentID types.InstrumentID

	bids *side
	asks *side

	index map[types.OrderID]*indexEntry
}

// New creates an empty book for the given instrument.
func New(instrumentID types.InstrumentID) *Book {
	return &Book{
		InstrumentID: instrumentID,
		bids:         newSide(true),
		asks:         newSide(false),
		index:        make(map[types.OrderID]*indexEntry),
	}
}

func (b *Book) sideFor(s Side) *side {
	if s == Buy {
		return b.bids
	}
	return b.asks
}

// Add appends a resting order to the tail of its price level's FIFO queue.
// The order must carry a price and must belong to this instrument; Market
// orders (no price) and quantity<=0 are rejected with InvalidOrder. The
// matcher is responsible for never calling Add with a crossing residue —
// Add itself does not check for a cross (spec §4.1: permitted at book
// level, the matcher's job to avoid).
func (b *Book) Add(order types.Order) error {
	if order.InstrumentID != b.InstrumentID {
		return matcherr.New(matcherr.InstrumentMismatch, "order instrument does not match book")
	}
	if !order.HasPrice() {
		return matcherr.New(matcherr.InvalidOrder, "resting order must carry a price")
	}
	if order.Quantity.LessThanOrEqual(types.Zero) {
		return matcherr.New(matcherr.InvalidOrder, "order quantity must be positive")
	}
	if _, exists := b.index[order.OrderID]; exists {
		return matcherr.Newf(matcherr.InvalidOrder, "order id %d already resting", order.OrderID)
	}

	price := *order.Price
	s := b.sideFor(order.Side)
	lvl := s.getOrCreate(price)
	elem := lvl.entries.PushBack(&entry{
		orderID:   order.OrderID,
		remaining: order.Quantity,
		traderID:  order.TraderID,
	})
	b.index[order.OrderID] = &indexEntry{side: order.Side, lvl: lvl, elem: elem}
	return nil
}

// Cancel removes the order from its queue and the index. Returns false
// (without error) if the id is unknown — cancel is idempotent.
func (b *Book) Cancel(orderID types.OrderID) bool {
	idx, ok := b.index[orderID]
	if !ok {
		return false
	}
	b.removeElement(idx)
	return true
}

func (b *Book) removeElement(idx *indexEntry) {
	idx.lvl.entries.Remove(idx.elem)
	e := idx.elem.Value.(*entry)
	delete(b.index, e.orderID)
	if idx.lvl.isEmpty() {
		b.sideFor(idx.side).remove(idx.lvl.price)
	}
}

// TakeFrom walks the opposite side from best price toward (and including)
// priceLimit, filling the incoming order's remaining quantity against
// resting entries in FIFO order within each level. Entries belonging to
// excludeTrader are skipped (self-trade prevention) but left resting.
// priceLimit == nil means no limit (a market order).
func (b *Book) TakeFrom(opposite Side, priceLimit *types.Decimal, quantity types.Decimal, excludeTrader types.TraderID) []types.Fill {
	fills := make([]types.Fill, 0)
	s := b.sideFor(opposite)
	remaining := quantity

	var levelsToRemove []*level
	s.walk(priceLimit, func(lvl *level) bool {
		elem := lvl.entries.Front()
		for elem != nil && remaining.GreaterThan(types.Zero) {
			next := elem.Next()
			e := elem.Value.(*entry)
			if e.traderID == excludeTrader {
				elem = next
				continue
			}

			matchQty := e.remaining
			if remaining.LessThan(matchQty) {
				matchQty = remaining
			}

			e.remaining = e.remaining.Sub(matchQty)
			remaining = remaining.Sub(matchQty)
			fullyFilled := e.remaining.LessThanOrEqual(types.Zero)

			fills = append(fills, types.Fill{
				RestingOrderID:     e.orderID,
				RestingTraderID:    e.traderID,
				Price:              lvl.price,
				Quantity:           matchQty,
				RestingFullyFilled: fullyFilled,
			})

			if fullyFilled {
				lvl.entries.Remove(elem)
				delete(b.index, e.orderID)
			}
			elem = next
		}
		if lvl.isEmpty() {
			levelsToRemove = append(levelsToRemove, lvl)
		}
		return remaining.GreaterThan(types.Zero)
	})

	for _, lvl := range levelsToRemove {
		s.remove(lvl.price)
	}

	return fills
}

// AvailableQty sums the eligible (non-self-trade, within priceLimit)
// resting quantity on the opposite side, without mutating the book. Used
// for the FOK pre-check.
func (b *Book) AvailableQty(opposite Side, priceLimit *types.Decimal, excludeTrader types.TraderID) types.Decimal {
	total := types.Zero
	b.sideFor(opposite).walk(priceLimit, func(lvl *level) bool {
		for elem := lvl.entries.Front(); elem != nil; elem = elem.Next() {
			e := elem.Value.(*entry)
			if e.traderID != excludeTrader {
				total = total.Add(e.remaining)
			}
		}
		return true
	})
	return total
}

// BestBid returns the best (highest) resting bid price, if any.
func (b *Book) BestBid() (types.Decimal, bool) {
	lvl := b.bids.best()
	if lvl == nil {
		return types.Zero, false
	}
	return lvl.price, true
}

// BestAsk returns the best (lowest) resting ask price, if any.
func (b *Book) BestAsk() (types.Decimal, bool) {
	lvl := b.asks.best()
	if lvl == nil {
		return types.Zero, false
	}
	return lvl.price, true
}

// HasRestingOrders reports whether any order rests on either side.
func (b *Book) HasRestingOrders() bool {
	return len(b.index) > 0
}

// SnapshotResting returns every resting order, ordered bids-before-asks and
// best-price-first, with FIFO order preserved within each level — the
// order IS the time priority, reproduced verbatim by LoadResting.
func (b *Book) SnapshotResting() []types.RestingOrder {
	out := make([]types.RestingOrder, 0, len(b.index))
	for _, s := range []*side{b.bids, b.asks} {
		sideTag := Buy
		if s == b.asks {
			sideTag = Sell
		}
		for _, lvl := range s.snapshotLevels() {
			for elem := lvl.entries.Front(); elem != nil; elem = elem.Next() {
				e := elem.Value.(*entry)
				out = append(out, types.RestingOrder{
					OrderID:      e.orderID,
					InstrumentID: b.InstrumentID,
					Side:         sideTag,
					Price:        lvl.price,
					Remaining:    e.remaining,
					TraderID:     e.traderID,
				})
			}
		}
	}
	return out
}

// LoadResting clears the book and re-adds the given resting orders in the
// supplied order, which becomes the new time priority.
func (b *Book) LoadResting(orders []types.RestingOrder) error {
	b.bids = newSide(true)
	b.asks = newSide(false)
	b.index = make(map[types.OrderID]*indexEntry)
	for _, o := range orders {
		price := o.Price
		if err := b.Add(types.Order{
			OrderID:      o.OrderID,
			InstrumentID: o.InstrumentID,
			Side:         o.Side,
			Type:         types.Limit,
			Quantity:     o.Remaining,
			Price:        &price,
			TIF:          types.GTC,
			TraderID:     o.TraderID,
		}); err != nil {
			return err
		}
	}
	return nil
}
