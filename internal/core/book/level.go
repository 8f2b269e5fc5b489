package book

import (
	"container/list"

	"github.com/google/btree"

	"github.com/ionex-markets/matchcore/internal/core/types"
)

const btreeDegree = 32

// entry is one resting order sitting in a price level's FIFO queue.
type entry struct {
	orderID   types.OrderID
	remaining types.Decimal
	traderID  types.TraderID
}

// level is one price's FIFO queue of resting orders.
type level struct {
	price   types.Decimal
	entries *list.List // of *entry, front = oldest = highest time priority
}

func newLevel(price types.Decimal) *level {
	return &level{price: price, entries: list.New()}
}

func (l *level) isEmpty() bool {
	return l.entries.Len() == 0
}

// levelItem adapts a *level to btree.Item, ordered by price ascending.
type levelItem struct {
	level *level
}

func (i *levelItem) Less(than btree.Item) bool {
	return i.level.price.LessThan(than.(*levelItem).level.price)
}

// side is one side (bids or asks) of an OrderBook: an ordered map of price
// to FIFO queue, backed by a B-tree for O(log P) best-price lookup and
// insertion, following the ordered-price-level structure used for CEX-style
// order books (see DESIGN.md).
type side struct {
	tree *btree.BTree
	desc bool // true for bids (best = highest price), false for asks
}

func newSide(desc bool) *side {
	return &side{tree: btree.New(btreeDegree), desc: desc}
}

func (s *side) get(price types.Decimal) *level {
	item := s.tree.Get(&levelItem{level: &level{price: price}})
	if item == nil {
		return nil
	}
	return item.(*levelItem).level
}

func (s *side) getOrCreate(price types.Decimal) *level {
	if l := s.get(price); l != nil {
		return l
	}
	l := newLevel(price)
	s.tree.ReplaceOrInsert(&levelItem{level: l})
	return l
}

func (s *side) remove(price types.Decimal) {
	s.tree.Delete(&levelItem{level: &level{price: price}})
}

// best returns the best (most aggressive) price level, or nil if the side
// is empty.
func (s *side) best() *level {
	var item btree.Item
	if s.desc {
		item = s.tree.Max()
	} else {
		item = s.tree.Min()
	}
	if item == nil {
		return nil
	}
	return item.(*levelItem).level
}

func (s *side) len() int {
	return s.tree.Len()
}

// walk visits price levels from best toward (and including) limit, calling
// fn on each. If limit is nil there is no price bound (a market order).
// Iteration stops when fn returns false.
func (s *side) walk(limit *types.Decimal, fn func(*level) bool) {
	visit := func(item btree.Item) bool {
		l := item.(*levelItem).level
		if limit != nil {
			if s.desc && l.price.LessThan(*limit) {
				return false
			}
			if !s.desc && l.price.GreaterThan(*limit) {
				return false
			}
		}
		return fn(l)
	}
	if s.desc {
		s.tree.Descend(visit)
	} else {
		s.tree.Ascend(visit)
	}
}

// snapshotLevels returns every level in best-to-worst order, for
// SnapshotResting.
func (s *side) snapshotLevels() []*level {
	levels := make([]*level, 0, s.tree.Len())
	s.walk(nil, func(l *level) bool {
		levels = append(levels, l)
		return true
	})
	return levels
}
