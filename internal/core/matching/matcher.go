// Package matching implements the matcher (spec.md §4.2, component C3): a
// pure function over one book and one incoming order that produces the
// ordered (trades, reports) the rest of the system treats as ground truth.
//
// Match never performs I/O, never retries, and never returns an error — any
// condition that would otherwise fail is converted into a Rejected/Canceled
// ExecutionReport (spec.md §7's propagation policy). The errors Book.Add can
// raise (instrument mismatch, no price, bad quantity, an order id that is
// already resting) do not arise here as long as the caller validated the
// order and its order id is unique, as types.OrderID requires: Match only
// ever calls Add with a remainder it built itself from that order, and
// ignores Add's result.
package matching

import (
	"github.com/ionex-markets/matchcore/internal/core/book"
	"github.com/ionex-markets/matchcore/internal/core/types"
)

// Match runs the incoming order against book, mutating it, and returns the
// trades and execution reports it produced. Trade ids are assigned
// sequentially starting at nextTradeID, one per trade; execution ids are
// assigned sequentially starting at nextExecID, one per report. The caller
// advances its own counters by len(trades) and len(reports) respectively.
func Match(b *book.Book, order types.Order, nextTradeID types.TradeID, nextExecID types.ExecutionID) ([]types.Trade, []types.ExecutionReport) {
	opposite := order.Side.Opposite()
	priceLimit := priceLimitFor(order)

	if order.TIF == types.FOK {
		available := b.AvailableQty(opposite, priceLimit, order.TraderID)
		if available.LessThan(order.Quantity) {
			report := types.ExecutionReport{
				OrderID:           order.OrderID,
				ExecID:            nextExecID,
				ExecType:          types.ExecCanceled,
				OrderStatus:       types.StatusCanceled,
				FilledQuantity:    types.Zero,
				RemainingQuantity: order.Quantity,
				Timestamp:         order.Timestamp,
			}
			return nil, []types.ExecutionReport{report}
		}
	}

	fills := b.TakeFrom(opposite, priceLimit, order.Quantity, order.TraderID)

	trades := make([]types.Trade, 0, len(fills))
	reports := make([]types.ExecutionReport, 0, len(fills)+1)

	tradeID := nextTradeID
	execID := nextExecID

	filled := types.Zero
	notional := types.Zero
	var lastQty, lastPx *types.Decimal

	for _, f := range fills {
		buyOrderID, sellOrderID := order.OrderID, f.RestingOrderID
		if order.Side == types.Sell {
			buyOrderID, sellOrderID = f.RestingOrderID, order.OrderID
		}

		trades = append(trades, types.Trade{
			TradeID:      tradeID,
			InstrumentID: order.InstrumentID,
			BuyOrderID:   buyOrderID,
			SellOrderID:  sellOrderID,
			Price:        f.Price,
			Quantity:     f.Quantity,
			Timestamp:    order.Timestamp,
			Aggressor:    order.Side,
		})
		tradeID++

		restingExecType := types.ExecPartialFill
		restingStatus := types.StatusPartiallyFilled
		if f.RestingFullyFilled {
			restingExecType = types.ExecFill
			restingStatus = types.StatusFilled
		}
		price, qty := f.Price, f.Quantity
		reports = append(reports, types.ExecutionReport{
			OrderID:           f.RestingOrderID,
			ExecID:            execID,
			ExecType:          restingExecType,
			OrderStatus:       restingStatus,
			FilledQuantity:    f.Quantity,
			RemainingQuantity: types.Zero,
			AvgPrice:          &price,
			LastQty:           &qty,
			LastPx:            &price,
			Timestamp:         order.Timestamp,
		})
		execID++

		filled = filled.Add(f.Quantity)
		notional = notional.Add(f.Price.Mul(f.Quantity))
		lastQty, lastPx = &qty, &price
	}

	if order.TIF == types.IOC && len(fills) == 0 {
		reports = append(reports, types.ExecutionReport{
			OrderID:           order.OrderID,
			ExecID:            execID,
			ExecType:          types.ExecCanceled,
			OrderStatus:       types.StatusCanceled,
			FilledQuantity:    types.Zero,
			RemainingQuantity: order.Quantity,
			Timestamp:         order.Timestamp,
		})
		return trades, reports
	}

	remaining := order.Quantity.Sub(filled)

	aggressorExecType := types.ExecNew
	aggressorStatus := types.StatusNew
	switch {
	case remaining.LessThanOrEqual(types.Zero):
		aggressorExecType = types.ExecFill
		aggressorStatus = types.StatusFilled
	case filled.GreaterThan(types.Zero):
		aggressorExecType = types.ExecPartialFill
		aggressorStatus = types.StatusPartiallyFilled
	}

	var avgPrice *types.Decimal
	if filled.GreaterThan(types.Zero) {
		avg := notional.Div(filled)
		avgPrice = &avg
	}

	reports = append(reports, types.ExecutionReport{
		OrderID:           order.OrderID,
		ExecID:            execID,
		ExecType:          aggressorExecType,
		OrderStatus:       aggressorStatus,
		FilledQuantity:    filled,
		RemainingQuantity: remaining,
		AvgPrice:          avgPrice,
		LastQty:           lastQty,
		LastPx:            lastPx,
		Timestamp:         order.Timestamp,
	})

	if order.TIF == types.GTC && remaining.GreaterThan(types.Zero) && order.HasPrice() {
		rest := order
		rest.Quantity = remaining
		// Instrument, price and quantity were already validated by the
		// engine before Match was called; the remainder's order id is the
		// aggressor's own, which is not resting as long as order ids are
		// unique. An Add error is ignored.
		_ = b.Add(rest)
	}

	return trades, reports
}

// priceLimitFor returns the matcher's price bound for the incoming order:
// the order's own limit price for Limit orders, or nil ("no limit") for
// Market orders — equivalent to spec.md §4.2's +∞/0 sentinels, since prices
// are never negative.
func priceLimitFor(order types.Order) *types.Decimal {
	if order.Type == types.Market {
		return nil
	}
	return order.Price
}
