package matching_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ionex-markets/matchcore/internal/core/book"
	"github.com/ionex-markets/matchcore/internal/core/matching"
	"github.com/ionex-markets/matchcore/internal/core/types"
)

const instrument types.InstrumentID = 1

func price(s string) *types.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func qty(s string) types.Decimal {
	return decimal.RequireFromString(s)
}

func restResting(t *testing.T, b *book.Book, orderID types.OrderID, side types.Side, px string, q string, trader types.TraderID) {
	t.Helper()
	trades, reports := matching.Match(b, types.Order{
		OrderID:      orderID,
		InstrumentID: instrument,
		Side:         side,
		Type:         types.Limit,
		Quantity:     qty(q),
		Price:        price(px),
		TIF:          types.GTC,
		TraderID:     trader,
	}, 1, 1)
	require.Empty(t, trades)
	require.Len(t, reports, 1)
}

func TestMatch_FullFillAggressorAndResting(t *testing.T) {
	b := book.New(instrument)
	restResting(t, b, 1, types.Buy, "100.00", "10", 1)

	trades, reports := matching.Match(b, types.Order{
		OrderID:      2,
		InstrumentID: instrument,
		Side:         types.Sell,
		Type:         types.Limit,
		Quantity:     qty("10"),
		Price:        price("100.00"),
		TIF:          types.GTC,
		TraderID:     2,
	}, 100, 100)

	require.Len(t, trades, 1)
	assert.True(t, trades[0].Price.Equal(qty("100.00")))
	assert.True(t, trades[0].Quantity.Equal(qty("10")))
	assert.Equal(t, types.OrderID(1), trades[0].BuyOrderID)
	assert.Equal(t, types.OrderID(2), trades[0].SellOrderID)
	assert.Equal(t, types.Sell, trades[0].Aggressor)

	require.Len(t, reports, 2)
	assert.Equal(t, types.OrderID(1), reports[0].OrderID)
	assert.Equal(t, types.StatusFilled, reports[0].OrderStatus)
	assert.Equal(t, types.OrderID(2), reports[1].OrderID)
	assert.Equal(t, types.StatusFilled, reports[1].OrderStatus)
	assert.True(t, reports[1].RemainingQuantity.Equal(types.Zero))

	assert.False(t, b.HasRestingOrders())
}

func TestMatch_PartialFillRestsRemainder(t *testing.T) {
	b := book.New(instrument)
	restResting(t, b, 1, types.Sell, "50.00", "5", 1)

	trades, reports := matching.Match(b, types.Order{
		OrderID:      2,
		InstrumentID: instrument,
		Side:         types.Buy,
		Type:         types.Limit,
		Quantity:     qty("20"),
		Price:        price("50.00"),
		TIF:          types.GTC,
		TraderID:     2,
	}, 1, 1)

	require.Len(t, trades, 1)
	assert.True(t, trades[0].Quantity.Equal(qty("5")))

	last := reports[len(reports)-1]
	assert.Equal(t, types.OrderID(2), last.OrderID)
	assert.Equal(t, types.StatusPartiallyFilled, last.OrderStatus)
	assert.True(t, last.RemainingQuantity.Equal(qty("15")))

	assert.True(t, b.HasRestingOrders())
	resting := b.SnapshotResting()
	require.Len(t, resting, 1)
	assert.Equal(t, types.OrderID(2), resting[0].OrderID)
	assert.True(t, resting[0].Remaining.Equal(qty("15")))
}

func TestMatch_IOCCancelsUnfilledRemainder(t *testing.T) {
	b := book.New(instrument)
	restResting(t, b, 1, types.Sell, "10.00", "3", 1)

	_, reports := matching.Match(b, types.Order{
		OrderID:      2,
		InstrumentID: instrument,
		Side:         types.Buy,
		Type:         types.Limit,
		Quantity:     qty("8"),
		Price:        price("10.00"),
		TIF:          types.IOC,
		TraderID:     2,
	}, 1, 1)

	last := reports[len(reports)-1]
	assert.Equal(t, types.StatusPartiallyFilled, last.OrderStatus)
	assert.True(t, last.FilledQuantity.Equal(qty("3")))
	assert.False(t, b.HasRestingOrders())
}

func TestMatch_IOCNoFillsIsSingleCanceledReport(t *testing.T) {
	b := book.New(instrument)

	trades, reports := matching.Match(b, types.Order{
		OrderID:      1,
		InstrumentID: instrument,
		Side:         types.Buy,
		Type:         types.Limit,
		Quantity:     qty("8"),
		Price:        price("10.00"),
		TIF:          types.IOC,
		TraderID:     1,
	}, 1, 1)

	assert.Empty(t, trades)
	require.Len(t, reports, 1)
	assert.Equal(t, types.StatusCanceled, reports[0].OrderStatus)
	assert.True(t, reports[0].RemainingQuantity.Equal(qty("8")))
}

func TestMatch_FOKCancelsWhenInsufficientLiquidity(t *testing.T) {
	b := book.New(instrument)
	restResting(t, b, 1, types.Sell, "10.00", "3", 1)

	trades, reports := matching.Match(b, types.Order{
		OrderID:      2,
		InstrumentID: instrument,
		Side:         types.Buy,
		Type:         types.Limit,
		Quantity:     qty("8"),
		Price:        price("10.00"),
		TIF:          types.FOK,
		TraderID:     2,
	}, 1, 1)

	assert.Empty(t, trades)
	require.Len(t, reports, 1)
	assert.Equal(t, types.StatusCanceled, reports[0].OrderStatus)

	resting := b.SnapshotResting()
	require.Len(t, resting, 1)
	assert.True(t, resting[0].Remaining.Equal(qty("3")), "FOK reject must leave book untouched")
}

func TestMatch_FOKFillsWhenSufficientLiquidity(t *testing.T) {
	b := book.New(instrument)
	restResting(t, b, 1, types.Sell, "10.00", "5", 1)
	restResting(t, b, 2, types.Sell, "10.00", "5", 1)

	trades, reports := matching.Match(b, types.Order{
		OrderID:      3,
		InstrumentID: instrument,
		Side:         types.Buy,
		Type:         types.Limit,
		Quantity:     qty("8"),
		Price:        price("10.00"),
		TIF:          types.FOK,
		TraderID:     3,
	}, 1, 1)

	require.Len(t, trades, 2)
	assert.True(t, trades[0].Quantity.Equal(qty("5")))
	assert.True(t, trades[1].Quantity.Equal(qty("3")))
	last := reports[len(reports)-1]
	assert.Equal(t, types.StatusFilled, last.OrderStatus)
}

func TestMatch_SelfTradePreventionSkipsOwnRestingOrder(t *testing.T) {
	b := book.New(instrument)
	restResting(t, b, 1, types.Sell, "10.00", "5", 42)
	restResting(t, b, 2, types.Sell, "10.00", "5", 99)

	trades, reports := matching.Match(b, types.Order{
		OrderID:      3,
		InstrumentID: instrument,
		Side:         types.Buy,
		Type:         types.Limit,
		Quantity:     qty("5"),
		Price:        price("10.00"),
		TIF:          types.GTC,
		TraderID:     42,
	}, 1, 1)

	require.Len(t, trades, 1)
	assert.Equal(t, types.OrderID(2), trades[0].SellOrderID, "must skip own resting order 1 and match order 2 instead")

	last := reports[len(reports)-1]
	assert.Equal(t, types.StatusFilled, last.OrderStatus)

	resting := b.SnapshotResting()
	require.Len(t, resting, 1)
	assert.Equal(t, types.OrderID(1), resting[0].OrderID, "skipped self-trade order must remain resting")
}

func TestMatch_PriceTimePriorityAcrossTwoSellers(t *testing.T) {
	b := book.New(instrument)
	restResting(t, b, 1, types.Sell, "10.00", "5", 1)
	restResting(t, b, 2, types.Sell, "9.00", "5", 2)
	restResting(t, b, 3, types.Sell, "9.00", "5", 3)

	trades, _ := matching.Match(b, types.Order{
		OrderID:      4,
		InstrumentID: instrument,
		Side:         types.Buy,
		Type:         types.Limit,
		Quantity:     qty("7"),
		Price:        price("10.00"),
		TIF:          types.GTC,
		TraderID:     4,
	}, 1, 1)

	require.Len(t, trades, 2)
	assert.Equal(t, types.OrderID(2), trades[0].SellOrderID, "best price (9.00) fills first")
	assert.True(t, trades[0].Quantity.Equal(qty("5")))
	assert.Equal(t, types.OrderID(3), trades[1].SellOrderID, "same-price orders fill in time order")
	assert.True(t, trades[1].Quantity.Equal(qty("2")))
}

func TestMatch_AggressorAvgPriceIsVolumeWeighted(t *testing.T) {
	b := book.New(instrument)
	restResting(t, b, 1, types.Sell, "10.00", "5", 1)
	restResting(t, b, 2, types.Sell, "11.00", "5", 2)

	_, reports := matching.Match(b, types.Order{
		OrderID:      3,
		InstrumentID: instrument,
		Side:         types.Buy,
		Type:         types.Market,
		Quantity:     qty("10"),
		TIF:          types.IOC,
		TraderID:     3,
	}, 1, 1)

	last := reports[len(reports)-1]
	require.NotNil(t, last.AvgPrice)
	assert.True(t, last.AvgPrice.Equal(qty("10.50")), "volume-weighted avg of (5@10 + 5@11)/10 = 10.50")
}
