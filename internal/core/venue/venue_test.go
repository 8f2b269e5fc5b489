package venue_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ionex-markets/matchcore/internal/core/matcherr"
	"github.com/ionex-markets/matchcore/internal/core/types"
	"github.com/ionex-markets/matchcore/internal/core/venue"
)

func price(s string) *types.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func qty(s string) types.Decimal {
	return decimal.RequireFromString(s)
}

func TestMultiEngine_AddInstrumentRejectsDuplicate(t *testing.T) {
	v := venue.New()
	require.NoError(t, v.AddInstrument(1, "BTC-USD"))
	err := v.AddInstrument(1, "BTC-USD")
	require.Error(t, err)
	assert.True(t, matcherr.Is(err, matcherr.DuplicateInstrument))
}

func TestMultiEngine_RemoveInstrumentRejectsWhenResting(t *testing.T) {
	v := venue.New()
	require.NoError(t, v.AddInstrument(1, "BTC-USD"))
	_, _, err := v.Submit(types.Order{OrderID: 1, InstrumentID: 1, Side: types.Buy, Type: types.Limit, Quantity: qty("1"), Price: price("100"), TIF: types.GTC})
	require.NoError(t, err)

	err = v.RemoveInstrument(1)
	require.Error(t, err)
	assert.True(t, matcherr.Is(err, matcherr.InstrumentInUse))

	_, ok := v.Cancel(1)
	require.True(t, ok)
	require.NoError(t, v.RemoveInstrument(1))
}

func TestMultiEngine_SubmitRoutesByInstrument(t *testing.T) {
	v := venue.New()
	require.NoError(t, v.AddInstrument(1, "BTC-USD"))
	require.NoError(t, v.AddInstrument(2, "ETH-USD"))

	_, _, err := v.Submit(types.Order{OrderID: 1, InstrumentID: 1, Side: types.Buy, Type: types.Limit, Quantity: qty("1"), Price: price("100"), TIF: types.GTC})
	require.NoError(t, err)
	_, _, err = v.Submit(types.Order{OrderID: 2, InstrumentID: 2, Side: types.Buy, Type: types.Limit, Quantity: qty("1"), Price: price("200"), TIF: types.GTC})
	require.NoError(t, err)

	btcTop, ok := v.BookSnapshot(1)
	require.True(t, ok)
	require.NotNil(t, btcTop.BestBid)
	assert.True(t, btcTop.BestBid.Equal(qty("100")))

	ethTop, ok := v.BookSnapshot(2)
	require.True(t, ok)
	require.NotNil(t, ethTop.BestBid)
	assert.True(t, ethTop.BestBid.Equal(qty("200")))
}

func TestMultiEngine_SubmitUnknownInstrument(t *testing.T) {
	v := venue.New()
	_, _, err := v.Submit(types.Order{OrderID: 1, InstrumentID: 99, Type: types.Limit, Quantity: qty("1"), Price: price("1")})
	require.Error(t, err)
	assert.True(t, matcherr.Is(err, matcherr.UnknownInstrument))
}

func TestMultiEngine_CancelRoutesAcrossInstruments(t *testing.T) {
	v := venue.New()
	require.NoError(t, v.AddInstrument(1, "A"))
	require.NoError(t, v.AddInstrument(2, "B"))
	_, _, err := v.Submit(types.Order{OrderID: 1, InstrumentID: 2, Side: types.Buy, Type: types.Limit, Quantity: qty("1"), Price: price("5"), TIF: types.GTC})
	require.NoError(t, err)

	instrumentID, ok := v.Cancel(1)
	require.True(t, ok)
	assert.Equal(t, types.InstrumentID(2), instrumentID)

	_, ok = v.Cancel(1)
	assert.False(t, ok, "cancel is idempotent: the order is gone from the index now")
}

func TestMultiEngine_ModifyForbidsCrossInstrumentMove(t *testing.T) {
	v := venue.New()
	require.NoError(t, v.AddInstrument(1, "A"))
	require.NoError(t, v.AddInstrument(2, "B"))
	_, _, err := v.Submit(types.Order{OrderID: 1, InstrumentID: 1, Side: types.Buy, Type: types.Limit, Quantity: qty("1"), Price: price("5"), TIF: types.GTC})
	require.NoError(t, err)

	_, _, err = v.Modify(1, types.Order{OrderID: 1, InstrumentID: 2, Side: types.Buy, Type: types.Limit, Quantity: qty("1"), Price: price("5"), TIF: types.GTC})
	require.Error(t, err)
	assert.True(t, matcherr.Is(err, matcherr.InstrumentMismatch))
}

func TestMultiEngine_SnapshotRoundTrip(t *testing.T) {
	v := venue.New()
	require.NoError(t, v.AddInstrument(1, "BTC-USD"))
	require.NoError(t, v.AddInstrument(2, "ETH-USD"))

	_, _, err := v.Submit(types.Order{OrderID: 1, InstrumentID: 1, Side: types.Buy, Type: types.Limit, Quantity: qty("2"), Price: price("100"), TIF: types.GTC})
	require.NoError(t, err)
	_, _, err = v.Submit(types.Order{OrderID: 2, InstrumentID: 1, Side: types.Buy, Type: types.Limit, Quantity: qty("3"), Price: price("100"), TIF: types.GTC})
	require.NoError(t, err)
	_, _, err = v.Submit(types.Order{OrderID: 3, InstrumentID: 2, Side: types.Sell, Type: types.Limit, Quantity: qty("1"), Price: price("50"), TIF: types.GTC})
	require.NoError(t, err)

	snap := v.Snapshot()

	restored := venue.New()
	require.NoError(t, restored.LoadSnapshot(snap))

	resnap := restored.Snapshot()
	assert.Equal(t, snap.NextTradeID, resnap.NextTradeID)
	assert.Equal(t, snap.NextExecID, resnap.NextExecID)
	require.Len(t, resnap.Books[1], 2)
	assert.Equal(t, types.OrderID(1), resnap.Books[1][0].OrderID, "time priority must survive the round trip")
	assert.Equal(t, types.OrderID(2), resnap.Books[1][1].OrderID)

	// Time priority check: a sell crossing both resting buys must fill
	// order 1 first.
	trades, _, err := restored.Submit(types.Order{OrderID: 4, InstrumentID: 1, Side: types.Sell, Type: types.Limit, Quantity: qty("2"), Price: price("100"), TIF: types.GTC, TraderID: 9})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, types.OrderID(1), trades[0].BuyOrderID)
}

func TestMultiEngine_IndexStaysConsistentAfterFullFill(t *testing.T) {
	v := venue.New()
	require.NoError(t, v.AddInstrument(1, "A"))

	_, _, err := v.Submit(types.Order{OrderID: 1, InstrumentID: 1, Side: types.Buy, Type: types.Limit, Quantity: qty("5"), Price: price("10"), TIF: types.GTC, TraderID: 1})
	require.NoError(t, err)
	_, _, err = v.Submit(types.Order{OrderID: 2, InstrumentID: 1, Side: types.Sell, Type: types.Limit, Quantity: qty("5"), Price: price("10"), TIF: types.GTC, TraderID: 2})
	require.NoError(t, err)

	// Both orders fully filled: neither should be cancelable via the index.
	_, ok := v.Cancel(1)
	assert.False(t, ok)
	_, ok = v.Cancel(2)
	assert.False(t, ok)
}
