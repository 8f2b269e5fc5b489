package matchingengine_test

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ionex-markets/matchcore/internal/core/types"
	"github.com/ionex-markets/matchcore/internal/core/venue"
	"github.com/ionex-markets/matchcore/pkg/matchingengine"
)

func price(s string) *types.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestLocked_SerializesConcurrentSubmits(t *testing.T) {
	v := venue.New()
	require.NoError(t, v.AddInstrument(1, "A"))
	locked := matchingengine.NewLocked(v)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, _, err := locked.Submit(types.Order{
				OrderID:      types.OrderID(i + 1),
				InstrumentID: 1,
				Side:         types.Buy,
				Type:         types.Limit,
				Quantity:     decimal.NewFromInt(1),
				Price:        price("10"),
				TIF:          types.GTC,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	snap := locked.Snapshot()
	assert.Len(t, snap.Books[1], n, "every concurrent submit must have landed exactly once")
}
