package persistence_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ionex-markets/matchcore/internal/adapter/persistence"
	"github.com/ionex-markets/matchcore/internal/core/types"
	"github.com/ionex-markets/matchcore/internal/core/venue"
)

func newTestRepo(t *testing.T) *persistence.SnapshotRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	repo := persistence.NewSnapshotRepository(db, zap.NewNop())
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestSnapshotRepository_GetLatestOnEmptyStoreReturnsFalse(t *testing.T) {
	repo := newTestRepo(t)
	_, found, err := repo.GetLatest(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSnapshotRepository_RoundTripPreservesExactDecimal(t *testing.T) {
	repo := newTestRepo(t)

	snap := venue.Snapshot{
		Instruments: []venue.InstrumentInfo{{InstrumentID: 1, Symbol: "BTC-USD"}},
		Books: map[types.InstrumentID][]types.RestingOrder{
			1: {{
				OrderID:      1,
				InstrumentID: 1,
				Side:         types.Buy,
				Price:        decimal.RequireFromString("12345.6789012345678901234567890"),
				Remaining:    decimal.RequireFromString("3.5"),
				TraderID:     7,
			}},
		},
		OrderToInstrument: map[types.OrderID]types.InstrumentID{1: 1},
		NextTradeID:       42,
		NextExecID:        99,
	}

	require.NoError(t, repo.Create(context.Background(), snap))

	loaded, found, err := repo.GetLatest(context.Background())
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, snap.NextTradeID, loaded.NextTradeID)
	assert.Equal(t, snap.NextExecID, loaded.NextExecID)
	require.Len(t, loaded.Books[1], 1)
	assert.True(t, loaded.Books[1][0].Price.Equal(snap.Books[1][0].Price), "exact decimal precision must survive the JSON round trip")
}

func TestSnapshotRepository_GetLatestReturnsMostRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, venue.Snapshot{NextTradeID: 1}))
	require.NoError(t, repo.Create(ctx, venue.Snapshot{NextTradeID: 2}))

	loaded, found, err := repo.GetLatest(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.TradeID(2), loaded.NextTradeID)
}
