package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/panelbot/internal/adapters/storage"
	"github.com/alejandrodnm/panelbot/internal/domain"
	"github.com/alejandrodnm/panelbot/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSnapshot(at time.Time, value float64) ports.Snapshot {
	return ports.Snapshot{
		TakenAt:    at,
		Currency:   "USD",
		TotalValue: value,
		TotalPnL:   value * 0.01,
		AssetCount: 3,
		BotRunning: true,
	}
}

func TestSQLiteStorage_SnapshotRoundTrip(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, db.SaveSnapshot(context.Background(), makeSnapshot(now.Add(-time.Hour), 1000)))
	require.NoError(t, db.SaveSnapshot(context.Background(), makeSnapshot(now, 1200)))

	snaps, err := db.GetSnapshots(context.Background(), now.Add(-2*time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	// ascendente por fecha
	assert.InDelta(t, 1000.0, snaps[0].TotalValue, 0.001)
	assert.InDelta(t, 1200.0, snaps[1].TotalValue, 0.001)
	assert.True(t, snaps[1].BotRunning)
	assert.Equal(t, 3, snaps[1].AssetCount)
}

func TestSQLiteStorage_GetSnapshots_EmptyRange(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	snaps, err := db.GetSnapshots(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestSQLiteStorage_TradesUpsert(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ts := time.Now().UTC().Truncate(time.Second)
	trades := []domain.Trade{
		{ID: "t1", Timestamp: ts, Symbol: "BTC/USDT", Side: domain.SideBuy, Quantity: 0.1, Price: 90000},
	}
	require.NoError(t, db.SaveTrades(context.Background(), trades))

	// mismo id, datos actualizados → una sola fila con el pnl nuevo
	trades[0].PnL = 42.5
	require.NoError(t, db.SaveTrades(context.Background(), trades))

	got, err := db.GetTrades(context.Background(), ts.Add(-time.Minute), ts.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 42.5, got[0].PnL, 0.001)
	assert.Equal(t, domain.SideBuy, got[0].Side)
}

func TestSQLiteStorage_SkipsTradesWithoutTimestamp(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	// id posicional sin timestamp: identidad no estable, no se persiste
	trades := []domain.Trade{
		{ID: "1", Symbol: "BTC", Side: domain.SideUnknown},
		{ID: "real", Timestamp: time.Now().UTC(), Symbol: "ETH", Side: domain.SideSell},
	}
	require.NoError(t, db.SaveTrades(context.Background(), trades))

	got, err := db.GetTrades(context.Background(), time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "real", got[0].ID)
}

func TestSQLiteStorage_SaveEmptySlice(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.SaveTrades(context.Background(), nil))
}
