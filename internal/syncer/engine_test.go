package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alejandrodnm/panelbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher sirve payloads fijos por recurso y cuenta los fetches.
// Los recursos en failing devuelven un soft failure.
type stubFetcher struct {
	mu       sync.Mutex
	payloads map[domain.Resource]string
	failing  map[domain.Resource]domain.FailureKind
	calls    map[domain.Resource]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		payloads: make(map[domain.Resource]string),
		failing:  make(map[domain.Resource]domain.FailureKind),
		calls:    make(map[domain.Resource]int),
	}
}

func (f *stubFetcher) Fetch(_ context.Context, res domain.Resource) (json.RawMessage, *domain.Failure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[res]++
	if kind, ok := f.failing[res]; ok {
		return nil, &domain.Failure{Resource: res, Kind: kind, Err: errors.New("stub failure")}
	}
	if p, ok := f.payloads[res]; ok {
		return json.RawMessage(p), nil
	}
	return json.RawMessage(`{}`), nil
}

func (f *stubFetcher) callCount(res domain.Resource) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[res]
}

// stubSink acumula lo publicado.
type stubSink struct {
	mu     sync.Mutex
	states []domain.DashboardState
	charts []domain.ChartData
}

func (s *stubSink) Publish(_ context.Context, state domain.DashboardState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, state)
	return nil
}

func (s *stubSink) PublishCharts(_ context.Context, c domain.ChartData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charts = append(s.charts, c)
	return nil
}

func (s *stubSink) published() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

func (s *stubSink) last(t *testing.T) domain.DashboardState {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.states)
	return s.states[len(s.states)-1]
}

func newTestEngine(fetcher *stubFetcher, sink *stubSink, clock Clock) *Engine {
	return NewEngine("USD", clock, fetcher, sink, nil, DefaultTTLs(), 2*time.Second)
}

func TestEngine_SoftFailureIsolation(t *testing.T) {
	clock := newFakeClock(t0)
	fetcher := newStubFetcher()
	sink := &stubSink{}

	fetcher.payloads[domain.ResCurrentHoldings] = `{"holdings": [{"symbol": "BTC", "quantity": 1, "price": 90000}]}`
	fetcher.payloads[domain.ResRecentTrades] = `{"trades": [{"trade_id": "t1", "pair": "BTC/USDT", "side": "BUY"}]}`
	fetcher.failing[domain.ResDrawdownAnalysis] = domain.FailureHTTP

	e := newTestEngine(fetcher, sink, clock)
	e.RefreshDashboard(context.Background(), false)
	e.RefreshCharts(context.Background())

	// el fallo de drawdown no impide que sus hermanos actualicen su cache
	_, ok := e.Cache().Get(domain.ResCurrentHoldings)
	assert.True(t, ok)
	_, ok = e.Cache().Get(domain.ResRecentTrades)
	assert.True(t, ok)
	_, ok = e.Cache().Get(domain.ResDrawdownAnalysis)
	assert.False(t, ok)

	state := sink.last(t)
	require.Len(t, state.Holdings, 1)
	assert.Equal(t, "BTC", state.Holdings[0].Symbol)
	require.Len(t, state.Trades, 1)
	assert.Equal(t, "t1", state.Trades[0].ID)
}

func TestEngine_FreshCacheSkipsFetch(t *testing.T) {
	clock := newFakeClock(t0)
	fetcher := newStubFetcher()
	sink := &stubSink{}
	e := newTestEngine(fetcher, sink, clock)

	e.RefreshDashboard(context.Background(), false)
	require.Equal(t, 1, fetcher.callCount(domain.ResConfig)) // TTL 30s

	// dentro del TTL: el recurso fresco no se vuelve a pedir
	clock.Advance(5 * time.Second)
	e.RefreshDashboard(context.Background(), false)
	assert.Equal(t, 1, fetcher.callCount(domain.ResConfig))
	// status con TTL 1s ya estaba stale → sí se refetchea
	assert.Equal(t, 2, fetcher.callCount(domain.ResStatus))

	// pasado el TTL se vuelve a pedir
	clock.Advance(time.Minute)
	e.RefreshDashboard(context.Background(), false)
	assert.Equal(t, 2, fetcher.callCount(domain.ResConfig))
}

func TestEngine_ForceBypassesFreshness(t *testing.T) {
	clock := newFakeClock(t0)
	fetcher := newStubFetcher()
	sink := &stubSink{}
	e := newTestEngine(fetcher, sink, clock)

	e.RefreshDashboard(context.Background(), false)
	e.RefreshDashboard(context.Background(), true)
	assert.Equal(t, 2, fetcher.callCount(domain.ResConfig))
}

func TestEngine_FailedFetchKeepsStaleValue(t *testing.T) {
	clock := newFakeClock(t0)
	fetcher := newStubFetcher()
	sink := &stubSink{}
	fetcher.payloads[domain.ResCurrentHoldings] = `{"holdings": [{"symbol": "ETH", "quantity": 2, "price": 3000}]}`

	e := newTestEngine(fetcher, sink, clock)
	e.RefreshDashboard(context.Background(), false)

	// el backend empieza a fallar; el entry anterior queda intacto y stale
	fetcher.mu.Lock()
	for _, res := range domain.AllResources() {
		fetcher.failing[res] = domain.FailureNetwork
	}
	fetcher.mu.Unlock()

	clock.Advance(time.Minute)
	e.RefreshDashboard(context.Background(), false)

	state := sink.last(t)
	require.Len(t, state.Holdings, 1)
	assert.Equal(t, "ETH", state.Holdings[0].Symbol)
}

func TestEngine_SummaryReconciliationPrecedence(t *testing.T) {
	clock := newFakeClock(t0)
	fetcher := newStubFetcher()
	sink := &stubSink{}

	// summary: 105 | top-level: 99 | suma de holdings: 100 → gana 105
	fetcher.payloads[domain.ResPortfolio] = `{
		"summary": {"total_current_value": 105},
		"total_value": 99,
		"holdings": [
			{"symbol": "BTC", "current_value": 60},
			{"symbol": "ETH", "current_value": 40}
		]
	}`
	fetcher.failing[domain.ResCurrentHoldings] = domain.FailureHTTP

	e := newTestEngine(fetcher, sink, clock)
	e.RefreshDashboard(context.Background(), false)

	state := sink.last(t)
	assert.InDelta(t, 105.0, state.Summary.TotalValue, 1e-9)
	// sin summary.asset_count ni asset_count → reducción local
	assert.Equal(t, 2, state.Summary.AssetCount)
	// sin fuentes de pnl → suma local (0)
	assert.Zero(t, state.Summary.TotalPnL)
}

func TestEngine_SummaryFallsBackToHoldingsSum(t *testing.T) {
	clock := newFakeClock(t0)
	fetcher := newStubFetcher()
	sink := &stubSink{}

	fetcher.payloads[domain.ResPortfolio] = `{
		"holdings": [
			{"symbol": "BTC", "current_value": 60, "pnl": 5},
			{"symbol": "ETH", "current_value": 40, "pnl": -2}
		]
	}`
	fetcher.failing[domain.ResCurrentHoldings] = domain.FailureParse

	e := newTestEngine(fetcher, sink, clock)
	e.RefreshDashboard(context.Background(), false)

	state := sink.last(t)
	assert.InDelta(t, 100.0, state.Summary.TotalValue, 1e-9)
	assert.InDelta(t, 3.0, state.Summary.TotalPnL, 1e-9)
}

func TestEngine_TradesSortedByTimestampDesc(t *testing.T) {
	clock := newFakeClock(t0)
	fetcher := newStubFetcher()
	sink := &stubSink{}

	fetcher.payloads[domain.ResRecentTrades] = `{"trades": [
		{"trade_id": "old", "timestamp": "2025-11-01T00:00:00Z"},
		{"trade_id": "new", "timestamp": "2025-11-02T00:00:00Z"}
	]}`

	e := newTestEngine(fetcher, sink, clock)
	e.RefreshDashboard(context.Background(), false)

	state := sink.last(t)
	require.Len(t, state.Trades, 2)
	assert.Equal(t, "new", state.Trades[0].ID)
	assert.Equal(t, "old", state.Trades[1].ID)
}

func TestEngine_BareArrayTradesPayload(t *testing.T) {
	clock := newFakeClock(t0)
	fetcher := newStubFetcher()
	sink := &stubSink{}

	// versiones viejas del backend sirven el array a pelo, sin envelope
	fetcher.payloads[domain.ResRecentTrades] = `[{"trade_id": "t1", "side": "sell"}]`

	e := newTestEngine(fetcher, sink, clock)
	e.RefreshDashboard(context.Background(), false)

	state := sink.last(t)
	require.Len(t, state.Trades, 1)
	assert.Equal(t, domain.SideSell, state.Trades[0].Side)
}

func TestEngine_ChartsCycle(t *testing.T) {
	clock := newFakeClock(t0)
	fetcher := newStubFetcher()
	sink := &stubSink{}

	fetcher.payloads[domain.ResEquityCurve] = `{"equity_curve": [
		{"timestamp": "2025-11-01T00:00:00Z", "value": 1000},
		{"timestamp": "2025-11-02T00:00:00Z", "value": 1100}
	]}`
	fetcher.payloads[domain.ResAssetAllocation] = `{"allocation": [
		{"symbol": "BTC", "value": 660, "percentage": 60}
	]}`

	e := newTestEngine(fetcher, sink, clock)
	e.RefreshCharts(context.Background())

	require.Len(t, sink.charts, 1)
	charts := sink.charts[0]
	require.Len(t, charts.EquityCurve, 2)
	assert.InDelta(t, 1100.0, charts.EquityCurve[1].Value, 1e-9)
	require.Len(t, charts.Allocation, 1)
	assert.Equal(t, "BTC", charts.Allocation[0].Symbol)
}

func TestEngine_StatusDegradesToNotRunning(t *testing.T) {
	clock := newFakeClock(t0)
	fetcher := newStubFetcher()
	sink := &stubSink{}
	fetcher.failing[domain.ResStatus] = domain.FailureNetwork

	e := newTestEngine(fetcher, sink, clock)
	e.RefreshDashboard(context.Background(), false)

	assert.False(t, sink.last(t).BotRunning)
}
