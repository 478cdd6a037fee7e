package syncer

// engine.go — orquestación de los ciclos de refresh.
//
// Flujo de un ciclo: guard → ¿qué recursos están stale? → fan-out de fetches
// independientes → Put en cache solo los exitosos → normalizar/reconciliar
// desde cache → publicar al sink. Los fallos de fetch en background se loggean
// a warn y punto; el usuario no ve nunca un error de polling.

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/alejandrodnm/panelbot/internal/domain"
	"github.com/alejandrodnm/panelbot/internal/normalize"
	"github.com/alejandrodnm/panelbot/internal/ports"
)

// Nombres de las operaciones multi-paso. Guard y debounce serializan por nombre.
const (
	OpDashboard = "dashboard"
	OpPortfolio = "portfolio"
	OpCharts    = "charts"
)

// dashboardResources son los recursos del ciclo rápido.
var dashboardResources = []domain.Resource{
	domain.ResStatus,
	domain.ResPortfolio,
	domain.ResConfig,
	domain.ResPortfolioAnalytics,
	domain.ResBestPerformer,
	domain.ResWorstPerformer,
	domain.ResCurrentHoldings,
	domain.ResRecentTrades,
	domain.ResPerformanceAnalytics,
}

// portfolioResources es el refresh ancho que va staggered tras el dashboard.
var portfolioResources = []domain.Resource{
	domain.ResPortfolio,
	domain.ResCurrentHoldings,
	domain.ResPortfolioAnalytics,
	domain.ResAssetAllocation,
}

// chartResources son los recursos del ciclo lento.
var chartResources = []domain.Resource{
	domain.ResEquityCurve,
	domain.ResDrawdownAnalysis,
	domain.ResPortfolioHistory,
	domain.ResAssetAllocation,
}

// Engine es el contexto explícito del motor de sincronización: cache, guard,
// debouncer y capacidades inyectadas (clock, fetcher, sink, storage).
// Sustituye al singleton global del que venimos.
type Engine struct {
	currency string
	clock    Clock
	fetcher  ports.Fetcher
	sink     ports.Sink
	store    ports.Storage // nil ⇒ sin histórico

	cache *Cache
	guard *Guard
	deb   *Debouncer
}

// NewEngine construye el engine. store puede ser nil.
func NewEngine(currency string, clock Clock, fetcher ports.Fetcher, sink ports.Sink, store ports.Storage, ttls map[domain.Resource]time.Duration, window time.Duration) *Engine {
	return &Engine{
		currency: currency,
		clock:    clock,
		fetcher:  fetcher,
		sink:     sink,
		store:    store,
		cache:    NewCache(ttls),
		guard:    NewGuard(),
		deb:      NewDebouncer(clock, window),
	}
}

// Cache expone la cache para freshness checks externos (y tests).
func (e *Engine) Cache() *Cache { return e.cache }

// RequestDashboard pide un refresh de dashboard, coalesced por el debouncer.
func (e *Engine) RequestDashboard(ctx context.Context) {
	e.deb.Request(OpDashboard, func() { e.RefreshDashboard(ctx, false) })
}

// RequestPortfolio pide el refresh ancho de portfolio, coalesced.
func (e *Engine) RequestPortfolio(ctx context.Context) {
	e.deb.Request(OpPortfolio, func() { e.RefreshPortfolio(ctx) })
}

// RequestCharts pide un refresh de charts, coalesced.
func (e *Engine) RequestCharts(ctx context.Context) {
	e.deb.Request(OpCharts, func() { e.RefreshCharts(ctx) })
}

// CancelPending descarta los refresh debounced pendientes. Lo llama el driver
// al parar: no debe quedar trabajo programado tras Stop.
func (e *Engine) CancelPending() { e.deb.CancelAll() }

// RefreshDashboard ejecuta un ciclo completo de dashboard. force salta el
// freshness check y re-fetchea todo (acciones explícitas del usuario).
// Si la operación ya está en vuelo, este ciclo se descarta en silencio.
func (e *Engine) RefreshDashboard(ctx context.Context, force bool) {
	if !e.guard.TryEnter(OpDashboard) {
		slog.Debug("dashboard refresh already running, skipping")
		return
	}
	defer e.guard.Leave(OpDashboard)

	e.collect(ctx, dashboardResources, force)
	state := e.buildDashboardState()

	if err := e.sink.Publish(ctx, state); err != nil {
		slog.Warn("sink publish failed", "err", err)
	}
	e.record(ctx, state)
}

// RefreshPortfolio es el refresh ancho de portfolio que el driver dispara con
// stagger tras el ciclo de dashboard, para no reventar el backend en ráfaga.
// Fuerza los recursos de portfolio y re-publica el estado reconstruido.
func (e *Engine) RefreshPortfolio(ctx context.Context) {
	if !e.guard.TryEnter(OpPortfolio) {
		slog.Debug("portfolio refresh already running, skipping")
		return
	}
	defer e.guard.Leave(OpPortfolio)

	e.collect(ctx, portfolioResources, true)
	state := e.buildDashboardState()

	if err := e.sink.Publish(ctx, state); err != nil {
		slog.Warn("sink publish failed", "err", err)
	}
}

// RefreshCharts ejecuta el ciclo lento de series.
func (e *Engine) RefreshCharts(ctx context.Context) {
	if !e.guard.TryEnter(OpCharts) {
		slog.Debug("charts refresh already running, skipping")
		return
	}
	defer e.guard.Leave(OpCharts)

	e.collect(ctx, chartResources, false)

	charts := domain.ChartData{
		GeneratedAt: e.clock.Now(),
		Currency:    e.currency,
	}
	if doc, ok := e.doc(domain.ResEquityCurve); ok {
		charts.EquityCurve = normalize.ValuePoints(doc, "equity_curve", "curve", "points", "data")
	}
	if doc, ok := e.doc(domain.ResDrawdownAnalysis); ok {
		charts.Drawdown = normalize.ValuePoints(doc, "drawdown_series", "series", "data")
	}
	if doc, ok := e.doc(domain.ResPortfolioHistory); ok {
		charts.History = normalize.ValuePoints(doc, "history", "portfolio_history", "data")
	}
	if doc, ok := e.doc(domain.ResAssetAllocation); ok {
		charts.Allocation = normalize.Allocations(doc)
	}

	if err := e.sink.PublishCharts(ctx, charts); err != nil {
		slog.Warn("sink publish charts failed", "err", err)
	}
}

// collect fetchea en paralelo los recursos stale (todos, si force) y cachea
// los exitosos. Cada recurso resuelve por su cuenta: un fallo no corta a los
// hermanos ni toca su entry previo.
func (e *Engine) collect(ctx context.Context, resources []domain.Resource, force bool) {
	var wg sync.WaitGroup
	for _, res := range resources {
		if !force && e.cache.IsFresh(res, e.clock.Now()) {
			continue
		}
		wg.Add(1)
		go func(res domain.Resource) {
			defer wg.Done()
			payload, fail := e.fetcher.Fetch(ctx, res)
			if fail != nil {
				slog.Warn("resource fetch failed",
					"resource", res,
					"kind", fail.Kind,
					"err", fail.Err,
				)
				return
			}
			e.cache.Put(res, payload, e.clock.Now())
		}(res)
	}
	wg.Wait()
}

// buildDashboardState reconstruye el estado canónico desde la cache.
// Recursos que fallaron conservan su payload stale anterior; si nunca hubo
// uno, la sección correspondiente queda en defaults.
func (e *Engine) buildDashboardState() domain.DashboardState {
	state := domain.DashboardState{
		GeneratedAt: e.clock.Now(),
		Currency:    e.currency,
	}

	if doc, ok := e.doc(domain.ResStatus); ok {
		state.BotRunning = normalize.Running(doc)
	}

	// holdings: el recurso dedicado manda; el payload de portfolio es fallback
	if doc, ok := e.doc(domain.ResCurrentHoldings); ok {
		state.Holdings = normalize.Holdings(doc)
	}
	portfolio, hasPortfolio := e.doc(domain.ResPortfolio)
	if state.Holdings == nil && hasPortfolio {
		state.Holdings = normalize.Holdings(portfolio)
	}

	state.Summary = e.reconcileSummary(portfolio, hasPortfolio, state.Holdings)

	if items, ok := e.collection(domain.ResRecentTrades, "trades", "recent_trades", "history", "data"); ok {
		state.Trades = normalize.Trades(items)
		// orden por timestamp descendente, decisión del caller, no del registro
		sort.SliceStable(state.Trades, func(i, j int) bool {
			return state.Trades[i].Timestamp.After(state.Trades[j].Timestamp)
		})
	}

	if doc, ok := e.doc(domain.ResBestPerformer); ok {
		state.Best = normalize.Performer(doc)
	}
	if doc, ok := e.doc(domain.ResWorstPerformer); ok {
		state.Worst = normalize.Performer(doc)
	}
	if doc, ok := e.doc(domain.ResPerformanceAnalytics); ok {
		state.Stats = normalize.Stats(doc)
	}

	return state
}

// reconcileSummary aplica las cadenas de precedencia de las métricas
// agregadas: summary explícito → campo top-level → reducción local.
func (e *Engine) reconcileSummary(portfolio map[string]json.RawMessage, hasPortfolio bool, holdings []domain.Holding) domain.PortfolioSummary {
	if !hasPortfolio {
		portfolio = map[string]json.RawMessage{}
	}

	sumValues := func() float64 {
		total := 0.0
		for _, h := range holdings {
			total += h.Value
		}
		return total
	}
	sumPnL := func() float64 {
		total := 0.0
		for _, h := range holdings {
			total += h.PnL
		}
		return total
	}

	return domain.PortfolioSummary{
		Currency: e.currency,
		TotalValue: normalize.FirstOr(0,
			normalize.Path(portfolio, "summary", "total_current_value"),
			normalize.Field(portfolio, "total_value"),
			normalize.Computed(sumValues),
		),
		TotalPnL: normalize.FirstOr(0,
			normalize.Path(portfolio, "summary", "total_pnl"),
			normalize.Field(portfolio, "total_pnl"),
			normalize.Computed(sumPnL),
		),
		AssetCount: int(normalize.FirstOr(float64(len(holdings)),
			normalize.Path(portfolio, "summary", "asset_count"),
			normalize.Field(portfolio, "asset_count"),
		)),
	}
}

// record persiste snapshot y trades si hay storage configurado.
func (e *Engine) record(ctx context.Context, state domain.DashboardState) {
	if e.store == nil {
		return
	}
	snap := ports.Snapshot{
		TakenAt:    state.GeneratedAt,
		Currency:   state.Currency,
		TotalValue: state.Summary.TotalValue,
		TotalPnL:   state.Summary.TotalPnL,
		AssetCount: state.Summary.AssetCount,
		BotRunning: state.BotRunning,
	}
	if err := e.store.SaveSnapshot(ctx, snap); err != nil {
		slog.Warn("save snapshot failed", "err", err)
	}
	if len(state.Trades) > 0 {
		if err := e.store.SaveTrades(ctx, state.Trades); err != nil {
			slog.Warn("save trades failed", "err", err)
		}
	}
}

// doc lee de cache y decodifica como objeto. Tolera ambos shapes de envelope:
// el cliente ya validó success, aquí solo importa poder indexar los campos.
func (e *Engine) doc(res domain.Resource) (map[string]json.RawMessage, bool) {
	payload, ok := e.cache.Get(res)
	if !ok {
		return nil, false
	}
	return normalize.Object(payload)
}

// collection localiza la colección de un recurso que unas versiones del
// backend sirven como {key: [...]} y otras como array a pelo.
func (e *Engine) collection(res domain.Resource, aliases ...string) ([]json.RawMessage, bool) {
	payload, ok := e.cache.Get(res)
	if !ok {
		return nil, false
	}
	if doc, ok := normalize.Object(payload); ok {
		return normalize.FirstArray(doc, aliases...)
	}
	return normalize.Array(payload)
}
