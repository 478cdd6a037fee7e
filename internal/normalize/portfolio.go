package normalize

// portfolio.go — normalización de holdings, performers, stats y series.

import (
	"encoding/json"

	"github.com/alejandrodnm/panelbot/internal/domain"
)

var (
	holdingsAliases = []string{"holdings", "positions", "assets"}

	holdSymAliases   = []string{"symbol", "asset", "coin"}
	holdQtyAliases   = []string{"quantity", "amount", "balance"}
	holdPriceAliases = []string{"current_price", "price"}
	holdValueAliases = []string{"current_value", "value", "usd_value"}
	holdPnLAliases   = []string{"pnl", "profit_loss", "unrealized_pnl"}

	perfSymAliases = []string{"symbol", "asset", "coin"}
	perfPnLAliases = []string{"pnl", "profit", "total_pnl"}
	perfPctAliases = []string{"pnl_percentage", "pnl_pct", "change_pct"}

	pointTimeAliases  = []string{"timestamp", "time", "date"}
	pointValueAliases = []string{"value", "total_value", "equity", "balance", "drawdown"}

	allocValueAliases = []string{"value", "current_value"}
	allocPctAliases   = []string{"percentage", "pct", "allocation"}
)

// Running interpreta el payload de status: ¿está corriendo el bot?
// Ausencia o valor ilegible se degrada a false, nunca a error.
func Running(doc map[string]json.RawMessage) bool {
	for _, key := range []string{"running", "bot_running", "is_running", "active"} {
		if raw, ok := doc[key]; ok {
			if b, ok := Bool(raw); ok {
				return b
			}
		}
	}
	return false
}

// Holdings localiza y normaliza la colección de posiciones de un payload
// de portfolio o de current-holdings. Items que no son objetos se ignoran.
func Holdings(doc map[string]json.RawMessage) []domain.Holding {
	items, ok := FirstArray(doc, holdingsAliases...)
	if !ok {
		return nil
	}
	holdings := make([]domain.Holding, 0, len(items))
	for _, item := range items {
		h, ok := Object(item)
		if !ok {
			continue
		}
		holding := domain.Holding{}
		holding.Symbol, _ = firstString(h, holdSymAliases...)
		holding.Quantity, _ = firstFloat(h, holdQtyAliases...)
		holding.Price, _ = firstFloat(h, holdPriceAliases...)
		holding.PnL, _ = firstFloat(h, holdPnLAliases...)

		// valor: campo explícito, o qty × precio como reducción local
		if v, ok := firstFloat(h, holdValueAliases...); ok {
			holding.Value = v
		} else {
			holding.Value = holding.Quantity * holding.Price
		}
		holdings = append(holdings, holding)
	}
	return holdings
}

// Performer normaliza el payload de best-performer / worst-performer.
// Devuelve nil si el payload no trae un símbolo — el sink muestra "n/a".
func Performer(doc map[string]json.RawMessage) *domain.Performer {
	sym, ok := firstString(doc, perfSymAliases...)
	if !ok {
		return nil
	}
	p := &domain.Performer{Symbol: sym}
	p.PnL, _ = firstFloat(doc, perfPnLAliases...)
	p.PnLPct, _ = firstFloat(doc, perfPctAliases...)
	return p
}

// Stats normaliza el payload de performance-analytics.
func Stats(doc map[string]json.RawMessage) *domain.PerformanceStats {
	s := &domain.PerformanceStats{}
	trades, okT := firstFloat(doc, "total_trades", "trade_count", "trades")
	s.TotalTrades = int(trades)
	s.WinRate, _ = firstFloat(doc, "win_rate", "winrate")
	pnl, okP := firstFloat(doc, "total_pnl", "pnl", "profit")
	s.TotalPnL = pnl
	if !okT && !okP {
		return nil
	}
	return s
}

// ValuePoints normaliza una serie temporal (equity-curve, drawdown,
// portfolio-history). Puntos sin fecha parseable se descartan: una serie
// sin eje temporal no se puede graficar.
func ValuePoints(doc map[string]json.RawMessage, collectionAliases ...string) []domain.ValuePoint {
	items, ok := FirstArray(doc, collectionAliases...)
	if !ok {
		return nil
	}
	points := make([]domain.ValuePoint, 0, len(items))
	for _, item := range items {
		p, ok := Object(item)
		if !ok {
			continue
		}
		t, ok := firstTime(p, pointTimeAliases...)
		if !ok {
			continue
		}
		v, _ := firstFloat(p, pointValueAliases...)
		points = append(points, domain.ValuePoint{Time: t, Value: v})
	}
	return points
}

// Allocations normaliza el payload de asset-allocation.
func Allocations(doc map[string]json.RawMessage) []domain.AllocationSlice {
	items, ok := FirstArray(doc, "allocation", "allocations", "assets")
	if !ok {
		return nil
	}
	slices := make([]domain.AllocationSlice, 0, len(items))
	for _, item := range items {
		a, ok := Object(item)
		if !ok {
			continue
		}
		sym, ok := firstString(a, holdSymAliases...)
		if !ok {
			continue
		}
		slice := domain.AllocationSlice{Symbol: sym}
		slice.Value, _ = firstFloat(a, allocValueAliases...)
		slice.Pct, _ = firstFloat(a, allocPctAliases...)
		slices = append(slices, slice)
	}
	return slices
}
