package normalize

// trade.go — normalización de trades crudos a domain.Trade.
//
// Orden de precedencia de alias por campo. El orden importa: es el contrato
// con todas las versiones históricas del backend y los tests lo fijan.

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/alejandrodnm/panelbot/internal/domain"
)

var (
	tradeIDAliases    = []string{"trade_id", "id", "order_id", "clientOrderId"}
	tradeTimeAliases  = []string{"timestamp", "time", "created_at", "date"}
	tradeSymAliases   = []string{"symbol", "pair", "market"}
	tradeQtyAliases   = []string{"quantity", "qty", "amount", "size"}
	tradePriceAliases = []string{"price", "avg_price", "fill_price", "execution_price"}
	tradePnLAliases   = []string{"pnl", "realized_pnl", "profit"}
	tradeSideAliases  = []string{"side", "action"}
)

// Trade normaliza un trade crudo. pos es la posición del registro dentro del
// batch actual: si ningún alias de id está presente, el id se sintetiza como
// pos+1 (único dentro del batch, no globalmente).
func Trade(doc map[string]json.RawMessage, pos int) domain.Trade {
	t := domain.Trade{Side: domain.SideUnknown}

	if id, ok := firstString(doc, tradeIDAliases...); ok {
		t.ID = id
	} else {
		t.ID = strconv.Itoa(pos + 1)
	}

	if ts, ok := firstTime(doc, tradeTimeAliases...); ok {
		t.Timestamp = ts
	}
	if sym, ok := firstString(doc, tradeSymAliases...); ok {
		t.Symbol = sym
	}
	if side, ok := firstString(doc, tradeSideAliases...); ok {
		t.Side = domain.ParseSide(strings.ToUpper(side))
	}

	t.Quantity, _ = firstFloat(doc, tradeQtyAliases...)
	t.Price, _ = firstFloat(doc, tradePriceAliases...)
	t.PnL, _ = firstFloat(doc, tradePnLAliases...)

	return t
}

// Trades normaliza un batch completo. Un item que ni siquiera es un objeto
// produce un registro default con id sintetizado; jamás se descarta ni se
// devuelve error — misma filosofía soft-failure que el resto del engine.
func Trades(items []json.RawMessage) []domain.Trade {
	trades := make([]domain.Trade, 0, len(items))
	for i, item := range items {
		doc, ok := Object(item)
		if !ok {
			trades = append(trades, domain.Trade{
				ID:   strconv.Itoa(i + 1),
				Side: domain.SideUnknown,
			})
			continue
		}
		trades = append(trades, Trade(doc, i))
	}
	return trades
}
