package domain

import "time"

// Side es la dirección de un trade.
type Side string

const (
	SideBuy     Side = "BUY"
	SideSell    Side = "SELL"
	SideUnknown Side = "UNKNOWN"
)

// ParseSide normaliza el string crudo del backend a un Side canónico.
// Valores no reconocidos o vacíos se degradan a UNKNOWN, nunca se rechazan.
func ParseSide(raw string) Side {
	switch Side(raw) {
	case SideBuy, SideSell:
		return Side(raw)
	default:
		return SideUnknown
	}
}

// Trade es el registro canónico de un trade, ya normalizado.
// El backend histórico usa varios nombres para cada campo (qty/amount/size,
// price/fill_price, pnl/profit...); el normalizador resuelve los alias y este
// struct nunca se muta después de crearse.
type Trade struct {
	ID        string
	Timestamp time.Time // zero si ningún alias de fecha era parseable
	Symbol    string
	Side      Side
	Quantity  float64
	Price     float64
	PnL       float64
}

// HasTimestamp indica si el trade traía una fecha parseable.
func (t Trade) HasTimestamp() bool { return !t.Timestamp.IsZero() }
