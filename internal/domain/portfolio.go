package domain

import "time"

// Holding es una posición abierta del portfolio, normalizada.
type Holding struct {
	Symbol   string
	Quantity float64
	Price    float64 // precio actual por unidad
	Value    float64 // valor actual de la posición
	PnL      float64
}

// PortfolioSummary son las métricas agregadas reconciliadas del portfolio.
// Cada valor sale de una cadena de precedencia (summary explícito → campo
// top-level → reducción local sobre holdings), nunca de una sola fuente.
type PortfolioSummary struct {
	TotalValue float64
	TotalPnL   float64
	AssetCount int
	Currency   string
}

// Performer es el mejor o peor activo según el backend.
type Performer struct {
	Symbol string
	PnL    float64
	PnLPct float64
}

// PerformanceStats son las métricas de trading agregadas
// (recurso performance-analytics).
type PerformanceStats struct {
	TotalTrades int
	WinRate     float64
	TotalPnL    float64
}

// ValuePoint es el valor total del portfolio en un instante.
// Lo usan las series de equity, drawdown e histórico.
type ValuePoint struct {
	Time  time.Time
	Value float64
}

// AllocationSlice es la fracción del portfolio asignada a un activo.
type AllocationSlice struct {
	Symbol string
	Value  float64
	Pct    float64
}
