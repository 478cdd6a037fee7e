package domain

import "time"

// DashboardState es el snapshot canónico que el engine entrega al sink de
// presentación tras cada ciclo de dashboard. Se construye completo y se
// entrega por valor; el sink no puede mutar el estado del engine.
type DashboardState struct {
	GeneratedAt time.Time
	Currency    string

	// BotRunning viene del recurso status; false si status no estaba disponible.
	BotRunning bool

	Summary  PortfolioSummary
	Holdings []Holding
	Trades   []Trade // ordenados por timestamp descendente

	Best  *Performer // nil si el recurso falló o no había datos
	Worst *Performer
	Stats *PerformanceStats
}

// ChartData son las series que alimenta el ciclo lento de charts.
type ChartData struct {
	GeneratedAt time.Time
	Currency    string

	EquityCurve []ValuePoint
	Drawdown    []ValuePoint
	History     []ValuePoint
	Allocation  []AllocationSlice
}
