package domain

// Resource identifica un recurso lógico de solo-lectura del backend.
// Cada recurso tiene su propio endpoint, su TTL de cache y su ciclo de refresh.
type Resource string

const (
	ResStatus               Resource = "status"
	ResPortfolio            Resource = "portfolio"
	ResConfig               Resource = "config"
	ResPortfolioAnalytics   Resource = "portfolio-analytics"
	ResPortfolioHistory     Resource = "portfolio-history"
	ResAssetAllocation      Resource = "asset-allocation"
	ResBestPerformer        Resource = "best-performer"
	ResWorstPerformer       Resource = "worst-performer"
	ResEquityCurve          Resource = "equity-curve"
	ResDrawdownAnalysis     Resource = "drawdown-analysis"
	ResCurrentHoldings      Resource = "current-holdings"
	ResRecentTrades         Resource = "recent-trades"
	ResPerformanceAnalytics Resource = "performance-analytics"
)

// AllResources lista todos los recursos conocidos, en orden estable.
func AllResources() []Resource {
	return []Resource{
		ResStatus, ResPortfolio, ResConfig, ResPortfolioAnalytics,
		ResPortfolioHistory, ResAssetAllocation, ResBestPerformer,
		ResWorstPerformer, ResEquityCurve, ResDrawdownAnalysis,
		ResCurrentHoldings, ResRecentTrades, ResPerformanceAnalytics,
	}
}

func (r Resource) String() string { return string(r) }
