package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/panelbot/internal/domain"
)

// Snapshot es el resumen persistido de un ciclo de refresh.
type Snapshot struct {
	TakenAt    time.Time
	Currency   string
	TotalValue float64
	TotalPnL   float64
	AssetCount int
	BotRunning bool
}

// Storage persiste el histórico de snapshots y trades normalizados.
// La cache de endpoints vive solo en memoria y muere con el proceso;
// el storage es histórico para reporting, nunca alimenta la cache.
type Storage interface {
	// SaveSnapshot persiste el resumen reconciliado de un ciclo.
	SaveSnapshot(ctx context.Context, s Snapshot) error

	// SaveTrades hace upsert de los trades normalizados por ID.
	SaveTrades(ctx context.Context, trades []domain.Trade) error

	// GetSnapshots devuelve los snapshots del rango dado, ascendente.
	GetSnapshots(ctx context.Context, from, to time.Time) ([]Snapshot, error)

	// Close cierra la conexión limpiamente.
	Close() error
}
