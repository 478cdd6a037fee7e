package ports

import (
	"context"

	"github.com/alejandrodnm/panelbot/internal/domain"
)

// Sink recibe los registros canónicos para presentarlos al usuario.
// La capa de presentación es un colaborador externo: el engine le entrega
// snapshots completos y no sabe nada de cómo se renderizan.
type Sink interface {
	// Publish entrega el estado del dashboard tras un ciclo rápido.
	Publish(ctx context.Context, state domain.DashboardState) error

	// PublishCharts entrega las series tras un ciclo lento.
	PublishCharts(ctx context.Context, charts domain.ChartData) error
}
