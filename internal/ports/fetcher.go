package ports

import (
	"context"
	"encoding/json"

	"github.com/alejandrodnm/panelbot/internal/domain"
)

// Fetcher obtiene el payload crudo de un recurso del backend.
type Fetcher interface {
	// Fetch hace exactamente un GET por llamada y devuelve el body crudo.
	// Cualquier fallo (transporte, status, parse, envelope success=false)
	// vuelve como *domain.Failure; Fetch nunca entra en pánico ni devuelve
	// un error de Go.
	Fetch(ctx context.Context, res domain.Resource) (json.RawMessage, *domain.Failure)
}
