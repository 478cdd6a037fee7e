package domain

import "fmt"

// FailureKind clasifica un soft failure del fetch orchestrator.
// La distinción existe para logging y tests; para el resto del engine
// cualquier kind significa lo mismo: "no hay datos nuevos, sigue".
type FailureKind string

const (
	// FailureNetwork: el request no se pudo enviar o cortó a nivel transporte.
	FailureNetwork FailureKind = "network"
	// FailureHTTP: respuesta recibida con status no-2xx, o envelope success=false.
	FailureHTTP FailureKind = "http"
	// FailureParse: el body no era el JSON esperado.
	FailureParse FailureKind = "parse"
)

// Failure es el resultado tipado de un fetch fallido. Nunca se propaga como
// error de Go más allá del orchestrator: los fallos de polling en background
// son invisibles para el usuario por diseño.
type Failure struct {
	Resource Resource
	Kind     FailureKind
	Err      error
}

func (f *Failure) String() string {
	return fmt.Sprintf("%s: %s failure: %v", f.Resource, f.Kind, f.Err)
}
