package normalize

// reconcile.go — "el primer valor usable gana".
//
// Varias métricas agregadas (valor total, pnl total, nº de activos) tienen
// más de una fuente posible según la versión del backend: campo explícito en
// summary, campo top-level, o una reducción local sobre la colección. La regla
// es siempre la misma y por eso vive aquí una sola vez: se recorre la lista de
// candidatos en orden y el primero definido gana; los siguientes ni se evalúan.

import "encoding/json"

// Candidate produce un valor candidato. ok=false significa "fuente ausente,
// prueba el siguiente". Los candidatos son lazy: una reducción cara sobre
// holdings solo se ejecuta si las fuentes explícitas faltan.
type Candidate func() (float64, bool)

// Field es un candidato que lee doc[key] con coerción numérica tolerante.
func Field(doc map[string]json.RawMessage, key string) Candidate {
	return func() (float64, bool) {
		raw, ok := doc[key]
		if !ok {
			return 0, false
		}
		return Float(raw)
	}
}

// Path es un candidato que desciende por objetos anidados
// (p. ej. summary → total_current_value) y coerce el valor final.
func Path(doc map[string]json.RawMessage, keys ...string) Candidate {
	return func() (float64, bool) {
		cur := doc
		for i, key := range keys {
			raw, ok := cur[key]
			if !ok {
				return 0, false
			}
			if i == len(keys)-1 {
				return Float(raw)
			}
			cur, ok = Object(raw)
			if !ok {
				return 0, false
			}
		}
		return 0, false
	}
}

// Computed envuelve una reducción local como último candidato de la cadena.
func Computed(fn func() float64) Candidate {
	return func() (float64, bool) { return fn(), true }
}

// First devuelve el primer candidato definido, en orden de declaración.
func First(candidates ...Candidate) (float64, bool) {
	for _, c := range candidates {
		if v, ok := c(); ok {
			return v, true
		}
	}
	return 0, false
}

// FirstOr es First con default cuando ningún candidato está definido.
func FirstOr(def float64, candidates ...Candidate) float64 {
	if v, ok := First(candidates...); ok {
		return v
	}
	return def
}
