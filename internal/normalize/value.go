package normalize

// value.go — coerción tolerante de valores JSON crudos.
//
// El backend ha cambiado de shape varias veces; los payloads mezclan números,
// strings numéricos y campos ausentes. Todas las funciones de este archivo
// devuelven (valor, ok): un campo que no parsea se trata como ausente y el
// caller pasa al siguiente alias o al default. Nada aquí devuelve error.

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Object decodifica raw como objeto JSON. ok=false si no es un objeto.
func Object(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

// Array decodifica raw como array JSON. ok=false si no es un array.
func Array(raw json.RawMessage) ([]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// Float acepta números JSON y strings numéricos ("4200.50").
// NaN e Inf se tratan como ausentes: un no-finito jamás entra en un
// registro canónico.
func Float(raw json.RawMessage) (float64, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return finite(n.Float64())
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return finite(strconv.ParseFloat(strings.TrimSpace(s), 64))
	}
	return 0, false
}

func finite(f float64, err error) (float64, bool) {
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// String acepta strings y números (los ids de trade llegan de ambas formas).
func String(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// Bool acepta bool y los strings "true"/"false".
func Bool(raw json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(s) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// timeLayouts son los formatos de fecha que el backend ha usado en algún momento.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time acepta strings en varios layouts y timestamps unix en segundos o
// milisegundos (> 1e12 se interpreta como ms).
func Time(raw json.RawMessage) (time.Time, bool) {
	if f, ok := Float(raw); ok {
		if f <= 0 {
			return time.Time{}, false
		}
		if f > 1e12 {
			return time.UnixMilli(int64(f)).UTC(), true
		}
		return time.Unix(int64(f), 0).UTC(), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// firstFloat devuelve el primer alias presente y coercible a float finito.
func firstFloat(doc map[string]json.RawMessage, aliases ...string) (float64, bool) {
	for _, key := range aliases {
		if raw, ok := doc[key]; ok {
			if f, ok := Float(raw); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// firstString devuelve el primer alias presente con un string no vacío.
func firstString(doc map[string]json.RawMessage, aliases ...string) (string, bool) {
	for _, key := range aliases {
		if raw, ok := doc[key]; ok {
			if s, ok := String(raw); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// firstTime devuelve el primer alias presente con una fecha parseable.
func firstTime(doc map[string]json.RawMessage, aliases ...string) (time.Time, bool) {
	for _, key := range aliases {
		if raw, ok := doc[key]; ok {
			if t, ok := Time(raw); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// FirstArray devuelve el primer alias presente que sea un array.
// Se usa para localizar la colección dentro de envelopes inconsistentes
// ({trades: [...]} vs {history: [...]} vs array directo).
func FirstArray(doc map[string]json.RawMessage, aliases ...string) ([]json.RawMessage, bool) {
	for _, key := range aliases {
		if raw, ok := doc[key]; ok {
			if items, ok := Array(raw); ok {
				return items, true
			}
		}
	}
	return nil, false
}
