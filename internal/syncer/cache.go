package syncer

// cache.go — cache de endpoints con TTL por recurso.
//
// La frescura de los datos la gobierna esta cache, no HTTP: el cliente manda
// no-store y un entry es fresco iff now - fetchedAt < ttl. Un entry solo se
// crea o sobreescribe tras un fetch exitoso: un fetch fallido deja el valor
// anterior intacto (y stale), que es mejor que nada para un dashboard vivo.

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/alejandrodnm/panelbot/internal/domain"
)

// DefaultTTL aplica a recursos sin TTL configurado.
const DefaultTTL = 10 * time.Second

// DefaultTTLs son los TTLs por recurso. Rango observado 1s–30s: el status se
// refresca casi siempre, las series históricas casi nunca cambian entre ciclos.
func DefaultTTLs() map[domain.Resource]time.Duration {
	return map[domain.Resource]time.Duration{
		domain.ResStatus:               1 * time.Second,
		domain.ResPortfolio:            5 * time.Second,
		domain.ResConfig:               30 * time.Second,
		domain.ResPortfolioAnalytics:   10 * time.Second,
		domain.ResPortfolioHistory:     30 * time.Second,
		domain.ResAssetAllocation:      15 * time.Second,
		domain.ResBestPerformer:        15 * time.Second,
		domain.ResWorstPerformer:       15 * time.Second,
		domain.ResEquityCurve:          30 * time.Second,
		domain.ResDrawdownAnalysis:     30 * time.Second,
		domain.ResCurrentHoldings:      5 * time.Second,
		domain.ResRecentTrades:         10 * time.Second,
		domain.ResPerformanceAnalytics: 15 * time.Second,
	}
}

type entry struct {
	payload   json.RawMessage
	fetchedAt time.Time
	ttl       time.Duration
}

// Cache es el store por-recurso de {payload, fetchedAt, ttl}.
// Vive lo que vive el proceso; no hay persistencia.
type Cache struct {
	mu      sync.Mutex
	entries map[domain.Resource]entry
	ttls    map[domain.Resource]time.Duration
}

// NewCache crea la cache con los TTLs dados; los recursos que falten usan
// DefaultTTL. El map se copia: mutar el argumento después no afecta.
func NewCache(ttls map[domain.Resource]time.Duration) *Cache {
	own := make(map[domain.Resource]time.Duration, len(ttls))
	for res, ttl := range ttls {
		own[res] = ttl
	}
	return &Cache{
		entries: make(map[domain.Resource]entry),
		ttls:    own,
	}
}

// Get es un lookup puro: nunca hace I/O. ok=false si el recurso nunca se
// fetcheó con éxito. Puede devolver un valor stale; el caller decide con
// IsFresh si le sirve.
func (c *Cache) Get(res domain.Resource) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[res]
	if !ok {
		return nil, false
	}
	return e.payload, true
}

// Put sobreescribe el entry con el TTL configurado del recurso.
// Un refresh conserva el TTL del recurso, no inventa uno ad-hoc.
func (c *Cache) Put(res domain.Resource, payload json.RawMessage, now time.Time) {
	c.PutTTL(res, payload, now, c.ttl(res))
}

// PutTTL es Put con override explícito de TTL para este entry.
func (c *Cache) PutTTL(res domain.Resource, payload json.RawMessage, now time.Time, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[res] = entry{payload: payload, fetchedAt: now, ttl: ttl}
}

// IsFresh responde si el entry existe y now - fetchedAt < ttl.
func (c *Cache) IsFresh(res domain.Resource, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[res]
	return ok && now.Sub(e.fetchedAt) < e.ttl
}

func (c *Cache) ttl(res domain.Resource) time.Duration {
	if ttl, ok := c.ttls[res]; ok {
		return ttl
	}
	return DefaultTTL
}
