package backend

// client.go — el HTTP client del backend de trading.
//
// Un GET por recurso lógico, con no-store explícito: la frescura la gobierna
// la cache del engine, jamás una cache HTTP intermedia. Todo fallo de lectura
// (transporte, status, parse, envelope success=false) se pliega a un
// *domain.Failure tipado y se queda en este boundary; Fetch nunca devuelve
// un error de Go ni lanza nada hacia arriba.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/panelbot/internal/domain"
	"github.com/alejandrodnm/panelbot/internal/normalize"
)

const (
	defaultBase = "http://localhost:8000"

	// Límite conservador: el backend es un bot casero, no una API pública.
	readsPerSec  = 10
	readBurst    = 20
	httpTimeout  = 15 * time.Second
	maxErrorBody = 512
)

// resourcePaths mapea cada recurso lógico a su endpoint.
var resourcePaths = map[domain.Resource]string{
	domain.ResStatus:               "/api/status",
	domain.ResPortfolio:            "/api/portfolio",
	domain.ResConfig:               "/api/config",
	domain.ResPortfolioAnalytics:   "/api/portfolio/analytics",
	domain.ResPortfolioHistory:     "/api/portfolio/history",
	domain.ResAssetAllocation:      "/api/portfolio/allocation",
	domain.ResBestPerformer:        "/api/portfolio/best-performer",
	domain.ResWorstPerformer:       "/api/portfolio/worst-performer",
	domain.ResEquityCurve:          "/api/analytics/equity-curve",
	domain.ResDrawdownAnalysis:     "/api/analytics/drawdown",
	domain.ResCurrentHoldings:      "/api/portfolio/holdings",
	domain.ResRecentTrades:         "/api/trades/recent",
	domain.ResPerformanceAnalytics: "/api/analytics/performance",
}

// Client habla con el backend. Implementa ports.Fetcher para las lecturas;
// las acciones de trading (escrituras) van en trading.go.
type Client struct {
	http     *http.Client
	base     string
	currency string
	limiter  *rate.Limiter
}

// NewClient crea el Client. base vacío usa el backend local por defecto.
// currency se propaga como query param en cada lectura: el backend devuelve
// los valores ya convertidos, aquí no se hace matemática de divisas.
func NewClient(base, currency string) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{
		http:     &http.Client{Timeout: httpTimeout},
		base:     base,
		currency: currency,
		limiter:  rate.NewLimiter(readsPerSec, readBurst),
	}
}

// Fetch hace exactamente un GET del recurso dado. Sin retries: el siguiente
// ciclo del driver ya lo reintentará si hace falta.
func (c *Client) Fetch(ctx context.Context, res domain.Resource) (json.RawMessage, *domain.Failure) {
	path, ok := resourcePaths[res]
	if !ok {
		return nil, fail(res, domain.FailureNetwork, fmt.Errorf("unknown resource %q", res))
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fail(res, domain.FailureNetwork, fmt.Errorf("rate limiter: %w", err))
	}

	u := c.base + path + "?currency=" + url.QueryEscape(c.currency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fail(res, domain.FailureNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	// la frescura es responsabilidad exclusiva de la cache del engine
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(res, domain.FailureNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fail(res, domain.FailureHTTP,
			fmt.Errorf("status %d: %s", resp.StatusCode, string(snippet)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(res, domain.FailureNetwork, err)
	}
	if !json.Valid(body) {
		return nil, fail(res, domain.FailureParse, fmt.Errorf("invalid JSON body"))
	}

	// envelope {success: bool, ...} o payload a pelo: ambos valen, pero un
	// success=false explícito es un fallo aunque el status fuera 200
	if doc, ok := normalize.Object(body); ok {
		if raw, present := doc["success"]; present {
			if success, ok := normalize.Bool(raw); ok && !success {
				return nil, fail(res, domain.FailureHTTP, fmt.Errorf("backend reported failure: %s", errorField(doc)))
			}
		}
	}

	return body, nil
}

func fail(res domain.Resource, kind domain.FailureKind, err error) *domain.Failure {
	return &domain.Failure{Resource: res, Kind: kind, Err: err}
}

func errorField(doc map[string]json.RawMessage) string {
	if raw, ok := doc["error"]; ok {
		if s, ok := normalize.String(raw); ok {
			return s
		}
	}
	return "no error detail"
}
