package backend

// trading.go — acciones de escritura contra el backend.
//
// A diferencia del polling, estas son acciones explícitas del usuario: el
// resultado (incluido el fallo) SÍ se le muestra, y por eso aquí se devuelven
// errores de Go normales. Sin retries automáticos: reintentar una orden de
// compra por su cuenta es exactamente lo que un dashboard no debe hacer.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/alejandrodnm/panelbot/internal/domain"
)

// ActionResult es la respuesta de una acción de trading.
type ActionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Details conserva el resto de campos del response para la capa de
	// presentación (order id, fills, etc.), sin interpretarlos aquí.
	Details map[string]json.RawMessage `json:"-"`
}

// OrderRequest es una orden de compra o venta.
type OrderRequest struct {
	Symbol   string      `json:"symbol"`
	Side     domain.Side `json:"side"`
	Quantity float64     `json:"quantity"`
	// Price 0 ⇒ orden a mercado.
	Price float64 `json:"price,omitempty"`
	// ClientOrderID se genera si viene vacío; permite al backend deduplicar.
	ClientOrderID string `json:"clientOrderId"`
}

// StartBot arranca el proceso de trading.
func (c *Client) StartBot(ctx context.Context) (ActionResult, error) {
	return c.post(ctx, "/api/bot/start", nil)
}

// StopBot para el proceso de trading.
func (c *Client) StopBot(ctx context.Context) (ActionResult, error) {
	return c.post(ctx, "/api/bot/stop", nil)
}

// PlaceOrder envía una orden de compra/venta.
func (c *Client) PlaceOrder(ctx context.Context, order OrderRequest) (ActionResult, error) {
	if order.Symbol == "" {
		return ActionResult{}, fmt.Errorf("backend.PlaceOrder: empty symbol")
	}
	if order.Side != domain.SideBuy && order.Side != domain.SideSell {
		return ActionResult{}, fmt.Errorf("backend.PlaceOrder: invalid side %q", order.Side)
	}
	if order.Quantity <= 0 {
		return ActionResult{}, fmt.Errorf("backend.PlaceOrder: quantity must be positive")
	}
	if order.ClientOrderID == "" {
		order.ClientOrderID = uuid.NewString()
	}
	return c.post(ctx, "/api/orders", order)
}

// TakeProfit ejecuta el take-profit masivo: cierra todas las posiciones cuyo
// pnl porcentual supere el umbral dado.
func (c *Client) TakeProfit(ctx context.Context, thresholdPct float64) (ActionResult, error) {
	body := map[string]float64{"threshold_pct": thresholdPct}
	return c.post(ctx, "/api/orders/take-profit", body)
}

// post envía la acción y decodifica el envelope {success, error?, ...}.
func (c *Client) post(ctx context.Context, path string, body any) (ActionResult, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return ActionResult{}, fmt.Errorf("backend.post: marshal body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return ActionResult{}, fmt.Errorf("backend.post: rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, reader)
	if err != nil {
		return ActionResult{}, fmt.Errorf("backend.post: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ActionResult{}, fmt.Errorf("backend.post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ActionResult{}, fmt.Errorf("backend.post %s: read body: %w", path, err)
	}

	var details map[string]json.RawMessage
	if len(raw) > 0 {
		// un body no-JSON en una acción es un error de verdad, no soft failure
		if err := json.Unmarshal(raw, &details); err != nil {
			return ActionResult{}, fmt.Errorf("backend.post %s: decode response: %w", path, err)
		}
	}

	result := ActionResult{Details: details}
	if rawSuccess, ok := details["success"]; ok {
		_ = json.Unmarshal(rawSuccess, &result.Success)
	}
	if rawErr, ok := details["error"]; ok {
		_ = json.Unmarshal(rawErr, &result.Error)
	}
	delete(details, "success")
	delete(details, "error")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, fmt.Errorf("backend.post %s: status %d: %s", path, resp.StatusCode, result.Error)
	}
	return result, nil
}
