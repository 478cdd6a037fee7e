package console

// console.go — sink de presentación por terminal.
//
// El engine no sabe que esto existe más allá de ports.Sink: recibe snapshots
// canónicos completos y los pinta. Modo compacto (una línea por ciclo) para
// dejarlo corriendo, modo tabla para mirar el detalle.

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/panelbot/internal/domain"
)

const maxTradesShown = 10

// Console implementa ports.Sink.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un sink que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un sink para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Publish pinta el estado del dashboard en el modo configurado.
func (c *Console) Publish(_ context.Context, state domain.DashboardState) error {
	if c.table {
		c.printFull(state)
	} else {
		c.printCompact(state)
	}
	return nil
}

// PublishCharts resume las series; en terminal no se grafica, se describe.
func (c *Console) PublishCharts(_ context.Context, charts domain.ChartData) error {
	now := charts.GeneratedAt.Format("15:04:05")
	fmt.Fprintf(c.out, "[%s] charts: equity %s | drawdown %s | history %s | allocation %d assets\n",
		now,
		seriesLabel(charts.EquityCurve),
		seriesLabel(charts.Drawdown),
		seriesLabel(charts.History),
		len(charts.Allocation),
	)
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(state domain.DashboardState) {
	now := state.GeneratedAt.Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s | %.2f %s | pnl %+.2f | %d assets | %d trades",
		now, botLabel(state.BotRunning),
		state.Summary.TotalValue, state.Summary.Currency,
		state.Summary.TotalPnL,
		state.Summary.AssetCount,
		len(state.Trades),
	)
	if state.Best != nil {
		fmt.Fprintf(&sb, " | best %s %+.1f%%", state.Best.Symbol, state.Best.PnLPct)
	}
	if state.Worst != nil {
		fmt.Fprintf(&sb, " | worst %s %+.1f%%", state.Worst.Symbol, state.Worst.PnLPct)
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime las tablas de holdings y trades recientes.
func (c *Console) printFull(state domain.DashboardState) {
	now := state.GeneratedAt.Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %s — total %.2f %s (pnl %+.2f)\n",
		now, botLabel(state.BotRunning),
		state.Summary.TotalValue, state.Summary.Currency, state.Summary.TotalPnL)

	if len(state.Holdings) > 0 {
		table := tablewriter.NewWriter(c.out)
		table.Header("Symbol", "Qty", "Price", "Value", "PnL")
		for _, h := range state.Holdings {
			table.Append(
				h.Symbol,
				fmt.Sprintf("%.6f", h.Quantity),
				fmt.Sprintf("%.2f", h.Price),
				fmt.Sprintf("%.2f", h.Value),
				fmt.Sprintf("%+.2f", h.PnL),
			)
		}
		table.Render()
	} else {
		fmt.Fprintln(c.out, "  (no holdings)")
	}

	if len(state.Trades) > 0 {
		shown := state.Trades
		if len(shown) > maxTradesShown {
			shown = shown[:maxTradesShown]
		}
		table := tablewriter.NewWriter(c.out)
		table.Header("Time", "Symbol", "Side", "Qty", "Price", "PnL")
		for _, tr := range shown {
			table.Append(
				tradeTime(tr),
				tr.Symbol,
				string(tr.Side),
				fmt.Sprintf("%.6f", tr.Quantity),
				fmt.Sprintf("%.2f", tr.Price),
				fmt.Sprintf("%+.2f", tr.PnL),
			)
		}
		table.Render()
	}

	if state.Stats != nil {
		fmt.Fprintf(c.out, "  trades: %d | win rate: %.0f%%\n",
			state.Stats.TotalTrades, state.Stats.WinRate*100)
	}
	fmt.Fprintln(c.out)
}

func botLabel(running bool) string {
	if running {
		return "BOT RUNNING"
	}
	return "BOT STOPPED"
}

func tradeTime(tr domain.Trade) string {
	if !tr.HasTimestamp() {
		return "-"
	}
	return tr.Timestamp.Format(time.DateTime)
}

func seriesLabel(points []domain.ValuePoint) string {
	if len(points) == 0 {
		return "0 pts"
	}
	return fmt.Sprintf("%d pts (last %.2f)", len(points), points[len(points)-1].Value)
}
