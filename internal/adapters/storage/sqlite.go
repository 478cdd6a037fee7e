package storage

// sqlite.go — histórico de snapshots y trades.
//
// Estrategia:
//   - `snapshots`: una fila por ciclo de dashboard (resumen reconciliado).
//   - `trades`: una fila por trade normalizado (UPSERT por id). Los ids
//     sintetizados por posición no son únicos entre batches, así que solo se
//     persisten trades con timestamp: sin fecha no hay identidad estable.
//   - Prune automático al arrancar: snapshots > 90 días.
//
// La cache de endpoints NO vive aquí: muere con el proceso. Esto es
// reporting, nunca fuente de datos para el engine.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/panelbot/internal/domain"
	"github.com/alejandrodnm/panelbot/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    taken_at    DATETIME NOT NULL,
    currency    TEXT     NOT NULL,
    total_value REAL     NOT NULL DEFAULT 0,
    total_pnl   REAL     NOT NULL DEFAULT 0,
    asset_count INTEGER  NOT NULL DEFAULT 0,
    bot_running INTEGER  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS trades (
    trade_id  TEXT PRIMARY KEY,
    ts        DATETIME NOT NULL,
    symbol    TEXT NOT NULL,
    side      TEXT NOT NULL,
    quantity  REAL NOT NULL DEFAULT 0,
    price     REAL NOT NULL DEFAULT 0,
    pnl       REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_snapshots_at ON snapshots(taken_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_ts    ON trades(ts DESC);
`

const retentionSnapshots = 90 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada,
// aplica el schema y limpia snapshots antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveSnapshot persiste el resumen de un ciclo.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snap ports.Snapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (taken_at, currency, total_value, total_pnl, asset_count, bot_running)
		VALUES (?, ?, ?, ?, ?, ?)`,
		snap.TakenAt.UTC(), snap.Currency, snap.TotalValue, snap.TotalPnL,
		snap.AssetCount, boolToInt(snap.BotRunning),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: %w", err)
	}
	return nil
}

// SaveTrades hace upsert por trade_id. Los trades sin timestamp se saltan:
// su id posicional no identifica nada fuera de su batch.
func (s *SQLiteStorage) SaveTrades(ctx context.Context, trades []domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveTrades: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades (trade_id, ts, symbol, side, quantity, price, pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(trade_id) DO UPDATE SET
			ts=excluded.ts, symbol=excluded.symbol, side=excluded.side,
			quantity=excluded.quantity, price=excluded.price, pnl=excluded.pnl`)
	if err != nil {
		return fmt.Errorf("storage.SaveTrades: prepare: %w", err)
	}
	defer stmt.Close()

	for _, tr := range trades {
		if !tr.HasTimestamp() {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			tr.ID, tr.Timestamp.UTC(), tr.Symbol, string(tr.Side),
			tr.Quantity, tr.Price, tr.PnL,
		); err != nil {
			return fmt.Errorf("storage.SaveTrades: upsert %s: %w", tr.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveTrades: commit: %w", err)
	}
	return nil
}

// GetSnapshots devuelve los snapshots del rango, ascendente por fecha.
func (s *SQLiteStorage) GetSnapshots(ctx context.Context, from, to time.Time) ([]ports.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT taken_at, currency, total_value, total_pnl, asset_count, bot_running
		FROM snapshots
		WHERE taken_at >= ? AND taken_at <= ?
		ORDER BY taken_at ASC`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("storage.GetSnapshots: %w", err)
	}
	defer rows.Close()

	var snaps []ports.Snapshot
	for rows.Next() {
		var snap ports.Snapshot
		var running int
		if err := rows.Scan(&snap.TakenAt, &snap.Currency, &snap.TotalValue,
			&snap.TotalPnL, &snap.AssetCount, &running); err != nil {
			return nil, fmt.Errorf("storage.GetSnapshots: scan: %w", err)
		}
		snap.BotRunning = running != 0
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// GetTrades devuelve los trades persistidos del rango, descendente.
func (s *SQLiteStorage) GetTrades(ctx context.Context, from, to time.Time) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trade_id, ts, symbol, side, quantity, price, pnl
		FROM trades
		WHERE ts >= ? AND ts <= ?
		ORDER BY ts DESC`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("storage.GetTrades: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var tr domain.Trade
		var side string
		if err := rows.Scan(&tr.ID, &tr.Timestamp, &tr.Symbol, &side,
			&tr.Quantity, &tr.Price, &tr.PnL); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: scan: %w", err)
		}
		tr.Side = domain.ParseSide(side)
		trades = append(trades, tr)
	}
	return trades, rows.Err()
}

// Close cierra la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionSnapshots)
	// best effort: si falla, no bloquea el arranque
	s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE taken_at < ?`, cutoff)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
