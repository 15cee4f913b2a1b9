// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath, applies the
// schema and seeds the default setups.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.SeedSetups(context.Background(), DefaultSetups); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed setups: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timeframe TEXT,
		direction TEXT NOT NULL,
		datetime DATETIME NOT NULL,
		entry_price REAL NOT NULL,
		stop_loss REAL NOT NULL,
		take_profit REAL NOT NULL,
		risk_amount REAL NOT NULL DEFAULT 0,
		position_size REAL NOT NULL,
		setup_name TEXT,
		htf_trend TEXT,
		entry_reason TEXT,
		confirmations TEXT NOT NULL DEFAULT '[]',
		sl_moved INTEGER NOT NULL DEFAULT 0,
		manual_interference INTEGER NOT NULL DEFAULT 0,
		exit_price REAL,
		pnl REAL,
		r_multiple REAL,
		outcome TEXT,
		followed_rules INTEGER NOT NULL DEFAULT 1,
		biggest_mistake TEXT NOT NULL DEFAULT '',
		would_take_again INTEGER NOT NULL DEFAULT 1,
		is_flagged INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trades_datetime ON trades(datetime);
	CREATE INDEX IF NOT EXISTS idx_trades_setup ON trades(setup_name);

	CREATE TABLE IF NOT EXISTS setups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ============================================================================
// Trades Methods
// ============================================================================

const tradeColumns = `id, symbol, timeframe, direction, datetime, entry_price, stop_loss, take_profit,
	risk_amount, position_size, setup_name, htf_trend, entry_reason, confirmations, sl_moved,
	manual_interference, exit_price, pnl, r_multiple, outcome, followed_rules, biggest_mistake,
	would_take_again, is_flagged, created_at`

// InsertTrade saves a trade to the database.
func (s *SQLiteStore) InsertTrade(ctx context.Context, t *models.Trade) (int64, error) {
	confirmations, err := json.Marshal(confirmationsOrEmpty(t.Confirmations))
	if err != nil {
		return 0, fmt.Errorf("failed to encode confirmations: %w", err)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (symbol, timeframe, direction, datetime, entry_price, stop_loss, take_profit,
			risk_amount, position_size, setup_name, htf_trend, entry_reason, confirmations, sl_moved,
			manual_interference, exit_price, pnl, r_multiple, outcome, followed_rules, biggest_mistake,
			would_take_again, is_flagged, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Symbol, t.Timeframe, t.Direction, t.DateTime.UTC(), t.EntryPrice, t.StopLoss, t.TakeProfit,
		t.RiskAmount, t.PositionSize, t.SetupName, t.HTFTrend, t.EntryReason, string(confirmations), boolToInt(t.SLMoved),
		boolToInt(t.ManualInterference), t.ExitPrice, t.PnL, t.RMultiple, outcomeValue(t.Outcome), boolToInt(t.FollowedRules), t.BiggestMistake,
		boolToInt(t.WouldTakeAgain), boolToInt(t.IsFlagged), t.CreatedAt.UTC())
	if err != nil {
		return 0, apperrors.NewStoreError("insert trade", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.NewStoreError("insert trade", err)
	}
	t.ID = id
	return id, nil
}

// GetTrade retrieves a single trade by id.
func (s *SQLiteStore) GetTrade(ctx context.Context, id int64) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tradeColumns+" FROM trades WHERE id = ?", id)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewStoreError("get trade", apperrors.ErrTradeNotFound)
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get trade", err)
	}
	return t, nil
}

// ListTrades retrieves trades from the database.
func (s *SQLiteStore) ListTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.FlaggedOnly {
		query += " AND is_flagged = 1"
	}
	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.SetupName != "" {
		query += " AND setup_name = ?"
		args = append(args, filter.SetupName)
	}

	query += " ORDER BY " + filter.orderClause()
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("list trades", err)
	}
	defer rows.Close()

	trades := []models.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("list trades", err)
		}
		trades = append(trades, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("list trades", err)
	}
	return trades, nil
}

// UpdateTrade overwrites a stored trade.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, t *models.Trade) error {
	confirmations, err := json.Marshal(confirmationsOrEmpty(t.Confirmations))
	if err != nil {
		return fmt.Errorf("failed to encode confirmations: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE trades SET symbol = ?, timeframe = ?, direction = ?, datetime = ?, entry_price = ?,
			stop_loss = ?, take_profit = ?, risk_amount = ?, position_size = ?, setup_name = ?,
			htf_trend = ?, entry_reason = ?, confirmations = ?, sl_moved = ?, manual_interference = ?,
			exit_price = ?, pnl = ?, r_multiple = ?, outcome = ?, followed_rules = ?,
			biggest_mistake = ?, would_take_again = ?, is_flagged = ?
		WHERE id = ?
	`, t.Symbol, t.Timeframe, t.Direction, t.DateTime.UTC(), t.EntryPrice,
		t.StopLoss, t.TakeProfit, t.RiskAmount, t.PositionSize, t.SetupName,
		t.HTFTrend, t.EntryReason, string(confirmations), boolToInt(t.SLMoved), boolToInt(t.ManualInterference),
		t.ExitPrice, t.PnL, t.RMultiple, outcomeValue(t.Outcome), boolToInt(t.FollowedRules),
		t.BiggestMistake, boolToInt(t.WouldTakeAgain), boolToInt(t.IsFlagged),
		t.ID)
	if err != nil {
		return apperrors.NewStoreError("update trade", err)
	}
	return checkAffected("update trade", res)
}

// DeleteTrade removes a trade.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return apperrors.NewStoreError("delete trade", err)
	}
	return checkAffected("delete trade", res)
}

// NormalizeHTFTrends rewrites legacy trend labels in place.
func (s *SQLiteStore) NormalizeHTFTrends(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.NewStoreError("normalize htf trends", err)
	}
	defer tx.Rollback()

	var total int64
	for legacy, canonical := range models.LegacyHTFTrends {
		res, err := tx.ExecContext(ctx, "UPDATE trades SET htf_trend = ? WHERE htf_trend = ?", canonical, legacy)
		if err != nil {
			return 0, apperrors.NewStoreError("normalize htf trends", err)
		}
		n, _ := res.RowsAffected()
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.NewStoreError("normalize htf trends", err)
	}
	return total, nil
}

// ============================================================================
// Setups Methods
// ============================================================================

// ListSetups returns all setups ordered by name.
func (s *SQLiteStore) ListSetups(ctx context.Context) ([]models.Setup, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM setups ORDER BY name ASC")
	if err != nil {
		return nil, apperrors.NewStoreError("list setups", err)
	}
	defer rows.Close()

	setups := []models.Setup{}
	for rows.Next() {
		var st models.Setup
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return nil, apperrors.NewStoreError("list setups", err)
		}
		setups = append(setups, st)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("list setups", err)
	}
	return setups, nil
}

// AddSetup inserts a new setup name.
func (s *SQLiteStore) AddSetup(ctx context.Context, name string) (*models.Setup, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO setups (name) VALUES (?)", name)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, apperrors.ErrSetupExists
		}
		return nil, apperrors.NewStoreError("add setup", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperrors.NewStoreError("add setup", err)
	}
	return &models.Setup{ID: id, Name: name}, nil
}

// SeedSetups inserts names when the setups table is empty.
func (s *SQLiteStore) SeedSetups(ctx context.Context, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("seed setups", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM setups").Scan(&count); err != nil {
		return apperrors.NewStoreError("seed setups", err)
	}
	if count > 0 {
		return nil
	}

	for _, name := range names {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO setups (name) VALUES (?)", name); err != nil {
			return apperrors.NewStoreError("seed setups", err)
		}
	}
	return tx.Commit()
}

// ============================================================================
// Helpers
// ============================================================================

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row scanner) (*models.Trade, error) {
	var t models.Trade
	var timeframe, setupName, htfTrend, entryReason sql.NullString
	var confirmationsJSON string
	var slMoved, manual, followed, again, flagged int
	var exitPrice, pnl, rMultiple sql.NullFloat64
	var outcome sql.NullString
	var createdAt sql.NullTime

	err := row.Scan(&t.ID, &t.Symbol, &timeframe, &t.Direction, &t.DateTime, &t.EntryPrice, &t.StopLoss, &t.TakeProfit,
		&t.RiskAmount, &t.PositionSize, &setupName, &htfTrend, &entryReason, &confirmationsJSON, &slMoved,
		&manual, &exitPrice, &pnl, &rMultiple, &outcome, &followed, &t.BiggestMistake,
		&again, &flagged, &createdAt)
	if err != nil {
		return nil, err
	}

	t.Timeframe = models.Timeframe(timeframe.String)
	t.SetupName = setupName.String
	t.HTFTrend = models.HTFTrend(htfTrend.String)
	t.EntryReason = entryReason.String
	t.SLMoved = slMoved != 0
	t.ManualInterference = manual != 0
	t.FollowedRules = followed != 0
	t.WouldTakeAgain = again != 0
	t.IsFlagged = flagged != 0
	t.DateTime = t.DateTime.UTC()
	if createdAt.Valid {
		t.CreatedAt = createdAt.Time.UTC()
	}

	t.Confirmations = []models.Confirmation{}
	if confirmationsJSON != "" {
		if err := json.Unmarshal([]byte(confirmationsJSON), &t.Confirmations); err != nil {
			return nil, fmt.Errorf("failed to decode confirmations for trade %d: %w", t.ID, err)
		}
	}

	if exitPrice.Valid {
		t.ExitPrice = &exitPrice.Float64
	}
	if pnl.Valid {
		t.PnL = &pnl.Float64
	}
	if rMultiple.Valid {
		t.RMultiple = &rMultiple.Float64
	}
	if outcome.Valid {
		o := models.Outcome(outcome.String)
		t.Outcome = &o
	}
	return &t, nil
}

func checkAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewStoreError(op, err)
	}
	if n == 0 {
		return apperrors.NewStoreError(op, apperrors.ErrTradeNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func outcomeValue(o *models.Outcome) interface{} {
	if o == nil {
		return nil
	}
	return string(*o)
}

func confirmationsOrEmpty(c []models.Confirmation) []models.Confirmation {
	if c == nil {
		return []models.Confirmation{}
	}
	return c
}
