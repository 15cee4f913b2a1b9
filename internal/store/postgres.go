package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// tradeRow is the Postgres representation of a trade. Prices are stored
// as unconstrained numeric so values survive the round trip exactly.
type tradeRow struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Symbol    string    `gorm:"column:symbol;type:text;not null"`
	Timeframe string    `gorm:"column:timeframe;type:text"`
	Direction string    `gorm:"column:direction;type:text;not null"`
	DateTime  time.Time `gorm:"column:datetime;type:timestamptz;not null;index"`

	EntryPrice   decimal.Decimal `gorm:"column:entry_price;type:numeric;not null"`
	StopLoss     decimal.Decimal `gorm:"column:stop_loss;type:numeric;not null"`
	TakeProfit   decimal.Decimal `gorm:"column:take_profit;type:numeric;not null"`
	RiskAmount   decimal.Decimal `gorm:"column:risk_amount;type:numeric;not null"`
	PositionSize decimal.Decimal `gorm:"column:position_size;type:numeric;not null"`

	SetupName     string         `gorm:"column:setup_name;type:text;index"`
	HTFTrend      string         `gorm:"column:htf_trend;type:text"`
	EntryReason   string         `gorm:"column:entry_reason;type:text"`
	Confirmations datatypes.JSON `gorm:"column:confirmations;type:jsonb;not null"`

	SLMoved            bool `gorm:"column:sl_moved;not null"`
	ManualInterference bool `gorm:"column:manual_interference;not null"`

	ExitPrice decimal.NullDecimal `gorm:"column:exit_price;type:numeric"`
	PnL       decimal.NullDecimal `gorm:"column:pnl;type:numeric"`
	RMultiple decimal.NullDecimal `gorm:"column:r_multiple;type:numeric"`
	Outcome   *string             `gorm:"column:outcome;type:text"`

	FollowedRules  bool   `gorm:"column:followed_rules;not null"`
	BiggestMistake string `gorm:"column:biggest_mistake;type:text;not null"`
	WouldTakeAgain bool   `gorm:"column:would_take_again;not null"`
	IsFlagged      bool   `gorm:"column:is_flagged;not null"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null"`
}

func (tradeRow) TableName() string { return "trades" }

type setupRow struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;type:text;uniqueIndex;not null"`
}

func (setupRow) TableName() string { return "setups" }

func nullDecimal(v *float64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*v))
}

func floatPtr(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}

func toRow(t *models.Trade) (tradeRow, error) {
	confirmations, err := json.Marshal(confirmationsOrEmpty(t.Confirmations))
	if err != nil {
		return tradeRow{}, fmt.Errorf("failed to encode confirmations: %w", err)
	}

	row := tradeRow{
		ID:                 t.ID,
		Symbol:             t.Symbol,
		Timeframe:          string(t.Timeframe),
		Direction:          string(t.Direction),
		DateTime:           t.DateTime.UTC(),
		EntryPrice:         decimal.NewFromFloat(t.EntryPrice),
		StopLoss:           decimal.NewFromFloat(t.StopLoss),
		TakeProfit:         decimal.NewFromFloat(t.TakeProfit),
		RiskAmount:         decimal.NewFromFloat(t.RiskAmount),
		PositionSize:       decimal.NewFromFloat(t.PositionSize),
		SetupName:          t.SetupName,
		HTFTrend:           string(t.HTFTrend),
		EntryReason:        t.EntryReason,
		Confirmations:      datatypes.JSON(confirmations),
		SLMoved:            t.SLMoved,
		ManualInterference: t.ManualInterference,
		ExitPrice:          nullDecimal(t.ExitPrice),
		PnL:                nullDecimal(t.PnL),
		RMultiple:          nullDecimal(t.RMultiple),
		FollowedRules:      t.FollowedRules,
		BiggestMistake:     t.BiggestMistake,
		WouldTakeAgain:     t.WouldTakeAgain,
		IsFlagged:          t.IsFlagged,
		CreatedAt:          t.CreatedAt.UTC(),
	}
	if t.Outcome != nil {
		o := string(*t.Outcome)
		row.Outcome = &o
	}
	return row, nil
}

func fromRow(r tradeRow) (models.Trade, error) {
	t := models.Trade{
		ID:                 r.ID,
		Symbol:             r.Symbol,
		Timeframe:          models.Timeframe(r.Timeframe),
		Direction:          models.Direction(r.Direction),
		DateTime:           r.DateTime.UTC(),
		EntryPrice:         r.EntryPrice.InexactFloat64(),
		StopLoss:           r.StopLoss.InexactFloat64(),
		TakeProfit:         r.TakeProfit.InexactFloat64(),
		RiskAmount:         r.RiskAmount.InexactFloat64(),
		PositionSize:       r.PositionSize.InexactFloat64(),
		SetupName:          r.SetupName,
		HTFTrend:           models.HTFTrend(r.HTFTrend),
		EntryReason:        r.EntryReason,
		Confirmations:      []models.Confirmation{},
		SLMoved:            r.SLMoved,
		ManualInterference: r.ManualInterference,
		ExitPrice:          floatPtr(r.ExitPrice),
		PnL:                floatPtr(r.PnL),
		RMultiple:          floatPtr(r.RMultiple),
		FollowedRules:      r.FollowedRules,
		BiggestMistake:     r.BiggestMistake,
		WouldTakeAgain:     r.WouldTakeAgain,
		IsFlagged:          r.IsFlagged,
		CreatedAt:          r.CreatedAt.UTC(),
	}
	if len(r.Confirmations) > 0 {
		if err := json.Unmarshal(r.Confirmations, &t.Confirmations); err != nil {
			return t, fmt.Errorf("failed to decode confirmations for trade %d: %w", r.ID, err)
		}
	}
	if r.Outcome != nil {
		o := models.Outcome(*r.Outcome)
		t.Outcome = &o
	}
	return t, nil
}

// PostgresStore implements Store on Postgres through gorm.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to dsn, migrates the schema and seeds the
// default setups.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := db.WithContext(ctx).AutoMigrate(&tradeRow{}, &setupRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := store.SeedSetups(ctx, DefaultSetups); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to seed setups: %w", err)
	}
	return store, nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// InsertTrade saves a trade to the database.
func (s *PostgresStore) InsertTrade(ctx context.Context, t *models.Trade) (int64, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	row, err := toRow(t)
	if err != nil {
		return 0, err
	}
	row.ID = 0
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, apperrors.NewStoreError("insert trade", err)
	}
	t.ID = row.ID
	return row.ID, nil
}

// GetTrade retrieves a single trade by id.
func (s *PostgresStore) GetTrade(ctx context.Context, id int64) (*models.Trade, error) {
	var row tradeRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewStoreError("get trade", apperrors.ErrTradeNotFound)
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get trade", err)
	}
	t, err := fromRow(row)
	if err != nil {
		return nil, apperrors.NewStoreError("get trade", err)
	}
	return &t, nil
}

// ListTrades retrieves trades from the database.
func (s *PostgresStore) ListTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := s.db.WithContext(ctx).Model(&tradeRow{})
	if filter.FlaggedOnly {
		query = query.Where("is_flagged = ?", true)
	}
	if filter.Symbol != "" {
		query = query.Where("symbol = ?", filter.Symbol)
	}
	if filter.SetupName != "" {
		query = query.Where("setup_name = ?", filter.SetupName)
	}
	query = query.Order(filter.orderClause())
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []tradeRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, apperrors.NewStoreError("list trades", err)
	}

	trades := make([]models.Trade, 0, len(rows))
	for _, r := range rows {
		t, err := fromRow(r)
		if err != nil {
			return nil, apperrors.NewStoreError("list trades", err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// UpdateTrade overwrites a stored trade, keeping id and created_at.
func (s *PostgresStore) UpdateTrade(ctx context.Context, t *models.Trade) error {
	row, err := toRow(t)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Model(&tradeRow{}).
		Where("id = ?", t.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&row)
	if res.Error != nil {
		return apperrors.NewStoreError("update trade", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewStoreError("update trade", apperrors.ErrTradeNotFound)
	}
	return nil
}

// DeleteTrade removes a trade.
func (s *PostgresStore) DeleteTrade(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&tradeRow{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.NewStoreError("delete trade", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewStoreError("delete trade", apperrors.ErrTradeNotFound)
	}
	return nil
}

// NormalizeHTFTrends rewrites legacy trend labels in place.
func (s *PostgresStore) NormalizeHTFTrends(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for legacy, canonical := range models.LegacyHTFTrends {
			res := tx.Model(&tradeRow{}).Where("htf_trend = ?", legacy).Update("htf_trend", string(canonical))
			if res.Error != nil {
				return res.Error
			}
			total += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.NewStoreError("normalize htf trends", err)
	}
	return total, nil
}

// ListSetups returns all setups ordered by name.
func (s *PostgresStore) ListSetups(ctx context.Context) ([]models.Setup, error) {
	var rows []setupRow
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, apperrors.NewStoreError("list setups", err)
	}
	setups := make([]models.Setup, 0, len(rows))
	for _, r := range rows {
		setups = append(setups, models.Setup{ID: r.ID, Name: r.Name})
	}
	return setups, nil
}

// AddSetup inserts a new setup name.
func (s *PostgresStore) AddSetup(ctx context.Context, name string) (*models.Setup, error) {
	row := setupRow{Name: name}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrSetupExists
		}
		return nil, apperrors.NewStoreError("add setup", err)
	}
	return &models.Setup{ID: row.ID, Name: row.Name}, nil
}

// SeedSetups inserts names when the setups table is empty.
func (s *PostgresStore) SeedSetups(ctx context.Context, names []string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&setupRow{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 || len(names) == 0 {
			return nil
		}
		rows := make([]setupRow, 0, len(names))
		for _, n := range names {
			rows = append(rows, setupRow{Name: n})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return apperrors.NewStoreError("seed setups", err)
	}
	return nil
}
