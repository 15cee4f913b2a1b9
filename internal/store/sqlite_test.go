package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTrade(symbol string, at time.Time) *models.Trade {
	return &models.Trade{
		Symbol:         symbol,
		Timeframe:      models.Timeframe5m,
		Direction:      models.Long,
		DateTime:       at,
		EntryPrice:     100,
		StopLoss:       95,
		TakeProfit:     110,
		RiskAmount:     50,
		PositionSize:   10,
		SetupName:      "Breakout",
		HTFTrend:       models.TrendUp,
		EntryReason:    "range break",
		Confirmations:  []models.Confirmation{models.ConfirmVolume, models.ConfirmDelta},
		FollowedRules:  true,
		WouldTakeAgain: true,
	}
}

func TestSQLiteStore_SeedsDefaultSetups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	setups, err := s.ListSetups(ctx)
	require.NoError(t, err)
	require.Len(t, setups, len(DefaultSetups))
	assert.Equal(t, "Breakout", setups[0].Name)

	// Seeding again is a no-op once the table has rows.
	require.NoError(t, s.SeedSetups(ctx, []string{"Extra"}))
	setups, err = s.ListSetups(ctx)
	require.NoError(t, err)
	assert.Len(t, setups, len(DefaultSetups))
}

func TestSQLiteStore_AddSetupRejectsDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	st, err := s.AddSetup(ctx, "Opening Range")
	require.NoError(t, err)
	assert.NotZero(t, st.ID)

	_, err = s.AddSetup(ctx, "Opening Range")
	assert.ErrorIs(t, err, apperrors.ErrSetupExists)
}

func TestSQLiteStore_TradeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	trade := sampleTrade("NIFTY", at)
	exit, pnl, r := 108.0, 80.0, 1.6
	win := models.Win
	trade.ExitPrice, trade.PnL, trade.RMultiple, trade.Outcome = &exit, &pnl, &r, &win

	id, err := s.InsertTrade(ctx, trade)
	require.NoError(t, err)
	assert.Equal(t, id, trade.ID)
	assert.False(t, trade.CreatedAt.IsZero())

	got, err := s.GetTrade(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "NIFTY", got.Symbol)
	assert.True(t, at.Equal(got.DateTime))
	assert.Equal(t, []models.Confirmation{models.ConfirmVolume, models.ConfirmDelta}, got.Confirmations)
	require.NotNil(t, got.ExitPrice)
	assert.Equal(t, 108.0, *got.ExitPrice)
	require.NotNil(t, got.Outcome)
	assert.Equal(t, models.Win, *got.Outcome)
	assert.True(t, got.FollowedRules)
	assert.True(t, got.WouldTakeAgain)
	assert.False(t, got.SLMoved)
	assert.False(t, got.IsFlagged)
}

func TestSQLiteStore_GetMissingTrade(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTrade(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)
}

func TestSQLiteStore_UpdateAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	trade := sampleTrade("TCS", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	id, err := s.InsertTrade(ctx, trade)
	require.NoError(t, err)
	created := trade.CreatedAt

	trade.SLMoved = true
	trade.IsFlagged = true
	trade.Confirmations = nil
	require.NoError(t, s.UpdateTrade(ctx, trade))

	got, err := s.GetTrade(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.SLMoved)
	assert.True(t, got.IsFlagged)
	assert.Equal(t, []models.Confirmation{}, got.Confirmations)
	assert.True(t, created.Truncate(time.Second).Equal(got.CreatedAt.Truncate(time.Second)))

	require.NoError(t, s.DeleteTrade(ctx, id))
	assert.ErrorIs(t, s.DeleteTrade(ctx, id), apperrors.ErrTradeNotFound)

	trade.ID = id
	assert.ErrorIs(t, s.UpdateTrade(ctx, trade), apperrors.ErrTradeNotFound)
}

func TestSQLiteStore_ListTradesOrderingAndFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	for i, sym := range []string{"A", "B", "C"} {
		tr := sampleTrade(sym, base.Add(time.Duration(i)*time.Hour))
		tr.IsFlagged = sym == "B"
		_, err := s.InsertTrade(ctx, tr)
		require.NoError(t, err)
	}

	trades, err := s.ListTrades(ctx, TradeFilter{})
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, "C", trades[0].Symbol, "newest first by default")

	trades, err = s.ListTrades(ctx, TradeFilter{SortBy: SortByDateTime, Ascending: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "A", trades[0].Symbol)

	trades, err = s.ListTrades(ctx, TradeFilter{FlaggedOnly: true})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "B", trades[0].Symbol)

	trades, err = s.ListTrades(ctx, TradeFilter{Symbol: "Z"})
	require.NoError(t, err)
	assert.NotNil(t, trades)
	assert.Empty(t, trades)
}

func TestSQLiteStore_OpenTradesSortLast(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	for i, r := range []*float64{models.Float(2), nil, models.Float(-1)} {
		tr := sampleTrade(string(rune('A'+i)), base)
		if r != nil {
			tr.ExitPrice = models.Float(100 + *r*5)
			tr.PnL = models.Float(*r * 50)
			tr.RMultiple = r
			o := models.Win
			if *r < 0 {
				o = models.Loss
			}
			tr.Outcome = &o
		}
		_, err := s.InsertTrade(ctx, tr)
		require.NoError(t, err)
	}

	symbols := func(f TradeFilter) []string {
		trades, err := s.ListTrades(ctx, f)
		require.NoError(t, err)
		out := make([]string, len(trades))
		for i, tr := range trades {
			out[i] = tr.Symbol
		}
		return out
	}

	assert.Equal(t, []string{"C", "A", "B"}, symbols(TradeFilter{SortBy: SortByRMultiple, Ascending: true}))
	assert.Equal(t, []string{"A", "C", "B"}, symbols(TradeFilter{SortBy: SortByRMultiple}))
	assert.Equal(t, []string{"C", "A", "B"}, symbols(TradeFilter{SortBy: SortByOutcome, Ascending: true}))
}

func TestSQLiteStore_NormalizeHTFTrends(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	legacy := sampleTrade("X", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	legacy.HTFTrend = "Ranging"
	id, err := s.InsertTrade(ctx, legacy)
	require.NoError(t, err)

	_, err = s.InsertTrade(ctx, sampleTrade("Y", time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)))
	require.NoError(t, err)

	n, err := s.NormalizeHTFTrends(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.GetTrade(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.TrendRange, got.HTFTrend)

	n, err = s.NormalizeHTFTrends(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestParseSortField(t *testing.T) {
	f, err := ParseSortField("")
	require.NoError(t, err)
	assert.Equal(t, SortByDateTime, f)

	f, err = ParseSortField("r_multiple")
	require.NoError(t, err)
	assert.Equal(t, SortByRMultiple, f)

	_, err = ParseSortField("pnl; DROP TABLE trades")
	assert.Error(t, err)
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "datetime DESC, id DESC", TradeFilter{}.orderClause())
	assert.Equal(t, "outcome ASC NULLS LAST, id ASC", TradeFilter{SortBy: SortByOutcome, Ascending: true}.orderClause())
	assert.Equal(t, "r_multiple DESC NULLS LAST, id DESC", TradeFilter{SortBy: SortByRMultiple}.orderClause())
	assert.Equal(t, "setup_name ASC, id ASC", TradeFilter{SortBy: SortBySetup, Ascending: true}.orderClause())
	assert.Equal(t, "id ASC", TradeFilter{SortBy: SortByID, Ascending: true}.orderClause())
}
