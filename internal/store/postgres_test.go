package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/models"
)

func TestTradeRowMapping(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	trade := sampleTrade("INFY", time.Date(2024, 3, 1, 9, 30, 0, 0, ist))
	trade.ID = 7
	trade.CreatedAt = time.Date(2024, 3, 1, 4, 0, 0, 0, time.UTC)
	exit, pnl, r := 97.35, -26.5, -0.53
	loss := models.Loss
	trade.ExitPrice, trade.PnL, trade.RMultiple, trade.Outcome = &exit, &pnl, &r, &loss

	row, err := toRow(trade)
	require.NoError(t, err)

	assert.Equal(t, time.UTC, row.DateTime.Location())
	assert.Equal(t, "97.35", row.ExitPrice.Decimal.String())
	assert.True(t, row.PnL.Valid)
	assert.JSONEq(t, `["Volume","Delta"]`, string(row.Confirmations))
	require.NotNil(t, row.Outcome)
	assert.Equal(t, "Loss", *row.Outcome)

	back, err := fromRow(row)
	require.NoError(t, err)

	assert.Equal(t, trade.ID, back.ID)
	assert.True(t, trade.DateTime.Equal(back.DateTime))
	assert.Equal(t, trade.EntryPrice, back.EntryPrice)
	assert.Equal(t, trade.Confirmations, back.Confirmations)
	require.NotNil(t, back.ExitPrice)
	assert.Equal(t, exit, *back.ExitPrice)
	assert.Equal(t, r, *back.RMultiple)
	assert.Equal(t, models.Loss, *back.Outcome)
	assert.True(t, back.FollowedRules)
}

func TestTradeRowMapping_OpenTrade(t *testing.T) {
	trade := sampleTrade("SBIN", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	trade.Confirmations = nil

	row, err := toRow(trade)
	require.NoError(t, err)
	assert.False(t, row.ExitPrice.Valid)
	assert.False(t, row.RMultiple.Valid)
	assert.Nil(t, row.Outcome)
	assert.Equal(t, "[]", string(row.Confirmations))

	back, err := fromRow(row)
	require.NoError(t, err)
	assert.Nil(t, back.ExitPrice)
	assert.Nil(t, back.PnL)
	assert.Nil(t, back.Outcome)
	assert.Equal(t, []models.Confirmation{}, back.Confirmations)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "trades", tradeRow{}.TableName())
	assert.Equal(t, "setups", setupRow{}.TableName())
}
