package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/models"
)

func TestRMultiple(t *testing.T) {
	tests := []struct {
		name      string
		entry     float64
		exit      float64
		stopLoss  float64
		direction models.Direction
		want      float64
	}{
		{"long winner", 100, 108, 95, models.Long, 1.6},
		{"long loser at stop", 100, 95, 95, models.Long, -1},
		{"short winner", 100, 90, 105, models.Short, 2},
		{"short loser", 100, 105, 105, models.Short, -1},
		{"zero risk long", 100, 120, 100, models.Long, 0},
		{"zero risk short", 100, 80, 100, models.Short, 0},
		{"unknown direction is short", 100, 90, 105, models.Direction("sideways"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RMultiple(tt.entry, tt.exit, tt.stopLoss, tt.direction)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPnL(t *testing.T) {
	assert.InDelta(t, 80.0, PnL(100, 108, 10, models.Long), 1e-9)
	assert.InDelta(t, -50.0, PnL(100, 95, 10, models.Long), 1e-9)
	assert.InDelta(t, 100.0, PnL(100, 90, 10, models.Short), 1e-9)
	assert.InDelta(t, 0.0, PnL(100, 108, 0, models.Long), 1e-9)
}

func TestRiskReward(t *testing.T) {
	assert.InDelta(t, 2.0, RiskReward(100, 110, 95, models.Long), 1e-9)
	assert.InDelta(t, 3.0, RiskReward(100, 85, 105, models.Short), 1e-9)
	assert.Equal(t, 0.0, RiskReward(100, 110, 100, models.Long))
}

func TestClassifyOutcome(t *testing.T) {
	tests := []struct {
		pnl  float64
		want models.Outcome
	}{
		{0.005, models.Breakeven},
		{-0.005, models.Breakeven},
		{0, models.Breakeven},
		{0.01, models.Win},
		{-0.01, models.Loss},
		{80, models.Win},
		{-50, models.Loss},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyOutcome(tt.pnl), "pnl=%v", tt.pnl)
	}
}

func TestShouldFlag(t *testing.T) {
	assert.False(t, ShouldFlag(2.0, false, true))
	assert.True(t, ShouldFlag(2.0, true, true))
	assert.True(t, ShouldFlag(1.49, false, true))
	assert.False(t, ShouldFlag(1.5, false, true))
	assert.True(t, ShouldFlag(3.0, false, false))
	assert.True(t, ShouldFlag(0, false, true))
}

func TestNullableVariants(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)

	assert.Nil(t, RMultipleOf(nil, models.Float(108), models.Float(95), models.Long))
	assert.Nil(t, RMultipleOf(models.Float(100), &nan, models.Float(95), models.Long))
	assert.Nil(t, PnLOf(models.Float(100), models.Float(108), &inf, models.Long))
	assert.Nil(t, RiskRewardOf(models.Float(100), nil, models.Float(95), models.Long))
	assert.Nil(t, OutcomeOf(nil))
	assert.Nil(t, RMultipleOf(models.Float(100), models.Float(108), models.Float(95), ""))
	assert.Nil(t, PnLOf(models.Float(100), models.Float(108), models.Float(10), "long"))
	assert.Nil(t, RiskRewardOf(models.Float(100), models.Float(110), models.Float(95), "Buy"))

	zero := RMultipleOf(models.Float(0), models.Float(5), models.Float(-5), models.Long)
	require.NotNil(t, zero)
	assert.InDelta(t, 1.0, *zero, 1e-9)

	pnl := PnLOf(models.Float(100), models.Float(108), models.Float(0), models.Long)
	require.NotNil(t, pnl)
	assert.Equal(t, 0.0, *pnl)

	outcome := OutcomeOf(pnl)
	require.NotNil(t, outcome)
	assert.Equal(t, models.Breakeven, *outcome)
}

func TestDerive_ClosedLong(t *testing.T) {
	d := Derive(Input{
		Direction:     models.Long,
		EntryPrice:    models.Float(100),
		StopLoss:      models.Float(95),
		TakeProfit:    models.Float(110),
		PositionSize:  models.Float(10),
		ExitPrice:     models.Float(108),
		FollowedRules: true,
	})

	require.NotNil(t, d.PnL)
	require.NotNil(t, d.RMultiple)
	require.NotNil(t, d.Outcome)
	require.NotNil(t, d.RiskReward)
	require.NotNil(t, d.IsFlagged)

	assert.InDelta(t, 80.0, *d.PnL, 1e-9)
	assert.InDelta(t, 1.6, *d.RMultiple, 1e-9)
	assert.Equal(t, models.Win, *d.Outcome)
	assert.InDelta(t, 2.0, *d.RiskReward, 1e-9)
	assert.False(t, *d.IsFlagged)
}

func TestDerive_OpenTradeHasNoOutcome(t *testing.T) {
	d := Derive(Input{
		Direction:     models.Short,
		EntryPrice:    models.Float(100),
		StopLoss:      models.Float(105),
		TakeProfit:    models.Float(95),
		PositionSize:  models.Float(10),
		FollowedRules: true,
	})

	assert.Nil(t, d.PnL)
	assert.Nil(t, d.RMultiple)
	assert.Nil(t, d.Outcome)
	require.NotNil(t, d.RiskReward)
	assert.InDelta(t, 1.0, *d.RiskReward, 1e-9)
	require.NotNil(t, d.IsFlagged)
	assert.True(t, *d.IsFlagged)
}

func TestDerive_OutcomeFieldsSetTogether(t *testing.T) {
	// Exit present but no stop: r is not computable, so neither is pnl.
	d := Derive(Input{
		Direction:     models.Long,
		EntryPrice:    models.Float(100),
		PositionSize:  models.Float(10),
		ExitPrice:     models.Float(108),
		FollowedRules: true,
	})

	assert.Nil(t, d.PnL)
	assert.Nil(t, d.RMultiple)
	assert.Nil(t, d.Outcome)
	assert.Nil(t, d.RiskReward)
	assert.Nil(t, d.IsFlagged)
	assert.False(t, d.Flagged())
}

func TestApply(t *testing.T) {
	exit := 95.0
	trade := &models.Trade{
		Direction:     models.Long,
		EntryPrice:    100,
		StopLoss:      95,
		TakeProfit:    110,
		PositionSize:  10,
		ExitPrice:     &exit,
		FollowedRules: true,
		SLMoved:       true,
	}

	Apply(trade)

	require.NotNil(t, trade.PnL)
	assert.InDelta(t, -50.0, *trade.PnL, 1e-9)
	assert.InDelta(t, -1.0, *trade.RMultiple, 1e-9)
	assert.Equal(t, models.Loss, *trade.Outcome)
	assert.True(t, trade.IsFlagged)

	trade.ExitPrice = nil
	trade.SLMoved = false
	Apply(trade)

	assert.Nil(t, trade.PnL)
	assert.Nil(t, trade.RMultiple)
	assert.Nil(t, trade.Outcome)
	assert.False(t, trade.IsFlagged)
}

func TestDerive_UnknownDirectionIsNotComputable(t *testing.T) {
	for _, dir := range []models.Direction{"", "long", "Buy"} {
		d := Derive(Input{
			Direction:     dir,
			EntryPrice:    models.Float(100),
			StopLoss:      models.Float(95),
			TakeProfit:    models.Float(110),
			PositionSize:  models.Float(10),
			ExitPrice:     models.Float(108),
			FollowedRules: true,
		})
		assert.Equal(t, Derived{}, d, "direction %q", dir)
	}
}
