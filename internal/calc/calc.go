// Package calc holds the trade arithmetic shared by the preview surface and
// the persistence path. Every derived value stored with a trade is produced
// here and nowhere else.
package calc

import (
	"math"

	"trading-journal/internal/models"
)

const (
	// BreakevenEpsilon is the absolute P&L below which a closed trade is BE.
	BreakevenEpsilon = 0.01
	// MinRiskReward is the planned RR below which a trade is flagged.
	MinRiskReward = 1.5
)

// risk returns the per-unit distance to the stop in the trade's favour.
// Anything other than Long is treated as Short.
func risk(entry, stopLoss float64, direction models.Direction) float64 {
	if direction == models.Long {
		return entry - stopLoss
	}
	return stopLoss - entry
}

// move returns the per-unit price move from entry to target in the trade's favour.
func move(entry, target float64, direction models.Direction) float64 {
	if direction == models.Long {
		return target - entry
	}
	return entry - target
}

// RMultiple returns the realized reward expressed in units of initial risk.
// Zero risk saturates to 0.
func RMultiple(entry, exit, stopLoss float64, direction models.Direction) float64 {
	r := risk(entry, stopLoss, direction)
	if r == 0 {
		return 0
	}
	return move(entry, exit, direction) / r
}

// PnL returns the realized profit or loss for the position.
func PnL(entry, exit, positionSize float64, direction models.Direction) float64 {
	return move(entry, exit, direction) * positionSize
}

// RiskReward returns the planned reward-to-risk ratio.
// Zero risk saturates to 0.
func RiskReward(entry, takeProfit, stopLoss float64, direction models.Direction) float64 {
	r := risk(entry, stopLoss, direction)
	if r == 0 {
		return 0
	}
	return move(entry, takeProfit, direction) / r
}

// ClassifyOutcome classifies a realized P&L.
func ClassifyOutcome(pnl float64) models.Outcome {
	if math.Abs(pnl) < BreakevenEpsilon {
		return models.Breakeven
	}
	if pnl > 0 {
		return models.Win
	}
	return models.Loss
}

// numeric reports whether every value is present and finite.
// Zero is a valid value.
func numeric(values ...*float64) bool {
	for _, v := range values {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			return false
		}
	}
	return true
}

// RMultipleOf is RMultiple over optional inputs; nil means not computable.
// An unknown direction is not computable either.
func RMultipleOf(entry, exit, stopLoss *float64, direction models.Direction) *float64 {
	if !direction.Valid() || !numeric(entry, exit, stopLoss) {
		return nil
	}
	v := RMultiple(*entry, *exit, *stopLoss, direction)
	return &v
}

// PnLOf is PnL over optional inputs; nil means not computable.
func PnLOf(entry, exit, positionSize *float64, direction models.Direction) *float64 {
	if !direction.Valid() || !numeric(entry, exit, positionSize) {
		return nil
	}
	v := PnL(*entry, *exit, *positionSize, direction)
	return &v
}

// RiskRewardOf is RiskReward over optional inputs; nil means not computable.
func RiskRewardOf(entry, takeProfit, stopLoss *float64, direction models.Direction) *float64 {
	if !direction.Valid() || !numeric(entry, takeProfit, stopLoss) {
		return nil
	}
	v := RiskReward(*entry, *takeProfit, *stopLoss, direction)
	return &v
}

// OutcomeOf classifies an optional P&L; no P&L means no outcome.
func OutcomeOf(pnl *float64) *models.Outcome {
	if !numeric(pnl) {
		return nil
	}
	o := ClassifyOutcome(*pnl)
	return &o
}
