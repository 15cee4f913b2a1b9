package calc

import "trading-journal/internal/models"

// Input is the subset of trade fields the derived values depend on.
type Input struct {
	Direction     models.Direction
	EntryPrice    *float64
	StopLoss      *float64
	TakeProfit    *float64
	PositionSize  *float64
	ExitPrice     *float64
	SLMoved       bool
	FollowedRules bool
}

// Derived holds the computed values for a trade. A nil field is not
// computable from the inputs given.
type Derived struct {
	PnL        *float64        `json:"pnl"`
	RMultiple  *float64        `json:"r_multiple"`
	Outcome    *models.Outcome `json:"outcome"`
	RiskReward *float64        `json:"risk_reward"`
	IsFlagged  *bool           `json:"is_flagged"`
}

// Flagged reports the flag, treating not computable as not flagged.
func (d Derived) Flagged() bool {
	return d.IsFlagged != nil && *d.IsFlagged
}

// Derive computes every derived value for in.
// PnL, RMultiple and Outcome are set together, and only when an exit is present.
// Without a known direction nothing is computable.
func Derive(in Input) Derived {
	var d Derived
	if !in.Direction.Valid() {
		return d
	}

	if in.ExitPrice != nil {
		pnl := PnLOf(in.EntryPrice, in.ExitPrice, in.PositionSize, in.Direction)
		r := RMultipleOf(in.EntryPrice, in.ExitPrice, in.StopLoss, in.Direction)
		if pnl != nil && r != nil {
			d.PnL = pnl
			d.RMultiple = r
			d.Outcome = OutcomeOf(pnl)
		}
	}

	d.RiskReward = RiskRewardOf(in.EntryPrice, in.TakeProfit, in.StopLoss, in.Direction)
	if d.RiskReward != nil {
		flagged := ShouldFlag(*d.RiskReward, in.SLMoved, in.FollowedRules)
		d.IsFlagged = &flagged
	}

	return d
}

// InputFromTrade extracts the derivation inputs of a stored trade.
func InputFromTrade(t *models.Trade) Input {
	in := Input{
		Direction:     t.Direction,
		EntryPrice:    models.Float(t.EntryPrice),
		StopLoss:      models.Float(t.StopLoss),
		TakeProfit:    models.Float(t.TakeProfit),
		PositionSize:  models.Float(t.PositionSize),
		SLMoved:       t.SLMoved,
		FollowedRules: t.FollowedRules,
	}
	if t.ExitPrice != nil {
		in.ExitPrice = models.Float(*t.ExitPrice)
	}
	return in
}

// Apply recomputes and overwrites the derived fields of t.
func Apply(t *models.Trade) Derived {
	d := Derive(InputFromTrade(t))
	t.PnL = d.PnL
	t.RMultiple = d.RMultiple
	t.Outcome = d.Outcome
	t.IsFlagged = d.Flagged()
	return d
}
