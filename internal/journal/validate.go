package journal

import (
	"math"
	"strings"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

func requireNumber(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, apperrors.NewValidationError(field, nil, "is required")
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, apperrors.NewValidationError(field, *v, "must be a finite number")
	}
	return *v, nil
}

func optionalNumber(field string, v *float64) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil, apperrors.NewValidationError(field, *v, "must be a finite number")
	}
	x := *v
	return &x, nil
}

// buildTrade validates in and converts it to a trade without derived
// fields. Trend labels are normalized to the canonical set.
func buildTrade(in models.TradeInput) (*models.Trade, error) {
	t := &models.Trade{
		Symbol:             strings.TrimSpace(in.Symbol),
		SetupName:          strings.TrimSpace(in.SetupName),
		EntryReason:        in.EntryReason,
		SLMoved:            in.SLMoved,
		ManualInterference: in.ManualInterference,
		BiggestMistake:     in.BiggestMistake,
		FollowedRules:      true,
		WouldTakeAgain:     true,
		Confirmations:      []models.Confirmation{},
	}

	if t.Symbol == "" {
		return nil, apperrors.NewValidationError("symbol", nil, "is required")
	}

	dir, ok := models.ParseDirection(in.Direction)
	if !ok {
		return nil, apperrors.NewValidationError("direction", in.Direction, "must be Long or Short")
	}
	t.Direction = dir

	if tf := strings.TrimSpace(in.Timeframe); tf != "" {
		t.Timeframe = models.Timeframe(tf)
		if !t.Timeframe.Valid() {
			return nil, apperrors.NewValidationError("timeframe", in.Timeframe, "unsupported timeframe")
		}
	}

	if strings.TrimSpace(in.DateTime) == "" {
		return nil, apperrors.NewValidationError("datetime", nil, "is required")
	}
	dt, err := models.ParseDateTime(in.DateTime)
	if err != nil {
		return nil, apperrors.NewValidationError("datetime", in.DateTime, err.Error())
	}
	t.DateTime = dt

	if t.EntryPrice, err = requireNumber("entry_price", in.EntryPrice); err != nil {
		return nil, err
	}
	if t.StopLoss, err = requireNumber("stop_loss", in.StopLoss); err != nil {
		return nil, err
	}
	if t.TakeProfit, err = requireNumber("take_profit", in.TakeProfit); err != nil {
		return nil, err
	}
	if t.PositionSize, err = requireNumber("position_size", in.PositionSize); err != nil {
		return nil, err
	}
	risk, err := optionalNumber("risk_amount", in.RiskAmount)
	if err != nil {
		return nil, err
	}
	if risk != nil {
		t.RiskAmount = *risk
	}
	if t.ExitPrice, err = optionalNumber("exit_price", in.ExitPrice); err != nil {
		return nil, err
	}

	if htf := strings.TrimSpace(in.HTFTrend); htf != "" {
		trend, ok := models.NormalizeHTFTrend(htf)
		if !ok {
			return nil, apperrors.NewValidationError("htf_trend", in.HTFTrend, "must be Up, Down or Range")
		}
		t.HTFTrend = trend
	}

	seen := make(map[models.Confirmation]bool)
	for _, c := range in.Confirmations {
		conf := models.Confirmation(strings.TrimSpace(c))
		if !conf.Valid() {
			return nil, apperrors.NewValidationError("confirmations", c, "unknown confirmation")
		}
		if !seen[conf] {
			seen[conf] = true
			t.Confirmations = append(t.Confirmations, conf)
		}
	}

	if in.FollowedRules != nil {
		t.FollowedRules = *in.FollowedRules
	}
	if in.WouldTakeAgain != nil {
		t.WouldTakeAgain = *in.WouldTakeAgain
	}

	return t, nil
}
