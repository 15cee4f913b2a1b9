package models

import (
	"fmt"
	"strings"
	"time"
)

// Trade represents a journaled trade.
type Trade struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	Timeframe Timeframe `json:"timeframe"`
	Direction Direction `json:"direction"`
	DateTime  time.Time `json:"datetime"`

	EntryPrice   float64 `json:"entry_price"`
	StopLoss     float64 `json:"stop_loss"`
	TakeProfit   float64 `json:"take_profit"`
	RiskAmount   float64 `json:"risk_amount"`
	PositionSize float64 `json:"position_size"`

	SetupName     string         `json:"setup_name"`
	HTFTrend      HTFTrend       `json:"htf_trend"`
	EntryReason   string         `json:"entry_reason"`
	Confirmations []Confirmation `json:"confirmations"`

	SLMoved            bool `json:"sl_moved"`
	ManualInterference bool `json:"manual_interference"`

	// Set only once the exit is recorded; PnL, RMultiple and Outcome are
	// either all nil or all set.
	ExitPrice *float64 `json:"exit_price"`
	PnL       *float64 `json:"pnl"`
	RMultiple *float64 `json:"r_multiple"`
	Outcome   *Outcome `json:"outcome"`

	FollowedRules  bool   `json:"followed_rules"`
	BiggestMistake string `json:"biggest_mistake"`
	WouldTakeAgain bool   `json:"would_take_again"`

	IsFlagged bool      `json:"is_flagged"`
	CreatedAt time.Time `json:"created_at"`
}

// IsClosed reports whether the exit has been recorded.
func (t *Trade) IsClosed() bool {
	return t.ExitPrice != nil
}

// TradeInput is the raw, client-supplied form of a trade.
// Derived fields (pnl, r_multiple, outcome, is_flagged) are never accepted.
type TradeInput struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	Direction string `json:"direction"`
	DateTime  string `json:"datetime"`

	EntryPrice   *float64 `json:"entry_price"`
	StopLoss     *float64 `json:"stop_loss"`
	TakeProfit   *float64 `json:"take_profit"`
	RiskAmount   *float64 `json:"risk_amount"`
	PositionSize *float64 `json:"position_size"`

	SetupName     string   `json:"setup_name"`
	HTFTrend      string   `json:"htf_trend"`
	EntryReason   string   `json:"entry_reason"`
	Confirmations []string `json:"confirmations"`

	SLMoved            bool `json:"sl_moved"`
	ManualInterference bool `json:"manual_interference"`

	ExitPrice *float64 `json:"exit_price"`

	FollowedRules  *bool  `json:"followed_rules"`
	BiggestMistake string `json:"biggest_mistake"`
	WouldTakeAgain *bool  `json:"would_take_again"`
}

// InputFromTrade converts a stored trade back to its editable input form.
func InputFromTrade(t *Trade) TradeInput {
	confirmations := make([]string, 0, len(t.Confirmations))
	for _, c := range t.Confirmations {
		confirmations = append(confirmations, string(c))
	}
	followed := t.FollowedRules
	again := t.WouldTakeAgain

	in := TradeInput{
		Symbol:             t.Symbol,
		Timeframe:          string(t.Timeframe),
		Direction:          string(t.Direction),
		DateTime:           t.DateTime.Format(time.RFC3339),
		EntryPrice:         Float(t.EntryPrice),
		StopLoss:           Float(t.StopLoss),
		TakeProfit:         Float(t.TakeProfit),
		RiskAmount:         Float(t.RiskAmount),
		PositionSize:       Float(t.PositionSize),
		SetupName:          t.SetupName,
		HTFTrend:           string(t.HTFTrend),
		EntryReason:        t.EntryReason,
		Confirmations:      confirmations,
		SLMoved:            t.SLMoved,
		ManualInterference: t.ManualInterference,
		FollowedRules:      &followed,
		BiggestMistake:     t.BiggestMistake,
		WouldTakeAgain:     &again,
	}
	if t.ExitPrice != nil {
		in.ExitPrice = Float(*t.ExitPrice)
	}
	return in
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// dateTimeLayouts are tried in order by ParseDateTime. The second group
// covers what HTML datetime-local inputs and broker exports produce.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// ParseDateTime parses an entry timestamp in any of the accepted layouts.
// Values without a zone are interpreted as UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

// Setup is a named, reusable trade strategy.
type Setup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
