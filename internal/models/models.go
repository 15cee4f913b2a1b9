// Package models provides domain models for the trading journal.
package models

import "strings"

// Direction represents the side of a trade.
type Direction string

const (
	Long  Direction = "Long"
	Short Direction = "Short"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Long || d == Short
}

// ParseDirection maps long/buy and short/sell, in any case, onto a direction.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy":
		return Long, true
	case "short", "sell":
		return Short, true
	}
	return "", false
}

// Timeframe represents the chart timeframe a trade was taken on.
type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	TimeframeD   Timeframe = "D"
	TimeframeW   Timeframe = "W"
)

// Timeframes lists the supported timeframes in display order.
var Timeframes = []Timeframe{
	Timeframe1m, Timeframe5m, Timeframe15m, Timeframe1h, Timeframe4h, TimeframeD, TimeframeW,
}

// Valid reports whether tf is a supported timeframe.
func (tf Timeframe) Valid() bool {
	for _, t := range Timeframes {
		if t == tf {
			return true
		}
	}
	return false
}

// HTFTrend represents the higher-timeframe trend at entry.
type HTFTrend string

const (
	TrendUp    HTFTrend = "Up"
	TrendDown  HTFTrend = "Down"
	TrendRange HTFTrend = "Range"
)

// LegacyHTFTrends maps the long-form labels written by older importers to
// the canonical values.
var LegacyHTFTrends = map[string]HTFTrend{
	"Uptrend":   TrendUp,
	"Downtrend": TrendDown,
	"Ranging":   TrendRange,
}

// NormalizeHTFTrend maps s onto the canonical trend enumeration.
// Legacy labels are translated through LegacyHTFTrends; anything else is rejected.
func NormalizeHTFTrend(s string) (HTFTrend, bool) {
	s = strings.TrimSpace(s)
	switch HTFTrend(s) {
	case TrendUp, TrendDown, TrendRange:
		return HTFTrend(s), true
	}
	if t, ok := LegacyHTFTrends[s]; ok {
		return t, true
	}
	return "", false
}

// Outcome represents the result classification of a closed trade.
type Outcome string

const (
	Win       Outcome = "Win"
	Loss      Outcome = "Loss"
	Breakeven Outcome = "BE"
)

// Confirmation is an entry confirmation tag.
type Confirmation string

const (
	ConfirmDelta     Confirmation = "Delta"
	ConfirmVolume    Confirmation = "Volume"
	ConfirmVWAP      Confirmation = "VWAP"
	ConfirmStructure Confirmation = "Structure"
)

// Confirmations lists the known confirmation tags.
var Confirmations = []Confirmation{ConfirmDelta, ConfirmVolume, ConfirmVWAP, ConfirmStructure}

// Valid reports whether c is a known confirmation tag.
func (c Confirmation) Valid() bool {
	for _, k := range Confirmations {
		if k == c {
			return true
		}
	}
	return false
}
