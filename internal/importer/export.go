package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"trading-journal/internal/models"
)

// Row is the CSV form of a trade. Headers use the canonical field names so
// an export can be read back by ReadCSV.
type Row struct {
	ID                 int64  `csv:"id"`
	Symbol             string `csv:"symbol"`
	Timeframe          string `csv:"timeframe"`
	Direction          string `csv:"direction"`
	DateTime           string `csv:"datetime"`
	EntryPrice         string `csv:"entry_price"`
	StopLoss           string `csv:"stop_loss"`
	TakeProfit         string `csv:"take_profit"`
	RiskAmount         string `csv:"risk_amount"`
	PositionSize       string `csv:"position_size"`
	SetupName          string `csv:"setup_name"`
	HTFTrend           string `csv:"htf_trend"`
	EntryReason        string `csv:"entry_reason"`
	Confirmations      string `csv:"confirmations"`
	SLMoved            bool   `csv:"sl_moved"`
	ManualInterference bool   `csv:"manual_interference"`
	ExitPrice          string `csv:"exit_price"`
	PnL                string `csv:"pnl"`
	RMultiple          string `csv:"r_multiple"`
	Outcome            string `csv:"outcome"`
	FollowedRules      bool   `csv:"followed_rules"`
	BiggestMistake     string `csv:"biggest_mistake"`
	WouldTakeAgain     bool   `csv:"would_take_again"`
	IsFlagged          bool   `csv:"is_flagged"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// RowFromTrade converts t to its CSV form.
func RowFromTrade(t *models.Trade) Row {
	confirmations := make([]string, len(t.Confirmations))
	for i, c := range t.Confirmations {
		confirmations[i] = string(c)
	}
	outcome := ""
	if t.Outcome != nil {
		outcome = string(*t.Outcome)
	}
	return Row{
		ID:                 t.ID,
		Symbol:             t.Symbol,
		Timeframe:          string(t.Timeframe),
		Direction:          string(t.Direction),
		DateTime:           t.DateTime.UTC().Format(time.RFC3339),
		EntryPrice:         formatFloat(t.EntryPrice),
		StopLoss:           formatFloat(t.StopLoss),
		TakeProfit:         formatFloat(t.TakeProfit),
		RiskAmount:         formatFloat(t.RiskAmount),
		PositionSize:       formatFloat(t.PositionSize),
		SetupName:          t.SetupName,
		HTFTrend:           string(t.HTFTrend),
		EntryReason:        t.EntryReason,
		Confirmations:      strings.Join(confirmations, "|"),
		SLMoved:            t.SLMoved,
		ManualInterference: t.ManualInterference,
		ExitPrice:          formatOptional(t.ExitPrice),
		PnL:                formatOptional(t.PnL),
		RMultiple:          formatOptional(t.RMultiple),
		Outcome:            outcome,
		FollowedRules:      t.FollowedRules,
		BiggestMistake:     t.BiggestMistake,
		WouldTakeAgain:     t.WouldTakeAgain,
		IsFlagged:          t.IsFlagged,
	}
}

// WriteCSV writes trades with a header row to w.
func WriteCSV(w io.Writer, trades []models.Trade) error {
	rows := make([]*Row, 0, len(trades))
	for i := range trades {
		r := RowFromTrade(&trades[i])
		rows = append(rows, &r)
	}
	return gocsv.Marshal(rows, w)
}
